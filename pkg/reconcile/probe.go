package reconcile

import (
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"
)

// WaitForSSH polls SSH connectivity to host:port with the given
// credentials, returning nil once a login and a trivial command
// succeed, or an error when the timeout is reached. Used by apply
// --wait to confirm lab VMs are reachable on their public addresses.
func WaitForSSH(host string, port int, user, pass string, timeout time.Duration) error {
	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		client, err := ssh.Dial("tcp", addr, config)
		if err != nil {
			time.Sleep(5 * time.Second)
			continue
		}

		session, err := client.NewSession()
		if err != nil {
			client.Close()
			time.Sleep(5 * time.Second)
			continue
		}

		_, err = session.CombinedOutput("echo ready")
		session.Close()
		client.Close()

		if err == nil {
			return nil
		}
		time.Sleep(5 * time.Second)
	}

	return fmt.Errorf("reconcile: SSH timeout after %s for %s", timeout, addr)
}
