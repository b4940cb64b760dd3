// Package bootcfg renders the boot-time configuration blob attached to
// each lab VM: a cloud-init user-data document that sets the hostname
// and drops an FRR bgpd config so the VM comes up speaking BGP.
package bootcfg

import (
	"fmt"
	"strings"
)

// VMBoot holds the per-VM inputs for rendering.
type VMBoot struct {
	HostName      string
	StaticAddress string
	SubnetCIDR    string
	ASN           int
}

// Render produces the cloud-init user-data for one VM. Output is
// deterministic for a given VMBoot, so re-rendering never perturbs an
// already-applied graph.
func Render(b VMBoot) string {
	var sb strings.Builder

	sb.WriteString("#cloud-config\n")
	fmt.Fprintf(&sb, "hostname: %s\n", b.HostName)
	sb.WriteString("package_update: true\n")
	sb.WriteString("packages:\n")
	sb.WriteString("  - frr\n")
	sb.WriteString("write_files:\n")
	sb.WriteString("  - path: /etc/frr/frr.conf\n")
	sb.WriteString("    owner: frr:frr\n")
	sb.WriteString("    permissions: \"0640\"\n")
	sb.WriteString("    content: |\n")
	for _, line := range frrConfig(b) {
		sb.WriteString("      " + line + "\n")
	}
	sb.WriteString("runcmd:\n")
	sb.WriteString("  - sed -i 's/^bgpd=no/bgpd=yes/' /etc/frr/daemons\n")
	sb.WriteString("  - systemctl restart frr\n")

	return sb.String()
}

// frrConfig returns the bgpd stanza lines for one VM. Each VM announces
// its own subnet from a private ASN; neighbors are configured by the
// operator once the lab is up (peering topology is an exercise, not
// pre-wired).
func frrConfig(b VMBoot) []string {
	return []string{
		fmt.Sprintf("hostname %s", b.HostName),
		fmt.Sprintf("router bgp %d", b.ASN),
		fmt.Sprintf(" bgp router-id %s", b.StaticAddress),
		" no bgp ebgp-requires-policy",
		" address-family ipv4 unicast",
		fmt.Sprintf("  network %s", b.SubnetCIDR),
		" exit-address-family",
		"line vty",
	}
}
