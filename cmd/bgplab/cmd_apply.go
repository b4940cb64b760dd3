package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/reconcile"
)

func newApplyCmd() *cobra.Command {
	var yes bool
	var parallel int
	var wait bool
	var waitTimeout int

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the plan against the provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := requireLab()
			if err != nil {
				return err
			}
			g, err := buildGraph(lab)
			if err != nil {
				return err
			}

			ctx := context.Background()
			p := newProvider(lab)

			cs, err := reconcile.Plan(ctx, p, g)
			if err != nil {
				return err
			}
			printPlan(cs)
			if cs.IsEmpty() {
				return nil
			}

			if !yes && !confirm("Apply these changes?") {
				return fmt.Errorf("apply cancelled")
			}

			r := reconcile.New(p)
			if parallel > 0 {
				r.Parallel = parallel
			}

			res, applyErr := r.Apply(ctx, g, cs)

			// Persist whatever was applied, even on error, so destroy
			// and status still see it.
			store := newStore(lab)
			defer store.Close()
			if len(res.Observed) > 0 {
				if err := store.SaveSnapshot(ctx, res.RunID, res.Observed); err != nil {
					fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				}
			}
			if applyErr != nil {
				return applyErr
			}

			fmt.Printf("\n%s Applied lab %s: %d created, %d updated, %d deleted\n",
				green("✓"), g.Lab, res.Created, res.Updated, res.Deleted)

			if wait {
				return waitForVMs(g, res, time.Duration(waitTimeout)*time.Second)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent provider calls per tier")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for SSH reachability of each VM's public address")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 300, "per-VM SSH wait timeout in seconds")
	return cmd
}

// confirm prompts on stdin and accepts y/yes.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// waitForVMs probes SSH on every public address from the apply result.
// The admin password is prompted once and never stored.
func waitForVMs(g *graph.Graph, res *reconcile.Result, timeout time.Duration) error {
	addrs := make(map[string]string) // index key -> public IP
	for _, obs := range res.Observed {
		if obs.Ref.Kind == graph.KindPublicAddress {
			if ip := obs.Outputs["ip_address"]; ip != "" {
				addrs[obs.Attrs["index_key"]] = ip
			}
		}
	}
	if len(addrs) == 0 {
		return fmt.Errorf("no public addresses to probe")
	}

	adminUser := ""
	for _, vm := range g.VMs {
		adminUser = vm.AdminUser
		break
	}

	fmt.Printf("Password for %s: ", adminUser)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	fmt.Printf("Waiting for SSH on %d VMs...\n", len(addrs))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for key, ip := range addrs {
		wg.Add(1)
		go func(key, ip string) {
			defer wg.Done()
			err := reconcile.WaitForSSH(ip, 22, adminUser, string(pass), timeout)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Printf("  %s vm%s (%s)\n", red("✗"), key, ip)
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			fmt.Printf("  %s vm%s (%s)\n", green("✓"), key, ip)
		}(key, ip)
	}
	wg.Wait()
	return firstErr
}
