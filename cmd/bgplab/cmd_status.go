package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bgplab-net/bgplab/pkg/cli"
	"github.com/bgplab-net/bgplab/pkg/util"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied resources of the lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := requireLab()
			if err != nil {
				return err
			}
			store := newStore(lab)
			defer store.Close()

			ctx := context.Background()
			run, err := store.Run(ctx)
			if errors.Is(err, util.ErrNotApplied) {
				fmt.Printf("Lab %s has not been applied\n", lab.Name)
				return nil
			}
			if err != nil {
				return err
			}

			observed, err := store.LoadSnapshot(ctx)
			if err != nil {
				return err
			}
			sort.Slice(observed, func(i, j int) bool {
				if observed[i].Ref.Kind != observed[j].Ref.Kind {
					return observed[i].Ref.Kind < observed[j].Ref.Kind
				}
				return observed[i].Ref.Name < observed[j].Ref.Name
			})

			fmt.Printf("Lab %s: %d resources, last applied %s (run %s)\n\n",
				lab.Name, len(observed), run.AppliedAt.Format("2006-01-02 15:04:05"), run.ID[:8])

			t := cli.NewTable("KIND", "NAME", "ADDRESS", "FQDN")
			for _, obs := range observed {
				addr := obs.Outputs["ip_address"]
				if addr == "" {
					addr = obs.Attrs["static_address"]
				}
				t.Row(string(obs.Ref.Kind), obs.Ref.Name, addr, obs.Outputs["fqdn"])
			}
			t.Flush()
			return nil
		},
	}
}
