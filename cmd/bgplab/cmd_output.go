package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/provider"
)

func newOutputCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "output",
		Short: "Print one public-address line per VM",
		Long: `Prints one line per generated VM in the form

  <publicIPName>: <ip_address> / <fqdn>

sorted by numeric index. The snapshot's natural iteration order is
unspecified, so sorting here is deliberate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := requireLab()
			if err != nil {
				return err
			}
			store := newStore(lab)
			defer store.Close()

			observed, err := store.LoadSnapshot(context.Background())
			if err != nil {
				return err
			}

			var addrs []*provider.Observed
			for _, obs := range observed {
				if obs.Ref.Kind == graph.KindPublicAddress {
					addrs = append(addrs, obs)
				}
			}
			sort.Slice(addrs, func(i, j int) bool {
				a, _ := strconv.Atoi(addrs[i].Attrs["index_key"])
				b, _ := strconv.Atoi(addrs[j].Attrs["index_key"])
				return a < b
			})

			for _, obs := range addrs {
				fmt.Printf("%s: %s / %s\n",
					obs.Ref.Name, obs.Outputs["ip_address"], obs.Outputs["fqdn"])
			}
			return nil
		},
	}
}
