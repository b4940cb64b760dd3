package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgplab-net/bgplab/pkg/cli"
)

func newGenerateCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Derive and display the lab's resource graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := requireLab()
			if err != nil {
				return err
			}
			g, err := buildGraph(lab)
			if err != nil {
				return err
			}

			if asJSON {
				type entry struct {
					Kind  string            `json:"kind"`
					Name  string            `json:"name"`
					Attrs map[string]string `json:"attrs"`
				}
				var entries []entry
				for _, r := range g.Resources() {
					entries = append(entries, entry{
						Kind:  string(r.Ref().Kind),
						Name:  r.Ref().Name,
						Attrs: r.Attrs(),
					})
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			fmt.Printf("Lab %s: %d subnets in %s\n\n", g.Lab, len(g.Subnets), g.Network.AddressSpace)

			t := cli.NewTable("KIND", "NAME", "DETAIL")
			for _, r := range g.Resources() {
				ref := r.Ref()
				t.Row(string(ref.Kind), ref.Name, resourceDetail(r.Attrs()))
			}
			t.Flush()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the graph as JSON")
	return cmd
}

// resourceDetail picks the most informative attribute for table display.
func resourceDetail(attrs map[string]string) string {
	for _, key := range []string{"cidr", "static_address", "dns_label", "address_space", "size", "location"} {
		if v, ok := attrs[key]; ok {
			return v
		}
	}
	return ""
}
