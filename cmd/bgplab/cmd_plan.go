package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgplab-net/bgplab/pkg/cli"
	"github.com/bgplab-net/bgplab/pkg/reconcile"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Diff the desired graph against live state",
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := requireLab()
			if err != nil {
				return err
			}
			g, err := buildGraph(lab)
			if err != nil {
				return err
			}

			cs, err := reconcile.Plan(context.Background(), newProvider(lab), g)
			if err != nil {
				return err
			}

			printPlan(cs)
			return nil
		},
	}
}

func printPlan(cs *reconcile.ChangeSet) {
	if cs.IsEmpty() {
		fmt.Printf("%s No changes, lab %s is up to date\n", green("✓"), cs.Lab)
		return
	}

	fmt.Printf("Plan for lab %s (run %s):\n\n", cs.Lab, cs.RunID[:8])
	for _, c := range cs.Changes {
		tag := ""
		switch c.Type {
		case reconcile.ChangeAdd:
			tag = "[ADD]"
		case reconcile.ChangeModify:
			tag = "[MOD]"
		case reconcile.ChangeDelete:
			tag = "[DEL]"
		}
		fmt.Printf("  %s %s\n", cli.ChangeTag(tag), c.Ref)
	}

	adds, mods, dels := cs.Counts()
	fmt.Printf("\n%d to add, %d to change, %d to destroy\n", adds, mods, dels)

	for _, note := range cs.Notes {
		fmt.Printf("%s %s\n", yellow("note:"), note)
	}
}
