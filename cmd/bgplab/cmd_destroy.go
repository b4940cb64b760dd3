package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgplab-net/bgplab/pkg/reconcile"
)

func newDestroyCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Tear down every lab resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := requireLab()
			if err != nil {
				return err
			}
			g, err := buildGraph(lab)
			if err != nil {
				return err
			}

			if !yes && !confirm(fmt.Sprintf("Destroy lab %s (%d resources)?", g.Lab, len(g.Resources()))) {
				return fmt.Errorf("destroy cancelled")
			}

			ctx := context.Background()
			res, destroyErr := reconcile.New(newProvider(lab)).Destroy(ctx, g)

			store := newStore(lab)
			defer store.Close()
			if err := store.Clear(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}

			if destroyErr != nil {
				return destroyErr
			}
			fmt.Printf("%s Destroyed lab %s (%d resources)\n", green("✓"), g.Lab, res.Deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}
