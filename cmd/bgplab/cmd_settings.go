package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgplab-net/bgplab/pkg/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent CLI settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := settings.Load()
				if err != nil {
					return err
				}
				fmt.Printf("lab:      %s\n", orUnset(s.DefaultLab))
				fmt.Printf("redis:    %s\n", orUnset(s.RedisAddr))
				fmt.Printf("endpoint: %s\n", orUnset(s.ProviderEndpoint))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a setting (lab, redis, endpoint)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := settings.Load()
				if err != nil {
					return err
				}
				switch args[0] {
				case "lab":
					s.DefaultLab = args[1]
				case "redis":
					s.RedisAddr = args[1]
				case "endpoint":
					s.ProviderEndpoint = args[1]
				default:
					return fmt.Errorf("unknown setting %q (lab, redis, endpoint)", args[0])
				}
				return s.Save()
			},
		},
	)

	return cmd
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
