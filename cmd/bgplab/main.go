// BGPLab — hub-and-spoke cloud topology provisioning for BGP labs
//
// bgplab derives a fixed lab topology (hub virtual network, N numbered
// subnets, shared security policy, N single-NIC VMs with public
// addresses) from a lab definition file and reconciles it against a
// cloud provider.
//
// Usage:
//
//	bgplab generate -f lab.yaml      Show the derived resource graph
//	bgplab plan -f lab.yaml          Diff desired graph against live state
//	bgplab apply -f lab.yaml         Apply the plan
//	bgplab destroy -f lab.yaml       Tear the lab down
//	bgplab status                    Show applied resources
//	bgplab output                    Print per-VM public address lines
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgplab-net/bgplab/pkg/cli"
	"github.com/bgplab-net/bgplab/pkg/directory"
	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/labdef"
	"github.com/bgplab-net/bgplab/pkg/provider"
	"github.com/bgplab-net/bgplab/pkg/settings"
	"github.com/bgplab-net/bgplab/pkg/state"
	"github.com/bgplab-net/bgplab/pkg/topology"
	"github.com/bgplab-net/bgplab/pkg/util"
	"github.com/bgplab-net/bgplab/pkg/version"
)

var (
	labFile   string
	redisAddr string
	verbose   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "bgplab",
	Short:             "Cloud topology provisioning for BGP labs",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `BGPLab derives a hub-and-spoke lab topology from a lab definition
file and reconciles it against a cloud provider.

It reads lab.yaml (subnet count, operator IP, region) and manages the
resource group, virtual network, numbered subnets, security policy,
NICs, public addresses, and VMs that make up the lab.

  bgplab apply -f lab.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&labFile, "file", "f", "", "lab definition file")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "state store address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newPlanCmd(),
		newApplyCmd(),
		newDestroyCmd(),
		newStatusCmd(),
		newOutputCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
}

// requireLab resolves the lab definition from: -f flag > BGPLAB_FILE
// env > settings > error.
func requireLab() (*labdef.Lab, error) {
	path := labFile
	if path == "" {
		path = os.Getenv("BGPLAB_FILE")
	}
	if path == "" {
		if s, err := settings.Load(); err == nil && s.DefaultLab != "" {
			path = s.DefaultLab
		}
	}
	if path == "" {
		return nil, fmt.Errorf("lab definition required: use -f <file>, set BGPLAB_FILE, or run 'bgplab settings set lab <file>'")
	}
	return labdef.Load(path)
}

// buildGraph derives the desired resource graph for a lab, resolving
// the operator alias through the standard directory chain.
func buildGraph(lab *labdef.Lab) (*graph.Graph, error) {
	alias, err := directory.Default(lab.Alias).Alias()
	if err != nil {
		return nil, err
	}
	params := lab.Params()
	params.Alias = alias
	return topology.Generate(params)
}

// newProvider returns the provider for a lab. Until a cloud binding is
// configured this is the in-memory fake, which makes plan/apply a
// dry run against empty live state.
func newProvider(lab *labdef.Lab) provider.Provider {
	if lab.Provider.Endpoint != "" {
		util.Warnf("provider endpoint %s not bound, using in-memory provider", lab.Provider.Endpoint)
	}
	return provider.NewFake()
}

// newStore connects the applied-state store for a lab, honoring the
// --redis override.
func newStore(lab *labdef.Lab) *state.Store {
	addr := redisAddr
	if addr == "" {
		if s, err := settings.Load(); err == nil && s.RedisAddr != "" {
			addr = s.RedisAddr
		}
	}
	if addr == "" {
		addr = lab.RedisAddr()
	}
	return state.New(addr, lab.State.RedisDB, lab.Name)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Println("bgplab dev build (use 'make build' for version info)")
			} else {
				fmt.Printf("bgplab %s (%s)\n", version.Version, version.GitCommit)
			}
		},
	}
}

// Color helpers — delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
