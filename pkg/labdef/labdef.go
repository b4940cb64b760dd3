// Package labdef loads and validates lab definition YAML files, the
// configuration surface for topology derivation.
package labdef

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bgplab-net/bgplab/pkg/topology"
	"github.com/bgplab-net/bgplab/pkg/util"
)

// Lab is the top-level structure of a lab definition file.
type Lab struct {
	Name        string     `yaml:"name"`
	Location    string     `yaml:"location,omitempty"`
	IPAddress   string     `yaml:"ip_address"`
	SubnetCount int        `yaml:"subnet_count"`
	NamePrefix  string     `yaml:"name_prefix,omitempty"`
	Alias       string     `yaml:"alias,omitempty"`
	VM          VMDefaults `yaml:"vm,omitempty"`
	State       State      `yaml:"state,omitempty"`
	Provider    Provider   `yaml:"provider,omitempty"`
}

// VMDefaults overrides the built-in VM sizing and image constants.
type VMDefaults struct {
	Size      string `yaml:"size,omitempty"`
	Image     string `yaml:"image,omitempty"`
	AdminUser string `yaml:"admin_user,omitempty"`
}

// State configures the applied-state store.
type State struct {
	RedisAddr string `yaml:"redis_addr,omitempty"`
	RedisDB   int    `yaml:"redis_db,omitempty"`
}

// Provider configures the cloud endpoint.
type Provider struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	TenantID string `yaml:"tenant_id,omitempty"`
}

// Load parses a lab definition YAML file and validates required fields.
func Load(path string) (*Lab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lab definition: %w", err)
	}

	var lab Lab
	if err := yaml.Unmarshal(data, &lab); err != nil {
		return nil, fmt.Errorf("parsing lab definition YAML: %w", err)
	}

	if err := validateLab(&lab); err != nil {
		return nil, fmt.Errorf("validating lab definition: %w", err)
	}

	return &lab, nil
}

func validateLab(lab *Lab) error {
	if lab.Name == "" {
		return fmt.Errorf("lab name is required")
	}
	if lab.IPAddress == "" {
		return fmt.Errorf("ip_address is required")
	}
	if !util.IsValidIPv4(lab.IPAddress) {
		return util.NewFormatError("ip_address", lab.IPAddress, "IPv4 address")
	}
	if lab.SubnetCount < topology.MinSubnets || lab.SubnetCount > topology.MaxSubnets {
		return util.NewRangeError("subnet_count", lab.SubnetCount,
			topology.MinSubnets, topology.MaxSubnets)
	}
	return nil
}

// Params maps the lab definition onto topology generation parameters.
func (l *Lab) Params() topology.Params {
	return topology.Params{
		Lab:         l.Name,
		Location:    l.Location,
		IPAddress:   l.IPAddress,
		SubnetCount: l.SubnetCount,
		NamePrefix:  l.NamePrefix,
		Alias:       l.Alias,
		VMSize:      l.VM.Size,
		Image:       l.VM.Image,
		AdminUser:   l.VM.AdminUser,
	}
}

// RedisAddr returns the configured state store address or the default.
func (l *Lab) RedisAddr() string {
	if l.State.RedisAddr != "" {
		return l.State.RedisAddr
	}
	return "127.0.0.1:6379"
}
