// Package topology derives the full desired-state resource graph for a
// BGP lab from a subnet count and the operator's IP address. Derivation
// is pure and all-or-nothing: validation failures abort before any
// record is produced, and identical inputs always yield an identical
// graph.
package topology

// Derivation bounds and static lab constants.
const (
	// MinSubnets and MaxSubnets bound the subnet/VM count. The upper
	// bound keeps index keys at two digits and the third octet of the
	// hub address plan in range.
	MinSubnets = 2
	MaxSubnets = 99

	// HubAddressSpace is the hub virtual network block all lab subnets
	// are carved from.
	HubAddressSpace = "10.100.0.0/16"

	// UnderlayASBase is the base for per-VM private AS numbers:
	// VM at index i speaks BGP as UnderlayASBase+i.
	UnderlayASBase = 65000

	DefaultLocation  = "westus2"
	DefaultPrefix    = "bgplab"
	DefaultVMSize    = "standard-1v"
	DefaultImage     = "ubuntu-22.04-lts"
	DefaultAdminUser = "labadmin"
)

// Params is the configuration surface consumed by Generate. Only
// IPAddress and SubnetCount are required; everything else defaults.
type Params struct {
	Lab         string // lab name, used as state-store namespace
	Location    string // target region
	IPAddress   string // operator IPv4 address, masked to /24 for the allow rule
	SubnetCount int    // N: count of subnets/VMs, in [MinSubnets, MaxSubnets]
	NamePrefix  string // prefix for every generated resource name
	Alias       string // operator mail alias, embedded in public DNS labels
	VMSize      string
	Image       string
	AdminUser   string
}

// withDefaults returns a copy of p with defaulted optional fields.
func (p Params) withDefaults() Params {
	if p.Lab == "" {
		p.Lab = DefaultPrefix
	}
	if p.Location == "" {
		p.Location = DefaultLocation
	}
	if p.NamePrefix == "" {
		p.NamePrefix = DefaultPrefix
	}
	if p.VMSize == "" {
		p.VMSize = DefaultVMSize
	}
	if p.Image == "" {
		p.Image = DefaultImage
	}
	if p.AdminUser == "" {
		p.AdminUser = DefaultAdminUser
	}
	return p
}
