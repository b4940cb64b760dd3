package topology

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"

	"github.com/bgplab-net/bgplab/pkg/bootcfg"
	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/util"
)

// IndexKey returns the zero-padded two-digit identity suffix for index i.
// Keys are unique, lexicographically sortable, and stable across
// re-evaluation for the same count.
func IndexKey(i int) string {
	return fmt.Sprintf("%02d", i)
}

// hostOctet returns the last octet of the static host address for index
// i. The address plan is "10.100.<i>.<i>0", i.e. octet i*10; for i >= 26
// that overflows an octet, so the offset wraps back into the /24 host
// range while staying a multiple of ten.
func hostOctet(i int) int {
	return (i*10-10)%250 + 10
}

// AllowedSourceCIDR derives the security policy's single allow-list
// entry from the operator's IPv4 address by masking it to its /24
// network: "1.2.3.4" -> "1.2.3.0/24".
func AllowedSourceCIDR(ipStr string) (string, error) {
	if !util.IsValidIPv4(ipStr) {
		return "", util.NewFormatError("IPAddress", ipStr, "IPv4 address")
	}
	return util.Network24(ipStr)
}

// Generate derives the complete resource graph for a lab of
// p.SubnetCount subnets/VMs. It validates inputs first and produces
// either the whole graph or nothing.
func Generate(p Params) (*graph.Graph, error) {
	p = p.withDefaults()

	if p.SubnetCount < MinSubnets || p.SubnetCount > MaxSubnets {
		return nil, util.NewRangeError("subnetCount", p.SubnetCount, MinSubnets, MaxSubnets)
	}
	allowedSource, err := AllowedSourceCIDR(p.IPAddress)
	if err != nil {
		return nil, err
	}

	_, hubNet, err := net.ParseCIDR(HubAddressSpace)
	if err != nil {
		return nil, fmt.Errorf("topology: parse hub address space: %w", err)
	}

	alias := util.SanitizeDNSLabel(p.Alias)
	if alias == "" {
		alias = "lab"
	}
	prefix := p.NamePrefix

	g := &graph.Graph{
		Lab:    p.Lab,
		Prefix: prefix,
		ResourceGroup: &graph.ResourceGroup{
			Name:     prefix + "-rg",
			Location: p.Location,
		},
		Network: &graph.VirtualNetwork{
			Name:          prefix + "-vnet",
			ResourceGroup: prefix + "-rg",
			Location:      p.Location,
			AddressSpace:  HubAddressSpace,
		},
		Policy: &graph.SecurityPolicy{
			Name:          prefix + "-policy",
			ResourceGroup: prefix + "-rg",
			Location:      p.Location,
			Rules: []graph.SecurityRule{
				{
					Name:       "allow-ssh",
					Priority:   100,
					Direction:  "inbound",
					Access:     "allow",
					Protocol:   "tcp",
					SourceCIDR: allowedSource,
					DestPorts:  "22",
				},
				{
					Name:       "allow-bgp",
					Priority:   110,
					Direction:  "inbound",
					Access:     "allow",
					Protocol:   "tcp",
					SourceCIDR: allowedSource,
					DestPorts:  "179",
				},
			},
		},
		Subnets:         make(map[string]*graph.Subnet, p.SubnetCount),
		PublicAddresses: make(map[string]*graph.PublicAddress, p.SubnetCount),
		NICs:            make(map[string]*graph.NIC, p.SubnetCount),
		VMs:             make(map[string]*graph.VM, p.SubnetCount),
	}

	for i := 1; i <= p.SubnetCount; i++ {
		key := IndexKey(i)

		subnetNet, err := cidr.Subnet(hubNet, 8, i)
		if err != nil {
			return nil, fmt.Errorf("topology: carve subnet %s: %w", key, err)
		}
		hostIP, err := cidr.Host(subnetNet, hostOctet(i))
		if err != nil {
			return nil, fmt.Errorf("topology: derive host address %s: %w", key, err)
		}

		hostName := fmt.Sprintf("%s-vm%s", prefix, key)
		dnsLabel := util.TruncateDNSLabel(util.SanitizeDNSLabel(
			fmt.Sprintf("%s-vm%d-%s", prefix, i, alias)))

		g.Subnets[key] = &graph.Subnet{
			Name:           prefix + "-subnet" + key,
			IndexKey:       key,
			VirtualNetwork: g.Network.Name,
			SecurityPolicy: g.Policy.Name,
			CIDR:           subnetNet.String(),
		}
		g.PublicAddresses[key] = &graph.PublicAddress{
			Name:          prefix + "-pip" + key,
			IndexKey:      key,
			ResourceGroup: g.ResourceGroup.Name,
			Location:      p.Location,
			DNSLabel:      dnsLabel,
		}
		g.NICs[key] = &graph.NIC{
			Name:          prefix + "-nic" + key,
			IndexKey:      key,
			Subnet:        g.Subnets[key].Name,
			PublicAddress: g.PublicAddresses[key].Name,
			StaticAddress: hostIP.String(),
		}
		g.VMs[key] = &graph.VM{
			Name:      hostName,
			IndexKey:  key,
			NIC:       g.NICs[key].Name,
			Size:      p.VMSize,
			Image:     p.Image,
			AdminUser: p.AdminUser,
			HostName:  hostName,
			BootConfig: bootcfg.Render(bootcfg.VMBoot{
				HostName:      hostName,
				StaticAddress: hostIP.String(),
				SubnetCIDR:    subnetNet.String(),
				ASN:           UnderlayASBase + i,
			}),
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
