// Package graph defines the desired-state resource model for a BGP lab:
// one resource group, one hub virtual network, N numbered subnets, a
// shared security policy, and N single-NIC VMs with public addresses.
// A graph is derived whole by pkg/topology and never mutated piecemeal;
// regeneration always replaces it.
package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/bgplab-net/bgplab/pkg/util"
)

// Kind identifies a resource type in the graph.
type Kind string

const (
	KindResourceGroup  Kind = "resource-group"
	KindVirtualNetwork Kind = "virtual-network"
	KindSubnet         Kind = "subnet"
	KindSecurityPolicy Kind = "security-policy"
	KindPublicAddress  Kind = "public-address"
	KindNIC            Kind = "nic"
	KindVM             Kind = "vm"
)

// Ref identifies one resource by kind and name.
type Ref struct {
	Kind Kind
	Name string
}

func (r Ref) String() string {
	return string(r.Kind) + "/" + r.Name
}

// Resource is one desired-state record in the graph.
//
// Attrs returns the flattened field set used for diffing against live
// state and for state-store persistence. Attribute values are strings;
// the cloud side is stringly typed anyway and it keeps the diff trivial.
type Resource interface {
	Ref() Ref
	DependsOn() []Ref
	Attrs() map[string]string
}

// ResourceGroup is the container for every other resource.
type ResourceGroup struct {
	Name     string
	Location string
}

func (r *ResourceGroup) Ref() Ref         { return Ref{KindResourceGroup, r.Name} }
func (r *ResourceGroup) DependsOn() []Ref { return nil }
func (r *ResourceGroup) Attrs() map[string]string {
	return map[string]string{"location": r.Location}
}

// VirtualNetwork is the hub network holding all lab subnets.
type VirtualNetwork struct {
	Name          string
	ResourceGroup string
	Location      string
	AddressSpace  string // hub CIDR, e.g. 10.100.0.0/16
}

func (v *VirtualNetwork) Ref() Ref { return Ref{KindVirtualNetwork, v.Name} }
func (v *VirtualNetwork) DependsOn() []Ref {
	return []Ref{{KindResourceGroup, v.ResourceGroup}}
}
func (v *VirtualNetwork) Attrs() map[string]string {
	return map[string]string{
		"location":      v.Location,
		"address_space": v.AddressSpace,
	}
}

// SecurityRule is one allow/deny entry in the shared policy.
type SecurityRule struct {
	Name       string
	Priority   int
	Direction  string // "inbound" or "outbound"
	Access     string // "allow" or "deny"
	Protocol   string // "tcp", "udp", or "*"
	SourceCIDR string
	DestPorts  string // e.g. "22,179" or "*"
}

// SecurityPolicy is the single policy shared by all lab subnets.
type SecurityPolicy struct {
	Name          string
	ResourceGroup string
	Location      string
	Rules         []SecurityRule
}

func (p *SecurityPolicy) Ref() Ref { return Ref{KindSecurityPolicy, p.Name} }
func (p *SecurityPolicy) DependsOn() []Ref {
	return []Ref{{KindResourceGroup, p.ResourceGroup}}
}
func (p *SecurityPolicy) Attrs() map[string]string {
	attrs := map[string]string{"location": p.Location}
	for _, r := range p.Rules {
		prefix := "rule." + r.Name + "."
		attrs[prefix+"priority"] = strconv.Itoa(r.Priority)
		attrs[prefix+"direction"] = r.Direction
		attrs[prefix+"access"] = r.Access
		attrs[prefix+"protocol"] = r.Protocol
		attrs[prefix+"source"] = r.SourceCIDR
		attrs[prefix+"ports"] = r.DestPorts
	}
	return attrs
}

// Subnet is one numbered /24 inside the hub network, associated with
// the shared security policy.
type Subnet struct {
	Name           string
	IndexKey       string
	VirtualNetwork string
	SecurityPolicy string
	CIDR           string
}

func (s *Subnet) Ref() Ref { return Ref{KindSubnet, s.Name} }
func (s *Subnet) DependsOn() []Ref {
	return []Ref{
		{KindVirtualNetwork, s.VirtualNetwork},
		{KindSecurityPolicy, s.SecurityPolicy},
	}
}
func (s *Subnet) Attrs() map[string]string {
	return map[string]string{
		"index_key": s.IndexKey,
		"network":   s.VirtualNetwork,
		"policy":    s.SecurityPolicy,
		"cidr":      s.CIDR,
	}
}

// PublicAddress is a dynamically allocated public IP with a globally
// unique DNS label. The allocated address and FQDN are observed state,
// reported by the provider after creation.
type PublicAddress struct {
	Name          string
	IndexKey      string
	ResourceGroup string
	Location      string
	DNSLabel      string
}

func (p *PublicAddress) Ref() Ref { return Ref{KindPublicAddress, p.Name} }
func (p *PublicAddress) DependsOn() []Ref {
	return []Ref{{KindResourceGroup, p.ResourceGroup}}
}
func (p *PublicAddress) Attrs() map[string]string {
	return map[string]string{
		"index_key": p.IndexKey,
		"location":  p.Location,
		"dns_label": p.DNSLabel,
	}
}

// NIC is a single network interface with a static private address
// inside its subnet and an attached public address.
type NIC struct {
	Name          string
	IndexKey      string
	Subnet        string
	PublicAddress string
	StaticAddress string
}

func (n *NIC) Ref() Ref { return Ref{KindNIC, n.Name} }
func (n *NIC) DependsOn() []Ref {
	return []Ref{
		{KindSubnet, n.Subnet},
		{KindPublicAddress, n.PublicAddress},
	}
}
func (n *NIC) Attrs() map[string]string {
	return map[string]string{
		"index_key":      n.IndexKey,
		"subnet":         n.Subnet,
		"public_address": n.PublicAddress,
		"static_address": n.StaticAddress,
	}
}

// VM is one single-NIC virtual machine. BootConfig is the opaque
// boot-time blob rendered by pkg/bootcfg.
type VM struct {
	Name       string
	IndexKey   string
	NIC        string
	Size       string
	Image      string
	AdminUser  string
	HostName   string
	BootConfig string
}

func (v *VM) Ref() Ref { return Ref{KindVM, v.Name} }
func (v *VM) DependsOn() []Ref {
	return []Ref{{KindNIC, v.NIC}}
}
func (v *VM) Attrs() map[string]string {
	return map[string]string{
		"index_key":   v.IndexKey,
		"nic":         v.NIC,
		"size":        v.Size,
		"image":       v.Image,
		"admin_user":  v.AdminUser,
		"host_name":   v.HostName,
		"boot_config": v.BootConfig,
	}
}

// Graph is the full desired-state set for one lab. Per-index resources
// are keyed by index key; iteration order of the maps is unspecified,
// so anything user-visible must sort via IndexKeys or Resources.
type Graph struct {
	Lab             string
	Prefix          string
	ResourceGroup   *ResourceGroup
	Network         *VirtualNetwork
	Policy          *SecurityPolicy
	Subnets         map[string]*Subnet
	PublicAddresses map[string]*PublicAddress
	NICs            map[string]*NIC
	VMs             map[string]*VM
}

// IndexKeys returns the graph's index keys in ascending numeric order.
func (g *Graph) IndexKeys() []string {
	keys := lo.Keys(g.Subnets)
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimLeft(keys[i], "0"))
		b, _ := strconv.Atoi(strings.TrimLeft(keys[j], "0"))
		return a < b
	})
	return keys
}

// Tiers returns the graph's resources grouped by dependency tier.
// Resources within a tier share no dependency edges and may be
// reconciled in parallel; tiers must be applied in order (and
// destroyed in reverse).
func (g *Graph) Tiers() [][]Resource {
	keys := g.IndexKeys()

	tier := func(pick func(key string) Resource) []Resource {
		out := make([]Resource, 0, len(keys))
		for _, k := range keys {
			out = append(out, pick(k))
		}
		return out
	}

	return [][]Resource{
		{g.ResourceGroup},
		{g.Network, g.Policy},
		tier(func(k string) Resource { return g.Subnets[k] }),
		tier(func(k string) Resource { return g.PublicAddresses[k] }),
		tier(func(k string) Resource { return g.NICs[k] }),
		tier(func(k string) Resource { return g.VMs[k] }),
	}
}

// Resources returns every resource in deterministic apply order.
func (g *Graph) Resources() []Resource {
	return lo.Flatten(g.Tiers())
}

// Lookup finds a resource by ref.
func (g *Graph) Lookup(ref Ref) (Resource, bool) {
	for _, r := range g.Resources() {
		if r.Ref() == ref {
			return r, true
		}
	}
	return nil, false
}

// Validate checks that every dependency edge resolves to a resource in
// the graph and that each NIC's static address lies inside its subnet.
func (g *Graph) Validate() error {
	refs := make(map[Ref]bool)
	for _, r := range g.Resources() {
		if r == nil {
			return fmt.Errorf("graph: incomplete resource set for lab %s", g.Lab)
		}
		if refs[r.Ref()] {
			return fmt.Errorf("graph: duplicate resource %s", r.Ref())
		}
		refs[r.Ref()] = true
	}

	for _, r := range g.Resources() {
		for _, dep := range r.DependsOn() {
			if !refs[dep] {
				return util.NewDependencyError(r.Ref().String(), string(dep.Kind), dep.Name)
			}
		}
	}

	for key, nic := range g.NICs {
		subnet, ok := g.Subnets[key]
		if !ok {
			return util.NewDependencyError(nic.Ref().String(), string(KindSubnet), nic.Subnet)
		}
		if !util.CIDRContains(subnet.CIDR, nic.StaticAddress) {
			return fmt.Errorf("graph: nic %s address %s outside subnet %s (%s)",
				nic.Name, nic.StaticAddress, subnet.Name, subnet.CIDR)
		}
	}

	return nil
}
