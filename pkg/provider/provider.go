// Package provider abstracts the cloud API driven by the reconciler.
// One interface, one in-memory fake; per-cloud SDK bindings are out of
// scope for the lab.
package provider

import (
	"context"

	"github.com/bgplab-net/bgplab/pkg/graph"
)

// Observed is the provider's view of one live resource.
type Observed struct {
	Ref   graph.Ref
	Attrs map[string]string
	// Outputs are provider-assigned values the desired graph cannot
	// know up front: "ip_address" and "fqdn" for public addresses,
	// "id" for everything.
	Outputs map[string]string
}

// Provider performs CRUD against live cloud state. Implementations must
// wrap util.ErrNotFound when a Get target does not exist, and must
// honor ctx cancellation on every call.
type Provider interface {
	Get(ctx context.Context, ref graph.Ref) (*Observed, error)
	List(ctx context.Context, kind graph.Kind) ([]*Observed, error)
	Create(ctx context.Context, res graph.Resource) (*Observed, error)
	Update(ctx context.Context, res graph.Resource) (*Observed, error)
	Delete(ctx context.Context, ref graph.Ref) error
}

// Credentials is the explicit evaluation context passed to provider
// constructors. There is deliberately no process-wide singleton holding
// these.
type Credentials struct {
	Endpoint string
	TenantID string
	Token    string
}
