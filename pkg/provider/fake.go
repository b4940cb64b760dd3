package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/util"
)

// Fake is an in-memory Provider used by tests and dry runs. It enforces
// dependency edges the way a real cloud would (creating a resource
// whose dependency is absent fails) and allocates public addresses from
// the TEST-NET-3 block.
type Fake struct {
	mu        sync.Mutex
	resources map[graph.Ref]*Observed
	calls     []string
	failOn    map[string]error
	nextAddr  int
}

// NewFake returns an empty fake provider.
func NewFake() *Fake {
	return &Fake{
		resources: make(map[graph.Ref]*Observed),
		failOn:    make(map[string]error),
		nextAddr:  10,
	}
}

// FailOn makes the named call ("create <kind>/<name>", "delete ...",
// "get ...") return err.
func (f *Fake) FailOn(call string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[call] = err
}

// Calls returns the calls made so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) record(verb string, ref graph.Ref) error {
	call := verb + " " + ref.String()
	f.calls = append(f.calls, call)
	if err, ok := f.failOn[call]; ok {
		return err
	}
	return nil
}

func (f *Fake) Get(ctx context.Context, ref graph.Ref) (*Observed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get", ref); err != nil {
		return nil, err
	}
	obs, ok := f.resources[ref]
	if !ok {
		return nil, fmt.Errorf("fake: %s: %w", ref, util.ErrNotFound)
	}
	return cloneObserved(obs), nil
}

func (f *Fake) List(ctx context.Context, kind graph.Kind) ([]*Observed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Observed
	for ref, obs := range f.resources {
		if ref.Kind == kind {
			out = append(out, cloneObserved(obs))
		}
	}
	return out, nil
}

func (f *Fake) Create(ctx context.Context, res graph.Resource) (*Observed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	ref := res.Ref()
	if err := f.record("create", ref); err != nil {
		return nil, err
	}
	if _, exists := f.resources[ref]; exists {
		return nil, fmt.Errorf("fake: %s: %w", ref, util.ErrAlreadyExists)
	}
	for _, dep := range res.DependsOn() {
		if _, ok := f.resources[dep]; !ok {
			return nil, util.NewDependencyError(ref.String(), string(dep.Kind), dep.Name)
		}
	}

	obs := &Observed{
		Ref:     ref,
		Attrs:   res.Attrs(),
		Outputs: map[string]string{"id": "/fake/" + ref.String()},
	}
	if ref.Kind == graph.KindPublicAddress {
		obs.Outputs["ip_address"] = fmt.Sprintf("203.0.113.%d", f.nextAddr)
		f.nextAddr++
		label := obs.Attrs["dns_label"]
		location := obs.Attrs["location"]
		obs.Outputs["fqdn"] = fmt.Sprintf("%s.%s.cloudapp.bgplab.test", label, location)
	}

	f.resources[ref] = obs
	return cloneObserved(obs), nil
}

func (f *Fake) Update(ctx context.Context, res graph.Resource) (*Observed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	ref := res.Ref()
	if err := f.record("update", ref); err != nil {
		return nil, err
	}
	obs, ok := f.resources[ref]
	if !ok {
		return nil, fmt.Errorf("fake: %s: %w", ref, util.ErrNotFound)
	}
	obs.Attrs = res.Attrs()
	return cloneObserved(obs), nil
}

func (f *Fake) Delete(ctx context.Context, ref graph.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("delete", ref); err != nil {
		return err
	}
	if _, ok := f.resources[ref]; !ok {
		return fmt.Errorf("fake: %s: %w", ref, util.ErrNotFound)
	}
	// A real cloud refuses to delete a resource others still depend on.
	for other, obs := range f.resources {
		if other == ref {
			continue
		}
		for _, dep := range dependsOf(obs) {
			if dep == ref.String() {
				return fmt.Errorf("fake: %s in use by %s", ref, other)
			}
		}
	}
	delete(f.resources, ref)
	return nil
}

// dependsOf reconstructs dependency refs from stored attrs. Only the
// attributes that name other resources are considered.
func dependsOf(obs *Observed) []string {
	var deps []string
	add := func(kind graph.Kind, name string) {
		if name != "" {
			deps = append(deps, graph.Ref{Kind: kind, Name: name}.String())
		}
	}
	switch obs.Ref.Kind {
	case graph.KindSubnet:
		add(graph.KindVirtualNetwork, obs.Attrs["network"])
		add(graph.KindSecurityPolicy, obs.Attrs["policy"])
	case graph.KindNIC:
		add(graph.KindSubnet, obs.Attrs["subnet"])
		add(graph.KindPublicAddress, obs.Attrs["public_address"])
	case graph.KindVM:
		add(graph.KindNIC, obs.Attrs["nic"])
	}
	return deps
}

func cloneObserved(obs *Observed) *Observed {
	out := &Observed{
		Ref:     obs.Ref,
		Attrs:   make(map[string]string, len(obs.Attrs)),
		Outputs: make(map[string]string, len(obs.Outputs)),
	}
	for k, v := range obs.Attrs {
		out.Attrs[k] = v
	}
	for k, v := range obs.Outputs {
		out.Outputs[k] = v
	}
	return out
}
