package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/provider"
	"github.com/bgplab-net/bgplab/pkg/util"
)

// kindOrder lists resource kinds in apply order. Deletes sweep it in
// reverse so dependents go before their dependencies.
var kindOrder = []graph.Kind{
	graph.KindResourceGroup,
	graph.KindVirtualNetwork,
	graph.KindSecurityPolicy,
	graph.KindSubnet,
	graph.KindPublicAddress,
	graph.KindNIC,
	graph.KindVM,
}

// Plan diffs the desired graph against live provider state and returns
// the changeset that would converge them. Live resources carrying the
// lab's name prefix but absent from the desired graph are planned for
// deletion: regeneration always replaces the whole graph.
func Plan(ctx context.Context, p provider.Provider, g *graph.Graph) (*ChangeSet, error) {
	cs := NewChangeSet(g.Lab)

	desired := make(map[graph.Ref]bool)
	for _, res := range g.Resources() {
		ref := res.Ref()
		desired[ref] = true

		obs, err := p.Get(ctx, ref)
		switch {
		case errors.Is(err, util.ErrNotFound):
			cs.Add(ChangeAdd, ref, nil, res.Attrs())
		case err != nil:
			return nil, fmt.Errorf("reconcile: get %s: %w", ref, err)
		case !attrsEqual(obs.Attrs, res.Attrs()):
			cs.Add(ChangeModify, ref, obs.Attrs, res.Attrs())
		}
	}

	// Delete sweep, dependents first.
	for i := len(kindOrder) - 1; i >= 0; i-- {
		kind := kindOrder[i]
		live, err := p.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("reconcile: list %s: %w", kind, err)
		}
		sort.Slice(live, func(a, b int) bool { return live[a].Ref.Name < live[b].Ref.Name })
		for _, obs := range live {
			if !strings.HasPrefix(obs.Ref.Name, g.Prefix) {
				continue
			}
			if !desired[obs.Ref] {
				cs.Add(ChangeDelete, obs.Ref, obs.Attrs, nil)
			}
		}
	}

	if len(g.Policy.Rules) > 0 {
		// The allow rule admits the operator's whole /24, not just the
		// single address. Intentional lab convenience; surfaced here
		// rather than silently tightened.
		cs.Notes = append(cs.Notes, fmt.Sprintf(
			"security policy admits the entire %s source block", g.Policy.Rules[0].SourceCIDR))
	}

	return cs, nil
}
