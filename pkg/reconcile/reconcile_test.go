package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/provider"
	"github.com/bgplab-net/bgplab/pkg/topology"
	"github.com/bgplab-net/bgplab/pkg/util"
)

func testGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g, err := topology.Generate(topology.Params{
		Lab:         "testlab",
		NamePrefix:  "testlab",
		IPAddress:   "1.2.3.4",
		SubnetCount: n,
		Alias:       "alice",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return g
}

func TestPlanAgainstEmptyState(t *testing.T) {
	g := testGraph(t, 3)
	cs, err := Plan(context.Background(), provider.NewFake(), g)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	adds, mods, dels := cs.Counts()
	// 3 fixed resources + 4 per index (subnet, pip, nic, vm).
	if adds != 3+4*3 || mods != 0 || dels != 0 {
		t.Errorf("Counts() = %d/%d/%d, want 15/0/0", adds, mods, dels)
	}
}

func TestPlanAfterApplyIsEmpty(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t, 2)
	fake := provider.NewFake()

	cs, err := Plan(ctx, fake, g)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if _, err := New(fake).Apply(ctx, g, cs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	cs2, err := Plan(ctx, fake, g)
	if err != nil {
		t.Fatalf("second Plan() error = %v", err)
	}
	if !cs2.IsEmpty() {
		t.Errorf("plan after apply not empty:\n%s", cs2)
	}
}

func TestPlanDetectsModify(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t, 2)
	fake := provider.NewFake()

	cs, _ := Plan(ctx, fake, g)
	if _, err := New(fake).Apply(ctx, g, cs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Drift: the operator's /24 changes, so the policy rule differs.
	g2 := testGraph(t, 2)
	g2.Policy.Rules[0].SourceCIDR = "9.9.9.0/24"

	cs2, err := Plan(ctx, fake, g2)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	adds, mods, dels := cs2.Counts()
	if adds != 0 || mods != 1 || dels != 0 {
		t.Errorf("Counts() = %d/%d/%d, want 0/1/0\n%s", adds, mods, dels, cs2)
	}
}

func TestPlanDeletesShrunkenLab(t *testing.T) {
	ctx := context.Background()
	fake := provider.NewFake()

	g3 := testGraph(t, 3)
	cs, _ := Plan(ctx, fake, g3)
	if _, err := New(fake).Apply(ctx, g3, cs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Shrinking the count regenerates the whole graph; index 03
	// resources become deletes.
	g2 := testGraph(t, 2)
	cs2, err := Plan(ctx, fake, g2)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	_, _, dels := cs2.Counts()
	if dels != 4 {
		t.Errorf("deletes = %d, want 4 (subnet, pip, nic, vm for index 03)\n%s", dels, cs2)
	}

	// Deletes must list dependents before dependencies.
	var delRefs []graph.Ref
	for _, c := range cs2.Changes {
		if c.Type == ChangeDelete {
			delRefs = append(delRefs, c.Ref)
		}
	}
	if delRefs[0].Kind != graph.KindVM || delRefs[len(delRefs)-1].Kind != graph.KindSubnet {
		t.Errorf("delete order wrong: %v", delRefs)
	}

	if _, err := New(fake).Apply(ctx, g2, cs2); err != nil {
		t.Fatalf("Apply() of shrink plan error = %v", err)
	}
	cs3, _ := Plan(ctx, fake, g2)
	if !cs3.IsEmpty() {
		t.Errorf("plan after shrink apply not empty:\n%s", cs3)
	}
}

func TestApplyRespectsTierOrder(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t, 2)
	fake := provider.NewFake()

	cs, _ := Plan(ctx, fake, g)
	r := New(fake)
	r.Parallel = 1
	if _, err := r.Apply(ctx, g, cs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	pos := make(map[string]int)
	for i, call := range fake.Calls() {
		if strings.HasPrefix(call, "create ") {
			pos[strings.TrimPrefix(call, "create ")] = i
		}
	}

	assertBefore := func(a, b string) {
		t.Helper()
		if pos[a] >= pos[b] {
			t.Errorf("%s created at %d, after %s at %d", a, pos[a], b, pos[b])
		}
	}
	assertBefore("resource-group/testlab-rg", "virtual-network/testlab-vnet")
	assertBefore("virtual-network/testlab-vnet", "subnet/testlab-subnet01")
	assertBefore("security-policy/testlab-policy", "subnet/testlab-subnet01")
	assertBefore("subnet/testlab-subnet02", "nic/testlab-nic02")
	assertBefore("public-address/testlab-pip01", "nic/testlab-nic01")
	assertBefore("nic/testlab-nic01", "vm/testlab-vm01")
}

func TestApplyParallelTiers(t *testing.T) {
	// The fake enforces dependency edges itself, so a parallel apply
	// that violated tier ordering would fail.
	ctx := context.Background()
	g := testGraph(t, 8)
	fake := provider.NewFake()

	cs, _ := Plan(ctx, fake, g)
	r := New(fake)
	r.Parallel = 8
	res, err := r.Apply(ctx, g, cs)
	if err != nil {
		t.Fatalf("parallel Apply() error = %v", err)
	}
	if res.Created != 3+4*8 {
		t.Errorf("Created = %d, want 35", res.Created)
	}
}

func TestApplyRecordsPublicAddressOutputs(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t, 2)
	fake := provider.NewFake()

	cs, _ := Plan(ctx, fake, g)
	res, err := New(fake).Apply(ctx, g, cs)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	found := 0
	for _, obs := range res.Observed {
		if obs.Ref.Kind != graph.KindPublicAddress {
			continue
		}
		found++
		if obs.Outputs["ip_address"] == "" || obs.Outputs["fqdn"] == "" {
			t.Errorf("public address %s missing outputs: %v", obs.Ref.Name, obs.Outputs)
		}
	}
	if found != 2 {
		t.Errorf("observed %d public addresses, want 2", found)
	}
}

func TestApplyStopsOnPermanentError(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t, 2)
	fake := provider.NewFake()
	fake.FailOn("create virtual-network/testlab-vnet", util.NewDependencyError(
		"virtual-network/testlab-vnet", "resource-group", "testlab-rg"))

	cs, _ := Plan(ctx, fake, g)
	res, err := New(fake).Apply(ctx, g, cs)
	if err == nil {
		t.Fatal("Apply() should fail when a tier fails")
	}
	if !errors.Is(err, util.ErrDependencyMissing) {
		t.Errorf("Apply() error = %v, want ErrDependencyMissing", err)
	}
	// The resource group tier completed before the failure.
	if len(res.Observed) == 0 {
		t.Error("Apply() discarded the partial result")
	}
	// No subnet creation may have been attempted after the failed tier.
	for _, call := range fake.Calls() {
		if strings.HasPrefix(call, "create subnet/") {
			t.Errorf("Apply() continued past failed tier: %s", call)
		}
	}
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t, 2)
	fake := provider.NewFake()

	cs, _ := Plan(ctx, fake, g)
	if _, err := New(fake).Apply(ctx, g, cs); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	res, err := New(fake).Destroy(ctx, g)
	if err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if res.Deleted != 11 {
		t.Errorf("Deleted = %d, want 11", res.Deleted)
	}

	cs2, _ := Plan(ctx, fake, g)
	adds, _, _ := cs2.Counts()
	if adds != 11 {
		t.Errorf("plan after destroy has %d adds, want 11", adds)
	}
}

func TestDestroyIdempotent(t *testing.T) {
	ctx := context.Background()
	g := testGraph(t, 2)
	fake := provider.NewFake()

	// Destroying a lab that was never applied is a no-op, not an error.
	res, err := New(fake).Destroy(ctx, g)
	if err != nil {
		t.Fatalf("Destroy() on empty state error = %v", err)
	}
	if res.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0", res.Deleted)
	}
}

func TestChangeSetString(t *testing.T) {
	cs := NewChangeSet("testlab")
	if cs.String() != "No changes" {
		t.Errorf("empty changeset String() = %q", cs.String())
	}

	cs.Add(ChangeAdd, graph.Ref{Kind: graph.KindSubnet, Name: "s1"}, nil, map[string]string{"cidr": "10.100.1.0/24"})
	cs.Add(ChangeModify, graph.Ref{Kind: graph.KindVM, Name: "v1"},
		map[string]string{"size": "a"}, map[string]string{"size": "b"})
	cs.Add(ChangeDelete, graph.Ref{Kind: graph.KindNIC, Name: "n1"}, map[string]string{}, nil)

	out := cs.String()
	for _, want := range []string{"[ADD] subnet/s1", "[MOD] vm/v1", "[DEL] nic/n1"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}

	adds, mods, dels := cs.Counts()
	if adds != 1 || mods != 1 || dels != 1 {
		t.Errorf("Counts() = %d/%d/%d, want 1/1/1", adds, mods, dels)
	}
}
