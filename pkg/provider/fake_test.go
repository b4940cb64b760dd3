package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/util"
)

func TestFakeLifecycle(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	rg := &graph.ResourceGroup{Name: "lab-rg", Location: "westus2"}

	if _, err := f.Get(ctx, rg.Ref()); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Get() before create = %v, want ErrNotFound", err)
	}

	if _, err := f.Create(ctx, rg); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.Create(ctx, rg); !errors.Is(err, util.ErrAlreadyExists) {
		t.Errorf("second Create() = %v, want ErrAlreadyExists", err)
	}

	obs, err := f.Get(ctx, rg.Ref())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if obs.Attrs["location"] != "westus2" {
		t.Errorf("Get() attrs = %v", obs.Attrs)
	}

	if err := f.Delete(ctx, rg.Ref()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.Get(ctx, rg.Ref()); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
}

func TestFakeEnforcesDependencies(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	vnet := &graph.VirtualNetwork{
		Name: "lab-vnet", ResourceGroup: "lab-rg",
		Location: "westus2", AddressSpace: "10.100.0.0/16",
	}
	if _, err := f.Create(ctx, vnet); !errors.Is(err, util.ErrDependencyMissing) {
		t.Errorf("Create() without resource group = %v, want ErrDependencyMissing", err)
	}

	if _, err := f.Create(ctx, &graph.ResourceGroup{Name: "lab-rg", Location: "westus2"}); err != nil {
		t.Fatalf("Create(rg) error = %v", err)
	}
	if _, err := f.Create(ctx, vnet); err != nil {
		t.Fatalf("Create(vnet) after rg error = %v", err)
	}
}

func TestFakeRefusesDeleteInUse(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	must := func(res graph.Resource) {
		t.Helper()
		if _, err := f.Create(ctx, res); err != nil {
			t.Fatalf("Create(%s) error = %v", res.Ref(), err)
		}
	}
	must(&graph.ResourceGroup{Name: "lab-rg", Location: "westus2"})
	must(&graph.VirtualNetwork{Name: "lab-vnet", ResourceGroup: "lab-rg",
		Location: "westus2", AddressSpace: "10.100.0.0/16"})
	must(&graph.SecurityPolicy{Name: "lab-policy", ResourceGroup: "lab-rg", Location: "westus2"})
	must(&graph.Subnet{Name: "lab-subnet01", IndexKey: "01",
		VirtualNetwork: "lab-vnet", SecurityPolicy: "lab-policy", CIDR: "10.100.1.0/24"})

	if err := f.Delete(ctx, graph.Ref{Kind: graph.KindVirtualNetwork, Name: "lab-vnet"}); err == nil {
		t.Error("Delete() removed a network with a live subnet")
	}
	if err := f.Delete(ctx, graph.Ref{Kind: graph.KindSubnet, Name: "lab-subnet01"}); err != nil {
		t.Fatalf("Delete(subnet) error = %v", err)
	}
	if err := f.Delete(ctx, graph.Ref{Kind: graph.KindVirtualNetwork, Name: "lab-vnet"}); err != nil {
		t.Errorf("Delete(vnet) after subnet removed = %v", err)
	}
}

func TestFakePublicAddressOutputs(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	if _, err := f.Create(ctx, &graph.ResourceGroup{Name: "lab-rg", Location: "westus2"}); err != nil {
		t.Fatalf("Create(rg) error = %v", err)
	}
	obs, err := f.Create(ctx, &graph.PublicAddress{
		Name: "lab-pip01", IndexKey: "01", ResourceGroup: "lab-rg",
		Location: "westus2", DNSLabel: "lab-vm1-alice",
	})
	if err != nil {
		t.Fatalf("Create(pip) error = %v", err)
	}
	if obs.Outputs["ip_address"] != "203.0.113.10" {
		t.Errorf("ip_address = %s, want 203.0.113.10", obs.Outputs["ip_address"])
	}
	if want := "lab-vm1-alice.westus2.cloudapp.bgplab.test"; obs.Outputs["fqdn"] != want {
		t.Errorf("fqdn = %s, want %s", obs.Outputs["fqdn"], want)
	}
}

func TestFakeFailOn(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	boom := errors.New("boom")
	f.FailOn("create resource-group/lab-rg", boom)

	if _, err := f.Create(ctx, &graph.ResourceGroup{Name: "lab-rg", Location: "westus2"}); !errors.Is(err, boom) {
		t.Errorf("Create() = %v, want injected error", err)
	}

	calls := f.Calls()
	if len(calls) != 1 || calls[0] != "create resource-group/lab-rg" {
		t.Errorf("Calls() = %v", calls)
	}
}

func TestFakeReturnsCopies(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	if _, err := f.Create(ctx, &graph.ResourceGroup{Name: "lab-rg", Location: "westus2"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	obs, _ := f.Get(ctx, graph.Ref{Kind: graph.KindResourceGroup, Name: "lab-rg"})
	obs.Attrs["location"] = "mutated"

	again, _ := f.Get(ctx, graph.Ref{Kind: graph.KindResourceGroup, Name: "lab-rg"})
	if again.Attrs["location"] != "westus2" {
		t.Error("Get() exposed internal state to mutation")
	}
}
