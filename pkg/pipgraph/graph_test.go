package pipgraph

import "testing"

func buildPip(t *testing.T, executable string, inputs, outputs []FileDependency) *Pip {
	t.Helper()
	p := &Pip{Executable: executable, Inputs: inputs, Outputs: outputs}
	p.Id = ComputePipId(p)
	return p
}

func TestPipGraphBuilderLinearChain(t *testing.T) {
	mounts := []Mount{{Name: "src", ResolvedPath: "/tmp/src", Access: MountAccessReadable}}
	builder := NewPipGraphBuilder(mounts)

	compile := buildPip(t, "compile", []FileDependency{{Mount: "src", Path: "a.c"}}, []FileDependency{{Mount: "src", Path: "a.o"}})
	link := buildPip(t, "link", []FileDependency{{Mount: "src", Path: "a.o"}}, []FileDependency{{Mount: "src", Path: "a.out"}})

	if err := builder.AddPip(compile); err != nil {
		t.Fatalf("AddPip compile: %v", err)
	}
	if err := builder.AddPip(link); err != nil {
		t.Fatalf("AddPip link: %v", err)
	}
	if err := builder.AddDependency(compile.Id, link.Id); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	graph, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if graph.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", graph.Len())
	}
	if got := graph.Dependents(compile.Id); len(got) != 1 || got[0] != link.Id {
		t.Fatalf("Dependents(compile) = %v, want [%v]", got, link.Id)
	}
	if got := graph.Dependents(link.Id); len(got) != 0 {
		t.Fatalf("Dependents(link) = %v, want empty", got)
	}
	if _, ok := graph.Lookup(compile.Id); !ok {
		t.Fatal("Lookup(compile) = false, want true")
	}
	if _, ok := graph.Lookup(PipId("nonexistent")); ok {
		t.Fatal("Lookup(nonexistent) = true, want false")
	}
}

func TestPipGraphBuilderRejectsDuplicatePipId(t *testing.T) {
	builder := NewPipGraphBuilder(nil)
	p := buildPip(t, "compile", nil, []FileDependency{{Mount: "src", Path: "a.o"}})
	if err := builder.AddPip(p); err != nil {
		t.Fatalf("AddPip: %v", err)
	}
	if err := builder.AddPip(p); err == nil {
		t.Fatal("AddPip duplicate: expected error, got nil")
	}
}

func TestPipGraphBuilderRejectsUnknownDependencyEndpoints(t *testing.T) {
	builder := NewPipGraphBuilder(nil)
	p := buildPip(t, "compile", nil, []FileDependency{{Mount: "src", Path: "a.o"}})
	if err := builder.AddPip(p); err != nil {
		t.Fatalf("AddPip: %v", err)
	}
	if err := builder.AddDependency(p.Id, PipId("missing")); err == nil {
		t.Fatal("AddDependency with unknown dependent: expected error, got nil")
	}
	if err := builder.AddDependency(PipId("missing"), p.Id); err == nil {
		t.Fatal("AddDependency with unknown dependency: expected error, got nil")
	}
}

func TestPipGraphBuilderDetectsCycle(t *testing.T) {
	builder := NewPipGraphBuilder(nil)
	a := buildPip(t, "a", nil, []FileDependency{{Mount: "src", Path: "a.out"}})
	b := buildPip(t, "b", []FileDependency{{Mount: "src", Path: "a.out"}}, []FileDependency{{Mount: "src", Path: "b.out"}})

	if err := builder.AddPip(a); err != nil {
		t.Fatalf("AddPip a: %v", err)
	}
	if err := builder.AddPip(b); err != nil {
		t.Fatalf("AddPip b: %v", err)
	}
	if err := builder.AddDependency(a.Id, b.Id); err != nil {
		t.Fatalf("AddDependency a->b: %v", err)
	}
	if err := builder.AddDependency(b.Id, a.Id); err != nil {
		t.Fatalf("AddDependency b->a: %v", err)
	}

	if _, err := builder.Build(); err == nil {
		t.Fatal("Build with cycle: expected error, got nil")
	}
}

func TestPipGraphPipsPreservesInsertionOrder(t *testing.T) {
	builder := NewPipGraphBuilder(nil)
	first := buildPip(t, "first", nil, []FileDependency{{Mount: "src", Path: "1"}})
	second := buildPip(t, "second", nil, []FileDependency{{Mount: "src", Path: "2"}})
	if err := builder.AddPip(first); err != nil {
		t.Fatalf("AddPip first: %v", err)
	}
	if err := builder.AddPip(second); err != nil {
		t.Fatalf("AddPip second: %v", err)
	}
	graph, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	pips := graph.Pips()
	if len(pips) != 2 || pips[0].Id != first.Id || pips[1].Id != second.Id {
		t.Fatalf("Pips() = %v, want [first, second] order", pips)
	}
}
