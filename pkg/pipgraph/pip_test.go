package pipgraph

import "testing"

func TestComputePipIdStableUnderFieldReordering(t *testing.T) {
	a := &Pip{
		Executable: "cc",
		Arguments:  []string{"-c", "a.c"},
		Environment: []EnvironmentVariable{
			{Name: "PATH", Value: "/usr/bin"},
			{Name: "CC", Value: "gcc"},
		},
		Inputs:  []FileDependency{{Mount: "src", Path: "a.c"}, {Mount: "src", Path: "a.h"}},
		Outputs: []FileDependency{{Mount: "src", Path: "a.o"}},
	}
	b := &Pip{
		Executable: "cc",
		Arguments:  []string{"-c", "a.c"},
		Environment: []EnvironmentVariable{
			{Name: "CC", Value: "gcc"},
			{Name: "PATH", Value: "/usr/bin"},
		},
		Inputs:  []FileDependency{{Mount: "src", Path: "a.h"}, {Mount: "src", Path: "a.c"}},
		Outputs: []FileDependency{{Mount: "src", Path: "a.o"}},
	}

	if ComputePipId(a) != ComputePipId(b) {
		t.Fatal("ComputePipId is sensitive to declaration order, want order-independent")
	}
}

func TestComputePipIdChangesWithContent(t *testing.T) {
	base := &Pip{Executable: "cc", Arguments: []string{"-c", "a.c"}, Outputs: []FileDependency{{Mount: "src", Path: "a.o"}}}
	changedArgs := &Pip{Executable: "cc", Arguments: []string{"-c", "b.c"}, Outputs: []FileDependency{{Mount: "src", Path: "a.o"}}}

	if ComputePipId(base) == ComputePipId(changedArgs) {
		t.Fatal("ComputePipId did not change with different arguments")
	}
}

func TestPipEnsureValidRejectsEmptyMountOrPath(t *testing.T) {
	cases := []struct {
		name string
		pip  *Pip
	}{
		{"nil pip", nil},
		{"empty id", &Pip{Outputs: []FileDependency{{Mount: "src", Path: "a.o"}}}},
		{"input missing mount", &Pip{Id: "x", Inputs: []FileDependency{{Path: "a.c"}}}},
		{"input missing path", &Pip{Id: "x", Inputs: []FileDependency{{Mount: "src"}}}},
		{"output missing mount", &Pip{Id: "x", Outputs: []FileDependency{{Path: "a.o"}}}},
		{"output missing path", &Pip{Id: "x", Outputs: []FileDependency{{Mount: "src"}}}},
	}
	for _, c := range cases {
		if err := c.pip.EnsureValid(); err == nil {
			t.Errorf("%s: EnsureValid() = nil, want error", c.name)
		}
	}
}

func TestPipEnsureValidAcceptsWellFormedPip(t *testing.T) {
	p := &Pip{Id: "x", Inputs: []FileDependency{{Mount: "src", Path: "a.c"}}, Outputs: []FileDependency{{Mount: "src", Path: "a.o"}}}
	if err := p.EnsureValid(); err != nil {
		t.Fatalf("EnsureValid() = %v, want nil", err)
	}
}
