package workspace_test

import (
	"testing"

	"github.com/depot-go/depot/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkgWithDeps(name string, deps ...string) *workspace.Package {
	depMap := make(map[string]string, len(deps))
	for _, d := range deps {
		depMap[d] = "*"
	}
	return &workspace.Package{
		Name:     name,
		Manifest: &workspace.Manifest{Name: name, Dependencies: depMap},
	}
}

func TestBuildDepGraph_TransitiveClosure(t *testing.T) {
	a := pkgWithDeps("a")
	b := pkgWithDeps("b", "a")
	c := pkgWithDeps("c", "b")

	graph, err := workspace.BuildDepGraph([]*workspace.Package{a, b, c})
	require.NoError(t, err)

	assert.Contains(t, graph.AllDeps("c"), "a")
	assert.Contains(t, graph.AllDeps("c"), "b")
	assert.NotContains(t, graph.ImmediateDeps("c"), "a")
}

func TestBuildDepGraph_CycleDetected(t *testing.T) {
	a := pkgWithDeps("a", "b")
	b := pkgWithDeps("b", "a")

	_, err := workspace.BuildDepGraph([]*workspace.Package{a, b})
	require.Error(t, err)
}

func TestBuildDepGraph_IgnoresDepsOutsideWorkspace(t *testing.T) {
	a := pkgWithDeps("a", "left-pad")

	graph, err := workspace.BuildDepGraph([]*workspace.Package{a})
	require.NoError(t, err)
	assert.Empty(t, graph.ImmediateDeps("a"))
}

func TestDependencyClosure_DependenciesSortBeforeDependents(t *testing.T) {
	a := pkgWithDeps("a")
	b := pkgWithDeps("b", "a")
	c := pkgWithDeps("c", "b")

	pkgs := []*workspace.Package{a, b, c}
	graph, err := workspace.BuildDepGraph(pkgs)
	require.NoError(t, err)

	pkgMap := map[string]*workspace.Package{"a": a, "b": b, "c": c}
	closure := workspace.DependencyClosure(pkgMap, graph, []string{"c"})

	require.Len(t, closure, 3)
	assert.Equal(t, "a", closure[0].Name)
	assert.Equal(t, "b", closure[1].Name)
	assert.Equal(t, "c", closure[2].Name)
}
