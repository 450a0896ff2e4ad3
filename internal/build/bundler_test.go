package build

import (
	"sort"
	"testing"

	"github.com/depot-go/depot/internal/workspace"
	"github.com/stretchr/testify/assert"
)

func TestExternalsFor_UnionsDependenciesAndPeerDependencies(t *testing.T) {
	pkg := &workspace.Package{
		Manifest: &workspace.Manifest{
			Dependencies:     map[string]string{"left-pad": "^1.0.0"},
			PeerDependencies: map[string]string{"react": "^18.0.0"},
			DevDependencies:  map[string]string{"vitest": "^1.0.0"},
		},
	}

	externals := externalsFor(pkg)
	sort.Strings(externals)
	assert.Equal(t, []string{"left-pad", "react"}, externals)
}

func TestExternalsFor_EmptyWhenNoDependencies(t *testing.T) {
	pkg := &workspace.Package{Manifest: &workspace.Manifest{}}
	assert.Empty(t, externalsFor(pkg))
}
