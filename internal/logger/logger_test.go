package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := newRegistry()
	p1 := r.register("a", "build")
	p2 := r.register("a", "build")
	assert.Same(t, p1, p2)
	assert.Len(t, r.order, 1)
}

func TestRegistry_OrderPreservesFirstRegistration(t *testing.T) {
	r := newRegistry()
	r.register("a", "build")
	r.register("b", "build")
	r.register("a", "lint")

	assert.Equal(t, "a", r.order[0].pkgName)
	assert.Equal(t, "b", r.order[1].pkgName)
	assert.Equal(t, "a", r.order[2].pkgName)
}

func TestRegistry_LookupUnregisteredPanePanics(t *testing.T) {
	r := newRegistry()
	assert.Panics(t, func() {
		r.lookup("ghost", "build")
	})
}
