package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLastBindWins(t *testing.T) {
	r := NewRegistry()
	first := NewClient("c1")
	second := NewClient("c2")

	_, superseded := r.Bind("alice", first)
	assert.Nil(t, superseded)

	_, superseded = r.Bind("alice", second)
	assert.Same(t, first, superseded)

	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, []string{"alice"}, r.Online())

	// The stale client disconnecting must not evict the newer binding.
	_, ok = r.Unbind(first)
	assert.False(t, ok)
	got, ok = r.Lookup("alice")
	require.True(t, ok)
	assert.Same(t, second, got)

	identity, ok := r.Unbind(second)
	require.True(t, ok)
	assert.Equal(t, "alice", identity)
	_, ok = r.Lookup("alice")
	assert.False(t, ok)
	assert.Empty(t, r.Online())
}

func TestRegistryRebindUnderNewName(t *testing.T) {
	r := NewRegistry()
	c := NewClient("c1")

	r.Bind("alice", c)
	prev, _ := r.Bind("alicia", c)
	assert.Equal(t, "alice", prev)

	_, ok := r.Lookup("alice")
	assert.False(t, ok)
	identity, ok := r.IdentityOf(c)
	require.True(t, ok)
	assert.Equal(t, "alicia", identity)
	assert.Equal(t, []string{"alicia"}, r.Online())
}

func TestRegistryOnlineIsSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"carol", "alice", "bob"} {
		r.Bind(name, NewClient(name))
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, r.Online())
}
