package ec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPolicyNames(t *testing.T) {
	var names []string
	for _, p := range systemPolicies {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"RS-6-3-1024k",
		"RS-3-2-1024k",
		"RS-LEGACY-6-3-1024k",
		"XOR-2-1-1024k",
		"RS-10-4-1024k",
	}, names)
}

func TestSystemLookup(t *testing.T) {
	p, ok := System().Lookup("RS-6-3-1024k")
	require.True(t, ok)
	assert.Equal(t, byte(1), p.ID)
	assert.Equal(t, Schema{CodecRS, 6, 3}, p.Schema)
	assert.Equal(t, 1024*1024, p.CellSize)

	_, ok = System().Lookup(ReplicationPolicyName)
	assert.False(t, ok)

	_, ok = System().Lookup("rs-6-3-1024k")
	assert.False(t, ok, "lookup is case sensitive")

	_, ok = System().Lookup("")
	assert.False(t, ok)
}

func TestCustomRegistry(t *testing.T) {
	custom := newPolicy(64, Schema{CodecRS, 12, 4}, 256*1024)
	r := NewRegistry(custom)

	p, ok := r.Lookup("RS-12-4-256k")
	require.True(t, ok)
	assert.Equal(t, custom, p)
	assert.Contains(t, p.String(), "Name=RS-12-4-256k")
}
