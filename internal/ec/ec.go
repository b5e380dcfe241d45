// Package ec describes erasure-coding policies and the registry of system
// policies every EC-capable filesystem understands.
package ec

import (
	"fmt"
	"strings"
)

// Codec names.
const (
	CodecRS       = "rs"
	CodecRSLegacy = "rs-legacy"
	CodecXOR      = "xor"
)

// ReplicationPolicyName is the pseudo policy that turns erasure coding off.
// It is not a system EC policy and Lookup does not return it.
const ReplicationPolicyName = "replication"

type Schema struct {
	Codec       string
	DataUnits   int
	ParityUnits int
}

// Policy is a named erasure-coding scheme.
type Policy struct {
	ID       byte
	Name     string
	Schema   Schema
	CellSize int
}

// policyName builds the canonical name, e.g. RS-6-3-1024k.
func policyName(s Schema, cellSize int) string {
	return fmt.Sprintf("%s-%d-%d-%dk", strings.ToUpper(s.Codec), s.DataUnits, s.ParityUnits, cellSize/1024)
}

func newPolicy(id byte, s Schema, cellSize int) Policy {
	return Policy{ID: id, Name: policyName(s, cellSize), Schema: s, CellSize: cellSize}
}

func (p Policy) String() string {
	return fmt.Sprintf("ErasureCodingPolicy=[Name=%s, Schema=%s-%d-%d, CellSize=%d, Id=%d]",
		p.Name, p.Schema.Codec, p.Schema.DataUnits, p.Schema.ParityUnits, p.CellSize, p.ID)
}

// Registry looks up policies by name.
type Registry interface {
	Lookup(name string) (Policy, bool)
}

const defaultCellSize = 1024 * 1024

var systemPolicies = []Policy{
	newPolicy(1, Schema{CodecRS, 6, 3}, defaultCellSize),
	newPolicy(2, Schema{CodecRS, 3, 2}, defaultCellSize),
	newPolicy(3, Schema{CodecRSLegacy, 6, 3}, defaultCellSize),
	newPolicy(4, Schema{CodecXOR, 2, 1}, defaultCellSize),
	newPolicy(5, Schema{CodecRS, 10, 4}, defaultCellSize),
}

type staticRegistry map[string]Policy

func (r staticRegistry) Lookup(name string) (Policy, bool) {
	p, ok := r[name]
	return p, ok
}

// NewRegistry builds a read-only registry over the given policies.
func NewRegistry(policies ...Policy) Registry {
	r := make(staticRegistry, len(policies))
	for _, p := range policies {
		r[p.Name] = p
	}
	return r
}

var system = NewRegistry(systemPolicies...)

// System returns the registry of built-in policies.
func System() Registry { return system }
