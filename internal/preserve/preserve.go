// Package preserve models the set of source attributes a copy carries over
// to the target.
package preserve

import (
	"fmt"
	"sort"
	"strings"
)

type Attribute string

const (
	Replication         Attribute = "replication"
	BlockSize           Attribute = "block-size"
	User                Attribute = "user"
	Group               Attribute = "group"
	Permission          Attribute = "permission"
	ChecksumType        Attribute = "checksum-type"
	ACL                 Attribute = "acl"
	XAttr               Attribute = "xattr"
	Times               Attribute = "times"
	ErasureCodingPolicy Attribute = "erasure-coding-policy"
)

// letters maps the single letter short forms (as in "-prbugpcaxte") to attributes.
var letters = map[rune]Attribute{
	'r': Replication,
	'b': BlockSize,
	'u': User,
	'g': Group,
	'p': Permission,
	'c': ChecksumType,
	'a': ACL,
	'x': XAttr,
	't': Times,
	'e': ErasureCodingPolicy,
}

// Set is an immutable set of attributes.
type Set struct {
	m map[Attribute]struct{}
}

func NewSet(attrs ...Attribute) Set {
	m := make(map[Attribute]struct{}, len(attrs))
	for _, a := range attrs {
		m[a] = struct{}{}
	}
	return Set{m: m}
}

func (s Set) Has(a Attribute) bool {
	_, ok := s.m[a]
	return ok
}

// String lists the members sorted by name, comma separated.
func (s Set) String() string {
	names := make([]string, 0, len(s.m))
	for a := range s.m {
		names = append(names, string(a))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Parse accepts attribute names ("erasure-coding-policy"), letter groups
// ("ugpe") or a mix of both.
func Parse(values []string) (Set, error) {
	var attrs []Attribute
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}

		if a, ok := byName(v); ok {
			attrs = append(attrs, a)
			continue
		}

		for _, r := range v {
			a, ok := letters[r]
			if !ok {
				return Set{}, fmt.Errorf("unknown preserve attribute %q", v)
			}
			attrs = append(attrs, a)
		}
	}
	return NewSet(attrs...), nil
}

func byName(v string) (Attribute, bool) {
	for _, a := range letters {
		if string(a) == v {
			return a, true
		}
	}
	return "", false
}
