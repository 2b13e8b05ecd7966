// Package cachekey implements the CacheKey data model from the spec: a
// deterministic (namespace, identifiers) tuple used throughout pkg/cache,
// pkg/dedup and pkg/core to address a single logical resource.
package cachekey

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Namespace is the fixed set of cache-key categories, each carrying its own
// TTL policy (see pkg/cache.Config.TTLByNamespace).
type Namespace string

const (
	NamespaceDataSource Namespace = "data_source"
	NamespaceDatabase   Namespace = "database"
	NamespaceUser       Namespace = "user"
	NamespacePage       Namespace = "page"
	NamespaceBlock      Namespace = "block"
	NamespaceSearch     Namespace = "search"
)

// Key is a CacheKey: a namespace plus an ordered sequence of identifiers.
// Identifiers are primitive or structurally-comparable values (strings,
// numbers, bools, or maps/slices thereof for composite query parameters).
type Key struct {
	Namespace   Namespace
	Identifiers []any
}

// New builds a Key for concrete, ordered identifiers.
func New(ns Namespace, identifiers ...any) Key {
	return Key{Namespace: ns, Identifiers: identifiers}
}

// String serializes the key deterministically: the same logical key always
// yields the same byte-identical string, which is what pkg/cache's disk
// layer hashes into a filename and what pkg/dedup keys its in-flight map
// with. map[string]any identifiers are rendered as {k=v,...} with
// lexicographically sorted keys; other composites (slices, structs) use
// their JSON encoding.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Namespace))
	for _, id := range k.Identifiers {
		b.WriteByte(':')
		b.WriteString(canonicalize(id))
	}
	return b.String()
}

// Empty reports whether the key addresses a namespace-wide slot (no
// identifiers), which is a valid key per the spec's boundary behaviors.
func (k Key) Empty() bool {
	return len(k.Identifiers) == 0
}

func canonicalize(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case map[string]any:
		return canonicalMap(t)
	default:
		// JSON marshaling of structs/slices/numbers is deterministic:
		// struct fields keep declaration order and encoding/json sorts
		// map keys; everything not handled above falls through here.
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	}
}

func canonicalMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(canonicalize(m[k]))
	}
	b.WriteByte('}')
	return b.String()
}
