package hashschema

import "strings"

// Presence is the bit flag collected by DecodeWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Member appeared in the input with a non-null value.
	PresenceWasNull                             // Member key was present but null.
	PresenceDefaultApplied                      // Member value came from its declared default.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries the decoded instance along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// Seen reports whether the member at pointer p was present in the input.
func (pm PresenceMap) Seen(p string) bool { return pm[p]&PresenceSeen != 0 }

// DefaultApplied reports whether the member at pointer p was defaulted.
func (pm PresenceMap) DefaultApplied(p string) bool { return pm[p]&PresenceDefaultApplied != 0 }

// Under returns the entries at or below the pointer prefix.
func (pm PresenceMap) Under(prefix string) PresenceMap {
	out := PresenceMap{}
	for k, v := range pm {
		if k == prefix || strings.HasPrefix(k, strings.TrimSuffix(prefix, "/")+"/") {
			out[k] = v
		}
	}
	return out
}

func (pm PresenceMap) mark(p string, f Presence) {
	if pm == nil {
		return
	}
	pm[p] |= f
}
