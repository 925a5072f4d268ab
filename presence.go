package idxcodec

// Presence is the bit flag collected by DecodeWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // The field's key appeared on the wire.
	PresenceDefaultApplied                      // The field was filled with its zero value.
)

// PresenceMap maps field labels to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries the decoded value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// Seen reports whether label's key was present on the wire.
func (pm PresenceMap) Seen(label string) bool { return pm[label]&PresenceSeen != 0 }

// Defaulted reports whether label was filled with its zero value.
func (pm PresenceMap) Defaulted(label string) bool {
	return pm[label]&PresenceDefaultApplied != 0
}

func presenceFrom(s *StructSchema, seen []bool) PresenceMap {
	pm := make(PresenceMap, len(s.fields))
	for i, f := range s.fields {
		if seen[i] {
			pm[f.label] = PresenceSeen
		} else {
			pm[f.label] = PresenceDefaultApplied
		}
	}
	return pm
}
