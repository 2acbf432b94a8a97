package ai

import "strings"

// Capability is a kind of output a model can produce.
type Capability uint8

const (
	CapabilityText Capability = iota
	CapabilityImage
	CapabilityTTS
	CapabilityVideo
	CapabilitySTT
)

var capabilityNames = [...]string{
	CapabilityText:  "text",
	CapabilityImage: "image",
	CapabilityTTS:   "tts",
	CapabilityVideo: "video",
	CapabilitySTT:   "stt",
}

func (c Capability) String() string {
	if int(c) < len(capabilityNames) {
		return capabilityNames[c]
	}
	return "unknown"
}

// ParseCapability maps a feature name ("text", "image", ...) to its
// Capability. The lookup is case-insensitive.
func ParseCapability(name string) (Capability, bool) {
	for i, n := range capabilityNames {
		if strings.EqualFold(n, name) {
			return Capability(i), true
		}
	}
	return 0, false
}

// CapabilitySet is a set of capabilities stored as a bitmask.
type CapabilitySet uint8

// Capabilities builds a set from the given capabilities.
func Capabilities(caps ...Capability) CapabilitySet {
	var set CapabilitySet
	for _, c := range caps {
		set |= 1 << c
	}
	return set
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&(1<<c) != 0
}

// With returns a copy of the set with c added.
func (s CapabilitySet) With(c Capability) CapabilitySet {
	return s | 1<<c
}

// List returns the members of the set in declaration order.
func (s CapabilitySet) List() []Capability {
	var caps []Capability
	for i := range capabilityNames {
		if s.Has(Capability(i)) {
			caps = append(caps, Capability(i))
		}
	}
	return caps
}

func (s CapabilitySet) String() string {
	caps := s.List()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}
	return strings.Join(names, "|")
}
