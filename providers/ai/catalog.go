package ai

import (
	"fmt"

	"github.com/leofalp/aimux/core/cost"
)

// ModelDescriptor describes one model offered by a provider. Descriptors are
// defined when the adapter is built and never change afterwards.
type ModelDescriptor struct {
	Provider          string
	ID                string
	Capabilities      CapabilitySet
	Pricing           *cost.Pricing // nil when the price is unknown
	SupportsTools     bool
	SupportsWebSearch bool
}

// Has reports whether the model produces c.
func (m ModelDescriptor) Has(c Capability) bool {
	return m.Capabilities.Has(c)
}

// Catalog is the ordered model list owned by one adapter. The first model
// offering a capability is that capability's default.
type Catalog []ModelDescriptor

// Find returns the model whose ID matches id exactly.
func (c Catalog) Find(id string) (ModelDescriptor, bool) {
	for _, m := range c {
		if m.ID == id {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// Default returns the first model offering capability.
func (c Catalog) Default(capability Capability) (ModelDescriptor, bool) {
	for _, m := range c {
		if m.Has(capability) {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}

// Filter returns the models offering capability, in catalog order.
func (c Catalog) Filter(capability Capability) Catalog {
	var out Catalog
	for _, m := range c {
		if m.Has(capability) {
			out = append(out, m)
		}
	}
	return out
}

// CalculateCost prices usage for the model id. Unknown models yield the
// zero-valued sentinel record.
func (c Catalog) CalculateCost(calc *cost.Calculator, id string, usage cost.Usage) cost.Record {
	m, ok := c.Find(id)
	if !ok {
		return cost.Unknown()
	}
	return calc.CalculateUsage(m.Pricing, usage)
}

// SelectModel picks the model used for a capability call. An empty id selects
// the catalog default. A catalog without any model offering capability
// rejects the call with ErrUnsupportedCapability, and so does a known model
// that lacks it. Unknown ids are passed through unchanged so callers can
// reach models newer than the catalog; their cost is the unknown sentinel.
func (c Catalog) SelectModel(provider, id string, capability Capability) (string, error) {
	def, ok := c.Default(capability)
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s model", ErrUnsupportedCapability, provider, capability)
	}
	if id == "" {
		return def.ID, nil
	}
	if m, found := c.Find(id); found && !m.Has(capability) {
		return "", fmt.Errorf("%w: %s model %s does not support %s", ErrUnsupportedCapability, provider, id, capability)
	}
	return id, nil
}
