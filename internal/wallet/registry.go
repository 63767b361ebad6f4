package wallet

// Registry holds the ordered set of wallet options. It is read-only; the
// entries themselves are supplied externally.
type Registry struct {
	options []Option
}

// NewRegistry creates a registry from ordered options.
func NewRegistry(options []Option) *Registry {
	out := make([]Option, len(options))
	copy(out, options)
	return &Registry{options: out}
}

// Options returns a copy of all registry entries in order.
func (r *Registry) Options() []Option {
	out := make([]Option, len(r.options))
	copy(out, r.options)
	return out
}

// Find returns the option with the given id.
func (r *Registry) Find(id string) (Option, bool) {
	for _, o := range r.options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// IDs returns the ordered option ids.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.options))
	for i, o := range r.options {
		ids[i] = o.ID
	}
	return ids
}

// Filter produces the ordered list of selectable options for the environment.
//
// Mobile shows only mobile-compatible entries. Desktop hides mobile-only
// entries and resolves the injected family: nothing without a detected
// provider, and the branded entry XOR the generic one depending on whether
// the detected provider matches the known brand.
func (r *Registry) Filter(facts Facts) []Option {
	out := make([]Option, 0, len(r.options))
	for _, o := range r.options {
		if facts.Mobile {
			if o.Mobile {
				out = append(out, o)
			}
			continue
		}

		if o.MobileOnly {
			continue
		}

		if o.Injected {
			if !facts.InjectedDetected {
				continue
			}
			// Show branded when the brand is detected, generic otherwise,
			// never both.
			if o.Branded != facts.KnownBrand {
				continue
			}
		}

		out = append(out, o)
	}
	return out
}
