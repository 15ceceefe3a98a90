package model

// Params holds generation parameters (temperature, top_p, seed, ...) keyed
// by their wire names. Adapters hold a default set fixed at construction;
// per-call overrides win key-by-key, every other default passes through
// unchanged.
type Params map[string]any

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if len(p) == 0 {
		return Params{}
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge layers overrides on top of p and returns the merged mapping. Neither
// input is modified.
func (p Params) Merge(overrides Params) Params {
	merged := p.Clone()
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// CallSettings collects the per-call knobs shared by every operation.
type CallSettings struct {
	// MaxTokens caps generated tokens; zero means the service default.
	MaxTokens int
	// Params are merged over the adapter's defaults, override wins per key.
	Params Params
	// User tags the request with an end-user identifier.
	User string
}

// CallOption customizes a single model call.
type CallOption func(*CallSettings)

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(n int) CallOption {
	return func(s *CallSettings) {
		if n > 0 {
			s.MaxTokens = n
		}
	}
}

// WithParams merges generation parameter overrides over the adapter
// defaults for this call only.
func WithParams(p Params) CallOption {
	return func(s *CallSettings) {
		s.Params = s.Params.Merge(p)
	}
}

// WithUser sets the end-user identifier forwarded to the service.
func WithUser(user string) CallOption {
	return func(s *CallSettings) {
		s.User = user
	}
}

// ApplyCallOptions folds opts into a CallSettings value.
func ApplyCallOptions(opts []CallOption) CallSettings {
	settings := CallSettings{Params: Params{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	return settings
}
