package domain

// ChainConfig describes one supported source chain. RPCURL and TokenAddress
// are never exposed over the API.
type ChainConfig struct {
	Name          string
	ChainID       int64
	RPCURL        string
	TokenAddress  string
	TokenDecimals int
}

// ChainRef is a caller-supplied chain selection.
type ChainRef struct {
	ChainID int64  `json:"chainId"`
	Name    string `json:"name"`
}

// ChainSummary is the public view of a registry entry.
type ChainSummary struct {
	Name    string `json:"name"`
	ChainID int64  `json:"chainId"`
}

const (
	MinSelectedChains = 1
	MaxSelectedChains = 5
)

// ChainRegistry is the fixed ordered set of supported chains.
type ChainRegistry struct {
	chains []ChainConfig
	byID   map[int64]int
}

func NewChainRegistry(chains []ChainConfig) *ChainRegistry {
	r := &ChainRegistry{
		chains: make([]ChainConfig, 0, len(chains)),
		byID:   make(map[int64]int, len(chains)),
	}
	for _, c := range chains {
		if _, dup := r.byID[c.ChainID]; dup {
			continue
		}
		r.byID[c.ChainID] = len(r.chains)
		r.chains = append(r.chains, c)
	}
	return r
}

func (r *ChainRegistry) Lookup(chainID int64) (ChainConfig, bool) {
	i, ok := r.byID[chainID]
	if !ok {
		return ChainConfig{}, false
	}
	return r.chains[i], true
}

func (r *ChainRegistry) Chains() []ChainConfig {
	out := make([]ChainConfig, len(r.chains))
	copy(out, r.chains)
	return out
}

func (r *ChainRegistry) Public() []ChainSummary {
	out := make([]ChainSummary, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, ChainSummary{Name: c.Name, ChainID: c.ChainID})
	}
	return out
}

// Validate checks a trigger selection: 1..5 chains, all known.
func (r *ChainRegistry) Validate(refs []ChainRef) error {
	if len(refs) < MinSelectedChains || len(refs) > MaxSelectedChains {
		return &ValidationError{Message: "Invalid selection. Please select between 1 and 5 chains."}
	}
	for _, ref := range refs {
		if _, ok := r.byID[ref.ChainID]; !ok {
			return &ValidationError{Message: "One or more selected chains are not supported."}
		}
	}
	return nil
}

// Refs resolves chain ids into refs carrying registry names.
func (r *ChainRegistry) Refs(ids []int64) []ChainRef {
	refs := make([]ChainRef, 0, len(ids))
	for _, id := range ids {
		name := ""
		if c, ok := r.Lookup(id); ok {
			name = c.Name
		}
		refs = append(refs, ChainRef{ChainID: id, Name: name})
	}
	return refs
}
