package wallet

import (
	"time"
)

// Summary is the printable form of an Account.
type Summary struct {
	Address        string `json:"address"`
	Kind           string `json:"kind"`
	DerivationPath string `json:"derivation_path,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// ToSummary converts Account to Summary
func (a Account) ToSummary() Summary {
	s := Summary{
		Address:        a.Address.Hex(),
		Kind:           string(a.Kind),
		DerivationPath: a.DerivationPath,
	}

	if !a.CreatedAt.IsZero() {
		s.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}

	return s
}

// ToSummaries converts a slice of accounts, keeping order.
func ToSummaries(accounts []Account) []Summary {
	out := make([]Summary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ToSummary())
	}
	return out
}
