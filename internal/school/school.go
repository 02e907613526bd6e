// Package school provides the organization metadata rendered onto cards
// (name, logo, address, code). The data changes rarely, so the production
// wiring layers a Redis read-through cache over the PostgreSQL row.
package school

import "context"

// Info is the org metadata consumed by the field resolver.
type Info struct {
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	Address string `json:"address"`
	Code    string `json:"code"`
}

// Provider returns the current org metadata. A (nil, nil) return means no
// metadata is configured; the resolver substitutes its "Not Set" fallbacks.
type Provider interface {
	Get(ctx context.Context) (*Info, error)
}
