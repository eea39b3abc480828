// Package domain defines providers and their operation catalogs.
//
// A provider is one external API (an AI vendor, a market data feed, a broker). Its
// catalog maps dot-namespaced operation names to request descriptors. Adding an
// endpoint means editing the catalog row, not shipping code.
package domain

import (
	"errors"
	"net/url"
	"sort"
	"time"

	credentialDomain "github.com/allisson/tradejournal/internal/credential/domain"
)

// Provider is a row of the providers table.
type Provider struct {
	ID       int64
	Category credentialDomain.Category
	Name     string
	// BaseURL is joined with a descriptor Path when the descriptor has no URLOverride.
	BaseURL string
	// Operations is the catalog document exactly as stored.
	Operations []byte
	// Catalog is the parsed form of Operations. Nil until the catalog has been loaded.
	Catalog   Catalog
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OperationNames returns the catalog's operation names in sorted order.
func (p *Provider) OperationNames() []string {
	return sortedNames(p.Catalog)
}

// LoadCatalog parses Operations into Catalog. Descriptors addressed by Path need an
// absolute BaseURL, so that is checked here rather than per descriptor.
func (p *Provider) LoadCatalog() error {
	catalog, err := ParseCatalog(p.Operations)
	if err != nil {
		return err
	}

	for _, name := range sortedNames(catalog) {
		if catalog[name].URLOverride != "" {
			continue
		}
		u, err := url.Parse(p.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &CatalogError{Issues: []Issue{{
				Operation: name,
				Field:     "base_url",
				Message:   "path operations need an absolute http(s) base_url on the provider",
			}}}
		}
		break
	}

	p.Catalog = catalog
	return nil
}

func sortedNames(c Catalog) []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LintReport lists the catalog issues found for one provider.
type LintReport struct {
	ProviderID int64   `json:"provider_id,omitempty"`
	Name       string  `json:"name"`
	Issues     []Issue `json:"issues"`
}

// LintProvider loads p's catalog and returns every issue found, or nil when the
// catalog is usable.
func LintProvider(p *Provider) []Issue {
	err := p.LoadCatalog()
	if err == nil {
		return nil
	}
	var catalogErr *CatalogError
	if errors.As(err, &catalogErr) {
		return catalogErr.Issues
	}
	return []Issue{{Message: err.Error()}}
}

// ImportResult counts the rows written by a catalog import.
type ImportResult struct {
	Created int
	Updated int
}
