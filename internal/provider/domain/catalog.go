package domain

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed catalog.schema.json
var catalogSchemaJSON string

var loadCatalogSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(catalogSchemaJSON))
})

// Catalog maps operation names to descriptors. It is read-only once parsed.
type Catalog map[string]*Descriptor

// Lookup returns the descriptor for name.
func (c Catalog) Lookup(name string) (*Descriptor, bool) {
	d, ok := c[name]
	return d, ok
}

// ParseCatalog validates doc against the catalog schema, decodes it and lints every
// descriptor. All problems are returned together in a *CatalogError.
func ParseCatalog(doc []byte) (Catalog, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 {
		return Catalog{}, nil
	}

	schema, err := loadCatalogSchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, &CatalogError{Issues: []Issue{{Message: "catalog is not valid JSON: " + err.Error()}}}
	}
	if !result.Valid() {
		issues := make([]Issue, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, Issue{Field: desc.Field(), Message: desc.Description()})
		}
		return nil, &CatalogError{Issues: issues}
	}

	var catalog Catalog
	if err := json.Unmarshal(doc, &catalog); err != nil {
		return nil, &CatalogError{Issues: []Issue{{Message: "failed to decode catalog: " + err.Error()}}}
	}

	var issues []Issue
	for _, name := range sortedNames(catalog) {
		d := catalog[name]
		d.Name = name
		issues = append(issues, Lint(d)...)
		if d.OKJSONPath != "" {
			d.OKPath, _ = ParseJSONPath(d.OKJSONPath)
		}
	}
	if len(issues) > 0 {
		return nil, &CatalogError{Issues: issues}
	}

	return catalog, nil
}
