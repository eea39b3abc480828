package domain

import (
	"encoding/json"
	"strings"
)

// Header is one header template. Order is preserved when the request is built.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Descriptor describes how to build and check one provider API call.
type Descriptor struct {
	// Name is the catalog key, filled in by ParseCatalog.
	Name   string `json:"-"`
	Method string `json:"method"`
	// URLOverride is an absolute URL template. When empty the request goes to the
	// provider BaseURL joined with Path.
	URLOverride    string   `json:"url_override,omitempty"`
	Path           string   `json:"path,omitempty"`
	Headers        []Header `json:"headers,omitempty"`
	RequiredFields []string `json:"required_fields,omitempty"`
	ExpectedStatus int      `json:"expected_status"`
	// OKJSONPath is a path into the response body, such as "data[0].id". When OKJSONExpected is absent
	// the value only has to exist and be non-null.
	OKJSONPath     string          `json:"ok_json_path,omitempty"`
	OKJSONExpected json.RawMessage `json:"ok_json_expected,omitempty"`
	// Body is a JSON template. Tokens may only appear inside string literals.
	Body        json.RawMessage `json:"body,omitempty"`
	ContentType string          `json:"content_type,omitempty"`

	// OKPath is the parsed form of OKJSONPath.
	OKPath JSONPath `json:"-"`
}

// HasBody reports whether the descriptor sends a request body.
func (d *Descriptor) HasBody() bool {
	return len(d.Body) > 0
}

// HasResponseCheck reports whether the descriptor asserts on the response body.
func (d *Descriptor) HasResponseCheck() bool {
	return d.OKJSONPath != ""
}

// URLTemplate returns the URL template for the descriptor against baseURL.
func (d *Descriptor) URLTemplate(baseURL string) string {
	if d.URLOverride != "" {
		return d.URLOverride
	}
	return strings.TrimRight(baseURL, "/") + d.Path
}

// RequestContentType returns the content type for the request body.
func (d *Descriptor) RequestContentType() string {
	if d.ContentType != "" {
		return d.ContentType
	}
	return "application/json"
}
