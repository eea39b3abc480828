// Package service renders operation descriptors into HTTP requests and performs the
// outbound provider call.
package service

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"

	operationDomain "github.com/allisson/tradejournal/internal/operation/domain"
	providerDomain "github.com/allisson/tradejournal/internal/provider/domain"
)

// Request is a fully rendered provider call.
type Request struct {
	Method      string
	URL         string
	Headers     []providerDomain.Header
	Body        []byte
	ContentType string
}

type escapeFunc func(string) string

// Render substitutes bindings into the descriptor's URL, headers and body.
//
// URL values are path-escaped (query-escaped after the first '?'), body values are
// JSON string escaped and header values must be valid field values. Substituted values
// are never rescanned, so a value containing "{{X}}" is sent literally. A token with no
// binding is a template error.
func Render(d *providerDomain.Descriptor, baseURL string, bindings map[string]string) (*Request, error) {
	var unresolved []string
	substitute := func(template string, escape escapeFunc) string {
		return providerDomain.TokenPattern.ReplaceAllStringFunc(template, func(match string) string {
			name := providerDomain.TokenPattern.FindStringSubmatch(match)[1]
			value, ok := bindings[name]
			if !ok {
				unresolved = appendUnique(unresolved, name)
				return match
			}
			return escape(value)
		})
	}

	rawURL := renderURL(d.URLTemplate(baseURL), substitute)

	headers := make([]providerDomain.Header, 0, len(d.Headers))
	var invalid []string
	for _, h := range d.Headers {
		value := substitute(h.Value, identity)
		if !httpguts.ValidHeaderFieldValue(value) {
			fields := headerFields(h.Value)
			if len(fields) == 0 {
				fields = []string{h.Name}
			}
			for _, name := range fields {
				invalid = appendUnique(invalid, name)
			}
			continue
		}
		headers = append(headers, providerDomain.Header{Name: h.Name, Value: value})
	}

	var body []byte
	if d.HasBody() {
		body = []byte(substitute(string(d.Body), jsonEscape))
	}

	if len(unresolved) > 0 {
		return nil, &operationDomain.Error{
			Kind:   operationDomain.KindTemplateError,
			Fields: unresolved,
			Detail: "unresolved token",
		}
	}
	if len(invalid) > 0 {
		return nil, &operationDomain.Error{
			Kind:   operationDomain.KindInvalidField,
			Fields: invalid,
			Detail: "value is not allowed in a header",
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &operationDomain.Error{
			Kind:   operationDomain.KindTemplateError,
			Detail: "rendered url is not an absolute http url",
		}
	}
	if body != nil && !json.Valid(body) {
		return nil, &operationDomain.Error{
			Kind:   operationDomain.KindTemplateError,
			Detail: "rendered body is not valid JSON",
		}
	}

	req := &Request{
		Method:  d.Method,
		URL:     rawURL,
		Headers: headers,
		Body:    body,
	}
	if body != nil {
		req.ContentType = d.RequestContentType()
	}
	return req, nil
}

func renderURL(template string, substitute func(string, escapeFunc) string) string {
	path, query, hasQuery := strings.Cut(template, "?")
	rendered := substitute(path, url.PathEscape)
	if hasQuery {
		rendered += "?" + substitute(query, url.QueryEscape)
	}
	return rendered
}

// headerFields names the params responsible for an invalid header value. The API key
// is only blamed when no param appears in the template.
func headerFields(template string) []string {
	tokens := providerDomain.Tokens(template)
	fields := make([]string, 0, len(tokens))
	for _, name := range tokens {
		if name != providerDomain.APIKeyToken {
			fields = append(fields, name)
		}
	}
	if len(fields) == 0 {
		return tokens
	}
	return fields
}

func identity(s string) string { return s }

func jsonEscape(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	quoted := bytes.TrimSpace(buf.Bytes())
	return string(quoted[1 : len(quoted)-1])
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
