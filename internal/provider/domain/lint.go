package domain

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
	http.MethodHead:   {},
}

// Lint checks a descriptor for problems a schema cannot express: token coverage, URL
// shape, header syntax and the response assertion. It returns every issue found.
func Lint(d *Descriptor) []Issue {
	var issues []Issue
	add := func(field, format string, args ...any) {
		issues = append(issues, Issue{Operation: d.Name, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := allowedMethods[d.Method]; !ok {
		add("method", "unsupported method %q", d.Method)
	}

	switch {
	case d.URLOverride != "" && d.Path != "":
		add("url_override", "url_override and path are mutually exclusive")
	case d.URLOverride == "" && d.Path == "":
		add("url_override", "one of url_override or path is required")
	case d.URLOverride != "":
		u, err := url.Parse(stripTokens(d.URLOverride))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("url_override", "must be an absolute http(s) URL")
		}
	default:
		if !strings.HasPrefix(d.Path, "/") {
			add("path", "must start with /")
		}
	}

	if d.ExpectedStatus < 100 || d.ExpectedStatus > 599 {
		add("expected_status", "must be between 100 and 599, got %d", d.ExpectedStatus)
	}

	bound := map[string]struct{}{APIKeyToken: {}}
	for _, f := range d.RequiredFields {
		switch {
		case !fieldNamePattern.MatchString(f):
			add("required_fields", "invalid field name %q", f)
		case f == APIKeyToken:
			add("required_fields", "%s is always bound and must not be required", APIKeyToken)
		default:
			if _, dup := bound[f]; dup {
				add("required_fields", "duplicate field %q", f)
			}
		}
		bound[f] = struct{}{}
	}

	checkTokens := func(field, template string) {
		for _, token := range Tokens(template) {
			if _, ok := bound[token]; !ok {
				add(field, "token {{%s}} is not in required_fields", token)
			}
		}
	}
	checkTokens("url_override", d.URLOverride)
	checkTokens("path", d.Path)

	for i, h := range d.Headers {
		field := fmt.Sprintf("headers[%d]", i)
		if !httpguts.ValidHeaderFieldName(h.Name) {
			add(field, "invalid header name %q", h.Name)
		}
		if !httpguts.ValidHeaderFieldValue(stripTokens(h.Value)) {
			add(field, "header value contains invalid characters")
		}
		checkTokens(field, h.Value)
	}

	if d.HasBody() {
		if d.Method == http.MethodGet || d.Method == http.MethodHead {
			add("body", "%s requests must not have a body", d.Method)
		}
		checkTokens("body", string(d.Body))
	} else if d.ContentType != "" {
		add("content_type", "content_type requires a body")
	}

	switch {
	case d.OKJSONPath != "":
		if _, err := ParseJSONPath(d.OKJSONPath); err != nil {
			add("ok_json_path", "%v", err)
		}
		if d.Method == http.MethodHead {
			add("ok_json_path", "HEAD responses have no body to check")
		}
	case len(d.OKJSONExpected) > 0:
		add("ok_json_expected", "ok_json_expected requires ok_json_path")
	}

	return issues
}

// stripTokens replaces every token with a neutral placeholder so the surrounding
// literal text can be checked on its own.
func stripTokens(s string) string {
	return TokenPattern.ReplaceAllString(s, "x")
}
