package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tradejournal/internal/errors"
)

const thingCatalog = `{
  "thing.get": {
    "method": "GET",
    "url_override": "https://api.example.com/v1/things/{{THING_ID}}",
    "headers": [{"name": "Authorization", "value": "Bearer {{API_KEY}}"}],
    "required_fields": ["THING_ID"],
    "expected_status": 200
  },
  "vs.files": {
    "method": "POST",
    "path": "/v1/vector_stores/{{VS_ID}}/files",
    "headers": [
      {"name": "Authorization", "value": "Bearer {{ API_KEY }}"},
      {"name": "OpenAI-Beta", "value": "assistants=v2"}
    ],
    "required_fields": ["VS_ID", "FILE_ID"],
    "expected_status": 200,
    "body": {"file_id": "{{FILE_ID}}"},
    "ok_json_path": "object",
    "ok_json_expected": "vector_store.file"
  }
}`

func issuesOf(t *testing.T, err error) []Issue {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	var catalogErr *CatalogError
	require.ErrorAs(t, err, &catalogErr)
	require.NotEmpty(t, catalogErr.Issues)
	return catalogErr.Issues
}

func TestParseCatalog(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		catalog, err := ParseCatalog([]byte(thingCatalog))
		require.NoError(t, err)
		require.Len(t, catalog, 2)

		thing, ok := catalog.Lookup("thing.get")
		require.True(t, ok)
		assert.Equal(t, "thing.get", thing.Name)
		assert.Equal(t, "GET", thing.Method)
		assert.Equal(t, []string{"THING_ID"}, thing.RequiredFields)
		assert.Equal(t, 200, thing.ExpectedStatus)
		assert.False(t, thing.HasBody())
		assert.False(t, thing.HasResponseCheck())

		files, ok := catalog.Lookup("vs.files")
		require.True(t, ok)
		assert.True(t, files.HasBody())
		assert.True(t, files.HasResponseCheck())
		assert.Equal(t, JSONPath{"object"}, files.OKPath)
		assert.Equal(t, "OpenAI-Beta", files.Headers[1].Name)

		_, ok = catalog.Lookup("thing.delete")
		assert.False(t, ok)
	})

	t.Run("empty document", func(t *testing.T) {
		catalog, err := ParseCatalog([]byte("  "))
		require.NoError(t, err)
		assert.Empty(t, catalog)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseCatalog([]byte("{not json"))
		issues := issuesOf(t, err)
		assert.Contains(t, issues[0].Message, "not valid JSON")
	})

	t.Run("unknown descriptor field", func(t *testing.T) {
		_, err := ParseCatalog([]byte(`{"thing.get": {"method": "GET", "url_override": "https://x.test",
			"expected_status": 200, "timeout": 5}}`))
		issuesOf(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("unsupported method", func(t *testing.T) {
		_, err := ParseCatalog([]byte(`{"thing.get": {"method": "FETCH", "url_override": "https://x.test",
			"expected_status": 200}}`))
		issuesOf(t, err)
		assert.Contains(t, err.Error(), "method")
	})

	t.Run("missing expected status", func(t *testing.T) {
		_, err := ParseCatalog([]byte(`{"thing.get": {"method": "GET", "url_override": "https://x.test"}}`))
		issuesOf(t, err)
	})

	t.Run("invalid operation name", func(t *testing.T) {
		_, err := ParseCatalog([]byte(`{"Thing Get": {"method": "GET", "url_override": "https://x.test",
			"expected_status": 200}}`))
		issuesOf(t, err)
	})

	t.Run("lint issues from every descriptor are reported", func(t *testing.T) {
		_, err := ParseCatalog([]byte(`{
		  "a.op": {"method": "GET", "url_override": "https://x.test/{{MISSING}}", "expected_status": 200},
		  "b.op": {"method": "GET", "path": "relative", "expected_status": 200}
		}`))
		issues := issuesOf(t, err)
		require.Len(t, issues, 2)
		assert.Equal(t, "a.op", issues[0].Operation)
		assert.Equal(t, "b.op", issues[1].Operation)
	})
}

func TestLint(t *testing.T) {
	valid := func() *Descriptor {
		return &Descriptor{
			Name:           "thing.get",
			Method:         "GET",
			URLOverride:    "https://api.example.com/v1/things/{{THING_ID}}",
			Headers:        []Header{{Name: "Authorization", Value: "Bearer {{API_KEY}}"}},
			RequiredFields: []string{"THING_ID"},
			ExpectedStatus: 200,
		}
	}

	assert.Empty(t, Lint(valid()))

	tests := []struct {
		name   string
		mutate func(d *Descriptor)
		field  string
	}{
		{"uncovered url token", func(d *Descriptor) { d.RequiredFields = nil }, "url_override"},
		{"uncovered header token", func(d *Descriptor) {
			d.Headers = append(d.Headers, Header{Name: "X-Org", Value: "{{ORG_ID}}"})
		}, "headers[1]"},
		{"url and path", func(d *Descriptor) { d.Path = "/things" }, "url_override"},
		{"no url", func(d *Descriptor) { d.URLOverride = "" }, "url_override"},
		{"relative url", func(d *Descriptor) { d.URLOverride = "/v1/things/{{THING_ID}}" }, "url_override"},
		{"ftp url", func(d *Descriptor) { d.URLOverride = "ftp://api.example.com/{{THING_ID}}" }, "url_override"},
		{"path without slash", func(d *Descriptor) {
			d.URLOverride = ""
			d.Path = "things/{{THING_ID}}"
		}, "path"},
		{"bad method", func(d *Descriptor) { d.Method = "get" }, "method"},
		{"bad status", func(d *Descriptor) { d.ExpectedStatus = 42 }, "expected_status"},
		{"api key required", func(d *Descriptor) {
			d.RequiredFields = append(d.RequiredFields, APIKeyToken)
		}, "required_fields"},
		{"duplicate field", func(d *Descriptor) {
			d.RequiredFields = append(d.RequiredFields, "THING_ID")
		}, "required_fields"},
		{"invalid field name", func(d *Descriptor) {
			d.RequiredFields = append(d.RequiredFields, "THING-ID")
		}, "required_fields"},
		{"invalid header name", func(d *Descriptor) {
			d.Headers = []Header{{Name: "Bad Header", Value: "x"}}
		}, "headers[0]"},
		{"header value with newline", func(d *Descriptor) {
			d.Headers = []Header{{Name: "X-Test", Value: "a\r\nX-Injected: 1"}}
		}, "headers[0]"},
		{"body on get", func(d *Descriptor) { d.Body = []byte(`{"a":"b"}`) }, "body"},
		{"uncovered body token", func(d *Descriptor) {
			d.Method = "POST"
			d.Body = []byte(`{"name":"{{NAME}}"}`)
		}, "body"},
		{"content type without body", func(d *Descriptor) { d.ContentType = "text/plain" }, "content_type"},
		{"bad json path", func(d *Descriptor) { d.OKJSONPath = "data..id" }, "ok_json_path"},
		{"unclosed json path index", func(d *Descriptor) { d.OKJSONPath = "data[0.id" }, "ok_json_path"},
		{"non numeric json path index", func(d *Descriptor) { d.OKJSONPath = "data[first].id" }, "ok_json_path"},
		{"head with json path", func(d *Descriptor) {
			d.Method = "HEAD"
			d.OKJSONPath = "ok"
		}, "ok_json_path"},
		{"expected without path", func(d *Descriptor) { d.OKJSONExpected = []byte("true") }, "ok_json_expected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(d)

			issues := Lint(d)
			require.NotEmpty(t, issues)
			assert.Equal(t, "thing.get", issues[0].Operation)
			assert.Equal(t, tt.field, issues[0].Field)
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Nil(t, Tokens("https://api.example.com/v1/models"))
	assert.Equal(t,
		[]string{"VS_ID", "API_KEY"},
		Tokens("/v1/{{VS_ID}}/files?key={{ API_KEY }}&again={{VS_ID}}"),
	)
	assert.Nil(t, Tokens("{{ 1BAD }} {{}} {single}"))
}

func TestJSONPath(t *testing.T) {
	_, err := ParseJSONPath("")
	assert.Error(t, err)
	_, err = ParseJSONPath("data.")
	assert.Error(t, err)

	path, err := ParseJSONPath("data.1.status")
	require.NoError(t, err)
	assert.Equal(t, "data.1.status", path.String())

	doc := map[string]any{
		"data": []any{
			map[string]any{"status": "queued"},
			map[string]any{"status": "completed"},
		},
		"ok": nil,
	}

	value, ok := path.Lookup(doc)
	require.True(t, ok)
	assert.Equal(t, "completed", value)

	value, ok = JSONPath{"ok"}.Lookup(doc)
	assert.True(t, ok)
	assert.Nil(t, value)

	for _, missing := range []JSONPath{{"nope"}, {"data", "7"}, {"data", "x"}, {"data", "0", "status", "deeper"}} {
		_, ok := missing.Lookup(doc)
		assert.False(t, ok, missing.String())
	}
}

func TestJSONPath_IndexSyntax(t *testing.T) {
	doc := map[string]any{
		"data": []any{
			map[string]any{"id": "file_1", "tags": []any{"a", "b"}},
			map[string]any{"id": "file_2"},
		},
	}

	tests := []struct {
		path string
		want any
	}{
		{"data[0].id", "file_1"},
		{"data.0.id", "file_1"},
		{"data[1].id", "file_2"},
		{"data[0].tags[1]", "b"},
		{"data.0.tags.1", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			path, err := ParseJSONPath(tt.path)
			require.NoError(t, err)

			value, ok := path.Lookup(doc)
			require.True(t, ok)
			assert.Equal(t, tt.want, value)
		})
	}

	t.Run("bracket and dotted forms parse the same", func(t *testing.T) {
		bracket, err := ParseJSONPath("data[0].tags[1]")
		require.NoError(t, err)
		dotted, err := ParseJSONPath("data.0.tags.1")
		require.NoError(t, err)
		assert.Equal(t, dotted, bracket)
	})

	t.Run("chained indexes and top level array", func(t *testing.T) {
		path, err := ParseJSONPath("[1][0].id")
		require.NoError(t, err)
		assert.Equal(t, JSONPath{"1", "0", "id"}, path)

		value, ok := path.Lookup([]any{
			[]any{map[string]any{"id": "x"}},
			[]any{map[string]any{"id": "y"}},
		})
		require.True(t, ok)
		assert.Equal(t, "y", value)
	})

	t.Run("out of range index", func(t *testing.T) {
		path, err := ParseJSONPath("data[5].id")
		require.NoError(t, err)
		_, ok := path.Lookup(doc)
		assert.False(t, ok)
	})

	for _, bad := range []string{"data[0", "data]0", "data[-1]", "data[x]", "data.[0]", "data[0]x", "data[]"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseJSONPath(bad)
			assert.Error(t, err)
		})
	}
}

func TestParseCatalog_IndexedResponseCheck(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`{"files.list": {"method": "GET",
		"url_override": "https://api.example.com/v1/files",
		"headers": [{"name": "Authorization", "value": "Bearer {{API_KEY}}"}],
		"expected_status": 200, "ok_json_path": "data[0].id"}}`))
	require.NoError(t, err)

	d, ok := catalog.Lookup("files.list")
	require.True(t, ok)

	var body any
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id":"file_1"}]}`), &body))
	value, ok := d.OKPath.Lookup(body)
	require.True(t, ok)
	assert.Equal(t, "file_1", value)
}

func TestIssueString(t *testing.T) {
	assert.Equal(t, "thing.get: path: must start with /",
		Issue{Operation: "thing.get", Field: "path", Message: "must start with /"}.String())
	assert.Equal(t, "catalog is empty", Issue{Message: "catalog is empty"}.String())
}
