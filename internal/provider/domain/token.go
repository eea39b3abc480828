package domain

import "regexp"

// APIKeyToken is the binding that always resolves to the caller's decrypted credential.
const APIKeyToken = "API_KEY"

// TokenPattern matches a {{TOKEN}} placeholder. Whitespace inside the braces is allowed.
var TokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Tokens returns the distinct token names referenced by s, in order of first use.
func Tokens(s string) []string {
	matches := TokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}
