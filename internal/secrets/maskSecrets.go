package secrets

import (
	"regexp"
	"strings"
)

const mask = "<masked>"

var apiKeyHeader = regexp.MustCompile(`(?i)(x-api-key\s*[:=]\s*)\S+`)

// Masker returns a function that scrubs the given API key from any text
// destined for logs or error messages. The key itself is replaced wherever
// it appears, and X-API-Key header values are masked even when the server
// echoed a different key back.
func Masker(apiKey string) func(string) string {
	return func(s string) string {
		if apiKey != "" {
			s = strings.ReplaceAll(s, apiKey, mask)
		}
		return apiKeyHeader.ReplaceAllString(s, "${1}"+mask)
	}
}
