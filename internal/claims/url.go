package claims

import (
	"net/url"
	"strings"
)

// DomainOf extracts the registrable host of a URL, lowercased and with any
// "www." prefix stripped. Returns "" for unparseable input.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
