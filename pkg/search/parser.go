package search

import (
	"strings"
)

// ParsedQuery holds the extracted filters and the remaining clean query
type ParsedQuery struct {
	Topics      []string
	SearchQuery string // The remaining text to retrieve against
}

// ParseQuery extracts slash commands from the raw query string
// Supported:
// /topic:<term> OR /in:<term> -> Filter by chunk topic
// <text> -> Remaining text is the SearchQuery
func ParseQuery(raw string) ParsedQuery {
	parsed := ParsedQuery{}
	parts := strings.Fields(raw)
	var cleanParts []string

	for _, part := range parts {
		lowerPart := strings.ToLower(part)

		if strings.HasPrefix(lowerPart, "/topic:") {
			parsed.Topics = append(parsed.Topics, strings.TrimPrefix(lowerPart, "/topic:"))
		} else if strings.HasPrefix(lowerPart, "/in:") {
			// Alias for /topic:
			parsed.Topics = append(parsed.Topics, strings.TrimPrefix(lowerPart, "/in:"))
		} else {
			cleanParts = append(cleanParts, part)
		}
	}

	parsed.SearchQuery = strings.Join(cleanParts, " ")
	return parsed
}
