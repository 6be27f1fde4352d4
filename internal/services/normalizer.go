package services

import (
	"strings"

	"devlens/internal/interfaces"
)

// descriptionLimit bounds the plain-text description carried on a record.
const descriptionLimit = 100

// normalizer converts raw search-response issues into IssueRecords. The
// loosely-typed fields map never escapes this type: every access path
// falls back to its sentinel, so callers always see populated fields.
type normalizer struct {
	browseURL string
}

func newNormalizer(baseURL string) *normalizer {
	return &normalizer{
		browseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Normalize maps one raw issue to an IssueRecord. The key is assumed
// present; a response without keys is broken upstream of this layer.
func (n *normalizer) Normalize(issue *RawIssue) *interfaces.IssueRecord {
	fields := issue.Fields

	return &interfaces.IssueRecord{
		Key:         issue.Key,
		Summary:     stringField(fields, "summary", noSummarySentinel),
		Description: truncateText(ExtractDocumentText(fields["description"]), descriptionLimit),
		IssueType:   nameField(fields, "issuetype"),
		Status:      nameField(fields, "status"),
		Priority:    nameField(fields, "priority"),
		URL:         n.browseURL + "/browse/" + issue.Key,
	}
}

func stringField(fields map[string]interface{}, key, fallback string) string {
	if value, ok := fields[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

// nameField reads fields[key]["name"], degrading to "Unknown" when the
// path is missing at any level.
func nameField(fields map[string]interface{}, key string) string {
	if nested, ok := fields[key].(map[string]interface{}); ok {
		if name, ok := nested["name"].(string); ok && name != "" {
			return name
		}
	}
	return unknownSentinel
}

// truncateText keeps the first limit runes and appends an ellipsis
// marker when the text is longer; shorter text passes unchanged.
func truncateText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
