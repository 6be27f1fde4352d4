package services

import "strings"

// Sentinel values substituted for missing or unparseable issue fields.
const (
	noSummarySentinel     = "No Summary"
	noDescriptionSentinel = "No description"
	unknownSentinel       = "Unknown"
)

// ExtractDocumentText flattens a Jira description field into plain text.
// The field arrives untyped from the search response: it may be absent,
// a plain string, or an Atlassian Document Format block tree. The result
// is whitespace-normalized; anything that yields no text degrades to the
// "No description" sentinel. The traversal never panics on malformed
// input - nodes with missing fields or non-array content are tolerated.
func ExtractDocumentText(field interface{}) string {
	switch v := field.(type) {
	case nil:
		return noDescriptionSentinel
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return noDescriptionSentinel
		}
		return trimmed
	}

	doc, ok := field.(map[string]interface{})
	if !ok {
		return noDescriptionSentinel
	}

	text := collapseWhitespace(strings.Join(collectTextNodes(doc), " "))
	if text == "" {
		return noDescriptionSentinel
	}
	return text
}

// collectTextNodes walks the document tree depth-first in pre-order,
// gathering the text payload of every "text" node. An explicit stack is
// used instead of recursion so arbitrarily deep trees stay safe.
func collectTextNodes(root map[string]interface{}) []string {
	var fragments []string

	stack := []map[string]interface{}{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if nodeType, _ := node["type"].(string); nodeType == "text" {
			if text, _ := node["text"].(string); text != "" {
				fragments = append(fragments, text)
			}
		}

		// A non-array content value means no children.
		children, _ := node["content"].([]interface{})
		for i := len(children) - 1; i >= 0; i-- {
			if child, ok := children[i].(map[string]interface{}); ok {
				stack = append(stack, child)
			}
		}
	}

	return fragments
}

// collapseWhitespace reduces every run of whitespace to a single space
// and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
