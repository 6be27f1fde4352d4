package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ExtractDocumentText_PlainString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello world", ExtractDocumentText("  hello world  "))
}

func Test_ExtractDocumentText_EmptyString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "No description", ExtractDocumentText("   "))
}

func Test_ExtractDocumentText_Nil(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "No description", ExtractDocumentText(nil))
}

func Test_ExtractDocumentText_NestedDocument(t *testing.T) {
	t.Parallel()
	doc := map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"content": []interface{}{
					map[string]interface{}{"type": "text", "text": "foo"},
				},
			},
			map[string]interface{}{"type": "text", "text": "bar"},
		},
	}
	assert.Equal(t, "foo bar", ExtractDocumentText(doc))
}

func Test_ExtractDocumentText_EmptyDocument(t *testing.T) {
	t.Parallel()
	doc := map[string]interface{}{"content": []interface{}{}}
	assert.Equal(t, "No description", ExtractDocumentText(doc))
}

func Test_ExtractDocumentText_WhitespaceCollapsed(t *testing.T) {
	t.Parallel()
	doc := map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{"type": "text", "text": "  foo \n\t "},
			map[string]interface{}{"type": "text", "text": " bar  baz "},
		},
	}
	assert.Equal(t, "foo bar baz", ExtractDocumentText(doc))
}

func Test_ExtractDocumentText_NonArrayContent(t *testing.T) {
	t.Parallel()
	doc := map[string]interface{}{"content": "not a list"}
	assert.Equal(t, "No description", ExtractDocumentText(doc))
}

func Test_ExtractDocumentText_NonMapChildrenIgnored(t *testing.T) {
	t.Parallel()
	doc := map[string]interface{}{
		"content": []interface{}{
			42,
			"stray",
			map[string]interface{}{"type": "text", "text": "kept"},
		},
	}
	assert.Equal(t, "kept", ExtractDocumentText(doc))
}

func Test_ExtractDocumentText_UnsupportedType(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "No description", ExtractDocumentText(12.5))
}

func Test_ExtractDocumentText_DeeplyNested(t *testing.T) {
	t.Parallel()

	node := map[string]interface{}{"type": "text", "text": "deep"}
	for i := 0; i < 5000; i++ {
		node = map[string]interface{}{"content": []interface{}{node}}
	}

	assert.Equal(t, "deep", ExtractDocumentText(node))
}

func Test_ExtractDocumentText_TraversalOrder(t *testing.T) {
	t.Parallel()
	doc := map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "paragraph",
				"content": []interface{}{
					map[string]interface{}{"type": "text", "text": "first"},
					map[string]interface{}{"type": "text", "text": "second"},
				},
			},
			map[string]interface{}{
				"type": "paragraph",
				"content": []interface{}{
					map[string]interface{}{"type": "text", "text": "third"},
				},
			},
		},
	}
	assert.Equal(t, "first second third", ExtractDocumentText(doc))
}
