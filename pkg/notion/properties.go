package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// maxTextLen is Notion's limit on a single rich text object.
const maxTextLen = 2000

// Text builds a rich text array for content, split into chunks Notion
// accepts. Empty content yields an empty array, which clears the property.
func Text(content string) []notionapi.RichText {
	runes := []rune(content)
	out := make([]notionapi.RichText, 0, len(runes)/maxTextLen+1)
	for len(runes) > 0 {
		n := min(len(runes), maxTextLen)
		out = append(out, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: string(runes[:n])},
		})
		runes = runes[n:]
	}
	return out
}

// PlainText flattens a title, rich text or select property into a string.
// Unknown or missing properties read as "".
func PlainText(props notionapi.Properties, name string) string {
	prop, ok := props[name]
	if !ok {
		return ""
	}
	var parts []notionapi.RichText
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		parts = p.Title
	case *notionapi.RichTextProperty:
		parts = p.RichText
	case *notionapi.SelectProperty:
		return p.Select.Name
	default:
		return ""
	}
	var sb strings.Builder
	for _, rt := range parts {
		if rt.PlainText != "" {
			sb.WriteString(rt.PlainText)
		} else if rt.Text != nil {
			sb.WriteString(rt.Text.Content)
		}
	}
	return sb.String()
}
