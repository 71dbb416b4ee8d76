package markdown

// Dump converts a document into plain maps and slices tagged with a
// "type" key, suitable for JSON encoding.
func Dump(doc *Document) []map[string]any {
	if doc == nil {
		return nil
	}
	return dumpBlocks(doc.Blocks)
}

func dumpBlocks(blocks []Block) []map[string]any {
	out := make([]map[string]any, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, dumpBlock(b))
	}
	return out
}

func dumpBlock(b Block) map[string]any {
	switch node := b.(type) {
	case Heading:
		return map[string]any{"type": "heading", "level": node.Level, "content": dumpInlines(node.Content)}
	case Paragraph:
		return map[string]any{"type": "paragraph", "content": dumpInlines(node.Content)}
	case Blockquote:
		return map[string]any{"type": "blockquote", "blocks": dumpBlocks(node.Blocks)}
	case List:
		items := make([]map[string]any, 0, len(node.Items))
		for _, item := range node.Items {
			entry := map[string]any{"indent": item.Indent, "content": dumpInlines(item.Content)}
			if item.Checked != nil {
				entry["checked"] = *item.Checked
			}
			items = append(items, entry)
		}
		return map[string]any{"type": "list", "kind": node.Kind.String(), "items": items}
	case FencedCodeBlock:
		entry := map[string]any{"type": "code_block", "code": node.Code}
		if node.Language != "" {
			entry["language"] = node.Language
		}
		return entry
	case HorizontalRule:
		return map[string]any{"type": "horizontal_rule"}
	default:
		return map[string]any{"type": "unknown"}
	}
}

func dumpInlines(inlines []Inline) []map[string]any {
	out := make([]map[string]any, 0, len(inlines))
	for _, in := range inlines {
		switch node := in.(type) {
		case Text:
			out = append(out, map[string]any{"type": "text", "value": node.Value})
		case Strong:
			out = append(out, map[string]any{"type": "strong", "children": dumpInlines(node.Children)})
		case Italic:
			out = append(out, map[string]any{"type": "italic", "children": dumpInlines(node.Children)})
		case Strikethrough:
			out = append(out, map[string]any{"type": "strikethrough", "children": dumpInlines(node.Children)})
		case Code:
			out = append(out, map[string]any{"type": "code", "value": node.Value})
		case *Link:
			out = append(out, map[string]any{"type": "link", "url": node.URL, "text": dumpInlines(node.Text)})
		case *Image:
			out = append(out, map[string]any{"type": "image", "url": node.URL, "alt": node.Alt})
		}
	}
	return out
}
