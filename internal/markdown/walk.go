package markdown

// WalkInlines calls fn for every inline node in doc, depth first, including
// the children of emphasis and the text of links. Blockquotes are entered
// recursively. Code blocks and rules hold no inline content.
func WalkInlines(doc *Document, fn func(Inline)) {
	if doc == nil || fn == nil {
		return
	}
	walkBlocks(doc.Blocks, fn)
}

func walkBlocks(blocks []Block, fn func(Inline)) {
	for _, b := range blocks {
		switch node := b.(type) {
		case Heading:
			walkInlines(node.Content, fn)
		case Paragraph:
			walkInlines(node.Content, fn)
		case Blockquote:
			walkBlocks(node.Blocks, fn)
		case List:
			for _, item := range node.Items {
				walkInlines(item.Content, fn)
			}
		}
	}
}

func walkInlines(inlines []Inline, fn func(Inline)) {
	for _, in := range inlines {
		fn(in)
		switch node := in.(type) {
		case Strong:
			walkInlines(node.Children, fn)
		case Italic:
			walkInlines(node.Children, fn)
		case Strikethrough:
			walkInlines(node.Children, fn)
		case *Link:
			walkInlines(node.Text, fn)
		}
	}
}

// Images returns every image node of doc. The nodes are shared with the
// tree, so updating URL rewrites the document.
func Images(doc *Document) []*Image {
	var out []*Image
	WalkInlines(doc, func(in Inline) {
		if img, ok := in.(*Image); ok {
			out = append(out, img)
		}
	})
	return out
}
