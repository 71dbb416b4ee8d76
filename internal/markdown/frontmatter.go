package markdown

import "strings"

const (
	frontMatterDelimiter = "---\n"
	listItemPrefix       = "- "
	// ListSeparator joins the entries of a list-valued front matter key.
	ListSeparator = ", "
)

// SplitFrontMatter separates a leading metadata block from the document
// body. The block must open on the very first line with "---" and close at
// the next "---" line. Without both delimiters the returned map is nil and
// the body is the unchanged input.
//
// The block is read line by line: "key: value" stores the trimmed value,
// "key:" opens a list for key, and following "- item" lines append to it
// separated by ListSeparator. Other lines are ignored.
func SplitFrontMatter(content string) (map[string]string, string) {
	rest, ok := strings.CutPrefix(content, frontMatterDelimiter)
	if !ok {
		return nil, content
	}
	if body, ok := strings.CutPrefix(rest, frontMatterDelimiter); ok {
		return parseFrontMatterBlock(""), body
	}
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return nil, content
	}

	meta := parseFrontMatterBlock(rest[:end])
	return meta, rest[end+1+len(frontMatterDelimiter):]
}

func parseFrontMatterBlock(block string) map[string]string {
	data := map[string]string{}
	pendingList := ""

	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)

		if item, ok := strings.CutPrefix(line, listItemPrefix); ok {
			if pendingList == "" {
				continue
			}
			if current := data[pendingList]; current != "" {
				data[pendingList] = current + ListSeparator + item
			} else {
				data[pendingList] = item
			}
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if value == "" {
			pendingList = key
			data[key] = ""
			continue
		}
		data[key] = strings.TrimSpace(value)
		pendingList = ""
	}

	return data
}
