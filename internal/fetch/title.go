package fetch

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Title returns the text of the page <title>, or "" when the document has
// none or cannot be parsed. Used for progress logging only; the extraction
// stage never depends on DOM parsing.
func Title(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	head := findFirst(node, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(t.FirstChild.Data)
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}
