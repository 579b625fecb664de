package htmldom

import (
	"strings"

	"golang.org/x/net/html"
)

// Supported selectors:
//   - tag: "h1", "yt-formatted-string"
//   - .class, #id, tag.class, tag#id
//   - tag[attr], tag[attr=val], tag[attr="val"]
//   - compounds separated by space (descendant combinator)

// querySelectorAll returns matching elements in document order
func querySelectorAll(root *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}

	var results []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if matchesPath(n, parts) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

// querySelector returns the first match or nil
func querySelector(root *html.Node, selector string) *html.Node {
	if m := querySelectorAll(root, selector); len(m) > 0 {
		return m[0]
	}
	return nil
}

// matchesPath reports whether n matches the last part and its ancestors
// satisfy the preceding parts in order.
func matchesPath(n *html.Node, parts []string) bool {
	last := len(parts) - 1
	if !matchesSelector(n, parseSimpleSelector(parts[last])) {
		return false
	}

	i := last - 1
	for p := n.Parent; p != nil && i >= 0; p = p.Parent {
		if matchesSelector(p, parseSimpleSelector(parts[i])) {
			i--
		}
	}
	return i < 0
}

type simpleSelector struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
	hasVal  bool
}

func parseSimpleSelector(sel string) simpleSelector {
	var s simpleSelector

	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attrPart := strings.TrimSuffix(sel[idx+1:], "]")
		sel = sel[:idx]
		if eq := strings.IndexByte(attrPart, '='); eq >= 0 {
			s.attrKey = strings.ToLower(attrPart[:eq])
			s.attrVal = strings.Trim(attrPart[eq+1:], `"'`)
			s.hasVal = true
		} else {
			s.attrKey = strings.ToLower(attrPart)
		}
	}

	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		s.id = sel[idx+1:]
		sel = sel[:idx]
	}

	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.class = sel[idx+1:]
		sel = sel[:idx]
	}

	s.tag = strings.ToLower(sel)
	return s
}

func matchesSelector(n *html.Node, s simpleSelector) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && getAttr(n, "id") != s.id {
		return false
	}
	if s.class != "" && !hasClass(n, s.class) {
		return false
	}
	if s.attrKey != "" {
		val, ok := lookupAttr(n, s.attrKey)
		if !ok || (s.hasVal && val != s.attrVal) {
			return false
		}
	}
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
