package collect

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/sells-group/storegeo/internal/directory"
)

// addressClass marks the elements holding a store address.
const addressClass = "address"

// ExtractAddresses returns the normalized text of every span whose class
// list contains "address", in document order. Line breaks inside a span
// become spaces. Malformed markup yields whatever the HTML5 parser
// recovers; only a read failure is an error.
func ExtractAddresses(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "collect: parse html")
	}

	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "span" && hasClass(n, addressClass) {
			var sb strings.Builder
			nodeText(n, &sb)
			if addr := directory.NormalizeAddress(sb.String()); addr != "" {
				out = append(out, addr)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return out, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nodeText concatenates the text below n, writing a space for each <br>.
func nodeText(n *html.Node, sb *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		sb.WriteString(n.Data)
	case n.Type == html.ElementNode && n.Data == "br":
		sb.WriteByte(' ')
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			nodeText(child, sb)
		}
	}
}
