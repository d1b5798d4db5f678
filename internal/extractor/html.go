package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/davidriles/folio/internal/content"
	"golang.org/x/net/html"
)

// HTMLExtractor handles HTML documents: uploaded files and fetched
// web-novel chapter pages.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(r io.Reader, name string) ([]*content.Chapter, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := findTitle(doc)
	if title == "" {
		title = baseTitle(name)
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}

	chapters := walkBody(body, title)
	chapters = reindex(chapters)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no extractable content in %s", name)
	}
	return chapters, nil
}

// walkBody splits the document into chapters on heading tags and collects
// block-level text and images in document order.
func walkBody(body *html.Node, title string) []*content.Chapter {
	current := &content.Chapter{Title: title}
	chapters := []*content.Chapter{current}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if headingLevel(n.Data) > 0 {
				heading := textContent(n)
				if heading != "" {
					current = &content.Chapter{Title: heading}
					chapters = append(chapters, current)
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "aside":
				return
			case "p", "li", "td", "blockquote", "pre", "div":
				if n.Data == "div" && !isLeafBlock(n) {
					break // container div, recurse
				}
				collectBlock(n, current)
				return
			case "img":
				appendImage(n, current)
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)

	return chapters
}

// collectBlock turns one block element into raw text elements, resolving
// <br> to \n and flushing around inline images so document order holds.
func collectBlock(block *html.Node, ch *content.Chapter) {
	var buf strings.Builder
	flush := func() {
		if t := strings.TrimSpace(buf.String()); t != "" {
			ch.Elements = append(ch.Elements, content.TextElement(t))
		}
		buf.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "br":
				buf.WriteString("\n")
				return
			case "img":
				flush()
				appendImage(n, ch)
				return
			case "script", "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(block)
	flush()
}

// isLeafBlock reports whether a div holds only inline content, which makes
// it a text block rather than a container. Web-novel sites wrap paragraphs
// in bare divs often enough that this matters.
func isLeafBlock(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "br", "img", "a", "b", "i", "em", "strong", "span", "u", "s", "small", "sub", "sup":
		default:
			return false
		}
	}
	return true
}

func appendImage(n *html.Node, ch *content.Chapter) {
	src := attrValue(n, "src")
	if src == "" {
		return
	}
	ch.Elements = append(ch.Elements, content.ImageElement(src, attrValue(n, "alt")))
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
