package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ExtractedText is the result of reducing a page's HTML to readable text.
type ExtractedText struct {
	Title     string
	Text      string
	Truncated bool
}

// ExtractText parses raw page HTML and reduces it to plain text: script,
// style and similar noise elements are dropped, block elements become line
// breaks, and the output is cut at maxLength characters.
func ExtractText(rawHTML string, maxLength int) (*ExtractedText, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &ExtractedText{Title: findTitle(doc)}

	var builder strings.Builder
	var length int
	result.Truncated = collectText(doc, &builder, &length, maxLength)
	result.Text = strings.TrimSpace(builder.String())

	if result.Truncated {
		result.Text += fmt.Sprintf("\n\n[Content truncated at %d characters]", maxLength)
	}
	return result, nil
}

// collectText walks the node tree appending text content. Returns true
// once maxLength is reached.
func collectText(n *html.Node, builder *strings.Builder, length *int, maxLength int) bool {
	if maxLength > 0 && *length >= maxLength {
		return true
	}

	switch n.Type {
	case html.CommentNode:
		return false
	case html.ElementNode:
		if isNoiseElement(strings.ToLower(n.Data)) {
			return false
		}
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return false
		}
		if builder.Len() > 0 {
			builder.WriteString(" ")
			*length++
		}
		if maxLength > 0 && *length+len(text) > maxLength {
			builder.WriteString(text[:maxLength-*length])
			*length = maxLength
			return true
		}
		builder.WriteString(text)
		*length += len(text)
		return false
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if collectText(c, builder, length, maxLength) {
			return true
		}
	}

	if n.Type == html.ElementNode && isBlockElement(strings.ToLower(n.Data)) && builder.Len() > 0 {
		builder.WriteString("\n")
		*length++
	}
	return false
}

// findTitle returns the document title, or "".
func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && strings.ToLower(n.Data) == "title" {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}

// isNoiseElement returns true for elements that carry no readable content.
func isNoiseElement(tagName string) bool {
	noise := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"iframe":   true,
		"embed":    true,
		"object":   true,
		"svg":      true,
		"head":     true,
		"template": true,
	}
	return noise[tagName]
}

// isBlockElement returns true for block-level elements, which become line
// breaks in the extracted text.
func isBlockElement(tagName string) bool {
	blocks := map[string]bool{
		"div":        true,
		"p":          true,
		"section":    true,
		"article":    true,
		"header":     true,
		"footer":     true,
		"nav":        true,
		"main":       true,
		"aside":      true,
		"h1":         true,
		"h2":         true,
		"h3":         true,
		"h4":         true,
		"h5":         true,
		"h6":         true,
		"ul":         true,
		"ol":         true,
		"li":         true,
		"table":      true,
		"tr":         true,
		"blockquote": true,
		"pre":        true,
		"br":         true,
	}
	return blocks[tagName]
}
