package htmlutil

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var ErrElementNotFound = errors.New("element not found")
var ErrAttributeNotFound = errors.New("attribute not found")

// ParseDocument builds a best-effort document tree, malformed markup is
// repaired the same way a browser would.
func ParseDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// CollapseWhitespace trims s and replaces every inner whitespace run with a
// single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizedText returns the text of every element in the selection as a
// browser renders it: whitespace collapsed, elements separated by a space and
// elements without text skipped.
func NormalizedText(sel *goquery.Selection) string {
	parts := make([]string, 0, len(sel.Nodes))
	for _, n := range sel.Nodes {
		text := CollapseWhitespace(GetText(n))
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// Nth finds the i-th descendant of sel matching selector.
func Nth(sel *goquery.Selection, selector string, i int) (*goquery.Selection, error) {
	matches := sel.Find(selector)
	if i < 0 || i >= matches.Length() {
		return nil, fmt.Errorf(
			"%w: '%s' index %d (found %d)",
			ErrElementNotFound, selector, i, matches.Length(),
		)
	}
	return matches.Eq(i), nil
}

func First(sel *goquery.Selection, selector string) (*goquery.Selection, error) {
	return Nth(sel, selector, 0)
}

func RequireAttr(sel *goquery.Selection, name string) (string, error) {
	value, ok := sel.Attr(name)
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrAttributeNotFound, name)
	}
	return value, nil
}

// ClassNames splits the class attribute of the first element in sel into
// its tokens, in attribute order.
func ClassNames(sel *goquery.Selection) []string {
	return strings.Fields(sel.AttrOr("class", ""))
}

// InnerHtml renders the children of the first element in sel.
func InnerHtml(sel *goquery.Selection) (string, error) {
	return sel.Html()
}
