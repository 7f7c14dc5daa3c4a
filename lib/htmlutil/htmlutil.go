package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GetText concatenates every text node under node, script and style contents are skipped.
func GetText(node *html.Node) string {
	out := &strings.Builder{}
	writeText(node, out)
	return out.String()
}

func writeText(node *html.Node, out *strings.Builder) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		out.WriteString(node.Data)
		return
	case html.ElementNode:
		if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeText(child, out)
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// Normalize strips non-printable characters, trims the ends and collapses inner whitespace.
func Normalize(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n\r")
	return innerWhitespace.ReplaceAllString(s, " ")
}

var blockElements = map[atom.Atom]bool{
	atom.Div: true, atom.P: true, atom.Li: true, atom.Tr: true,
	atom.Table: true, atom.Ul: true, atom.Ol: true, atom.Section: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var headingElements = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var inlineTags = map[atom.Atom]string{
	atom.B:      "b",
	atom.Strong: "b",
	atom.I:      "i",
	atom.Em:     "i",
	atom.U:      "u",
}

// BasicMarkup flattens arbitrary html into the small subset of tags that simple
// pdf writers understand: <b>, <i>, <u> and <br>. block elements become line breaks,
// headings become bold lines and every other tag is dropped keeping only its text.
//
// `text` is applied to every text node (ex. to translate it into a pdf font's encoding),
// it may be nil.
func BasicMarkup(node *html.Node, text func(string) string) string {
	var out strings.Builder
	basicMarkupRecursive(node, text, &out)
	rendered := out.String()
	for strings.HasPrefix(rendered, "<br>") {
		rendered = rendered[len("<br>"):]
	}
	return rendered
}

func basicMarkupRecursive(node *html.Node, text func(string) string, out *strings.Builder) {
	if node == nil {
		return
	}

	switch node.Type {
	case html.TextNode:
		if strings.TrimSpace(node.Data) == "" {
			return
		}
		content := innerWhitespace.ReplaceAllString(removeNonPrintable(node.Data), " ")
		content = strings.NewReplacer("<", "(", ">", ")").Replace(content)
		if text != nil {
			content = text(content)
		}
		out.WriteString(content)
		return
	case html.ElementNode:
		if node.DataAtom == atom.Br {
			out.WriteString("<br>")
			return
		}
		if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
			return
		}
	}

	tag, inline := inlineTags[node.DataAtom]
	if headingElements[node.DataAtom] {
		tag, inline = "b", true
	}
	if blockElements[node.DataAtom] && !strings.HasSuffix(out.String(), "<br>") && out.Len() > 0 {
		out.WriteString("<br>")
	}
	if inline {
		out.WriteString("<" + tag + ">")
	}

	child := node.FirstChild
	for child != nil {
		basicMarkupRecursive(child, text, out)
		child = child.NextSibling
	}

	if inline {
		out.WriteString("</" + tag + ">")
	}
	if blockElements[node.DataAtom] && !strings.HasSuffix(out.String(), "<br>") {
		out.WriteString("<br>")
	}
}
