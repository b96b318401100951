package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
)

// Format is the markup a provider is asked to produce.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "html", "markdown" or "md" (case-insensitive).
// Empty means FormatHTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// Render returns HTML for text produced in format f.
func Render(text string, f Format) string {
	if f == FormatMarkdown {
		return string(blackfriday.Run([]byte(text)))
	}
	return text
}

// block elements that start a new line in PlainText
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "ul": true, "ol": true, "br": true, "tr": true,
	"blockquote": true, "pre": true, "table": true,
}

// PlainText flattens HTML into readable text. List items become "- "
// bullets and block elements become line breaks. Runs of blank lines collapse.
// Input that fails to parse is returned unchanged.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, n *goquery.Selection) {
			if goquery.NodeName(n) == "#text" {
				b.WriteString(collapseSpace(n.Text()))
				return
			}
			tag := goquery.NodeName(n)
			if tag == "li" {
				b.WriteString("\n- ")
				walk(n)
				return
			}
			if blockTags[tag] {
				b.WriteString("\n")
			}
			walk(n)
			if blockTags[tag] {
				b.WriteString("\n")
			}
		})
	}
	walk(doc.Find("body"))

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func collapseSpace(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	lead := s[0] == ' ' || s[0] == '\n' || s[0] == '\t'
	trail := s[len(s)-1] == ' ' || s[len(s)-1] == '\n' || s[len(s)-1] == '\t'
	out := strings.Join(strings.Fields(s), " ")
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}
