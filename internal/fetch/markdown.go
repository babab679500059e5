package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun   = regexp.MustCompile(`[ \t\r\n\f]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// HTMLToMarkdown renders the main content of html as markdown.
// Relative links resolve against base when it is non-nil.
func HTMLToMarkdown(html string, base *url.URL, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	root := mainSelection(doc, contentSelectors, noiseSelectors)

	w := &mdWriter{base: base}
	w.children(root)
	return w.String(), nil
}

type mdWriter struct {
	b    strings.Builder
	base *url.URL
	// pre is set inside <pre> where whitespace is kept
	pre bool
}

func (w *mdWriter) String() string {
	lines := strings.Split(w.b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	out := strings.Join(lines, "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func (w *mdWriter) block() {
	w.b.WriteString("\n\n")
}

func (w *mdWriter) children(s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		w.node(c)
	})
}

func (w *mdWriter) node(s *goquery.Selection) {
	name := goquery.NodeName(s)
	switch name {
	case "#text":
		text := s.Text()
		if !w.pre {
			text = spaceRun.ReplaceAllString(text, " ")
		}
		w.b.WriteString(text)
	case "#comment", "img", "picture", "button", "input", "select", "template":
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(name[1] - '0')
		w.block()
		w.b.WriteString(strings.Repeat("#", level) + " " + w.inline(s))
		w.block()
	case "p", "div", "section", "article", "main", "header", "aside", "blockquote", "dl", "table", "details", "summary":
		w.block()
		w.children(s)
		w.block()
	case "br":
		w.b.WriteString("\n")
	case "hr":
		w.block()
		w.b.WriteString("---")
		w.block()
	case "ul", "ol":
		w.b.WriteString("\n")
		w.children(s)
		w.b.WriteString("\n")
	case "li":
		w.b.WriteString("\n- ")
		w.b.WriteString(w.inline(s))
	case "tr":
		var cells []string
		s.Find("th, td").Each(func(_ int, c *goquery.Selection) {
			cells = append(cells, w.inline(c))
		})
		w.b.WriteString("\n| " + strings.Join(cells, " | ") + " |")
	case "pre":
		w.block()
		w.b.WriteString("```\n" + strings.TrimRight(s.Text(), "\n") + "\n```")
		w.block()
	case "code":
		if text := strings.TrimSpace(s.Text()); text != "" {
			w.b.WriteString("`" + text + "`")
		}
	case "strong", "b":
		if text := w.inline(s); text != "" {
			w.b.WriteString("**" + text + "**")
		}
	case "em", "i":
		if text := w.inline(s); text != "" {
			w.b.WriteString("_" + text + "_")
		}
	case "a":
		w.link(s)
	default:
		w.children(s)
	}
}

func (w *mdWriter) link(s *goquery.Selection) {
	text := inlineText(s)
	href, ok := s.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		w.b.WriteString(text)
		return
	}
	if w.base != nil {
		if ref, err := url.Parse(href); err == nil {
			href = w.base.ResolveReference(ref).String()
		}
	}
	if text == "" {
		text = href
	}
	w.b.WriteString("[" + text + "](" + href + ")")
}

// inline renders the children of s as markdown on one line
func (w *mdWriter) inline(s *goquery.Selection) string {
	sub := &mdWriter{base: w.base}
	sub.children(s)
	return strings.Join(strings.Fields(sub.String()), " ")
}

// inlineText flattens the text of s onto one line
func inlineText(s *goquery.Selection) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s.Text(), " "))
}
