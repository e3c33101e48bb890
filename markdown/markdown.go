// Package markdown renders CMS rich-text bodies to HTML as a templ component.
//
// All text is escaped; only the markup produced here reaches the page. Bodies
// that arrive as HTML (pasted from an editor) are first converted back to
// markdown so they go through the same escaping path.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/a-h/templ"
)

var (
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*|\b_([^_]+)_\b`)
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+&#34;([^&]*)&#34;)?\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	reOrdered    = regexp.MustCompile(`^\d+[.)]\s+`)
	reHeading    = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*$`)
	reHTMLStart  = regexp.MustCompile(`^\s*<(p|div|h[1-6]|ul|ol|table|figure|blockquote|section|article)[\s>]`)
	reEscaped    = regexp.MustCompile("\\\\([\\\\`*_{}\\[\\]()#+\\-.!|])")
)

// Renderer turns markdown into HTML fragments.
type Renderer struct {
	// MediaBase resolves relative upload paths (/uploads/...) in images and links.
	MediaBase string
	// HeadingOffset shifts heading levels so a body "# Title" does not
	// compete with the page's own h1.
	HeadingOffset int
}

// Component returns a templ.Component that renders body.
func (r Renderer) Component(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, r.HTML(body))
		return err
	})
}

// HTML renders body to an HTML string.
func (r Renderer) HTML(body string) string {
	if LooksLikeHTML(body) {
		if converted, err := FromHTML(body); err == nil {
			body = converted
		}
	}
	var buf bytes.Buffer
	r.render(&buf, body)
	return buf.String()
}

// LooksLikeHTML reports whether body starts with a block-level HTML tag.
func LooksLikeHTML(body string) bool {
	return reHTMLStart.MatchString(body)
}

// FromHTML converts an HTML fragment to markdown. Scripts, styles and
// unknown tags are dropped by the converter.
func FromHTML(fragment string) (string, error) {
	conv := md.NewConverter("", true, &md.Options{
		CodeBlockStyle: "fenced",
		HorizontalRule: "---",
	})
	conv.Remove("script", "style", "iframe", "form")
	return conv.ConvertString(fragment)
}

var (
	rePlainImage  = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	rePlainLink   = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	rePlainMarks  = regexp.MustCompile("(?m)^\\s*(#{1,6}|>|[-*]|\\d+[.)])\\s+|[*`|]+|^-{3,}$")
	rePlainUnder  = regexp.MustCompile(`\b_{1,2}([^_]+?)_{1,2}\b`)
	rePlainSpaces = regexp.MustCompile(`\s+`)
)

// PlainText strips markup from body, leaving single-spaced prose suitable
// for excerpts and feed descriptions.
func PlainText(body string) string {
	if LooksLikeHTML(body) {
		if converted, err := FromHTML(body); err == nil {
			body = converted
		}
	}
	body = rePlainImage.ReplaceAllString(body, "")
	body = rePlainLink.ReplaceAllString(body, "$1")
	body = reEscaped.ReplaceAllString(body, "$1")
	body = rePlainMarks.ReplaceAllString(body, " ")
	body = rePlainUnder.ReplaceAllString(body, "$1")
	return strings.TrimSpace(rePlainSpaces.ReplaceAllString(body, " "))
}

// block is the kind of element currently open.
type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockCode
	blockTable
)

var closeTags = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</p></blockquote>",
	blockCode:    "</code></pre>",
	blockTable:   "</tbody></table>",
}

type state struct {
	buf       *bytes.Buffer
	open      block
	images    int
	hardBreak bool
}

// enter closes the current block unless it is already b. It reports whether
// a new block was opened.
func (s *state) enter(b block, openTag string) bool {
	if s.open == b {
		return false
	}
	s.close()
	s.buf.WriteString(openTag)
	s.open = b
	return true
}

func (s *state) close() {
	if s.open != blockNone {
		s.buf.WriteString(closeTags[s.open])
		s.open = blockNone
	}
}

func (r Renderer) render(buf *bytes.Buffer, body string) {
	s := &state{buf: buf}
	inline := func(text string) string { return r.inline(text, &s.images) }

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if s.open == blockCode {
				s.close()
				continue
			}
			s.close()
			if lang := strings.TrimSpace(trimmed[3:]); lang != "" {
				buf.WriteString(`<pre><code class="language-` + html.EscapeString(lang) + `">`)
			} else {
				buf.WriteString("<pre><code>")
			}
			s.open = blockCode
			continue
		}
		if s.open == blockCode {
			buf.WriteString(html.EscapeString(line))
			buf.WriteByte('\n')
			continue
		}

		if trimmed == "" {
			s.close()
			continue
		}

		switch {
		case trimmed == "---" || trimmed == "***":
			s.close()
			buf.WriteString("<hr/>")
		case reHeading.MatchString(trimmed):
			s.close()
			m := reHeading.FindStringSubmatch(trimmed)
			level := min(len(m[1])+r.HeadingOffset, 6)
			tag := "h" + strconv.Itoa(level)
			buf.WriteString("<" + tag + ">" + inline(m[2]) + "</" + tag + ">")
		case strings.HasPrefix(trimmed, "|"):
			r.tableRow(s, trimmed)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			s.enter(blockList, "<ul>")
			buf.WriteString("<li>" + inline(trimmed[2:]) + "</li>")
		case reOrdered.MatchString(trimmed):
			s.enter(blockOrdered, "<ol>")
			buf.WriteString("<li>" + inline(reOrdered.ReplaceAllString(trimmed, "")) + "</li>")
		case strings.HasPrefix(trimmed, ">"):
			text := strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
			if !s.enter(blockQuote, "<blockquote><p>") {
				buf.WriteByte(' ')
			}
			buf.WriteString(inline(text))
		default:
			if !s.enter(blockPara, "<p>") {
				if s.hardBreak {
					buf.WriteString("<br/>")
				} else {
					buf.WriteByte(' ')
				}
			}
			buf.WriteString(inline(trimmed))
		}
		s.hardBreak = strings.HasSuffix(line, "  ")
	}
	s.close()
}

func (r Renderer) tableRow(s *state, line string) {
	cells := splitCells(line)
	if s.enter(blockTable, "<table><thead><tr>") {
		for _, c := range cells {
			s.buf.WriteString("<th>" + r.inline(c, &s.images) + "</th>")
		}
		s.buf.WriteString("</tr></thead><tbody>")
		return
	}
	if isSeparatorRow(cells) {
		return
	}
	s.buf.WriteString("<tr>")
	for _, c := range cells {
		s.buf.WriteString("<td>" + r.inline(c, &s.images) + "</td>")
	}
	s.buf.WriteString("</tr>")
}

func splitCells(line string) []string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(line), "|"), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// inline formats one line of text. The input is escaped first, so every tag
// in the output was produced here.
func (r Renderer) inline(text string, images *int) string {
	s := html.EscapeString(text)

	var codes []string
	s = reInlineCode.ReplaceAllStringFunc(s, func(m string) string {
		codes = append(codes, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(codes)-1) + "\x00"
	})
	s = reEscaped.ReplaceAllStringFunc(s, func(m string) string {
		codes = append(codes, m[1:])
		return "\x00" + strconv.Itoa(len(codes)-1) + "\x00"
	})

	s = reImage.ReplaceAllStringFunc(s, func(m string) string {
		g := reImage.FindStringSubmatch(m)
		src := r.safeURL(g[2])
		if src == "" {
			return g[1]
		}
		*images++
		loading := `loading="lazy"`
		if *images == 1 {
			loading = `fetchpriority="high"`
		}
		out := `<img src="` + src + `" alt="` + g[1] + `" ` + loading + ` decoding="async"/>`
		if g[3] != "" {
			out = `<figure>` + out + `<figcaption>` + g[3] + `</figcaption></figure>`
		}
		return out
	})

	s = reLink.ReplaceAllStringFunc(s, func(m string) string {
		g := reLink.FindStringSubmatch(m)
		href := r.safeURL(g[2])
		if href == "" {
			return g[1]
		}
		attrs := ""
		if isExternal(href) {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + g[1] + `</a>`
	})

	s = outsideTags(s, func(seg string) string {
		seg = reBold.ReplaceAllStringFunc(seg, func(m string) string {
			g := reBold.FindStringSubmatch(m)
			return "<strong>" + g[1] + g[2] + "</strong>"
		})
		return reItalic.ReplaceAllStringFunc(seg, func(m string) string {
			g := reItalic.FindStringSubmatch(m)
			return "<em>" + g[1] + g[2] + "</em>"
		})
	})

	for i, c := range codes {
		s = strings.Replace(s, "\x00"+strconv.Itoa(i)+"\x00", c, 1)
	}
	return s
}

// outsideTags applies fn to the text between tags only, so attribute values
// such as hrefs are never reformatted.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// safeURL unescapes, resolves upload paths against MediaBase and allows only
// relative, http(s), mailto and tel targets. The result is attribute-escaped.
func (r Renderer) safeURL(escaped string) string {
	raw := strings.TrimSpace(html.UnescapeString(escaped))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "/uploads/") && r.MediaBase != "" {
		if base, err := url.Parse(r.MediaBase); err == nil {
			if ref, err := url.Parse(raw); err == nil {
				raw = base.ResolveReference(ref).String()
			}
		}
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "#") {
		if strings.HasPrefix(raw, "//") {
			return ""
		}
		return html.EscapeString(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(raw)
	default:
		return ""
	}
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}
