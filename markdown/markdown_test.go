package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(body string) string {
	return Renderer{}.HTML(body)
}

func TestInlineEmphasis(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"snake_case_name", "snake_case_name"},
		{`a \*literal\* star`, "a *literal* star"},
	}
	for _, tt := range tests {
		got := Renderer{}.inline(tt.input, new(int))
		if got != tt.expected {
			t.Errorf("inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineEscapesText(t *testing.T) {
	got := Renderer{}.inline(`<script>alert("x")</script> & more`, new(int))
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw tag leaked: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") || !strings.Contains(got, "&amp; more") {
		t.Errorf("expected escaped text, got %q", got)
	}
}

func TestInlineCodeIsLiteral(t *testing.T) {
	got := Renderer{}.inline("use `**not bold**` here", new(int))
	want := "use <code>**not bold**</code> here"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"relative", "[Results](/results/)", `<a href="/results/">Results</a>`},
		{"external opens new tab", "[Entry](https://entries.example.org/spring_league)",
			`<a href="https://entries.example.org/spring_league" target="_blank" rel="noopener noreferrer">Entry</a>`},
		{"mailto stays in tab", "[Email](mailto:sec@club.example)", `<a href="mailto:sec@club.example">Email</a>`},
		{"javascript dropped", "[x](javascript:void)", "x"},
		{"protocol relative dropped", "[x](//evil.example)", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Renderer{}.inline(tt.input, new(int))
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestImagesResolveUploads(t *testing.T) {
	r := Renderer{MediaBase: "http://cms.local:1337"}
	got := r.HTML("![Start line](/uploads/start.jpg)\n\n![Finish](/uploads/finish.jpg \"Photo finish\")")

	if !strings.Contains(got, `<img src="http://cms.local:1337/uploads/start.jpg" alt="Start line" fetchpriority="high" decoding="async"/>`) {
		t.Errorf("first image not resolved or not eager: %q", got)
	}
	if !strings.Contains(got, `loading="lazy"`) {
		t.Errorf("second image should be lazy: %q", got)
	}
	if !strings.Contains(got, "<figcaption>Photo finish</figcaption>") {
		t.Errorf("title should become a caption: %q", got)
	}
}

func TestHeadingsWithOffset(t *testing.T) {
	if got := render("# Club news"); got != "<h1>Club news</h1>" {
		t.Errorf("got %q", got)
	}
	r := Renderer{HeadingOffset: 1}
	if got := r.HTML("# Club news\n###### Deep"); got != "<h2>Club news</h2><h6>Deep</h6>" {
		t.Errorf("got %q", got)
	}
}

func TestParagraphs(t *testing.T) {
	got := render("First line\nsame paragraph\n\nSecond  \nafter break")
	want := "<p>First line same paragraph</p><p>Second<br/>after break</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLists(t *testing.T) {
	got := render("- 100m\n- 200m\n\n1. Heats\n2. Final\nWell run.")
	want := "<ul><li>100m</li><li>200m</li></ul><ol><li>Heats</li><li>Final</li></ol><p>Well run.</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBlockquote(t *testing.T) {
	got := render("> What a race\n> from start to finish")
	want := "<blockquote><p>What a race from start to finish</p></blockquote>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCodeBlock(t *testing.T) {
	got := render("```go\nx := a < b\n```")
	want := "<pre><code class=\"language-go\">x := a &lt; b\n</code></pre>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	unterminated := render("```\nopen")
	if !strings.HasSuffix(unterminated, "</code></pre>") {
		t.Errorf("unterminated fence should still close: %q", unterminated)
	}
}

func TestTable(t *testing.T) {
	got := render("| Event | Winner |\n|---|:---:|\n| 1500m | **Ann** |")
	want := "<table><thead><tr><th>Event</th><th>Winner</th></tr></thead><tbody><tr><td>1500m</td><td><strong>Ann</strong></td></tr></tbody></table>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHorizontalRule(t *testing.T) {
	if got := render("above\n\n---\n\nbelow"); got != "<p>above</p><hr/><p>below</p>" {
		t.Errorf("got %q", got)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"<p>Hello</p>", true},
		{"  <h2>Title</h2>", true},
		{"<div class=\"x\">y</div>", true},
		{"Plain text", false},
		{"<b>inline only</b>", false},
		{"a < b", false},
	}
	for _, tt := range tests {
		if got := LooksLikeHTML(tt.input); got != tt.want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHTMLBodiesAreNormalised(t *testing.T) {
	got := render(`<p>Well done to <strong>everyone</strong>.</p><script>alert(1)</script>`)
	if strings.Contains(got, "script") {
		t.Fatalf("script survived: %q", got)
	}
	if !strings.Contains(got, "<strong>everyone</strong>") {
		t.Errorf("emphasis lost: %q", got)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := (Renderer{}).Component("**hi**").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<p><strong>hi</strong></p>" {
		t.Errorf("got %q", buf.String())
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading\n\nSome **bold** and [a link](/x).\n\n![img](/a.jpg)\n- item", "Heading Some bold and a link. item"},
		{"<p>Club <em>night</em> on Friday</p>", "Club night on Friday"},
		{"keep snake_case but drop _emphasis_", "keep snake_case but drop emphasis"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PlainText(tt.input); got != tt.expected {
			t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
