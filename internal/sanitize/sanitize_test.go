package sanitize

import (
	"strings"
	"testing"
)

func TestBlogContentKeepsFormatting(t *testing.T) {
	in := "<p><strong>Give</strong> blood</p>"
	if got := BlogContent(in); got != in {
		t.Fatalf("expected formatting preserved, got %q", got)
	}
}

func TestBlogContentRemovesScript(t *testing.T) {
	got := BlogContent("<p>Hi</p><script>alert(1)</script>")
	if got != "<p>Hi</p>" {
		t.Fatalf("expected script removed, got %q", got)
	}
}

func TestBlogContentRemovesJavascriptHref(t *testing.T) {
	got := BlogContent(`<a href="javascript:alert(1)">x</a>`)
	if strings.Contains(got, "javascript:") {
		t.Fatalf("expected javascript href removed, got %q", got)
	}
}

func TestTextStripsTags(t *testing.T) {
	if got := Text("  <b>Blood</b> drive "); got != "Blood drive" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestTextKeepsPunctuation(t *testing.T) {
	in := `Tom & Jerry's "blood" drive`
	if got := Text(in); got != in {
		t.Fatalf("expected %q unchanged, got %q", in, got)
	}
	if got := Text(`<i>A&amp;B</i> <script>x</script>`); got != "A&B" {
		t.Fatalf("unexpected %q", got)
	}
}
