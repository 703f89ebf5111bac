package rewrite

import (
	"strings"
	"testing"
)

var tailwind = AttrRule("tailwind", "src", "https://cdn.tailwindcss.com", "assets/js/tailwindcss.js")

func TestAttrRule_Tailwind(t *testing.T) {
	in := `<head>
    <script src="https://cdn.tailwindcss.com"></script>
</head>`
	out, changed := Apply(in, []Rule{tailwind})
	if !changed {
		t.Fatal("expected change")
	}
	if !strings.Contains(out, `<script src="assets/js/tailwindcss.js"></script>`) {
		t.Errorf("local reference missing:\n%s", out)
	}
	if strings.Contains(out, "cdn.tailwindcss.com") {
		t.Errorf("external reference still present:\n%s", out)
	}
}

func TestAttrRule_Idempotent(t *testing.T) {
	in := `<script src="https://cdn.tailwindcss.com"></script>`
	once, _ := Apply(in, []Rule{tailwind})
	twice, changed := Apply(once, []Rule{tailwind})
	if changed {
		t.Error("second application must not report a change")
	}
	if once != twice {
		t.Errorf("second application altered content: %q -> %q", once, twice)
	}
}

func TestAttrRule_LeavesUnrelatedMarkup(t *testing.T) {
	in := `<link rel="stylesheet" href="https://unpkg.com/aos@2.3.1/dist/aos.css" media="all" data-href="https://unpkg.com/aos@2.3.1/dist/aos.css">`
	rule := AttrRule("aos-css", "href", "https://unpkg.com/aos@2.3.1/dist/aos.css", "assets/css/aos.css")
	out, changed := Apply(in, []Rule{rule})
	if !changed {
		t.Fatal("expected change")
	}
	want := `<link rel="stylesheet" href="assets/css/aos.css" media="all" data-href="https://unpkg.com/aos@2.3.1/dist/aos.css">`
	if out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}
}

func TestAttrRule_SingleQuotes(t *testing.T) {
	in := `<script src='https://unpkg.com/aos@2.3.1/dist/aos.js'></script>`
	rule := AttrRule("aos-js", "src", "https://unpkg.com/aos@2.3.1/dist/aos.js", "assets/js/aos.js")
	out, _ := Apply(in, []Rule{rule})
	if out != `<script src='assets/js/aos.js'></script>` {
		t.Errorf("unexpected %s", out)
	}
}

func TestAttrRule_DoesNotMatchLongerURL(t *testing.T) {
	in := `<script src="https://cdn.tailwindcss.com?plugins=forms"></script>`
	out, changed := Apply(in, []Rule{tailwind})
	if changed || out != in {
		t.Errorf("URL with extra query must not be rewritten: %s", out)
	}
}

func TestAttrRule_ContainsGuardOnly(t *testing.T) {
	// The URL appears, but not as a src attribute: content must stay byte-identical.
	in := `<link rel="preconnect" href="https://cdn.tailwindcss.com"><p>see https://cdn.tailwindcss.com</p>`
	out, changed := Apply(in, []Rule{tailwind})
	if changed || out != in {
		t.Errorf("unexpected change: %s", out)
	}
}

func TestAttrRule_DollarInLocalPath(t *testing.T) {
	rule := AttrRule("odd", "src", "https://x.example/a.js", "assets/$1/a.js")
	out, _ := Apply(`<script src="https://x.example/a.js">`, []Rule{rule})
	if out != `<script src="assets/$1/a.js">` {
		t.Errorf("unexpected %s", out)
	}
}

func TestApply_OrderInsensitive(t *testing.T) {
	aosCSS := AttrRule("aos-css", "href", "https://unpkg.com/aos@2.3.1/dist/aos.css", "assets/css/aos.css")
	aosJS := AttrRule("aos-js", "src", "https://unpkg.com/aos@2.3.1/dist/aos.js", "assets/js/aos.js")
	in := `<link href="https://unpkg.com/aos@2.3.1/dist/aos.css" rel="stylesheet">
<script src="https://cdn.tailwindcss.com"></script>
<script src="https://unpkg.com/aos@2.3.1/dist/aos.js"></script>`

	a, _ := Apply(in, []Rule{tailwind, aosCSS, aosJS})
	b, _ := Apply(in, []Rule{aosJS, tailwind, aosCSS})
	if a != b {
		t.Errorf("rule order changed the result:\n%s\n---\n%s", a, b)
	}
}

func TestPreconnectRule_RemovesOwnLine(t *testing.T) {
	in := "<head>\n    <meta charset=\"utf-8\">\n    <link rel=\"preconnect\" href=\"https://unpkg.com\">\n    <title>Home</title>\n</head>"
	want := "<head>\n    <meta charset=\"utf-8\">\n    <title>Home</title>\n</head>"
	out, changed := Apply(in, []Rule{PreconnectRule("https://unpkg.com")})
	if !changed {
		t.Fatal("expected change")
	}
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestPreconnectRule_SharedLineKeepsNeighbours(t *testing.T) {
	rule := PreconnectRule("https://unpkg.com")
	cases := []struct{ in, want string }{
		{
			in:   "a\n  <link rel=\"preconnect\" href=\"https://unpkg.com\"><meta charset=\"utf-8\">\nb",
			want: "a\n  <meta charset=\"utf-8\">\nb",
		},
		{
			in:   "a\n  <meta charset=\"utf-8\"><link rel=\"preconnect\" href=\"https://unpkg.com\">\nb",
			want: "a\n  <meta charset=\"utf-8\">\nb",
		},
		{
			in:   "a\r\n  <link rel=\"preconnect\" href=\"https://unpkg.com\">\r\nb",
			want: "a\r\nb",
		},
		{
			in:   "<head>\n  <link rel=\"preconnect\" href=\"https://unpkg.com\">\n  <link rel=\"dns-prefetch\" href=\"https://unpkg.com/\">\n</head>",
			want: "<head>\n</head>",
		},
	}
	for _, tc := range cases {
		if got := rule.Apply(tc.in); got != tc.want {
			t.Errorf("Apply(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPreconnectRule_Variants(t *testing.T) {
	rule := PreconnectRule("https://cdnjs.cloudflare.com/")
	cases := []string{
		`<link rel="preconnect" href="https://cdnjs.cloudflare.com">`,
		`<link href='https://cdnjs.cloudflare.com/' rel="dns-prefetch">`,
		`<LINK rel="preconnect" HREF="https://cdnjs.cloudflare.com" crossorigin>`,
	}
	for _, in := range cases {
		if out := rule.Apply(in); out != "" {
			t.Errorf("Apply(%s) = %q, want empty", in, out)
		}
	}
}

func TestPreconnectRule_KeepsStylesheets(t *testing.T) {
	in := `<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.0/css/all.min.css">`
	if out := PreconnectRule("https://cdnjs.cloudflare.com").Apply(in); out != in {
		t.Errorf("stylesheet link removed: %q", out)
	}
}
