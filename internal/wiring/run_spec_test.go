package wiring

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"vendorize/internal/fetch"
	"vendorize/internal/plan"
)

const siteCSS = `.fa{font-family:"Font Awesome 6 Free"}@font-face{src:url(../webfonts/fa-solid-900.woff2) format("woff2"),url(../webfonts/fa-solid-900.ttf?v=6) format("truetype")}`

// cdn serves a tiny stand-in for the three vendor hosts. Paths in missing return 404.
func cdn(missing ...string) *httptest.Server {
	gone := make(map[string]bool)
	for _, m := range missing {
		gone[m] = true
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gone[r.URL.Path] {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Path {
		case "/tailwind":
			http.Redirect(w, r, "/tailwind/3.4.js", http.StatusFound)
		case "/fa/css/all.min.css":
			fmt.Fprint(w, siteCSS)
		default:
			fmt.Fprintf(w, "/* %s */", r.URL.Path)
		}
	}))
}

func cdnPlan(base string) *plan.Plan {
	return &plan.Plan{
		Assets: []plan.AssetSpec{
			{Name: "tailwindcss", URL: base + "/tailwind", Dest: "assets/js/tailwindcss.js", Attr: "src"},
			{Name: "aos-css", URL: base + "/aos/aos.css", Dest: "assets/css/aos.css", Attr: "href"},
			{Name: "aos-js", URL: base + "/aos/aos.js", Dest: "assets/js/aos.js", Attr: "src"},
			{
				Name: "fontawesome", URL: base + "/fa/css/all.min.css", Dest: "assets/css/fontawesome.css", Attr: "href",
				Nested: &plan.NestedRefs{BaseURL: base + "/fa/webfonts/", DestDir: "assets/webfonts"},
			},
		},
		Preconnects: []string{base},
	}
}

func sitePage(base string) string {
	return `<html><head>
    <link rel="preconnect" href="` + base + `">
    <script src="` + base + `/tailwind"></script>
    <link rel="stylesheet" href="` + base + `/aos/aos.css">
    <link rel="stylesheet" href="` + base + `/fa/css/all.min.css">
</head><body>
    <script src="` + base + `/aos/aos.js"></script>
</body></html>`
}

var _ = ginkgo.Describe("Run", func() {
	var (
		server *httptest.Server
		root   string
		cfg    Config
	)

	setup := func(missing ...string) {
		server = cdn(missing...)
		ginkgo.DeferCleanup(server.Close)
		root = ginkgo.GinkgoT().TempDir()
		gomega.Expect(os.WriteFile(filepath.Join(root, "index.html"), []byte(sitePage(server.URL)), 0o644)).To(gomega.Succeed())
		gomega.Expect(os.WriteFile(filepath.Join(root, "privacy.html"), []byte("<html><body>plain</body></html>"), 0o644)).To(gomega.Succeed())
		client, err := fetch.New(fetch.WithHTTPClient(server.Client()))
		gomega.Expect(err).To(gomega.Succeed())
		cfg = Config{Root: root, Plan: cdnPlan(server.URL), Fetcher: client}
	}

	ginkgo.It("vendors every asset and leaves no remote references", func() {
		setup()

		sum, err := Run(context.Background(), cfg)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(sum.Failed()).To(gomega.BeFalse())
		gomega.Expect(sum.Report.Outcomes).To(gomega.HaveLen(6))

		for _, rel := range []string{
			"assets/js/tailwindcss.js", "assets/css/aos.css", "assets/js/aos.js",
			"assets/css/fontawesome.css", "assets/webfonts/fa-solid-900.woff2", "assets/webfonts/fa-solid-900.ttf",
		} {
			gomega.Expect(filepath.Join(root, rel)).To(gomega.BeAnExistingFile())
		}

		page, err := os.ReadFile(filepath.Join(root, "index.html"))
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(string(page)).To(gomega.ContainSubstring(`<script src="assets/js/tailwindcss.js"></script>`))
		gomega.Expect(string(page)).To(gomega.ContainSubstring(`href="assets/css/fontawesome.css"`))
		gomega.Expect(string(page)).NotTo(gomega.ContainSubstring(server.URL))
		gomega.Expect(sum.Findings).To(gomega.BeEmpty())

		gomega.Expect(sum.Documents).To(gomega.HaveLen(2))
		gomega.Expect(sum.Documents[0].Changed).To(gomega.BeTrue())  // index.html
		gomega.Expect(sum.Documents[1].Changed).To(gomega.BeFalse()) // privacy.html
	})

	ginkgo.It("is idempotent on a second run", func() {
		setup()
		_, err := Run(context.Background(), cfg)
		gomega.Expect(err).To(gomega.Succeed())

		sum, err := Run(context.Background(), cfg)
		gomega.Expect(err).To(gomega.Succeed())
		for _, d := range sum.Documents {
			gomega.Expect(d.Changed).To(gomega.BeFalse(), d.Path)
		}
	})

	ginkgo.It("records a missing asset without aborting", func() {
		setup("/aos/aos.js")

		sum, err := Run(context.Background(), cfg)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(sum.Failed()).To(gomega.BeTrue())
		gomega.Expect(sum.Report.Failed()).To(gomega.HaveLen(1))
		gomega.Expect(sum.Report.Failed()[0].Asset).To(gomega.Equal("aos-js"))
		gomega.Expect(sum.Report.Succeeded()).To(gomega.HaveLen(5))
		gomega.Expect(filepath.Join(root, "assets/js/aos.js")).NotTo(gomega.BeAnExistingFile())
	})

	ginkgo.It("audits without fetching or rewriting", func() {
		setup()
		cfg.SkipFetch = true
		cfg.SkipRewrite = true
		cfg.Fetcher = nil

		sum, err := Run(context.Background(), cfg)
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(sum.Report).To(gomega.BeNil())
		gomega.Expect(sum.Documents).To(gomega.BeNil())
		gomega.Expect(sum.Findings).To(gomega.HaveLen(5))
	})

	ginkgo.It("fails before any request when the plan is invalid", func() {
		setup()
		cfg.Plan.Assets[0].Dest = "../escape.js"

		sum, err := Run(context.Background(), cfg)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("inside the site root")))
		gomega.Expect(sum).To(gomega.BeNil())
		gomega.Expect(filepath.Join(root, "assets")).NotTo(gomega.BeADirectory())
	})

	ginkgo.It("fails when the root cannot be listed", func() {
		setup()
		cfg.Root = filepath.Join(root, "missing")

		_, err := Run(context.Background(), cfg)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("Summary", func() {
	ginkgo.It("is not failed when every section is empty", func() {
		gomega.Expect((&Summary{}).Failed()).To(gomega.BeFalse())
	})
})
