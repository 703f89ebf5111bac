package plan

// Default returns the reference deployment: the Tailwind play CDN bundle, the AOS
// stylesheet and script, and the FontAwesome 6.4.0 stylesheet with its webfonts.
func Default() *Plan {
	return &Plan{
		Assets: []AssetSpec{
			{
				Name: "tailwindcss",
				URL:  "https://cdn.tailwindcss.com",
				Dest: "assets/js/tailwindcss.js",
				Attr: "src",
			},
			{
				Name: "aos-css",
				URL:  "https://unpkg.com/aos@2.3.1/dist/aos.css",
				Dest: "assets/css/aos.css",
				Attr: "href",
			},
			{
				Name: "aos-js",
				URL:  "https://unpkg.com/aos@2.3.1/dist/aos.js",
				Dest: "assets/js/aos.js",
				Attr: "src",
			},
			{
				Name: "fontawesome",
				URL:  "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.0/css/all.min.css",
				Dest: "assets/css/fontawesome.css",
				Attr: "href",
				Nested: &NestedRefs{
					BaseURL: "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.0/webfonts/",
					DestDir: "assets/webfonts",
				},
			},
		},
		Preconnects: []string{
			"https://cdn.tailwindcss.com",
			"https://cdnjs.cloudflare.com",
			"https://unpkg.com",
		},
	}
}
