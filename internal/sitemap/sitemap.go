// Package sitemap renders a sitemaps.org-schema sitemap.xml for the public
// site from a catalog snapshot.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"pubdocs/internal/model"
)

const (
	// xmlns is the sitemaps.org schema namespace.
	xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"
	// maxURLsPerSitemap is the schema's hard cap per sitemap file.
	maxURLsPerSitemap = 50000
)

// URL is a single sitemap entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Build renders sitemap.xml content for the static pages, every category
// page, and every document's canonical URL (slug preferred over id). Entries
// beyond the schema cap are dropped.
func Build(siteBase string, docs []model.Document, cats []model.Category) ([]byte, error) {
	base := strings.TrimRight(siteBase, "/")
	if base == "" {
		return nil, fmt.Errorf("site base URL is required")
	}

	urls := make([]URL, 0, len(docs)+len(cats)+2)
	urls = append(urls,
		URL{Loc: base + "/", ChangeFreq: "daily", Priority: "1.0"},
		URL{Loc: base + "/search", ChangeFreq: "daily", Priority: "0.7"},
	)
	for _, c := range cats {
		urls = append(urls, URL{
			Loc:        base + "/categories/" + c.ID,
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}
	for i := range docs {
		d := &docs[i]
		urls = append(urls, URL{
			Loc:        base + "/documents/" + d.RouteKey(),
			LastMod:    d.CreatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	if len(urls) > maxURLsPerSitemap {
		urls = urls[:maxURLsPerSitemap]
	}

	body, err := xml.MarshalIndent(urlSet{XMLNS: xmlns, URLs: urls}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
