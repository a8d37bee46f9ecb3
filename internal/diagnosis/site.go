package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHeadings  = 5
	maxSiteBytes = 2 << 20
)

// SiteContext resume a página inicial do cliente para o prompt.
type SiteContext struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Headings    []string `json:"headings"`
}

// SiteFetcher baixa e resume páginas públicas.
type SiteFetcher struct {
	client *http.Client
}

// NewSiteFetcher cria o leitor com timeout fixo.
func NewSiteFetcher(timeout time.Duration) *SiteFetcher {
	return &SiteFetcher{client: &http.Client{Timeout: timeout}}
}

// NormalizeURL aceita domínio sem esquema e rejeita esquemas que não sejam http(s).
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: site inválido", ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: site deve usar http ou https", ErrInvalidInput)
	}
	return u.String(), nil
}

// Fetch lê título, descrição e os primeiros títulos da página.
func (f *SiteFetcher) Fetch(ctx context.Context, pageURL string) (*SiteContext, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "TrafficManagerHub/1.0 (+diagnostico)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("site respondeu %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxSiteBytes))
	if err != nil {
		return nil, fmt.Errorf("html inválido: %w", err)
	}

	site := &SiteContext{
		URL:   pageURL,
		Title: cleanText(doc.Find("title").First().Text()),
	}

	site.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	if site.Description == "" {
		site.Description, _ = doc.Find(`meta[property="og:description"]`).First().Attr("content")
	}
	site.Description = cleanText(site.Description)

	doc.Find("h1, h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := cleanText(sel.Text()); text != "" {
			site.Headings = append(site.Headings, text)
		}
		return len(site.Headings) < maxHeadings
	})

	if site.Title == "" && site.Description == "" && len(site.Headings) == 0 {
		return nil, errors.New("página sem conteúdo aproveitável")
	}
	return site, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
