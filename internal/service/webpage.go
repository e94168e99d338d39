package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/clarity-ai/clarity/internal/config"
)

// WebpageService fetches a URL and reduces it to readable text for the
// summarize capability.
type WebpageService struct {
	httpClient *http.Client
}

func NewWebpageService() *WebpageService {
	return &WebpageService{
		httpClient: &http.Client{Timeout: config.PageFetchTimeout},
	}
}

func (s *WebpageService) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, nav, header, footer, noscript").Remove()

	var sb strings.Builder
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}

	// Prefer article/main content when the page marks it up; fall back to
	// the whole body.
	content := doc.Find("article, main")
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	content.Find("h1, h2, h3, p, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("page has no readable text")
	}
	return text, nil
}
