package enrich

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alright-hq/alright-client/internal/logger"
	"github.com/alright-hq/alright-client/pkg/alright"
	"github.com/alright-hq/alright-client/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
)

// PageFetcher is the slice of httpclient.Transport the enricher needs.
type PageFetcher interface {
	Get(ctx context.Context, path string, headers httpclient.Header) (*httpclient.Response, error)
}

// Enricher fills missing dish descriptions and pictures from public dish pages.
type Enricher struct {
	fetcher PageFetcher
	pageURL string
	delay   time.Duration
	log     logger.Logger
}

// New returns an Enricher reading pages below pageURL through fetcher. The
// fetcher is expected to be rooted at pageURL; pageURL itself is only used to
// resolve relative image links.
func New(fetcher PageFetcher, pageURL string, delay time.Duration, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Enricher{
		fetcher: fetcher,
		pageURL: strings.TrimRight(strings.TrimSpace(pageURL), "/"),
		delay:   delay,
		log:     log,
	}
}

// Enrich returns a copy of dishes with blank Description and PictureURL filled
// in where a dish page provides them. Failures leave the dish unchanged.
func (e *Enricher) Enrich(ctx context.Context, dishes []alright.DishDTO) []alright.DishDTO {
	out := append([]alright.DishDTO(nil), dishes...)
	if e == nil || e.fetcher == nil {
		return out
	}

	fetched := 0
	for i, dish := range dishes {
		if dish.ID == "" || (dish.Description != "" && dish.PictureURL != "") {
			continue
		}
		if ctx.Err() != nil {
			return out
		}

		if fetched > 0 && e.delay > 0 {
			timer := time.NewTimer(e.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
		fetched++

		meta, err := e.fetchMeta(ctx, dish.ID)
		if err != nil {
			e.log.WarnObj("dish page scrape failed", "enrich_error", map[string]any{
				"dish_id": dish.ID,
				"error":   err.Error(),
			})
			continue
		}
		if dish.Description == "" {
			out[i].Description = meta.Description
		}
		if dish.PictureURL == "" {
			out[i].PictureURL = resolveURL(meta.ImageURL, e.pageURL+"/"+url.PathEscape(dish.ID))
		}
	}
	return out
}

func (e *Enricher) fetchMeta(ctx context.Context, dishID string) (pageMeta, error) {
	resp, err := e.fetcher.Get(ctx, url.PathEscape(dishID), httpclient.Header{"Accept": "text/html"})
	if err != nil {
		return pageMeta{}, fmt.Errorf("http fetch: %w", err)
	}
	if !resp.OK() {
		snippet := strings.TrimSpace(resp.Body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return pageMeta{}, fmt.Errorf("status %d body: %s", resp.Code, snippet)
	}

	body := resp.Body
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return parseMeta(body)
}

type pageMeta struct {
	Description string
	ImageURL    string
}

func parseMeta(body string) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="twitter:image"]`),
		),
	}, nil
}

// resolveURL makes ref absolute against base. Unparseable input yields "".
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return r.String()
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
