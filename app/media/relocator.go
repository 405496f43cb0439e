package media

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"feedjunction/app/feed"
)

var imgSrcRe = regexp.MustCompile(`<img[^>]*src="([^"]+)"`)

// Relocator rewrites an item's media references to point at locally stored
// copies served under a host prefix. Items are processed in parallel by a
// bounded pool of workers; a given item's text fields are only ever touched
// by the worker holding that item, so rewrites are serialized per item.
// Per-asset failures are reported and skipped, leaving the original URL in
// place.
type Relocator struct {
	fetcher     Fetcher
	workerCount int
}

func NewRelocator(fetcher Fetcher, workerCount int) *Relocator {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Relocator{fetcher: fetcher, workerCount: workerCount}
}

// Run relocates media for every item in place.
func (r *Relocator) Run(ctx context.Context, items []feed.Item, hostPrefix string) {
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r.RelocateItem(ctx, &items[i], hostPrefix)
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// RelocateItem rewrites the item's structured asset list and any inline
// image references inside its body fields.
func (r *Relocator) RelocateItem(ctx context.Context, item *feed.Item, hostPrefix string) {
	for i := range item.Media {
		original := item.Media[i].URL
		if original == "" || strings.HasPrefix(original, hostPrefix) {
			continue
		}

		local, err := r.fetcher.Fetch(ctx, original)
		if err != nil {
			slog.Warn("Failed to relocate media asset", "guid", item.GUID, "url", original, "error", err)
			continue
		}
		item.Media[i].URL = hostPrefix + local
	}

	item.Body = r.rewriteInlineImages(ctx, item.GUID, item.Body, hostPrefix)
	item.RichBody = r.rewriteInlineImages(ctx, item.GUID, item.RichBody, hostPrefix)
}

func (r *Relocator) rewriteInlineImages(ctx context.Context, guid, text, hostPrefix string) string {
	for _, match := range imgSrcRe.FindAllStringSubmatch(text, -1) {
		src := match[1]
		if strings.HasPrefix(src, hostPrefix) {
			continue
		}

		local, err := r.fetcher.Fetch(ctx, src)
		if err != nil {
			slog.Warn("Failed to relocate inline image", "guid", guid, "url", src, "error", err)
			continue
		}
		text = strings.ReplaceAll(text, src, hostPrefix+escapePath(local))
	}
	return text
}

// escapePath percent-encodes reserved characters in a local relative path so
// the rewritten reference stays a valid URL inside body markup.
func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
