// Package blogimport copies the entries of an RSS or Atom feed into the blog.
package blogimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"admin_dashboard/internal/model"
)

const maxDescription = 300

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Store is the part of storage the importer writes to.
type Store interface {
	CreateBlogPost(ctx context.Context, p *model.BlogPost) error
	BlogPostExists(ctx context.Context, title string) (bool, error)
}

// Result counts what an import did.
type Result struct {
	Imported int
	Skipped  int
}

// Importer downloads feeds and stores their items as blog posts.
type Importer struct {
	client HTTPClient
	store  Store
	log    *slog.Logger
}

// New creates an Importer.
func New(client HTTPClient, store Store, log *slog.Logger) *Importer {
	return &Importer{client: client, store: store, log: log}
}

// Fetch downloads and parses the feed at url.
func (im *Importer) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "AdminDashboard-BlogImport/1.0")

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return Parse(io.LimitReader(resp.Body, 5*1024*1024))
}

// Parse reads a feed document.
func Parse(r io.Reader) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// Import stores every item of feed as a post by authorID, skipping titles already present.
func (im *Importer) Import(ctx context.Context, feed *gofeed.Feed, authorID int64) (Result, error) {
	var res Result
	for _, item := range feed.Items {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		post := PostFromItem(item, authorID)
		if post.Title == "" {
			res.Skipped++
			continue
		}

		exists, err := im.store.BlogPostExists(ctx, post.Title)
		if err != nil {
			return res, fmt.Errorf("check %q: %w", post.Title, err)
		}
		if exists {
			im.log.Debug("skip existing post", "title", post.Title)
			res.Skipped++
			continue
		}

		if err := im.store.CreateBlogPost(ctx, &post); err != nil {
			return res, fmt.Errorf("store %q: %w", post.Title, err)
		}
		res.Imported++
	}

	im.log.Info("feed imported", "title", feed.Title, "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

// PostFromItem maps a feed item onto a blog post.
func PostFromItem(item *gofeed.Item, authorID int64) model.BlogPost {
	desc := strings.TrimSpace(item.Description)
	if desc == "" {
		desc = strings.TrimSpace(item.Content)
	}
	if r := []rune(desc); len(r) > maxDescription {
		desc = string(r[:maxDescription]) + "..."
	}

	post := model.BlogPost{
		AuthorID:    authorID,
		Title:       strings.TrimSpace(item.Title),
		Description: desc,
		ImageURL:    itemImage(item),
	}
	switch {
	case item.PublishedParsed != nil:
		post.PublishedAt = item.PublishedParsed.UTC().Truncate(time.Second)
	case item.UpdatedParsed != nil:
		post.PublishedAt = item.UpdatedParsed.UTC().Truncate(time.Second)
	}
	return post
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
