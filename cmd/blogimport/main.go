package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"admin_dashboard/internal/blogimport"
	"admin_dashboard/internal/storage"
)

func main() {
	dbPath := flag.String("db", envOrDefault("DATABASE_PATH", "./data/dashboard.db"), "path to sqlite database")
	author := flag.Int64("author", 0, "account ID the imported posts are attributed to")
	timeout := flag.Duration("timeout", 30*time.Second, "download timeout")
	flag.Parse()

	if flag.NArg() != 1 || *author <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: blogimport [-db path] -author <account_id> <feed url or file>")
		os.Exit(1)
	}
	source := flag.Arg(0)

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := storage.NewSQLite(*dbPath)
	if err != nil {
		log.Error("open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.GetAccount(context.Background(), *author); err != nil {
		log.Error("unknown author", "account_id", *author, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	im := blogimport.New(&http.Client{Timeout: *timeout}, store, log)

	var feed *gofeed.Feed
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		feed, err = im.Fetch(ctx, source)
	} else {
		feed, err = readFile(source)
	}
	if err != nil {
		log.Error("load feed", "source", source, "error", err)
		os.Exit(1)
	}

	res, err := im.Import(ctx, feed, *author)
	if err != nil {
		log.Error("import feed", "source", source, "error", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d posts, skipped %d\n", res.Imported, res.Skipped)
}

func readFile(path string) (*gofeed.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return blogimport.Parse(f)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
