package pages

import (
	"context"
	"fmt"
	"html"
	"strconv"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
)

// Blogs lists blog posts.
var Blogs = &Page{
	Name:  "blogs",
	Title: "Blogs",
	Columns: []datatable.Column{
		{Title: "ID"},
		{Title: "Image", Type: datatable.ColumnHTML},
		{Title: "Title", Type: datatable.ColumnHTML},
		{Title: "Author", Type: datatable.ColumnHTML},
		{Title: "Date"},
		{Title: "Actions", Type: datatable.ColumnHTML},
	},
	DefaultOrder: []datatable.Order{{Column: 0, Desc: true}},
	Export: export.Spec{
		Filename:  "Blogs",
		SheetName: "Blogs",
		Columns:   []int{0, 2, 3, 4},
	},
	load: loadBlogs,
}

func loadBlogs(ctx context.Context, env Env) ([]datatable.Row, error) {
	posts, err := env.Store.ListBlogPosts(ctx)
	if err != nil {
		return nil, err
	}

	loc := env.location()
	rows := make([]datatable.Row, 0, len(posts))
	for _, p := range posts {
		image := ""
		if p.ImageURL != "" {
			image = fmt.Sprintf(`<img class="img-thumbnail" src="%s" alt="">`, html.EscapeString(p.ImageURL))
		}
		rows = append(rows, datatable.Row{
			strconv.FormatInt(p.ID, 10),
			image,
			span(p.Title),
			span(p.AuthorName),
			p.PublishedAt.In(loc).Format(dateLayout),
			fmt.Sprintf(`<a class="btn btn-sm btn-info" href="/blog/post?id=%d">View</a>`, p.ID),
		})
	}
	return rows, nil
}
