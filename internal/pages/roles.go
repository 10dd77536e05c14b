package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
)

// Roles lists roles, their permissions and how many accounts hold them.
var Roles = &Page{
	Name:  "roles",
	Title: "Roles",
	Columns: []datatable.Column{
		{Title: "ID"},
		{Title: "Name", Type: datatable.ColumnHTML},
		{Title: "Permissions"},
		{Title: "Accounts"},
		{Title: "Actions", Type: datatable.ColumnHTML},
	},
	Export: export.Spec{
		Filename:  "Roles",
		SheetName: "Roles",
		SkipLast:  true,
	},
	load: loadRoles,
}

func loadRoles(ctx context.Context, env Env) ([]datatable.Row, error) {
	roles, err := env.Store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := env.Store.CountAccountsByRole(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]datatable.Row, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, datatable.Row{
			strconv.FormatInt(r.ID, 10),
			span(r.Name),
			strings.Join(r.Permissions, ", "),
			strconv.Itoa(counts[r.ID]),
			fmt.Sprintf(`<a class="btn btn-sm btn-warning" href="/admin/roles/edit?id=%d">Edit</a>`, r.ID),
		})
	}
	return rows, nil
}
