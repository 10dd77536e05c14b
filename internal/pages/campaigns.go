package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "2006-01-02 15:04"
)

// Campaigns lists fundraising campaigns and their progress.
var Campaigns = &Page{
	Name:  "campaigns",
	Title: "Campaigns",
	Columns: []datatable.Column{
		{Title: "ID"},
		{Title: "Name", Type: datatable.ColumnHTML},
		{Title: "Receiver", Type: datatable.ColumnHTML},
		{Title: "Status"},
		{Title: "Goal (đ)"},
		{Title: "Donated (%)"},
		{Title: "Start"},
		{Title: "End"},
		{Title: "Actions", Type: datatable.ColumnHTML},
	},
	Export: export.Spec{
		Filename:  "Campaigns",
		SheetName: "Campaigns",
		Columns:   []int{0, 1, 2, 3, 4, 5, 6, 7},
	},
	load: loadCampaigns,
}

func loadCampaigns(ctx context.Context, env Env) ([]datatable.Row, error) {
	campaigns, err := env.Store.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	loc := env.location()
	rows := make([]datatable.Row, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, datatable.Row{
			strconv.FormatInt(c.ID, 10),
			span(c.Name),
			span(c.ReceiverName),
			string(c.Status),
			humanize.Comma(c.Goal),
			strconv.Itoa(c.DonatedPercent()),
			c.StartTime.In(loc).Format(dateTimeLayout),
			c.EndTime.In(loc).Format(dateTimeLayout),
			fmt.Sprintf(`<a class="btn btn-sm btn-info" href="/admin/donations?campaign=%d">Donations</a>`, c.ID),
		})
	}
	return rows, nil
}
