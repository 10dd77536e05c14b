package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
	"admin_dashboard/internal/model"
)

// Column positions of the donations table.
const (
	DonationColID = iota
	DonationColCampaign
	DonationColAccount
	DonationColAmount
	DonationColConfirmed
	DonationColTime
	DonationColAgo
)

// Parameters narrowing the donations table to one campaign or one donor.
const (
	CampaignParam = "campaign"
	AccountParam  = "account"
)

// Donations lists donations; it can be narrowed to a campaign or an account.
var Donations = &Page{
	Name:  "donations",
	Title: "Donations",
	Columns: []datatable.Column{
		DonationColID:        {Title: "ID"},
		DonationColCampaign:  {Title: "Campaign", Type: datatable.ColumnHTML},
		DonationColAccount:   {Title: "Account", Type: datatable.ColumnHTML},
		DonationColAmount:    {Title: "Amount (đ)"},
		DonationColConfirmed: {Title: "Confirmed", Type: datatable.ColumnHTML},
		DonationColTime:      {Title: "Time"},
		DonationColAgo:       {Title: "When"},
	},
	DefaultOrder: []datatable.Order{{Column: DonationColID, Desc: true}},
	Export: export.Spec{
		Filename:  "Donations",
		SheetName: "Donations",
		Columns:   []int{0, 1, 2, 3, 4, 5},
		Format: map[int]export.Formatter{
			DonationColConfirmed: export.CheckMark,
		},
	},
	load:   loadDonations,
	params: donationParams,
}

// IDTag renders the "[id:N]" suffix the campaign and account columns are searched by.
func IDTag(id int64) string {
	return fmt.Sprintf("[id:%d]", id)
}

func donationParams(v *View, p Params) {
	if id, err := strconv.ParseInt(p.Get(CampaignParam), 10, 64); err == nil {
		v.Table.ColumnSearch(DonationColCampaign, IDTag(id))
	}
	if id, err := strconv.ParseInt(p.Get(AccountParam), 10, 64); err == nil {
		v.Table.ColumnSearch(DonationColAccount, IDTag(id))
	}
}

func loadDonations(ctx context.Context, env Env) ([]datatable.Row, error) {
	donations, err := env.Store.ListDonations(ctx)
	if err != nil {
		return nil, err
	}

	loc := env.location()
	now := env.clock().Now()
	rows := make([]datatable.Row, 0, len(donations))
	for _, d := range donations {
		rows = append(rows, datatable.Row{
			DonationColID:        strconv.FormatInt(d.ID, 10),
			DonationColCampaign:  span(d.CampaignName + " " + IDTag(d.CampaignID)),
			DonationColAccount:   donorCell(d),
			DonationColAmount:    humanize.Comma(d.Amount),
			DonationColConfirmed: confirmedCell(d),
			DonationColTime:      d.DonatedAt.In(loc).Format(dateTimeLayout),
			DonationColAgo:       humanize.RelTime(d.DonatedAt, now, "ago", "from now"),
		})
	}
	return rows, nil
}

func donorCell(d model.Donation) string {
	if d.AccountID == nil {
		return span("Anonymous")
	}
	return span(d.AccountName + " " + IDTag(*d.AccountID))
}

func confirmedCell(d model.Donation) string {
	if d.Confirmed {
		return "<span>✔️</span>"
	}
	return "<span>❌</span>"
}
