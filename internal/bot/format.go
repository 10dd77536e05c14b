package bot

import (
	"fmt"
	"strings"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/pages"
)

const maxListed = 30

// FormatInactive lists the accounts that passed the login filter.
func FormatInactive(days int, columns []datatable.Column, rows []datatable.Row) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No accounts inactive for %d+ days.", days)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Accounts inactive for %d+ days (%d):\n", days, len(rows))
	writeRows(&b, rows, func(row datatable.Row) string {
		return fmt.Sprintf("#%s %s  last login: %s  role: %s",
			text(columns, row, pages.AccountColID),
			text(columns, row, pages.AccountColUsername),
			text(columns, row, pages.AccountColLastLogin),
			text(columns, row, pages.AccountColRole),
		)
	})
	return b.String()
}

// FormatCampaigns lists campaigns with their status and progress.
func FormatCampaigns(columns []datatable.Column, rows []datatable.Row) string {
	if len(rows) == 0 {
		return "No campaigns yet."
	}
	var b strings.Builder
	b.WriteString("Campaigns:\n")
	writeRows(&b, rows, func(row datatable.Row) string {
		return fmt.Sprintf("#%s %s [%s]  %s%% of %sđ  ends %s",
			text(columns, row, 0), text(columns, row, 1), text(columns, row, 3),
			text(columns, row, 5), text(columns, row, 4), text(columns, row, 7),
		)
	})
	return b.String()
}

// FormatDonations lists the donations of one campaign.
func FormatDonations(campaignID int64, columns []datatable.Column, rows []datatable.Row) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No donations for campaign #%d.", campaignID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Donations for campaign #%d (%d):\n", campaignID, len(rows))
	writeRows(&b, rows, func(row datatable.Row) string {
		return fmt.Sprintf("#%s %sđ by %s %s  %s",
			text(columns, row, pages.DonationColID),
			text(columns, row, pages.DonationColAmount),
			text(columns, row, pages.DonationColAccount),
			text(columns, row, pages.DonationColConfirmed),
			text(columns, row, pages.DonationColAgo),
		)
	})
	return b.String()
}

func writeRows(b *strings.Builder, rows []datatable.Row, line func(datatable.Row) string) {
	for i, row := range rows {
		if i == maxListed {
			fmt.Fprintf(b, "... and %d more\n", len(rows)-maxListed)
			break
		}
		b.WriteString(line(row))
		b.WriteString("\n")
	}
}

func text(columns []datatable.Column, row datatable.Row, col int) string {
	if col >= len(row) || col >= len(columns) {
		return ""
	}
	return columns[col].SearchText(row[col])
}
