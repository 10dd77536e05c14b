package pages

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
	"admin_dashboard/internal/model"
	"admin_dashboard/internal/recency"
)

// Column positions of the accounts table.
const (
	AccountColID = iota
	AccountColUsername
	AccountColName
	AccountColEmail
	AccountColPhone
	AccountColLastLogin
	AccountColRole
	AccountColDisabled
	AccountColActions
)

// LoginFilterParam is the input holding the minimum number of days since last login.
const LoginFilterParam = "loginFilter"

const (
	roleSelector     = "select.role-dropdown"
	disabledSelector = "select.account-disabled-dropdown"
)

// Accounts lists user accounts with their role, status and last login.
var Accounts = &Page{
	Name:  "accounts",
	Title: "User Data",
	Columns: []datatable.Column{
		AccountColID:        {Title: "ID"},
		AccountColUsername:  {Title: "Username", Type: datatable.ColumnHTML},
		AccountColName:      {Title: "Name", Type: datatable.ColumnHTML},
		AccountColEmail:     {Title: "Email", Type: datatable.ColumnHTML},
		AccountColPhone:     {Title: "Phone", Type: datatable.ColumnHTML},
		AccountColLastLogin: {Title: "Last Login"},
		AccountColRole:      {Title: "Role", Type: datatable.ColumnSelect, Selector: roleSelector},
		AccountColDisabled:  {Title: "Account Disabled", Type: datatable.ColumnSelect, Selector: disabledSelector},
		AccountColActions:   {Title: "Actions", Type: datatable.ColumnHTML},
	},
	DefaultOrder: []datatable.Order{{Column: AccountColID, Desc: true}},
	Export: export.Spec{
		Filename:  "User Data",
		SheetName: "User Data",
		Columns:   []int{0, 1, 2, 3, 4, 5, 6, 7},
		Format: map[int]export.Formatter{
			AccountColRole:     export.SelectedOption(roleSelector),
			AccountColDisabled: export.SelectedOption(disabledSelector),
		},
	},
	load:  loadAccounts,
	setup: setupAccounts,
}

func setupAccounts(v *View, env Env) {
	recency.Bind(v.Table, v.addInput(LoginFilterParam), recency.Filter{
		Column:   AccountColLastLogin,
		Sentinel: recency.Never,
		Clock:    env.clock(),
	})
}

func loadAccounts(ctx context.Context, env Env) ([]datatable.Row, error) {
	accounts, err := env.Store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := env.Store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	loc := env.location()
	rows := make([]datatable.Row, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, datatable.Row{
			AccountColID:        strconv.FormatInt(a.ID, 10),
			AccountColUsername:  span(a.Username),
			AccountColName:      span(a.FullName()),
			AccountColEmail:     span(a.Email),
			AccountColPhone:     span(a.Phone),
			AccountColLastLogin: recency.FormatMarker(a.LastLoginAt, loc),
			AccountColRole:      roleSelect(a, roles),
			AccountColDisabled:  disabledSelect(a),
			AccountColActions: fmt.Sprintf(`<a class="btn btn-sm btn-info" href="/admin/donations?account=%d">Donations</a>`,
				a.ID),
		})
	}
	return rows, nil
}

func roleSelect(a model.Account, roles []model.Role) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<select class="role-dropdown" data-account-id="%d">`, a.ID)
	for _, r := range roles {
		name := html.EscapeString(r.Name)
		selected := ""
		if r.ID == a.RoleID {
			selected = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, name, selected, name)
	}
	b.WriteString(`</select>`)
	return b.String()
}

func disabledSelect(a model.Account) string {
	yes, no := "", " selected"
	if a.Disabled {
		yes, no = " selected", ""
	}
	return fmt.Sprintf(`<select class="account-disabled-dropdown" data-account-id="%d">`+
		`<option value="false"%s>No</option><option value="true"%s>Yes</option></select>`, a.ID, no, yes)
}

func span(s string) string {
	return "<span>" + html.EscapeString(s) + "</span>"
}
