package pages

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"admin_dashboard/internal/cell"
	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
	"admin_dashboard/internal/model"
	"admin_dashboard/internal/storage"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) (Env, *storage.SQLite) {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return Env{Store: s, Location: time.UTC, Clock: fixedClock(testNow)}, s
}

func at(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func seedAccounts(t *testing.T, s *storage.SQLite) []model.Account {
	t.Helper()
	accounts := []model.Account{
		{Username: "alice", FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", RoleID: 1,
			LastLoginAt: at(2024, 3, 1, 8)},
		{Username: "bob", Email: "bob@example.com", RoleID: 5, Disabled: true},
		{Username: "carol", FirstName: "Carol", Email: "carol@example.com", RoleID: 2,
			LastLoginAt: at(2024, 3, 8, 20)},
	}
	for i := range accounts {
		if err := s.CreateAccount(context.Background(), &accounts[i]); err != nil {
			t.Fatalf("create account: %v", err)
		}
	}
	return accounts
}

func rowIDs(rows []datatable.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r[0])
	}
	return out
}

func TestLookupAndAll(t *testing.T) {
	var names []string
	for _, p := range All() {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"accounts", "blogs", "campaigns", "donations", "roles"}, names); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}

	if p, ok := Lookup("accounts"); !ok || p != Accounts {
		t.Error("Lookup(accounts) did not return the accounts page")
	}
	if _, ok := Lookup("comments"); ok {
		t.Error("Lookup(comments) should fail")
	}
}

func TestAccountsLoginFilter(t *testing.T) {
	env, s := newTestEnv(t)
	seedAccounts(t, s)

	tests := []struct {
		name      string
		threshold string
		want      []string
	}{
		{name: "no threshold", threshold: "", want: []string{"3", "2", "1"}},
		{name: "nine days", threshold: "9", want: []string{"2", "1"}},
		{name: "ten days", threshold: "10", want: []string{"2"}},
		{name: "zero days", threshold: "0", want: []string{"3", "2", "1"}},
		{name: "not a number", threshold: "soon", want: []string{"3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := Accounts.Open(context.Background(), env)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			view.ApplyParams(url.Values{LoginFilterParam: {tt.threshold}})
			if diff := cmp.Diff(tt.want, rowIDs(view.Table.Redraw())); diff != "" {
				t.Errorf("visible mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAccountsInputRedrawsTable(t *testing.T) {
	env, s := newTestEnv(t)
	seedAccounts(t, s)

	view, err := Accounts.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if diff := cmp.Diff([]string{LoginFilterParam}, view.InputNames()); diff != "" {
		t.Errorf("InputNames() mismatch (-want +got):\n%s", diff)
	}
	if view.Input("missing") != nil {
		t.Error("expected nil for unknown input")
	}

	var draws [][]string
	view.Table.OnDraw(func(rows []datatable.Row) {
		draws = append(draws, rowIDs(rows))
	})

	view.Input(LoginFilterParam).Set("9")
	view.Input(LoginFilterParam).Set("")

	want := [][]string{{"2", "1"}, {"3", "2", "1"}}
	if diff := cmp.Diff(want, draws); diff != "" {
		t.Errorf("draws mismatch (-want +got):\n%s", diff)
	}
}

func TestAccountsRows(t *testing.T) {
	env, s := newTestEnv(t)
	seedAccounts(t, s)

	view, err := Accounts.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows := view.Table.Redraw()
	byID := make(map[string]datatable.Row)
	for _, r := range rows {
		byID[r[AccountColID]] = r
	}

	alice := byID["1"]
	got := []string{
		cell.Text(alice[AccountColUsername]),
		cell.Text(alice[AccountColName]),
		alice[AccountColLastLogin],
		cell.SelectedValue(alice[AccountColRole], roleSelector),
		cell.SelectedValue(alice[AccountColDisabled], disabledSelector),
	}
	want := []string{"alice", "Alice Smith", "01/03/2024", "admin", "false"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("alice row mismatch (-want +got):\n%s", diff)
	}

	bob := byID["2"]
	if diff := cmp.Diff("Never", bob[AccountColLastLogin]); diff != "" {
		t.Errorf("bob last login mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("true", cell.SelectedValue(bob[AccountColDisabled], disabledSelector)); diff != "" {
		t.Errorf("bob disabled mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(bob[AccountColActions], "/admin/donations?account=2") {
		t.Errorf("unexpected actions cell %q", bob[AccountColActions])
	}
}

func TestAccountsLastLoginUsesLocation(t *testing.T) {
	env, s := newTestEnv(t)
	seedAccounts(t, s)
	env.Location = time.FixedZone("UTC+7", 7*60*60)

	view, err := Accounts.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, r := range view.Table.Redraw() {
		if r[AccountColID] == "3" && r[AccountColLastLogin] != "09/03/2024" {
			t.Errorf("carol last login = %q, want 09/03/2024", r[AccountColLastLogin])
		}
	}
}

func TestAccountsExport(t *testing.T) {
	env, s := newTestEnv(t)
	seedAccounts(t, s)

	view, err := Accounts.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	view.ApplyParams(url.Values{LoginFilterParam: {"9"}})
	view.Table.Redraw()

	var buf bytes.Buffer
	if err := export.Write(&buf, Accounts.Export, view.Table.Columns(), view.Table.Visible()); err != nil {
		t.Fatalf("export: %v", err)
	}

	want := "ID,Username,Name,Email,Phone,Last Login,Role,Account Disabled\n" +
		"2,bob,,bob@example.com,,Never,user,true\n" +
		"1,alice,Alice Smith,alice@example.com,,01/03/2024,admin,false\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestRolesPage(t *testing.T) {
	env, s := newTestEnv(t)
	seedAccounts(t, s)

	view, err := Roles.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows := view.Table.Redraw()
	if len(rows) != 5 {
		t.Fatalf("expected 5 roles, got %d", len(rows))
	}

	counts := make(map[string]string)
	for _, r := range rows {
		counts[cell.Text(r[1])] = r[3]
	}
	want := map[string]string{
		"admin": "1", "manager": "1", "blog_manager": "0", "campaign_manager": "0", "user": "1",
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("account counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("VIEW_DASHBOARD, CREATE_CAMPAIGNS, MANAGE_CAMPAIGNS", rows[3][2]); diff != "" {
		t.Errorf("permissions mismatch (-want +got):\n%s", diff)
	}
}

func seedDonations(t *testing.T, s *storage.SQLite, donors []model.Account) []model.Campaign {
	t.Helper()
	ctx := context.Background()

	campaigns := []model.Campaign{
		{Name: "Clean water", ReceiverName: "Village", Goal: 1000000, Status: model.CampaignOpen,
			StartTime: *at(2024, 3, 1, 0), EndTime: *at(2024, 4, 1, 0)},
		{Name: "School books", ReceiverName: "School", Goal: 500, StartTime: *at(2024, 5, 1, 0), EndTime: *at(2024, 6, 1, 0)},
	}
	for i := range campaigns {
		if err := s.CreateCampaign(ctx, &campaigns[i]); err != nil {
			t.Fatalf("create campaign: %v", err)
		}
	}

	donations := []model.Donation{
		{CampaignID: campaigns[0].ID, AccountID: &donors[0].ID, Amount: 250000, DonatedAt: *at(2024, 3, 8, 12), Confirmed: true},
		{CampaignID: campaigns[0].ID, Amount: 1500, DonatedAt: *at(2024, 3, 9, 12)},
		{CampaignID: campaigns[1].ID, AccountID: &donors[1].ID, Amount: 300, DonatedAt: *at(2024, 3, 10, 9), Confirmed: true},
	}
	for i := range donations {
		if err := s.CreateDonation(ctx, &donations[i]); err != nil {
			t.Fatalf("create donation: %v", err)
		}
	}
	return campaigns
}

func TestCampaignsPage(t *testing.T) {
	env, s := newTestEnv(t)
	seedDonations(t, s, seedAccounts(t, s))

	view, err := Campaigns.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows := view.Table.Redraw()

	want := []datatable.Row{
		{"1", "<span>Clean water</span>", "<span>Village</span>", "open", "1,000,000", "25",
			"2024-03-01 00:00", "2024-04-01 00:00",
			`<a class="btn btn-sm btn-info" href="/admin/donations?campaign=1">Donations</a>`},
		{"2", "<span>School books</span>", "<span>School</span>", "created", "500", "60",
			"2024-05-01 00:00", "2024-06-01 00:00",
			`<a class="btn btn-sm btn-info" href="/admin/donations?campaign=2">Donations</a>`},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDonationsPage(t *testing.T) {
	env, s := newTestEnv(t)
	seedDonations(t, s, seedAccounts(t, s))

	tests := []struct {
		name   string
		params url.Values
		want   []string
	}{
		{name: "all donations newest first", params: url.Values{}, want: []string{"3", "2", "1"}},
		{name: "by campaign", params: url.Values{CampaignParam: {"1"}}, want: []string{"2", "1"}},
		{name: "by account", params: url.Values{AccountParam: {"2"}}, want: []string{"3"}},
		{name: "by campaign and account", params: url.Values{CampaignParam: {"1"}, AccountParam: {"2"}}, want: []string{}},
		{name: "invalid id ignored", params: url.Values{CampaignParam: {"x"}}, want: []string{"3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := Donations.Open(context.Background(), env)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			view.ApplyParams(tt.params)
			if diff := cmp.Diff(tt.want, rowIDs(view.Table.Redraw())); diff != "" {
				t.Errorf("visible mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDonationsRows(t *testing.T) {
	env, s := newTestEnv(t)
	seedDonations(t, s, seedAccounts(t, s))

	view, err := Donations.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rows := view.Table.Redraw()

	want := []datatable.Row{
		{"3", "<span>School books [id:2]</span>", "<span>bob [id:2]</span>", "300", "<span>✔️</span>",
			"2024-03-10 09:00", "3 hours ago"},
		{"2", "<span>Clean water [id:1]</span>", "<span>Anonymous</span>", "1,500", "<span>❌</span>",
			"2024-03-09 12:00", "1 day ago"},
		{"1", "<span>Clean water [id:1]</span>", "<span>alice [id:1]</span>", "250,000", "<span>✔️</span>",
			"2024-03-08 12:00", "2 days ago"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, Donations.Export, view.Table.Columns(), rows[2:]); err != nil {
		t.Fatalf("export: %v", err)
	}
	wantCSV := "ID,Campaign,Account,Amount (đ),Confirmed,Time\n" +
		"1,Clean water [id:1],alice [id:1],\"250,000\",true,2024-03-08 12:00\n"
	if diff := cmp.Diff(wantCSV, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestBlogsPage(t *testing.T) {
	env, s := newTestEnv(t)
	accounts := seedAccounts(t, s)

	post := model.BlogPost{AuthorID: accounts[0].ID, Title: "Spring <drive>", ImageURL: "https://example.com/a.png",
		PublishedAt: *at(2024, 2, 5, 10)}
	if err := s.CreateBlogPost(context.Background(), &post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	view, err := Blogs.Open(context.Background(), env)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	view.Table.Search("drive")
	rows := view.Table.Redraw()

	want := []datatable.Row{{
		"1",
		`<img class="img-thumbnail" src="https://example.com/a.png" alt="">`,
		"<span>Spring &lt;drive&gt;</span>",
		"<span>alice</span>",
		"05/02/2024",
		`<a class="btn btn-sm btn-info" href="/blog/post?id=1">View</a>`,
	}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
