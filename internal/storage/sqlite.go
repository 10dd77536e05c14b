package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"admin_dashboard/internal/model"
	"admin_dashboard/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dsn == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ListRoles returns every role ordered by ID.
func (s *SQLite) ListRoles(ctx context.Context) ([]model.Role, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, permissions FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var roles []model.Role
	for rows.Next() {
		var r model.Role
		var perms string
		if err := rows.Scan(&r.ID, &r.Name, &perms); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		r.Permissions = splitList(perms)
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// CountAccountsByRole returns the number of accounts holding each role.
func (s *SQLite) CountAccountsByRole(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role_id, COUNT(*) FROM accounts WHERE role_id IS NOT NULL GROUP BY role_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int64]int)
	for rows.Next() {
		var roleID int64
		var n int
		if err := rows.Scan(&roleID, &n); err != nil {
			return nil, fmt.Errorf("scan account count: %w", err)
		}
		counts[roleID] = n
	}
	return counts, rows.Err()
}

// CreateAccount inserts a new account and populates its ID and CreatedAt.
func (s *SQLite) CreateAccount(ctx context.Context, a *model.Account) error {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, first_name, last_name, email, phone, role_id, is_disabled, last_login_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Username, a.FirstName, a.LastName, a.Email, a.Phone, nullID(a.RoleID),
		boolToInt(a.Disabled), formatOptional(a.LastLoginAt), now,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	a.ID = id
	a.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

const accountColumns = `a.id, a.username, a.first_name, a.last_name, a.email, a.phone,
	COALESCE(a.role_id, 0), COALESCE(r.name, ''), a.is_disabled, a.last_login_at, a.created_at`

// GetAccount returns a single account by its ID.
func (s *SQLite) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts a LEFT JOIN roles r ON r.id = a.role_id
		 WHERE a.id = ?`, id,
	)
	return scanAccount(row)
}

// ListAccounts returns every account ordered by ID.
func (s *SQLite) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+`
		 FROM accounts a LEFT JOIN roles r ON r.id = a.role_id
		 ORDER BY a.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// RecordLogin stores the time of the latest login of an account.
func (s *SQLite) RecordLogin(ctx context.Context, accountID int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET last_login_at = ? WHERE id = ?`,
		at.UTC().Format(timeLayout), accountID,
	)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return expectOne(res, "account", accountID)
}

// CreateBlogPost inserts a new blog post and populates its ID.
func (s *SQLite) CreateBlogPost(ctx context.Context, p *model.BlogPost) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO blog_posts (author_id, image_url, title, description, published_at) VALUES (?, ?, ?, ?, ?)`,
		p.AuthorID, p.ImageURL, p.Title, p.Description, p.PublishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert blog post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// ListBlogPosts returns every blog post with its author's username, ordered by ID.
func (s *SQLite) ListBlogPosts(ctx context.Context) ([]model.BlogPost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.author_id, COALESCE(a.username, ''), p.image_url, p.title, p.description, p.published_at
		 FROM blog_posts p LEFT JOIN accounts a ON a.id = p.author_id
		 ORDER BY p.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query blog posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []model.BlogPost
	for rows.Next() {
		var p model.BlogPost
		var published string
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.ImageURL, &p.Title, &p.Description, &published); err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		p.PublishedAt, _ = time.Parse(timeLayout, published)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// BlogPostExists reports whether a post with the given title is already stored.
func (s *SQLite) BlogPostExists(ctx context.Context, title string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts WHERE title = ?`, title).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check blog post: %w", err)
	}
	return count > 0, nil
}

// CreateCampaign inserts a new campaign and populates its ID.
func (s *SQLite) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	if c.Status == "" {
		c.Status = model.CampaignCreated
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (name, description, receiver_name, status, goal, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Description, c.ReceiverName, string(c.Status), c.Goal,
		c.StartTime.UTC().Format(timeLayout), c.EndTime.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	return nil
}

// Donated amounts only count confirmed donations.
const campaignQuery = `SELECT c.id, c.name, c.description, c.receiver_name, c.status, c.goal,
	COALESCE((SELECT SUM(d.amount) FROM donations d WHERE d.campaign_id = c.id AND d.confirmed = 1), 0),
	c.start_time, c.end_time
	FROM campaigns c`

// GetCampaign returns a single campaign by its ID.
func (s *SQLite) GetCampaign(ctx context.Context, id int64) (*model.Campaign, error) {
	return scanCampaign(s.db.QueryRowContext(ctx, campaignQuery+` WHERE c.id = ?`, id))
}

// ListCampaigns returns every campaign with its donated total, ordered by ID.
func (s *SQLite) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, campaignQuery+` ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var campaigns []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// UpdateCampaignStatus persists a new lifecycle status for a campaign.
func (s *SQLite) UpdateCampaignStatus(ctx context.Context, id int64, status model.CampaignStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE campaigns SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	return expectOne(res, "campaign", id)
}

// CreateDonation inserts a new donation and populates its ID.
func (s *SQLite) CreateDonation(ctx context.Context, d *model.Donation) error {
	if d.DonatedAt.IsZero() {
		d.DonatedAt = time.Now().UTC().Truncate(time.Second)
	}
	var accountID any
	if d.AccountID != nil {
		accountID = *d.AccountID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO donations (campaign_id, account_id, amount, donated_at, confirmed, refused)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.CampaignID, accountID, d.Amount, d.DonatedAt.UTC().Format(timeLayout),
		boolToInt(d.Confirmed), boolToInt(d.Refused),
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	d.ID = id
	return nil
}

// ListDonations returns every donation with campaign and donor names, ordered by ID.
func (s *SQLite) ListDonations(ctx context.Context) ([]model.Donation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.campaign_id, COALESCE(c.name, ''), d.account_id, COALESCE(a.username, ''),
		        d.amount, d.donated_at, d.confirmed, d.refused
		 FROM donations d
		 LEFT JOIN campaigns c ON c.id = d.campaign_id
		 LEFT JOIN accounts a ON a.id = d.account_id
		 ORDER BY d.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var donations []model.Donation
	for rows.Next() {
		var d model.Donation
		var accountID sql.NullInt64
		var donated string
		var confirmed, refused int
		err := rows.Scan(&d.ID, &d.CampaignID, &d.CampaignName, &accountID, &d.AccountName,
			&d.Amount, &donated, &confirmed, &refused)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		if accountID.Valid {
			id := accountID.Int64
			d.AccountID = &id
		}
		d.DonatedAt, _ = time.Parse(timeLayout, donated)
		d.Confirmed = confirmed == 1
		d.Refused = refused == 1
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(timeLayout)
	return &v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, sql.ErrNoRows)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAccount(row scannable) (*model.Account, error) {
	var a model.Account
	var disabled int
	var lastLogin sql.NullString
	var created string
	err := row.Scan(&a.ID, &a.Username, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.RoleID, &a.RoleName, &disabled, &lastLogin, &created)
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Disabled = disabled == 1
	if lastLogin.Valid {
		t, _ := time.Parse(timeLayout, lastLogin.String)
		a.LastLoginAt = &t
	}
	a.CreatedAt, _ = time.Parse(timeLayout, created)
	return &a, nil
}

func scanCampaign(row scannable) (*model.Campaign, error) {
	var c model.Campaign
	var status, start, end string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ReceiverName, &status, &c.Goal, &c.Donated, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	c.Status = model.CampaignStatus(status)
	c.StartTime, _ = time.Parse(timeLayout, start)
	c.EndTime, _ = time.Parse(timeLayout, end)
	return &c, nil
}
