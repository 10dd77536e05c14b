// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"time"

	"admin_dashboard/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	CountAccountsByRole(ctx context.Context) (map[int64]int, error)

	CreateAccount(ctx context.Context, a *model.Account) error
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	RecordLogin(ctx context.Context, accountID int64, at time.Time) error

	CreateBlogPost(ctx context.Context, p *model.BlogPost) error
	ListBlogPosts(ctx context.Context) ([]model.BlogPost, error)
	BlogPostExists(ctx context.Context, title string) (bool, error)

	CreateCampaign(ctx context.Context, c *model.Campaign) error
	GetCampaign(ctx context.Context, id int64) (*model.Campaign, error)
	ListCampaigns(ctx context.Context) ([]model.Campaign, error)
	UpdateCampaignStatus(ctx context.Context, id int64, status model.CampaignStatus) error

	CreateDonation(ctx context.Context, d *model.Donation) error
	ListDonations(ctx context.Context) ([]model.Donation, error)

	Close() error
}
