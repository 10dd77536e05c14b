// Package model defines the domain types used across the application.
package model

import "time"

// Role groups a set of permissions assigned to accounts.
type Role struct {
	ID          int64
	Name        string
	Permissions []string
}

// Account represents a user of the dashboard.
type Account struct {
	ID          int64
	Username    string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	RoleID      int64
	RoleName    string
	Disabled    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

// FullName joins the first and last name.
func (a Account) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// BlogPost is an article shown on the public blog.
type BlogPost struct {
	ID          int64
	AuthorID    int64
	AuthorName  string
	ImageURL    string
	Title       string
	Description string
	PublishedAt time.Time
}

// CampaignStatus is the lifecycle state of a fundraising campaign.
type CampaignStatus string

// Supported campaign statuses.
const (
	CampaignCreated  CampaignStatus = "created"
	CampaignOpen     CampaignStatus = "open"
	CampaignComplete CampaignStatus = "complete"
	CampaignClosed   CampaignStatus = "closed"
)

// Campaign is a fundraising campaign collecting donations towards a goal.
type Campaign struct {
	ID           int64
	Name         string
	Description  string
	ReceiverName string
	Status       CampaignStatus
	Goal         int64
	Donated      int64
	StartTime    time.Time
	EndTime      time.Time
}

// DonatedPercent returns the share of the goal reached so far, capped at 100.
func (c Campaign) DonatedPercent() int {
	if c.Goal <= 0 {
		return 100
	}
	p := c.Donated * 100 / c.Goal
	if p > 100 {
		return 100
	}
	return int(p)
}

// Donation is a single payment towards a campaign. AccountID is nil for anonymous donors.
type Donation struct {
	ID           int64
	CampaignID   int64
	CampaignName string
	AccountID    *int64
	AccountName  string
	Amount       int64
	DonatedAt    time.Time
	Confirmed    bool
	Refused      bool
}
