// Package pages configures the admin tables: their columns, exports, row rendering and
// the filters each page attaches to its table.
package pages

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"admin_dashboard/internal/datatable"
	"admin_dashboard/internal/export"
	"admin_dashboard/internal/recency"
	"admin_dashboard/internal/storage"
)

// Params exposes request parameters by name. url.Values and datatable.Query satisfy it.
type Params interface {
	Get(key string) string
}

// Env carries what pages need to load and filter their rows.
type Env struct {
	Store    storage.Storage
	Location *time.Location
	Clock    recency.Clock
}

func (e Env) location() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

func (e Env) clock() recency.Clock {
	if e.Clock == nil {
		return recency.SystemClock{Location: e.location()}
	}
	return e.Clock
}

// Page is one admin table.
type Page struct {
	Name         string
	Title        string
	Columns      []datatable.Column
	DefaultOrder []datatable.Order
	Export       export.Spec

	load   func(ctx context.Context, env Env) ([]datatable.Row, error)
	setup  func(v *View, env Env)
	params func(v *View, p Params)
}

// View is an opened page: its table plus the filter inputs bound to it.
type View struct {
	Page   *Page
	Table  *datatable.Table
	inputs map[string]*datatable.Input
}

// Open loads the page's rows and wires its filters. The table is not drawn yet.
func (p *Page) Open(ctx context.Context, env Env) (*View, error) {
	rows, err := p.load(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.Name, err)
	}

	t := datatable.New(p.Columns, rows)
	t.OrderBy(p.DefaultOrder...)

	v := &View{Page: p, Table: t, inputs: make(map[string]*datatable.Input)}
	if p.setup != nil {
		p.setup(v, env)
	}
	return v, nil
}

// Input returns the named filter input, or nil when the page has none.
func (v *View) Input(name string) *datatable.Input {
	return v.inputs[name]
}

// InputNames lists the page's filter inputs.
func (v *View) InputNames() []string {
	names := make([]string, 0, len(v.inputs))
	for name := range v.inputs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (v *View) addInput(name string) *datatable.Input {
	in := datatable.NewInput("")
	v.inputs[name] = in
	return in
}

// ApplyParams copies request parameters into the page inputs and page-specific searches.
func (v *View) ApplyParams(p Params) {
	for _, name := range v.InputNames() {
		v.inputs[name].Set(p.Get(name))
	}
	if v.Page.params != nil {
		v.Page.params(v, p)
	}
}

var registry = map[string]*Page{
	Accounts.Name:  Accounts,
	Blogs.Name:     Blogs,
	Campaigns.Name: Campaigns,
	Donations.Name: Donations,
	Roles.Name:     Roles,
}

// Lookup returns the page registered under name.
func Lookup(name string) (*Page, bool) {
	p, ok := registry[name]
	return p, ok
}

// All returns every page ordered by name.
func All() []*Page {
	out := make([]*Page, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Page) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
