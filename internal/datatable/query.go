package datatable

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	qs "github.com/derekstavis/go-qs"
)

// Query is a server-side request of the grid widget: draw counter, global search,
// per-column searches and ordering, plus any page-specific parameters.
type Query struct {
	Draw    string                    `json:"draw"`
	Search  map[string]any            `json:"search"`
	Order   map[string]map[string]any `json:"order"`
	Columns map[string]map[string]any `json:"columns"`

	params url.Values
}

// ParseQuery decodes the nested grid parameters (order[0][column]=1&...) of values.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{params: values}
	if len(values) == 0 {
		return q, nil
	}

	nested, err := qs.Unmarshal(values.Encode())
	if err != nil {
		return q, fmt.Errorf("parse query: %w", err)
	}

	raw, err := json.Marshal(nested)
	if err != nil {
		return q, fmt.Errorf("encode query: %w", err)
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return q, fmt.Errorf("decode query: %w", err)
	}
	return q, nil
}

// Param returns a plain query parameter such as loginFilter.
func (q Query) Param(key string) string {
	return q.params.Get(key)
}

// Get makes Query usable wherever page parameters are read.
func (q Query) Get(key string) string {
	return q.Param(key)
}

// SearchValue returns the global search term.
func (q Query) SearchValue() string {
	return stringValue(q.Search["value"])
}

// Orders returns the requested ordering, most significant first.
func (q Query) Orders() []Order {
	keys := sortedIndexKeys(q.Order)
	orders := make([]Order, 0, len(keys))
	for _, k := range keys {
		v := q.Order[k]
		col, err := strconv.Atoi(stringValue(v["column"]))
		if err != nil {
			continue
		}
		orders = append(orders, Order{Column: col, Desc: stringValue(v["dir"]) == "desc"})
	}
	return orders
}

// ColumnSearches returns the non-empty per-column search terms keyed by column index.
func (q Query) ColumnSearches() map[int]string {
	out := make(map[int]string)
	for k, v := range q.Columns {
		col, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		search, ok := v["search"].(map[string]any)
		if !ok {
			continue
		}
		if term := stringValue(search["value"]); term != "" {
			out[col] = term
		}
	}
	return out
}

// Apply configures t with the query's search and ordering. When the query carries no
// ordering, fallback is used.
func (q Query) Apply(t *Table, fallback ...Order) {
	t.Search(q.SearchValue())
	for col, term := range q.ColumnSearches() {
		t.ColumnSearch(col, term)
	}
	if orders := q.Orders(); len(orders) > 0 {
		t.OrderBy(orders...)
	} else {
		t.OrderBy(fallback...)
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func sortedIndexKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ia, _ := strconv.Atoi(a)
		ib, _ := strconv.Atoi(b)
		return ia - ib
	})
	return keys
}
