package datatable

// Response is the JSON body answering a Query.
type Response struct {
	Draw            string `json:"draw"`
	RecordsTotal    int    `json:"recordsTotal"`
	RecordsFiltered int    `json:"recordsFiltered"`
	Data            []Row  `json:"data"`
}

// NewResponse builds the answer to q from the table's latest redraw.
func NewResponse(q Query, t *Table) *Response {
	visible := t.Visible()
	resp := &Response{
		Draw:            q.Draw,
		RecordsTotal:    t.Len(),
		RecordsFiltered: len(visible),
		Data:            make([]Row, 0, len(visible)),
	}
	resp.Data = append(resp.Data, visible...)
	return resp
}
