package datatable

import (
	"slices"
	"sync"
)

// Input is a single-value filter field, such as the "days since last login" box above
// the accounts table.
type Input struct {
	mu       sync.Mutex
	value    string
	handlers []func(value string)
}

// NewInput creates an input holding value. No change event is fired.
func NewInput(value string) *Input {
	return &Input{value: value}
}

// Value returns the current content of the field.
func (in *Input) Value() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

// OnChange registers fn to run after every change of the value.
func (in *Input) OnChange(fn func(value string)) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.handlers = append(in.handlers, fn)
}

// Set updates the value and fires the change handlers if it differs from the old one.
func (in *Input) Set(value string) {
	in.mu.Lock()
	if in.value == value {
		in.mu.Unlock()
		return
	}
	in.value = value
	handlers := slices.Clone(in.handlers)
	in.mu.Unlock()

	for _, fn := range handlers {
		fn(value)
	}
}
