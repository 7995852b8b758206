package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DueDate is an update to a due date. Absent keeps the current value,
// an explicit null clears it.
type DueDate struct {
	Present bool
	Time    *time.Time
}

// DueAt returns a present update setting the due date to t
func DueAt(t time.Time) DueDate {
	return DueDate{Present: true, Time: &t}
}

// NoDueDate returns a present update clearing the due date
func NoDueDate() DueDate {
	return DueDate{Present: true}
}

func (d *DueDate) UnmarshalJSON(b []byte) error {
	d.Present = true
	d.Time = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return fmt.Errorf("due: %w", err)
	}
	d.Time = &t
	return nil
}

// Apply returns the due date after the update
func (d DueDate) Apply(current *time.Time) *time.Time {
	if !d.Present {
		return current
	}
	return d.Time
}
