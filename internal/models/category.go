package models

import (
	"strings"
	"time"
)

// Category represents a recurring class group meeting on one weekday.
// The weekday is resolved from the display name when the category is
// created or renamed and stored alongside it; names without a weekday
// word leave Weekday nil.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Icon      *string   `db:"icon" json:"icon,omitempty"`
	Position  int       `db:"position" json:"position"`
	Weekday   *int      `db:"weekday" json:"weekday,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassWeekday returns the stored weekday when one was resolved.
func (c *Category) ClassWeekday() (time.Weekday, bool) {
	if c == nil || c.Weekday == nil {
		return time.Sunday, false
	}
	return time.Weekday(*c.Weekday), true
}

// CategoryFilter defines filter criteria for listing categories.
type CategoryFilter struct {
	Search   string
	Page     int
	PageSize int
}

// weekdayWords maps Spanish weekday words to weekdays, in match priority
// order. Containment is tested first to last, so a name like
// "Lunes y Jueves" resolves to Monday.
var weekdayWords = []struct {
	word string
	day  time.Weekday
}{
	{"lunes", time.Monday},
	{"martes", time.Tuesday},
	{"miércoles", time.Wednesday},
	{"miercoles", time.Wednesday},
	{"jueves", time.Thursday},
	{"viernes", time.Friday},
	{"sábado", time.Saturday},
	{"sabado", time.Saturday},
	{"domingo", time.Sunday},
}

// WeekdayForName resolves the class weekday from a category display name by
// case-insensitive containment of Spanish weekday words. The second return
// value is false when no weekday word is present.
func WeekdayForName(name string) (time.Weekday, bool) {
	lower := strings.ToLower(name)
	for _, entry := range weekdayWords {
		if strings.Contains(lower, entry.word) {
			return entry.day, true
		}
	}
	return time.Sunday, false
}
