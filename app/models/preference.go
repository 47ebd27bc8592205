package models

import "time"

// VisitorPreference is the persisted accessibility setting for one browser,
// keyed by the long-lived visitor cookie.
type VisitorPreference struct {
	VisitorID    string `gorm:"primaryKey;size:64"`
	HighContrast bool
	FontScale    int
	UpdatedAt    time.Time
}

func (VisitorPreference) TableName() string { return "visitor_preferences" }

// Accessibility converts the row to the session form.
func (p VisitorPreference) Accessibility() Accessibility {
	return Accessibility{HighContrast: p.HighContrast, FontScale: p.FontScale}.Normalize()
}
