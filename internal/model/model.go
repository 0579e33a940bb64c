package model

import "time"

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Unit{},
		&Inmate{},
		&Lookup{},
		&Comment{},
		&Shipment{},
		&Request{},
		&Alert{},
		&User{},
	}
}

// Date truncates t to a calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
