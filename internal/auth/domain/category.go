package domain

import "time"

// Category is a row of the auxiliary reference table. Any authenticated
// user may list categories, only admins create them.
type Category struct {
	ID        string
	Name      string
	Label     string
	CreatedBy string
	CreatedAt time.Time
}
