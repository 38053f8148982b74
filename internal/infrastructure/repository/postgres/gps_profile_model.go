package postgres

import "time"

type gpsProfileTableModel struct {
	ID         string    `db:"id"`
	ClubID     string    `db:"club_id"`
	VendorName string    `db:"vendor_name"`
	Name       string    `db:"name"`
	Columns    string    `db:"columns"`
	Formulas   string    `db:"formulas"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type gpsProfileUpsertModel struct {
	ID         string    `db:"id"`
	ClubID     string    `db:"club_id"`
	VendorName string    `db:"vendor_name"`
	Name       string    `db:"name"`
	Columns    string    `db:"columns"`
	Formulas   string    `db:"formulas"`
	UpdatedAt  time.Time `db:"updated_at"`
}
