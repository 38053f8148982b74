package gpsreport

import "context"

// Repository persists reports together with their player mappings.
type Repository interface {
	// Save writes the report and replaces its mappings in one transaction.
	Save(ctx context.Context, report Report, mappings []PlayerMapping) error
	GetByID(ctx context.Context, clubID, reportID string) (Report, bool, error)
	ListMappings(ctx context.Context, reportID string) ([]PlayerMapping, error)
	GetMapping(ctx context.Context, reportID string, rowIndex int) (PlayerMapping, bool, error)
	UpdateMapping(ctx context.Context, mapping PlayerMapping) error
}
