package gpsprofile

import "context"

// Repository describes profile persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, clubID, profileID string) (Profile, bool, error)
	ListByClub(ctx context.Context, clubID string) ([]Profile, error)
	Upsert(ctx context.Context, profile Profile) error
}
