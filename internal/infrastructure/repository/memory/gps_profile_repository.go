package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
)

type GPSProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]gpsprofile.Profile
}

func NewGPSProfileRepository() *GPSProfileRepository {
	return &GPSProfileRepository{profiles: make(map[string]gpsprofile.Profile)}
}

func (r *GPSProfileRepository) GetByID(_ context.Context, clubID, profileID string) (gpsprofile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[profileID]
	if !ok || p.ClubID != clubID {
		return gpsprofile.Profile{}, false, nil
	}
	return cloneProfile(p), true, nil
}

func (r *GPSProfileRepository) ListByClub(_ context.Context, clubID string) ([]gpsprofile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gpsprofile.Profile, 0)
	for _, p := range r.profiles {
		if p.ClubID == clubID {
			out = append(out, cloneProfile(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *GPSProfileRepository) Upsert(_ context.Context, profile gpsprofile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[profile.ID]; ok {
		profile.CreatedAt = existing.CreatedAt
	}
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func cloneProfile(p gpsprofile.Profile) gpsprofile.Profile {
	p.Columns = append([]gpsprofile.ColumnMapping(nil), p.Columns...)
	p.Formulas = append([]gpsprofile.Formula(nil), p.Formulas...)
	return p
}
