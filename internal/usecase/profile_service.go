package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/gpsprofile"
	idgen "github.com/riskibarqy/gps-gamemodel/internal/platform/id"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
)

// UpsertProfileInput is the payload for creating or replacing a GPS profile.
// An empty ProfileID creates a new profile.
type UpsertProfileInput struct {
	ClubID     string
	ProfileID  string
	VendorName string
	Name       string
	Columns    []gpsprofile.ColumnMapping
	Formulas   []gpsprofile.Formula
}

type ProfileService struct {
	repo     gpsprofile.Repository
	registry *canonical.Registry
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewProfileService(repo gpsprofile.Repository, registry *canonical.Registry, idGen idgen.Generator, logger *logging.Logger) *ProfileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ProfileService{
		repo:     repo,
		registry: registry,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
	}
}

// UpsertProfile validates the mapping against the registry before saving.
// Existing reports keep their own snapshot and are not affected.
func (s *ProfileService) UpsertProfile(ctx context.Context, input UpsertProfileInput) (gpsprofile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.UpsertProfile", clubAttr(input.ClubID))
	defer span.End()

	input.ClubID = strings.TrimSpace(input.ClubID)
	input.ProfileID = strings.TrimSpace(input.ProfileID)
	if input.ClubID == "" {
		return gpsprofile.Profile{}, fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	profile := gpsprofile.Profile{
		ID:         input.ProfileID,
		ClubID:     input.ClubID,
		VendorName: strings.TrimSpace(input.VendorName),
		Name:       strings.TrimSpace(input.Name),
		Columns:    input.Columns,
		Formulas:   input.Formulas,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if profile.ID != "" {
		existing, exists, err := s.repo.GetByID(ctx, input.ClubID, profile.ID)
		if err != nil {
			return gpsprofile.Profile{}, fmt.Errorf("get gps profile: %w", err)
		}
		if exists {
			profile.CreatedAt = existing.CreatedAt
		}
	} else {
		id, err := s.idGen.NewID()
		if err != nil {
			return gpsprofile.Profile{}, fmt.Errorf("generate profile id: %w", err)
		}
		profile.ID = id
	}

	if err := profile.Validate(s.registry); err != nil {
		return gpsprofile.Profile{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return gpsprofile.Profile{}, fmt.Errorf("upsert gps profile: %w", err)
	}

	s.logger.InfoContext(ctx, "gps profile saved",
		"club_id", profile.ClubID,
		"profile_id", profile.ID,
		"vendor", profile.VendorName,
		"columns", len(profile.Columns),
		"formulas", len(profile.Formulas),
	)
	return profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, clubID, profileID string) (gpsprofile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.GetProfile", clubAttr(clubID))
	defer span.End()

	profile, exists, err := s.repo.GetByID(ctx, strings.TrimSpace(clubID), strings.TrimSpace(profileID))
	if err != nil {
		return gpsprofile.Profile{}, fmt.Errorf("get gps profile: %w", err)
	}
	if !exists {
		return gpsprofile.Profile{}, fmt.Errorf("%w: gps profile id=%s", ErrNotFound, profileID)
	}
	return profile, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context, clubID string) ([]gpsprofile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.ListProfiles", clubAttr(clubID))
	defer span.End()

	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return nil, fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}
	profiles, err := s.repo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("list gps profiles: %w", err)
	}
	return profiles, nil
}
