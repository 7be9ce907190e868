package lifecycle

import (
	"context"
	"fmt"
	"time"

	"seamline.io/internal/ids"
)

// Seasons coordinates slot mutations against a season's capacity rules.
//
// Counts are fetched immediately before validation and not re-verified at
// write time: two concurrent mutations can both pass and overshoot the cap.
// That check-then-act window is accepted soft-cap behavior, matching the
// portal this service replaced; callers needing a hard cap must serialize
// writes themselves.
type Seasons struct {
	store SeasonStore
	now   func() time.Time
}

// SeasonsOption configures the service.
type SeasonsOption func(*Seasons)

// WithSeasonsClock overrides the time source (useful for tests).
func WithSeasonsClock(fn func() time.Time) SeasonsOption {
	return func(s *Seasons) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewSeasons constructs the season service.
func NewSeasons(store SeasonStore, opts ...SeasonsOption) *Seasons {
	s := &Seasons{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSlot creates a new slot in the season after running the capacity check
// and, for minor seasons, the category-reuse rule. All violated rules are
// reported together in the Result.
func (s *Seasons) AddSlot(ctx context.Context, seasonID, category string) (Result, *Slot, error) {
	if seasonID == "" || category == "" {
		return Result{}, nil, fmt.Errorf("%w: season_id and category are required", ErrInvalidInput)
	}
	season, err := s.store.Find(ctx, seasonID)
	if err != nil {
		return Result{}, nil, err
	}
	count, err := s.store.CountSlots(ctx, seasonID)
	if err != nil {
		return Result{}, nil, err
	}
	res := ValidateSeasonSlotAdd(*season, count)
	if season.Type == SeasonMinor {
		categories, err := s.store.ListCategories(ctx, seasonID)
		if err != nil {
			return Result{}, nil, err
		}
		minor := ValidateMinorSeasonRules(*season, category, categories)
		res.Errors = append(res.Errors, minor.Errors...)
		res.Valid = res.Valid && minor.Valid
	}
	if !res.Valid {
		return res, nil, nil
	}
	slot := Slot{
		ID:        ids.New(),
		SeasonID:  seasonID,
		Category:  category,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertSlot(ctx, &slot); err != nil {
		return Result{}, nil, err
	}
	return res, &slot, nil
}

// FillSlot attaches a concept to an existing slot after the fill capacity
// check.
func (s *Seasons) FillSlot(ctx context.Context, seasonID, slotID, conceptID string) (Result, *Slot, error) {
	if seasonID == "" || slotID == "" || conceptID == "" {
		return Result{}, nil, fmt.Errorf("%w: season_id, slot_id and concept_id are required", ErrInvalidInput)
	}
	season, err := s.store.Find(ctx, seasonID)
	if err != nil {
		return Result{}, nil, err
	}
	slot, err := s.store.FindSlot(ctx, seasonID, slotID)
	if err != nil {
		return Result{}, nil, err
	}
	if slot.Filled() {
		return Result{}, nil, fmt.Errorf("%w: slot %s is already filled", ErrInvalidInput, slotID)
	}
	filled, err := s.store.CountFilledSlots(ctx, seasonID)
	if err != nil {
		return Result{}, nil, err
	}
	res := ValidateSeasonSlotFill(*season, filled)
	if !res.Valid {
		return res, nil, nil
	}
	if err := s.store.FillSlot(ctx, slotID, conceptID); err != nil {
		return Result{}, nil, err
	}
	slot.ConceptID = conceptID
	slot.FilledAt = s.now().UTC()
	return res, slot, nil
}
