package lifecycle

import "time"

// SeasonType distinguishes the two planning calendars.
type SeasonType string

const (
	SeasonMajor SeasonType = "major"
	SeasonMinor SeasonType = "minor"
)

// SeasonStatus gates slot mutations.
type SeasonStatus string

const (
	SeasonOpen   SeasonStatus = "open"
	SeasonLocked SeasonStatus = "locked"
	SeasonClosed SeasonStatus = "closed"
)

// Season is a planning season with a SKU slot budget. MinorMaxSKUs, when set
// on a minor season, overrides TargetSKUCount as the effective cap.
type Season struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Type           SeasonType   `json:"type"`
	Status         SeasonStatus `json:"status"`
	TargetSKUCount int          `json:"target_sku_count"`
	MinorMaxSKUs   *int         `json:"minor_max_skus,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Slot is one SKU position in a season. A slot is filled once a concept is
// attached to it.
type Slot struct {
	ID        string    `json:"id"`
	SeasonID  string    `json:"season_id"`
	Category  string    `json:"category"`
	ConceptID string    `json:"concept_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	FilledAt  time.Time `json:"filled_at,omitempty"`
}

// Filled reports whether a concept occupies the slot.
func (s Slot) Filled() bool {
	return s.ConceptID != ""
}

// EffectiveCap is the slot-count ceiling for the season.
func (s Season) EffectiveCap() int {
	if s.Type == SeasonMinor && s.MinorMaxSKUs != nil {
		return *s.MinorMaxSKUs
	}
	return s.TargetSKUCount
}

// ValidateSeasonSlotFill checks whether another slot may be filled given the
// current filled count. The capacity failure is overridable business policy;
// a closed season is a hard stop. Both can be reported together. Counts are
// supplied by the caller, fetched immediately before the call; this
// validator never queries storage.
func ValidateSeasonSlotFill(season Season, currentFilledSlots int) Result {
	var res Result
	limit := season.EffectiveCap()
	if currentFilledSlots >= limit {
		res.addf("Season '%s' is at capacity (%d of %d slots filled). Override required to fill more.", season.Name, currentFilledSlots, limit)
	}
	if season.Status == SeasonClosed {
		res.addf("Season '%s' is closed and no longer accepts slot changes.", season.Name)
	}
	return res.finish("season_slot_fill")
}

// ValidateSeasonSlotAdd checks whether a new slot may be added given the
// current slot count. Adding is stricter than filling: both locked and closed
// seasons block it.
func ValidateSeasonSlotAdd(season Season, currentSlotCount int) Result {
	var res Result
	limit := season.EffectiveCap()
	if currentSlotCount >= limit {
		res.addf("Cannot exceed target SKU count for season '%s' (%d of %d slots used). Override required.", season.Name, currentSlotCount, limit)
	}
	if season.Status == SeasonLocked || season.Status == SeasonClosed {
		res.addf("Season '%s' is %s and does not accept new slots.", season.Name, season.Status)
	}
	return res.finish("season_slot_add")
}

// ValidateMinorSeasonRules enforces that minor seasons only reuse categories
// already active in the season. Major seasons are unrestricted.
func ValidateMinorSeasonRules(season Season, newCategory string, existingCategories []string) Result {
	var res Result
	if season.Type != SeasonMinor {
		return res.finish("minor_season_rules")
	}
	for _, c := range existingCategories {
		if c == newCategory {
			return res.finish("minor_season_rules")
		}
	}
	res.addf("Category '%s' is not active in minor season '%s'. Introducing a new category requires an override.", newCategory, season.Name)
	return res.finish("minor_season_rules")
}
