package lifecycle

import "context"

// ConceptStore persists concepts and their stage history.
type ConceptStore interface {
	Find(ctx context.Context, id string) (*Concept, error)
	// SetStatus writes the new status and appends the stage-history entry in
	// one transaction.
	SetStatus(ctx context.Context, id string, status ConceptStatus, entry StageEntry) error
	StageHistory(ctx context.Context, id string) ([]StageEntry, error)
}

// SeasonStore persists seasons and their slots.
type SeasonStore interface {
	Find(ctx context.Context, id string) (*Season, error)
	CountSlots(ctx context.Context, seasonID string) (int, error)
	CountFilledSlots(ctx context.Context, seasonID string) (int, error)
	ListCategories(ctx context.Context, seasonID string) ([]string, error)
	InsertSlot(ctx context.Context, slot *Slot) error
	FindSlot(ctx context.Context, seasonID, slotID string) (*Slot, error)
	FillSlot(ctx context.Context, slotID, conceptID string) error
}
