package pg

import (
	"context"
	"database/sql"

	"seamline.io/internal/lifecycle"
)

// Concepts returns the concept store backed by this pool.
func (s *Store) Concepts() lifecycle.ConceptStore {
	return &conceptStore{db: s.db}
}

// Seasons returns the season store backed by this pool.
func (s *Store) Seasons() lifecycle.SeasonStore {
	return &seasonStore{db: s.db}
}

// Concept store ------------------------------------------------------------

type conceptStore struct{ db *sql.DB }

var _ lifecycle.ConceptStore = (*conceptStore)(nil)

func (s *conceptStore) Find(ctx context.Context, id string) (*lifecycle.Concept, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, status, created_by, coalesce(approved_by, ''), created_at, updated_at
		 from concepts where id=$1`, id)
	var c lifecycle.Concept
	if err := row.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedBy, &c.ApprovedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, lifecycle.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *conceptStore) SetStatus(ctx context.Context, id string, status lifecycle.ConceptStatus, entry lifecycle.StageEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`update concepts
		 set status=$2,
		     updated_at=$3,
		     approved_by = case when $2 = 'approved' then $4 else approved_by end
		 where id=$1`,
		id, status, entry.EnteredAt, entry.ActorID,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`insert into concept_stage_history(concept_id, status, actor_id, entered_at)
		 values($1,$2,$3,$4)`,
		entry.ConceptID, entry.Status, entry.ActorID, entry.EnteredAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *conceptStore) StageHistory(ctx context.Context, id string) ([]lifecycle.StageEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`select concept_id, status, actor_id, entered_at
		 from concept_stage_history where concept_id=$1 order by entered_at asc`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []lifecycle.StageEntry
	for rows.Next() {
		var e lifecycle.StageEntry
		if err := rows.Scan(&e.ConceptID, &e.Status, &e.ActorID, &e.EnteredAt); err != nil {
			return nil, err
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// Season store --------------------------------------------------------------

type seasonStore struct{ db *sql.DB }

var _ lifecycle.SeasonStore = (*seasonStore)(nil)

func (s *seasonStore) Find(ctx context.Context, id string) (*lifecycle.Season, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, name, type, status, target_sku_count, minor_max_skus, created_at, updated_at
		 from seasons where id=$1`, id)
	var (
		season   lifecycle.Season
		minorCap sql.NullInt64
	)
	if err := row.Scan(&season.ID, &season.Name, &season.Type, &season.Status, &season.TargetSKUCount, &minorCap, &season.CreatedAt, &season.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, lifecycle.ErrNotFound
		}
		return nil, err
	}
	if minorCap.Valid {
		v := int(minorCap.Int64)
		season.MinorMaxSKUs = &v
	}
	return &season, nil
}

func (s *seasonStore) CountSlots(ctx context.Context, seasonID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from season_slots where season_id=$1`, seasonID).Scan(&count)
	return count, err
}

func (s *seasonStore) CountFilledSlots(ctx context.Context, seasonID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from season_slots where season_id=$1 and concept_id is not null`, seasonID).Scan(&count)
	return count, err
}

func (s *seasonStore) ListCategories(ctx context.Context, seasonID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`select distinct category from season_slots where season_id=$1`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *seasonStore) InsertSlot(ctx context.Context, slot *lifecycle.Slot) error {
	_, err := s.db.ExecContext(ctx,
		`insert into season_slots(id, season_id, category, created_at)
		 values($1,$2,$3,$4)`,
		slot.ID, slot.SeasonID, slot.Category, slot.CreatedAt,
	)
	return err
}

func (s *seasonStore) FindSlot(ctx context.Context, seasonID, slotID string) (*lifecycle.Slot, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, season_id, category, coalesce(concept_id, ''), created_at, coalesce(filled_at, 'epoch'::timestamptz)
		 from season_slots where season_id=$1 and id=$2`, seasonID, slotID)
	var slot lifecycle.Slot
	if err := row.Scan(&slot.ID, &slot.SeasonID, &slot.Category, &slot.ConceptID, &slot.CreatedAt, &slot.FilledAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, lifecycle.ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func (s *seasonStore) FillSlot(ctx context.Context, slotID, conceptID string) error {
	_, err := s.db.ExecContext(ctx,
		`update season_slots set concept_id=$2, filled_at=now() where id=$1`, slotID, conceptID)
	return err
}
