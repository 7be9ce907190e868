package pg

import (
	"context"
	"encoding/json"

	"seamline.io/internal/audit"
)

var _ audit.Store = (*Store)(nil)

func (s *Store) Append(ctx context.Context, entry *audit.Entry) error {
	details, _ := json.Marshal(entry.Details)
	_, err := s.db.ExecContext(ctx,
		`insert into audit_log(id, actor_id, action, target_subject_type, target_subject_id, details, occurred_at)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		entry.ID, entry.ActorID, entry.Action, entry.TargetSubjectType, entry.TargetSubjectID,
		details, entry.OccurredAt,
	)
	return err
}
