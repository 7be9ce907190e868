package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"seamline.io/internal/authz"
)

var _ authz.GrantStore = (*Store)(nil)

func (s *Store) Insert(ctx context.Context, grant *authz.Grant) error {
	_, err := s.db.ExecContext(ctx,
		`insert into grants(id, subject_type, subject_id, resource_type, resource_id, level, granted_by, created_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8)`,
		grant.ID, grant.SubjectType, grant.SubjectID, grant.ResourceType, grant.ResourceID,
		grant.Level, grant.GrantedBy, grant.CreatedAt,
	)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: unknown granting principal", authz.ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (s *Store) Find(ctx context.Context, id string) (*authz.Grant, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, subject_type, subject_id, resource_type, resource_id, level, granted_by, created_at
		 from grants where id=$1`, id)
	var g authz.Grant
	if err := row.Scan(&g.ID, &g.SubjectType, &g.SubjectID, &g.ResourceType, &g.ResourceID, &g.Level, &g.GrantedBy, &g.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `delete from grants where id=$1`, id)
	return err
}

func (s *Store) ListBySubject(ctx context.Context, subjectType authz.SubjectType, subjectID string) ([]authz.Grant, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, subject_type, subject_id, resource_type, resource_id, level, granted_by, created_at
		 from grants where subject_type=$1 and subject_id=$2`, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []authz.Grant
	for rows.Next() {
		var g authz.Grant
		if err := rows.Scan(&g.ID, &g.SubjectType, &g.SubjectID, &g.ResourceType, &g.ResourceID, &g.Level, &g.GrantedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (s *Store) MatchingGrantExists(ctx context.Context, subjects []authz.SubjectRef, resourceType authz.ResourceType, resourceID string, levels []authz.Level) (bool, error) {
	if len(subjects) == 0 || len(levels) == 0 {
		return false, nil
	}
	where, args := grantFilter(subjects, levels, 2)
	query := fmt.Sprintf(
		`select exists(select 1 from grants where resource_type=$1 and resource_id=$2 and %s)`, where)
	args = append([]any{resourceType, resourceID}, args...)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) ResourceIDsForSubjects(ctx context.Context, subjects []authz.SubjectRef, resourceType authz.ResourceType, levels []authz.Level) ([]string, error) {
	if len(subjects) == 0 || len(levels) == 0 {
		return nil, nil
	}
	where, args := grantFilter(subjects, levels, 1)
	query := fmt.Sprintf(
		`select distinct resource_id from grants where resource_type=$1 and %s`, where)
	args = append([]any{resourceType}, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// grantFilter builds the subject and level predicates with placeholders
// starting after the first `fixed` positional arguments.
func grantFilter(subjects []authz.SubjectRef, levels []authz.Level, fixed int) (string, []any) {
	var (
		args     []any
		subjPred []string
		lvlPred  []string
	)
	n := fixed
	for _, sub := range subjects {
		subjPred = append(subjPred, fmt.Sprintf("(subject_type=$%d and subject_id=$%d)", n+1, n+2))
		args = append(args, sub.Type, sub.ID)
		n += 2
	}
	for _, lvl := range levels {
		lvlPred = append(lvlPred, fmt.Sprintf("$%d", n+1))
		args = append(args, lvl)
		n++
	}
	where := fmt.Sprintf("(%s) and level in (%s)",
		strings.Join(subjPred, " or "), strings.Join(lvlPred, ","))
	return where, args
}
