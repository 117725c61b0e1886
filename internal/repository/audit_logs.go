package repository

import (
	"context"

	"agroplan.io/agroplan/internal/domain"
)

const insertAuditLog = `
INSERT INTO audit_logs (id, action, resource_type, resource_id, actor_account_id, details)
VALUES ($1, $2, $3, $4, $5, $6)`

func (q *Queries) InsertAuditLog(ctx context.Context, e domain.AuditEvent) error {
	var details []byte
	if len(e.Details) > 0 {
		details = e.Details
	}
	_, err := q.db.Exec(ctx, insertAuditLog, e.ID, string(e.Type), e.Type.ResourceType(),
		e.ResourceID, e.ActorAccountID, details)
	return err
}

const listAuditLogsByResource = `
SELECT id, action, resource_id, actor_account_id, details, created_at
  FROM audit_logs
 WHERE resource_type = $1 AND resource_id = $2
 ORDER BY created_at, id`

// ListAuditLogsByResource returns the history of one resource, oldest first.
func (q *Queries) ListAuditLogsByResource(ctx context.Context, resourceType, resourceID string) ([]domain.AuditEvent, error) {
	rows, err := q.db.Query(ctx, listAuditLogsByResource, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var (
			e      domain.AuditEvent
			action string
		)
		if err := rows.Scan(&e.ID, &action, &e.ResourceID, &e.ActorAccountID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.EventType(action)
		out = append(out, e)
	}
	return out, rows.Err()
}
