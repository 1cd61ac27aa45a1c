package repository

import (
	"context"
	"fmt"

	"github.com/voro/platform/internal/domain"
)

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

func (r *outboxRepo) Insert(ctx context.Context, db DBTX, draft domain.NotificationDraft) error {
	_, err := db.Exec(ctx, `
		INSERT INTO notification_outbox (event_id, kind, recipient_id, game_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		draft.EventID, string(draft.Kind), draft.RecipientID, draft.GameID,
		draft.Payload, draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.NotificationDraft, error) {
	rows, err := db.Query(ctx, `
		SELECT id, event_id, kind, recipient_id, game_id, payload, occurred_at
		FROM notification_outbox
		ORDER BY id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}
	defer rows.Close()

	var drafts []domain.NotificationDraft
	for rows.Next() {
		var d domain.NotificationDraft
		var kind string
		err := rows.Scan(&d.SeqID, &d.EventID, &kind, &d.RecipientID, &d.GameID, &d.Payload, &d.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		d.Kind = domain.NotificationKind(kind)
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *outboxRepo) MarkPublished(ctx context.Context, db DBTX, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `DELETE FROM notification_outbox WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}
