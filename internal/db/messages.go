package db

import (
	"context"
	"fmt"

	"github.com/supplylink/core-service/internal/models"
)

// AppendMessage appends to the link's immutable log
func (db *Database) AppendMessage(ctx context.Context, m models.Message) (models.Message, error) {
	var created models.Message
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO messages (link_id, sender_account_id, content, attachment_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, link_id, sender_account_id, content, attachment_url, created_at
	`, m.LinkID, m.SenderAccountID, m.Content, m.AttachmentURL).
		Scan(&created.ID, &created.LinkID, &created.SenderAccountID, &created.Content, &created.AttachmentURL, &created.CreatedAt)
	if err != nil {
		return models.Message{}, fmt.Errorf("append message: %w", err)
	}
	return created, nil
}

// ListMessages returns a page of the thread ordered by (created_at, id)
// ascending.
func (db *Database) ListMessages(ctx context.Context, linkID string, limit, offset int) ([]models.Message, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, link_id, sender_account_id, content, attachment_url, created_at
		FROM messages
		WHERE link_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, linkID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.LinkID, &m.SenderAccountID, &m.Content, &m.AttachmentURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
