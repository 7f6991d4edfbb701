package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
)

var _ repository.MessageRepository = (*MessageStore)(nil)

// MessageStore is the per-owner contact inbox.
type MessageStore struct {
	conn *sql.DB
}

const messageColumns = `id, owner_id, sender_name, sender_email, subject, body, is_read, created_at`

// Create stores an unread message and sets its ID and CreatedAt.
func (s *MessageStore) Create(ctx context.Context, m *model.Message) error {
	m.ID = xid.New().String()
	m.CreatedAt = now()
	m.IsRead = false

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, m.SenderName, m.SenderEmail, m.Subject, m.Body, m.IsRead, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating message: %w", err)
	}
	return nil
}

func (s *MessageStore) Get(ctx context.Context, ownerID, id string) (*model.Message, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %s: %w", id, err)
	}
	return m, nil
}

func (s *MessageStore) List(ctx context.Context, ownerID string) ([]model.Message, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE owner_id = ? ORDER BY rowid`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating messages: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) SetRead(ctx context.Context, ownerID, id string, isRead bool) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE messages SET is_read = ? WHERE id = ? AND owner_id = ?`,
		isRead, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking message %s: %w", id, err)
	}
	return requireRow(result, "message", id)
}

func (s *MessageStore) Delete(ctx context.Context, ownerID, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM messages WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting message %s: %w", id, err)
	}
	return requireRow(result, "message", id)
}

func (s *MessageStore) CountUnread(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE owner_id = ? AND is_read = 0`,
		ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting unread messages: %w", err)
	}
	return n, nil
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var m model.Message
	if err := row.Scan(
		&m.ID, &m.OwnerID, &m.SenderName, &m.SenderEmail,
		&m.Subject, &m.Body, &m.IsRead, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
