package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crowlands/internal/domain"
	"crowlands/internal/infra"
	"crowlands/internal/sqlinline"
)

// Store persists payment sessions. All status writes go through Mark so the
// pending-only guard in the SQL is the single transition point.
type Store struct {
	sql    infra.SQLExecutor
	logger infra.Logger
}

func NewStore(sql infra.SQLExecutor, logger infra.Logger) *Store {
	return &Store{sql: sql, logger: logger}
}

// Create records a freshly opened checkout session as pending.
func (s *Store) Create(ctx context.Context, sessionID, userID, returnURL string) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QInsertPaymentSession, sessionID, userID, returnURL); err != nil {
		return fmt.Errorf("insert payment session: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*domain.PaymentSession, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectPaymentSession, sessionID)

	var sess domain.PaymentSession
	var status string
	err := row.Scan(&sess.ID, &sess.UserID, &status, &sess.ReturnURL, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payment session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select payment session: %w", err)
	}
	sess.Status = domain.PaymentStatus(status)
	return &sess, nil
}

// Mark moves a pending session to a terminal status. It reports whether this
// call performed the transition; false means the session was already terminal
// or unknown.
func (s *Store) Mark(ctx context.Context, sessionID string, status domain.PaymentStatus) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("status %q is not terminal", status)
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QMarkPaymentSession, sessionID, string(status))
	if err != nil {
		return false, fmt.Errorf("mark payment session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Pending lists recent sessions still awaiting confirmation, oldest first.
func (s *Store) Pending(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QSelectPendingSessions, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sessions: %w", err)
	}
	return ids, nil
}
