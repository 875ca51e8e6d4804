package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"devstreak/internal/apperr"
	"devstreak/internal/models"
)

const paymentColumns = `id, user_id, amount, currency, status, type, product_id, provider_session_id, metadata, created_at, updated_at`

// GetPaymentBySession looks up a payment by the provider's checkout
// session id. Verification calls this before inserting so a session is
// never recorded twice.
func (s *Store) GetPaymentBySession(ctx context.Context, sessionID string) (models.Payment, error) {
	payment, err := scanPayment(s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE provider_session_id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Payment{}, apperr.New(apperr.NotFound, "payment not found")
	}
	if err != nil {
		return models.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return payment, nil
}

// RecordPayment persists a verified payment. The unique session index
// backs the lookup-before-insert duplicate guard.
func (s *Store) RecordPayment(ctx context.Context, payment models.Payment) (models.Payment, error) {
	rawMeta, err := marshalMetadata(payment.Metadata)
	if err != nil {
		return models.Payment{}, err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO payments(id, user_id, amount, currency, status, type, product_id, provider_session_id, metadata)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, payment.UserID, payment.Amount, payment.Currency, string(payment.Status), string(payment.Type),
		payment.ProductID, payment.SessionID, rawMeta)
	if err != nil {
		return models.Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	recorded, err := scanPayment(s.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if err != nil {
		return models.Payment{}, fmt.Errorf("read payment: %w", err)
	}
	return recorded, nil
}

// ListPayments returns the user's payments newest first.
func (s *Store) ListPayments(ctx context.Context, userID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row rowScanner) (models.Payment, error) {
	var (
		p       models.Payment
		rawMeta string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Amount, &p.Currency, &p.Status, &p.Type, &p.ProductID, &p.SessionID,
		&rawMeta, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Payment{}, err
	}
	if p.Metadata, err = unmarshalMetadata(rawMeta); err != nil {
		return models.Payment{}, err
	}
	return p, nil
}
