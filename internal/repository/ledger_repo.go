// internal/repository/ledger_repo.go
package repository

import (
	"context"
	"time"

	"parking-gate-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type GuestLedgerRepository interface {
	// RecordIfAbsent inserts a ledger row for (plate, orderID) and reports
	// whether a new row was written. Existing rows are never updated, so a
	// double invocation is a safe no-op.
	RecordIfAbsent(ctx context.Context, plate, orderID string, amount float64, paymentID string, paidAt time.Time) (bool, error)

	ListByPlate(ctx context.Context, plate string) ([]domain.GuestLedgerEntry, error)
}

type ledgerRepo struct {
	db *pgxpool.Pool
}

func NewGuestLedgerRepository(db *pgxpool.Pool) GuestLedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) RecordIfAbsent(ctx context.Context, plate, orderID string, amount float64, paymentID string, paidAt time.Time) (bool, error) {
	query := `
        INSERT INTO guest_ledger (plate, order_id, amount, payment_id, paid_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (plate, order_id) DO NOTHING
    `

	tag, err := r.db.Exec(ctx, query, plate, orderID, amount, paymentID, paidAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ledgerRepo) ListByPlate(ctx context.Context, plate string) ([]domain.GuestLedgerEntry, error) {
	query := `
        SELECT id, plate, order_id, amount, payment_id, paid_at, created_at
        FROM guest_ledger
        WHERE plate = $1
        ORDER BY paid_at DESC
    `

	rows, err := r.db.Query(ctx, query, plate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.GuestLedgerEntry
	for rows.Next() {
		var e domain.GuestLedgerEntry
		if err := rows.Scan(&e.ID, &e.Plate, &e.OrderID, &e.Amount, &e.PaymentID, &e.PaidAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
