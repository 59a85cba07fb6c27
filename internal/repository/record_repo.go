// internal/repository/record_repo.go
package repository

import (
	"context"
	"errors"
	"time"

	"parking-gate-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRecordRepository interface {
	Create(ctx context.Context, record *domain.PaymentRecord) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error)
	GetByPaymentLinkID(ctx context.Context, linkID string) (*domain.PaymentRecord, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.PaymentRecord, error)
	GetByPlateStatus(ctx context.Context, plate string, status domain.PaymentStatus) (*domain.PaymentRecord, error)
	GetLatestCompletedByPlate(ctx context.Context, plate string) (*domain.PaymentRecord, error)

	// TryComplete atomically moves a pending record to completed, setting the
	// external payment id and paid_at in the same statement. It is the single
	// linearization point for reconciliation: across any number of concurrent
	// callers exactly one observes won == true, and only that caller may write
	// the guest ledger or arm the gate mailbox. Losers observe won == false
	// with no mutation.
	TryComplete(ctx context.Context, orderID, paymentID string) (paidAt time.Time, won bool, err error)
}

type recordRepo struct {
	db *pgxpool.Pool
}

func NewPaymentRecordRepository(db *pgxpool.Pool) PaymentRecordRepository {
	return &recordRepo{db: db}
}

const recordColumns = `
    id, order_id, plate, amount, currency, status,
    payment_id, payment_link_id, payment_url, created_at, paid_at
`

func (r *recordRepo) Create(ctx context.Context, record *domain.PaymentRecord) error {
	query := `
        INSERT INTO payment_records (
            order_id, plate, amount, currency, status, payment_link_id, payment_url
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `

	err := r.db.QueryRow(ctx, query,
		record.OrderID,
		record.Plate,
		record.Amount,
		record.Currency,
		record.Status,
		record.PaymentLinkID,
		record.PaymentURL,
	).Scan(&record.ID, &record.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *recordRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM payment_records WHERE order_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, orderID))
}

func (r *recordRepo) GetByPaymentLinkID(ctx context.Context, linkID string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM payment_records WHERE payment_link_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, linkID))
}

func (r *recordRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM payment_records WHERE payment_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, paymentID))
}

func (r *recordRepo) GetByPlateStatus(ctx context.Context, plate string, status domain.PaymentStatus) (*domain.PaymentRecord, error) {
	query := `
        SELECT ` + recordColumns + `
        FROM payment_records
        WHERE plate = $1 AND status = $2
        ORDER BY created_at DESC
        LIMIT 1
    `
	return r.scanOne(r.db.QueryRow(ctx, query, plate, status))
}

func (r *recordRepo) GetLatestCompletedByPlate(ctx context.Context, plate string) (*domain.PaymentRecord, error) {
	query := `
        SELECT ` + recordColumns + `
        FROM payment_records
        WHERE plate = $1 AND status = 'completed'
        ORDER BY paid_at DESC
        LIMIT 1
    `
	return r.scanOne(r.db.QueryRow(ctx, query, plate))
}

func (r *recordRepo) TryComplete(ctx context.Context, orderID, paymentID string) (time.Time, bool, error) {
	// Conditional update: the WHERE status = 'pending' clause guarantees a
	// single winner when webhook and poll race on the same order.
	query := `
        UPDATE payment_records
        SET
            status = 'completed',
            payment_id = NULLIF($2, ''),
            paid_at = NOW()
        WHERE order_id = $1 AND status = 'pending'
        RETURNING paid_at
    `

	var paidAt time.Time
	err := r.db.QueryRow(ctx, query, orderID, paymentID).Scan(&paidAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return paidAt, true, nil
}

func (r *recordRepo) scanOne(row pgx.Row) (*domain.PaymentRecord, error) {
	var record domain.PaymentRecord
	err := row.Scan(
		&record.ID,
		&record.OrderID,
		&record.Plate,
		&record.Amount,
		&record.Currency,
		&record.Status,
		&record.PaymentID,
		&record.PaymentLinkID,
		&record.PaymentURL,
		&record.CreatedAt,
		&record.PaidAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
