// internal/usecase/fakes_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/gateway"
)

// fakeRecords is an in-memory PaymentRecordRepository with the same
// linearization semantics as the conditional UPDATE in the real store.
type fakeRecords struct {
	mu      sync.Mutex
	byOrder map[string]*domain.PaymentRecord
	nextID  int64
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byOrder: make(map[string]*domain.PaymentRecord)}
}

func (f *fakeRecords) Create(_ context.Context, record *domain.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byOrder[record.OrderID]; ok {
		return domain.ErrAlreadyExists
	}

	f.nextID++
	record.ID = f.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	stored := *record
	f.byOrder[record.OrderID] = &stored
	return nil
}

func (f *fakeRecords) GetByOrderID(_ context.Context, orderID string) (*domain.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec, ok := f.byOrder[orderID]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRecords) GetByPaymentLinkID(_ context.Context, linkID string) (*domain.PaymentRecord, error) {
	return f.findFirst(func(rec *domain.PaymentRecord) bool {
		return rec.PaymentLinkID != nil && *rec.PaymentLinkID == linkID
	})
}

func (f *fakeRecords) GetByPaymentID(_ context.Context, paymentID string) (*domain.PaymentRecord, error) {
	return f.findFirst(func(rec *domain.PaymentRecord) bool {
		return rec.PaymentID != nil && *rec.PaymentID == paymentID
	})
}

func (f *fakeRecords) GetByPlateStatus(_ context.Context, plate string, status domain.PaymentStatus) (*domain.PaymentRecord, error) {
	return f.findLatest(func(rec *domain.PaymentRecord) bool {
		return rec.Plate == plate && rec.Status == status
	})
}

func (f *fakeRecords) GetLatestCompletedByPlate(_ context.Context, plate string) (*domain.PaymentRecord, error) {
	return f.findLatest(func(rec *domain.PaymentRecord) bool {
		return rec.Plate == plate && rec.Status == domain.PaymentStatusCompleted
	})
}

func (f *fakeRecords) TryComplete(_ context.Context, orderID, paymentID string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.byOrder[orderID]
	if !ok || rec.Status != domain.PaymentStatusPending {
		return time.Time{}, false, nil
	}

	paidAt := time.Now()
	rec.Status = domain.PaymentStatusCompleted
	rec.PaidAt = &paidAt
	if paymentID != "" {
		id := paymentID
		rec.PaymentID = &id
	}
	return paidAt, true, nil
}

func (f *fakeRecords) findFirst(match func(*domain.PaymentRecord) bool) (*domain.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rec := range f.byOrder {
		if match(rec) {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRecords) findLatest(match func(*domain.PaymentRecord) bool) (*domain.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *domain.PaymentRecord
	for _, rec := range f.byOrder {
		if !match(rec) {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

// fakeLedger is an in-memory GuestLedgerRepository idempotent on
// (plate, order id).
type fakeLedger struct {
	mu      sync.Mutex
	entries map[string]domain.GuestLedgerEntry
	nextID  int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[string]domain.GuestLedgerEntry)}
}

func (f *fakeLedger) RecordIfAbsent(_ context.Context, plate, orderID string, amount float64, paymentID string, paidAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := plate + "|" + orderID
	if _, ok := f.entries[key]; ok {
		return false, nil
	}

	f.nextID++
	f.entries[key] = domain.GuestLedgerEntry{
		ID:        f.nextID,
		Plate:     plate,
		OrderID:   orderID,
		Amount:    amount,
		PaymentID: paymentID,
		PaidAt:    paidAt,
		CreatedAt: time.Now(),
	}
	return true, nil
}

func (f *fakeLedger) ListByPlate(_ context.Context, plate string) ([]domain.GuestLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []domain.GuestLedgerEntry
	for _, e := range f.entries {
		if e.Plate == plate {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// fakeGateway is a scriptable gateway.Client.
type fakeGateway struct {
	mu sync.Mutex

	orders        map[string]*gateway.Order
	orderPayments map[string][]gateway.Payment
	links         map[string]*gateway.PaymentLink
	recent        []gateway.Payment

	errFetchOrder    error
	errOrderPayments error
	errFetchLink     error
	errListRecent    error
	errCreateOrder   error
	errCreateLink    error

	createOrderCalls int
	seq              int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		orders:        make(map[string]*gateway.Order),
		orderPayments: make(map[string][]gateway.Payment),
		links:         make(map[string]*gateway.PaymentLink),
	}
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, currency, receipt string, _ map[string]string) (*gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createOrderCalls++
	if f.errCreateOrder != nil {
		return nil, f.errCreateOrder
	}

	f.seq++
	order := &gateway.Order{
		ID:       fmt.Sprintf("order_test%03d", f.seq),
		Status:   gateway.OrderStatusCreated,
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeGateway) FetchOrder(_ context.Context, orderID string) (*gateway.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errFetchOrder != nil {
		return nil, f.errFetchOrder
	}
	if order, ok := f.orders[orderID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, fmt.Errorf("gateway error: status 404")
}

func (f *fakeGateway) FetchOrderPayments(_ context.Context, orderID string) ([]gateway.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errOrderPayments != nil {
		return nil, f.errOrderPayments
	}
	return f.orderPayments[orderID], nil
}

func (f *fakeGateway) CreatePaymentLink(_ context.Context, amountPaise int64, _, referenceID, _ string) (*gateway.PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errCreateLink != nil {
		return nil, f.errCreateLink
	}

	f.seq++
	link := &gateway.PaymentLink{
		ID:       fmt.Sprintf("plink_test%03d", f.seq),
		OrderID:  referenceID,
		Status:   gateway.OrderStatusCreated,
		ShortURL: fmt.Sprintf("https://rzp.io/l/test%03d", f.seq),
	}
	f.links[link.ID] = link
	return link, nil
}

func (f *fakeGateway) FetchPaymentLink(_ context.Context, linkID string) (*gateway.PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errFetchLink != nil {
		return nil, f.errFetchLink
	}
	if link, ok := f.links[linkID]; ok {
		copied := *link
		return &copied, nil
	}
	return nil, fmt.Errorf("gateway error: status 404")
}

func (f *fakeGateway) ListRecentPayments(_ context.Context, _ int) ([]gateway.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errListRecent != nil {
		return nil, f.errListRecent
	}
	return f.recent, nil
}
