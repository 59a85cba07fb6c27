// internal/usecase/webhook_uc_test.go
package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parking-gate-service/internal/domain"
	"parking-gate-service/internal/mailbox"
	"parking-gate-service/pkg/security"
)

const testWebhookSecret = "whsec_test"

func newWebhookFixture(t *testing.T, secret string) (*WebhookUsecase, *fakeRecords, *fakeLedger, *mailbox.Mailbox) {
	t.Helper()

	records := newFakeRecords()
	ledger := newFakeLedger()
	gate := mailbox.New(time.Second)
	uc := NewWebhookUsecase(records, ledger, gate, secret, zap.NewNop())
	return uc, records, ledger, gate
}

func signedBody(body string) ([]byte, string) {
	raw := []byte(body)
	return raw, security.SignBody(raw, testWebhookSecret)
}

func TestProcess_PaymentCapturedCompletesRecord(t *testing.T) {
	uc, records, ledger, gate := newWebhookFixture(t, testWebhookSecret)
	seedPendingRecord(t, records, "order_200", "MH12AB1234", 50)

	body, sig := signedBody(`{"event":"payment.captured","payload":{"payment":{"entity":{
		"id":"pay_200","order_id":"order_200","amount":5000,"status":"captured"}}}}`)

	require.NoError(t, uc.Process(context.Background(), body, sig))

	record, err := records.GetByOrderID(context.Background(), "order_200")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, record.Status)
	require.NotNil(t, record.PaymentID)
	assert.Equal(t, "pay_200", *record.PaymentID)
	require.NotNil(t, record.PaidAt)

	assert.Equal(t, 1, ledger.count())

	sigGate, ok := gate.PollAndClear()
	require.True(t, ok)
	assert.Equal(t, "MH12AB1234", sigGate.Plate)
	assert.Equal(t, GateReasonPayment, sigGate.Reason)
}

func TestProcess_InvalidSignatureLeavesPending(t *testing.T) {
	uc, records, ledger, gate := newWebhookFixture(t, testWebhookSecret)
	seedPendingRecord(t, records, "order_201", "MH12AB1234", 50)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{
		"id":"pay_201","order_id":"order_201"}}}}`)

	err := uc.Process(context.Background(), body, "deadbeef")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	record, err := records.GetByOrderID(context.Background(), "order_201")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, record.Status)
	assert.Equal(t, 0, ledger.count())

	_, ok := gate.PollAndClear()
	assert.False(t, ok)
}

func TestProcess_NoSecretSkipsVerification(t *testing.T) {
	uc, records, _, _ := newWebhookFixture(t, "")
	seedPendingRecord(t, records, "order_202", "MH12AB1234", 50)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{
		"id":"pay_202","order_id":"order_202"}}}}`)

	require.NoError(t, uc.Process(context.Background(), body, ""))

	record, err := records.GetByOrderID(context.Background(), "order_202")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, record.Status)
}

func TestProcess_MalformedBody(t *testing.T) {
	uc, _, _, _ := newWebhookFixture(t, testWebhookSecret)

	body, sig := signedBody(`not json`)
	err := uc.Process(context.Background(), body, sig)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestProcess_IgnoredEventIsAcked(t *testing.T) {
	uc, records, ledger, _ := newWebhookFixture(t, testWebhookSecret)
	seedPendingRecord(t, records, "order_203", "MH12AB1234", 50)

	body, sig := signedBody(`{"event":"payment.failed","payload":{"payment":{"entity":{
		"id":"pay_203","order_id":"order_203"}}}}`)

	require.NoError(t, uc.Process(context.Background(), body, sig))

	record, err := records.GetByOrderID(context.Background(), "order_203")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, record.Status)
	assert.Equal(t, 0, ledger.count())
}

func TestProcess_UnrecognizedShapeIsAcked(t *testing.T) {
	uc, _, ledger, _ := newWebhookFixture(t, testWebhookSecret)

	body, sig := signedBody(`{"event":"payment.captured","payload":{"refund":{"entity":{"id":"rfnd_1"}}}}`)

	require.NoError(t, uc.Process(context.Background(), body, sig))
	assert.Equal(t, 0, ledger.count())
}

func TestProcess_UnmatchedEventIsAcked(t *testing.T) {
	uc, _, ledger, gate := newWebhookFixture(t, testWebhookSecret)

	body, sig := signedBody(`{"event":"payment.captured","payload":{"payment":{"entity":{
		"id":"pay_unknown","order_id":"order_unknown"}}}}`)

	require.NoError(t, uc.Process(context.Background(), body, sig))
	assert.Equal(t, 0, ledger.count())

	_, ok := gate.PollAndClear()
	assert.False(t, ok)
}

func TestProcess_ResolvesByPaymentLinkID(t *testing.T) {
	uc, records, _, gate := newWebhookFixture(t, testWebhookSecret)
	rec := seedPendingRecord(t, records, "order_204", "KA01AA0001", 50)

	body, sig := signedBody(`{"event":"payment_link.paid","payload":{"payment_link":{"entity":{
		"id":"` + *rec.PaymentLinkID + `","status":"paid"}}}}`)

	require.NoError(t, uc.Process(context.Background(), body, sig))

	record, err := records.GetByOrderID(context.Background(), "order_204")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, record.Status)

	_, ok := gate.PollAndClear()
	assert.True(t, ok)
}

func TestProcess_RedeliveryAfterCompletionIsNoOp(t *testing.T) {
	uc, records, ledger, gate := newWebhookFixture(t, testWebhookSecret)
	seedPendingRecord(t, records, "order_205", "MH12AB1234", 50)

	body, sig := signedBody(`{"event":"payment.captured","payload":{"payment":{"entity":{
		"id":"pay_205","order_id":"order_205"}}}}`)

	require.NoError(t, uc.Process(context.Background(), body, sig))
	gate.PollAndClear()

	// Gateways redeliver; the second delivery must not arm the gate again or
	// add a second ledger row.
	require.NoError(t, uc.Process(context.Background(), body, sig))

	assert.Equal(t, 1, ledger.count())

	_, ok := gate.PollAndClear()
	assert.False(t, ok)
}
