// internal/domain/errors.go
package domain

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned on a duplicate order id at creation.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInvalidSignature is returned when a webhook body fails HMAC
	// verification. No state is mutated in that case.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrGatewayUnavailable is returned when the payment gateway cannot be
	// reached during order or payment-link creation.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrMalformedPayload is returned when a webhook body cannot be parsed.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrInvalidPlate is returned when a request carries no usable plate.
	ErrInvalidPlate = errors.New("invalid plate")
)
