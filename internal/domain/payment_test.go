// internal/domain/payment_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "DL01AB2345", "DL01AB2345"},
		{"lowercase", "dl01ab2345", "DL01AB2345"},
		{"spaces", "MH 12 AB 1234", "MH12AB1234"},
		{"punctuation", "KA-01-AA.0001", "KA01AA0001"},
		{"mixed noise", " dl 01-ab 2345 ", "DL01AB2345"},
		{"empty", "", ""},
		{"only noise", " --- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlate(tt.input))
		})
	}
}
