package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLuhn(t *testing.T) {
	assert.True(t, ValidLuhn("4539620659922097"))
	assert.False(t, ValidLuhn("4539620659922098"))

	// separators are stripped before the check
	assert.True(t, ValidLuhn("4539 6206 5992 2097"))

	assert.False(t, ValidLuhn(""))
	assert.False(t, ValidLuhn("1234"))
	assert.False(t, ValidLuhn("abcd efgh ijkl mnop"))
}

func TestDetectBrand(t *testing.T) {
	tests := []struct {
		number string
		brand  Brand
	}{
		{"4539620659922097", BrandVisa},
		{"5555555555554444", BrandMastercard},
		{"2221000000000009", BrandMastercard},
		{"378282246310005", BrandAmex},
		{"6362970000457013", BrandElo},
		{"5066991111111118", BrandElo},
		{"6062825624254001", BrandHipercard},
		{"3841001111222233334", BrandHipercard},
		{"9999999999999999", BrandUnknown},
		{"", BrandUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.brand, DetectBrand(tt.number), "number %s", tt.number)
	}
}

func TestValidCPF(t *testing.T) {
	assert.True(t, ValidCPF("52998224725"))
	assert.True(t, ValidCPF("529.982.247-25"))

	// wrong check digit
	assert.False(t, ValidCPF("52998224726"))

	// all-equal digits always fail, even with "correct" check digits
	for _, cpf := range []string{
		"00000000000", "11111111111", "22222222222", "33333333333",
		"44444444444", "55555555555", "66666666666", "77777777777",
		"88888888888", "99999999999",
	} {
		assert.False(t, ValidCPF(cpf), "cpf %s", cpf)
	}

	assert.False(t, ValidCPF("123"))
	assert.False(t, ValidCPF(""))
}
