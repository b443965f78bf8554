package inventory

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestCheckDigit_CodigosConocidos(t *testing.T) {
	cases := map[string]int{
		"400638133393": 1,
		"590123412345": 7,
		"000000000000": 0,
	}
	for first12, want := range cases {
		got, err := CheckDigit(first12)
		require.NoError(t, err)
		assert.Equal(t, want, got, first12)
	}
}

func TestCheckDigit_EntradaInvalida(t *testing.T) {
	_, err := CheckDigit("12345")
	assert.Error(t, err)
	_, err = CheckDigit("40063813339A")
	assert.Error(t, err)
}

func TestValidateBarcode(t *testing.T) {
	assert.True(t, ValidateBarcode("4006381333931"))
	assert.True(t, ValidateBarcode("5901234123457"))
	assert.False(t, ValidateBarcode("4006381333932"), "dígito verificador incorrecto")
	assert.False(t, ValidateBarcode("400638133393"), "12 dígitos")
	assert.False(t, ValidateBarcode("400638133393X"))
	assert.False(t, ValidateBarcode(""))
}

// Todo código generado debe validar, con cualquier prefijo.
func TestGenerateBarcode_RoundTrip(t *testing.T) {
	for _, prefix := range []string{"", "299", "7", "759123", "123456789012"} {
		for i := 0; i < 200; i++ {
			code, err := GenerateBarcode(prefix)
			require.NoError(t, err)
			require.Len(t, code, 13)
			want := prefix
			if want == "" {
				want = DefaultBarcodePrefix
			}
			assert.True(t, strings.HasPrefix(code, want))
			assert.True(t, ValidateBarcode(code), code)
		}
	}
}

func TestGenerateBarcode_Reproducible(t *testing.T) {
	seq := func() func(int) int {
		i := 0
		return func(n int) int { i++; return i % n }
	}
	a, err := generateBarcode("299", seq())
	require.NoError(t, err)
	b, err := generateBarcode("299", seq())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "2991234567897", a)
}

func TestGenerateBarcode_PrefijoInvalido(t *testing.T) {
	for _, prefix := range []string{"29A", "1234567890123"} {
		_, err := GenerateBarcode(prefix)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	}
}
