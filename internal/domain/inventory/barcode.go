package inventory

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// DefaultBarcodePrefix rango de uso interno (productos sin código del fabricante).
const DefaultBarcodePrefix = "299"

const ean13Length = 13

// CheckDigit calcula el dígito verificador EAN-13 de los primeros 12 dígitos.
// Pesos 1/3 alternados desde la posición 0; dígito = (10 - suma mod 10) mod 10.
func CheckDigit(first12 string) (int, error) {
	if len(first12) != ean13Length-1 || !isDigits(first12) {
		return 0, fmt.Errorf("se esperaban 12 dígitos, recibido %q", first12)
	}
	sum := 0
	for i := 0; i < ean13Length-1; i++ {
		d := int(first12[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return (10 - sum%10) % 10, nil
}

// GenerateBarcode completa el prefijo con dígitos aleatorios hasta 12 y agrega el dígito verificador.
// Prefijo vacío usa DefaultBarcodePrefix.
func GenerateBarcode(prefix string) (string, error) {
	return generateBarcode(prefix, func(n int) int { return rand.Intn(n) })
}

func generateBarcode(prefix string, intn func(int) int) (string, error) {
	if prefix == "" {
		prefix = DefaultBarcodePrefix
	}
	if !isDigits(prefix) || len(prefix) > ean13Length-1 {
		return "", domain.NewValidationError("prefix", "debe tener entre 1 y 12 dígitos")
	}
	var b strings.Builder
	b.Grow(ean13Length)
	b.WriteString(prefix)
	for b.Len() < ean13Length-1 {
		b.WriteByte(byte('0' + intn(10)))
	}
	check, err := CheckDigit(b.String())
	if err != nil {
		return "", err
	}
	b.WriteByte(byte('0' + check))
	return b.String(), nil
}

// ValidateBarcode verifica longitud (13 dígitos) y dígito verificador EAN-13.
func ValidateBarcode(barcode string) bool {
	if len(barcode) != ean13Length || !isDigits(barcode) {
		return false
	}
	check, err := CheckDigit(barcode[:ean13Length-1])
	if err != nil {
		return false
	}
	return int(barcode[ean13Length-1]-'0') == check
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
