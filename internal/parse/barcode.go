package parse

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	BarcodeEAN13   = "ean13"
	BarcodeCode128 = "code128"
	BarcodeQR      = "qr"
)

var ErrInvalidBarcode = errors.New("invalid barcode")

// Barcode is a normalised barcode value with its symbology.
type Barcode struct {
	Value string
	Type  string
}

// NormalizeBarcode trims scanner noise from raw and validates it for typ.
// An empty typ is detected: 13 digits are EAN-13, printable ASCII up to 80
// characters is Code 128, anything else is QR.
func NormalizeBarcode(raw, typ string) (Barcode, error) {
	value := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	if value == "" {
		return Barcode{}, fmt.Errorf("%w: empty", ErrInvalidBarcode)
	}

	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		typ = detectBarcodeType(value)
	}

	switch typ {
	case BarcodeEAN13:
		value = strings.ReplaceAll(value, " ", "")
		if !ValidEAN13(value) {
			return Barcode{}, fmt.Errorf("%w: %q is not a valid EAN-13", ErrInvalidBarcode, value)
		}
	case BarcodeCode128:
		if len(value) > 80 || !printableASCII(value) {
			return Barcode{}, fmt.Errorf("%w: %q is not encodable as Code 128", ErrInvalidBarcode, value)
		}
	case BarcodeQR:
		if len(value) > 2953 {
			return Barcode{}, fmt.Errorf("%w: payload too long for QR", ErrInvalidBarcode)
		}
	default:
		return Barcode{}, fmt.Errorf("%w: unknown barcode type %q", ErrInvalidBarcode, typ)
	}
	return Barcode{Value: value, Type: typ}, nil
}

// ValidEAN13 reports whether code is 13 digits with a correct check digit.
func ValidEAN13(code string) bool {
	if len(code) != 13 || !allDigits(code) {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(code[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return check == int(code[12]-'0')
}

func detectBarcodeType(value string) string {
	switch {
	case len(value) == 13 && allDigits(value):
		return BarcodeEAN13
	case len(value) <= 80 && printableASCII(value):
		return BarcodeCode128
	}
	return BarcodeQR
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func printableASCII(s string) bool {
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}
