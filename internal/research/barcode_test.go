package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBarcode_Canonical(t *testing.T) {
	got, note := NormalizeBarcode("012345678905")
	assert.Equal(t, "012345678905", got)
	assert.Equal(t, BarcodeCanonical, note)
}

func TestNormalizeBarcode_PadsElevenDigits(t *testing.T) {
	// Spreadsheets strip the leading zero from UPC-A codes.
	got, note := NormalizeBarcode("12345678905")
	assert.Equal(t, "012345678905", got)
	assert.Equal(t, BarcodeCanonical, note)
}

func TestNormalizeBarcode_EAN13WithLeadingZero(t *testing.T) {
	got, note := NormalizeBarcode("0123456789050")
	assert.Equal(t, "123456789050", got)
	assert.Equal(t, BarcodeCanonical, note)
}

func TestNormalizeBarcode_EAN13NonZero(t *testing.T) {
	got, note := NormalizeBarcode("4006381333931")
	assert.Equal(t, "4006381333931", got)
	assert.Equal(t, BarcodeNonStandard, note)
}

func TestNormalizeBarcode_GTIN14(t *testing.T) {
	got, note := NormalizeBarcode("10012345678905")
	assert.Equal(t, "012345678905", got)
	assert.Equal(t, BarcodeCanonical, note)
}

func TestNormalizeBarcode_StripsNonDigits(t *testing.T) {
	got, note := NormalizeBarcode(" 012-345 678.905 ")
	assert.Equal(t, "012345678905", got)
	assert.Equal(t, BarcodeCanonical, note)
}

func TestNormalizeBarcode_OutOfRange(t *testing.T) {
	got, note := NormalizeBarcode("12345")
	assert.Equal(t, "12345", got)
	assert.Equal(t, BarcodeOutOfRange, note)
}

func TestNormalizeBarcode_Empty(t *testing.T) {
	got, note := NormalizeBarcode("n/a")
	assert.Equal(t, "", got)
	assert.Equal(t, BarcodeEmpty, note)
}
