package research

import "strings"

// BarcodeNote classifies what NormalizeBarcode did with its input. The
// normalizer itself never fails; callers use the note for logging only.
type BarcodeNote int

const (
	BarcodeEmpty       BarcodeNote = iota // no usable digits
	BarcodeCanonical                      // already or now a 12-digit UPC-A
	BarcodeNonStandard                    // 13 digits not starting with 0, kept as-is
	BarcodeOutOfRange                     // cleaned digits of unexpected length, kept as-is
)

// NormalizeBarcode strips non-digit characters and coerces the result toward
// canonical 12-digit UPC-A where the length allows it:
//
//	12 digits            -> unchanged
//	11 digits            -> left-pad one zero (spreadsheets drop leading zeros)
//	13 digits, leading 0 -> drop the leading zero (EAN-13 wrapping a UPC-A)
//	13 digits otherwise  -> kept as-is, flagged non-standard
//	14 digits            -> drop the first two (GTIN-14 packaging indicator)
//	anything else        -> cleaned digits unchanged, flagged out-of-range
func NormalizeBarcode(raw string) (string, BarcodeNote) {
	var b strings.Builder
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	digits := b.String()

	switch len(digits) {
	case 0:
		return "", BarcodeEmpty
	case 12:
		return digits, BarcodeCanonical
	case 11:
		return "0" + digits, BarcodeCanonical
	case 13:
		if digits[0] == '0' {
			return digits[1:], BarcodeCanonical
		}
		return digits, BarcodeNonStandard
	case 14:
		return digits[2:], BarcodeCanonical
	default:
		return digits, BarcodeOutOfRange
	}
}
