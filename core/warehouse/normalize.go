package warehouse

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
)

// placeholders are identifier values the warehouse feed uses to mean "empty".
var placeholders = map[string]struct{}{
	"none": {},
	"null": {},
	"n/a":  {},
	"na":   {},
}

// SanitizeIdentifier trims an identifier and collapses known placeholder
// values to the empty string.
func SanitizeIdentifier(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, ok := placeholders[strings.ToLower(value)]; ok {
		return ""
	}
	return value
}

// NormalizeKey reduces an identifier to its matching key: alphanumeric
// characters only, uppercased. Returns "" when nothing survives.
func NormalizeKey(value string) string {
	value = SanitizeIdentifier(value)
	if value == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Normalize converts a raw warehouse payload into a canonical ProductRecord.
// Required: a non-empty external_id and at least one of sku/barcode.
// An absent quantity defaults to zero (flagged); a negative or non-numeric
// quantity fails this record only. Unknown extra fields in the payload were
// already dropped by the JSON decode.
func Normalize(raw RawProduct) (ProductRecord, *RecordError) {
	externalID := SanitizeIdentifier(raw.ExternalID)
	sku := SanitizeIdentifier(raw.SKU)
	barcode := SanitizeIdentifier(raw.Barcode)

	if externalID == "" {
		return ProductRecord{}, &RecordError{
			SKU:     sku,
			Message: "missing required field external_id",
		}
	}
	if sku == "" && barcode == "" {
		return ProductRecord{}, &RecordError{
			ExternalID: externalID,
			Message:    "missing both sku and barcode",
		}
	}

	quantity, defaulted, err := ParseQuantity(raw.Quantity)
	if err != nil {
		return ProductRecord{}, &RecordError{
			ExternalID: externalID,
			SKU:        sku,
			Message:    err.Error(),
		}
	}

	record := ProductRecord{
		ExternalID:        externalID,
		SKU:               sku,
		Barcode:           barcode,
		Name:              strings.TrimSpace(raw.Name),
		Brand:             SanitizeIdentifier(raw.Brand),
		Quantity:          quantity,
		QuantityDefaulted: defaulted,
		NormalizedSKU:     NormalizeKey(sku),
		NormalizedBarcode: NormalizeKey(barcode),
	}

	if len(raw.Price) > 0 {
		// Price is informational; a bad price does not reject the record.
		var price float64
		if err := json.Unmarshal(raw.Price, &price); err == nil {
			record.Price = price
		}
	}

	if raw.LastUpdated != "" {
		if ts, err := time.Parse(time.RFC3339, raw.LastUpdated); err == nil {
			record.LastUpdated = ts
		}
	}

	return record, nil
}

// ParseQuantity enforces the non-negative integer contract.
// A nil/absent value defaults to zero with the defaulted flag set.
func ParseQuantity(raw json.RawMessage) (int, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, true, nil
	}

	var qty int
	if err := json.Unmarshal(raw, &qty); err != nil {
		return 0, false, &quantityError{value: string(raw), reason: "not an integer"}
	}
	if qty < 0 {
		return 0, false, &quantityError{value: string(raw), reason: "negative"}
	}
	return qty, false, nil
}

type quantityError struct {
	value  string
	reason string
}

func (e *quantityError) Error() string {
	return "invalid quantity " + e.value + ": " + e.reason
}
