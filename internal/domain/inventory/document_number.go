package inventory

import (
	"fmt"
	"time"
)

// Document number prefixes. Numbers follow PREFIX-YYYYMM-NNNNNN with the
// sequence restarting every month, e.g. MOV-202608-000042.
const (
	MovementNumberPrefix = "MOV"
	CountNumberPrefix    = "CNT"

	documentSequenceWidth = 6
)

// DocumentNumberPrefix builds the month prefix for a document number,
// including the trailing separator ("MOV-202608-"). Dates are taken in UTC
// so the month boundary does not depend on the server timezone.
func DocumentNumberPrefix(kind string, date time.Time) string {
	return fmt.Sprintf("%s-%s-", kind, date.UTC().Format("200601"))
}

// FormatDocumentNumber renders a full document number from its month prefix
// and sequence
func FormatDocumentNumber(prefix string, sequence int) string {
	return fmt.Sprintf("%s%0*d", prefix, documentSequenceWidth, sequence)
}

// DuplicateNumberError reports that an insert lost the race for a document
// number. Callers regenerate the number and retry; the error never reaches
// the API surface.
type DuplicateNumberError struct {
	Number string
}

// Error implements the error interface
func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("document number %s already in use", e.Number)
}

// ParseDocumentSequence extracts the numeric sequence from a document number
// with the given prefix. Returns 0 when the number does not match.
func ParseDocumentSequence(prefix, number string) int {
	if len(number) <= len(prefix) || number[:len(prefix)] != prefix {
		return 0
	}
	var seq int
	if _, err := fmt.Sscanf(number[len(prefix):], "%d", &seq); err != nil {
		return 0
	}
	return seq
}
