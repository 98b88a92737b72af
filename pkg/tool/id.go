package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// maxReceiptLen is the gateway limit on receipt identifiers.
const maxReceiptLen = 40

// Receipt builds a gateway receipt reference from a prefix and a local id.
func Receipt(prefix, id string) string {
	r := prefix + "_" + strings.ReplaceAll(id, "-", "")
	if len(r) > maxReceiptLen {
		r = r[:maxReceiptLen]
	}
	return r
}
