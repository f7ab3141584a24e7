package utils

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateReservationNumber produces the human-readable number printed on
// tickets and encoded in their QR codes, e.g. "PK-3F2A9C41".
func GenerateReservationNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "PK-" + id[:8]
}
