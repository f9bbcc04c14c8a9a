// README: OTP and ID generation. OTPs gate the start-of-work and
// completion checkpoints.
package history

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
	"time"

	"homecall/internal/types"
)

const (
	startOTPDigits = 4
	startOTPTTL    = time.Hour

	completionOTPDigits = 6
	completionOTPTTL    = 10 * time.Minute
)

// generateOTP returns a numeric code of exactly the given number of digits
// (no leading zero, matching the customer-facing apps' input widgets).
func generateOTP(digits int) string {
	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := big.NewInt(9 * low)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to the lowest code rather than crash mid-request.
		return strconv.FormatInt(low, 10)
	}
	return strconv.FormatInt(low+n.Int64(), 10)
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
