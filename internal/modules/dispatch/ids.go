package dispatch

import (
	"crypto/rand"
	"encoding/hex"

	"homecall/internal/types"
)

func newOrderID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
