// Package xid generates prefixed, time-sortable identifiers for orders,
// batches, movements and refunds.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns "<prefix>-<unix-millis>-<12 hex chars>". The millisecond
// component keeps ids sortable by creation time; the random suffix keeps
// them unique within a millisecond.
func New(prefix string) string {
	now := time.Now().UTC().UnixMilli()
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UTC().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now, hex.EncodeToString(suffix))
}
