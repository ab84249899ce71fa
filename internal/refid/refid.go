// Package refid generates the public tracking codes handed to report
// submitters. The internal report id never leaves the system; the
// reference id is the only identifier meant for end-user display.
package refid

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Alphabet excludes 0/O and 1/I so codes survive being read aloud or
// written down.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLen = 8

// New returns a reference id of the form CR-2026-XXXXXXXX. Uniqueness
// is enforced by the database; callers retry with a fresh code on a
// unique-constraint violation.
func New(now time.Time) string {
	buf := make([]byte, codeLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in far worse
		// trouble than a report submission.
		panic(fmt.Sprintf("refid: rand.Read: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("CR-%d-%s", now.Year(), string(buf))
}
