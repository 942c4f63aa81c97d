// Package isrc generates the label's release codes. The codes look like
// real ISRCs but are synthetic: registrant prefix, 4-digit year, then a
// 5-digit sequence number.
package isrc

import (
	"fmt"
	"regexp"
	"time"
)

// Prefix is the registrant code embedded in every generated ISRC. It is
// global for the label; the per-user prefix field on accounts is not
// consulted here, matching the deployed behavior.
const Prefix = "VNA2P"

// SeedCounter is the counter value assumed when no prior value exists.
const SeedCounter = 17

// Pattern matches codes produced by Next.
var Pattern = regexp.MustCompile(`^` + Prefix + `\d{4}\d{5}$`)

// Next increments counter and formats the new value into a release code.
// It performs no persistence; the caller owns writing newCounter back to
// the store, which keeps this function deterministic and testable.
func Next(counter int, now time.Time) (code string, newCounter int) {
	newCounter = counter + 1
	code = fmt.Sprintf("%s%d%05d", Prefix, now.Year(), newCounter)
	return code, newCounter
}
