package isrc

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Format(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	code, newCounter := Next(17, now)

	assert.Equal(t, "VNA2P202600018", code)
	assert.Equal(t, 18, newCounter)
	assert.True(t, Pattern.MatchString(code), "code should match the ISRC pattern")
}

func TestNext_Sequence(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	const n = 50
	start := 17

	counter := start
	seen := make(map[string]bool, n)
	var codes []string

	for i := 1; i <= n; i++ {
		var code string
		code, counter = Next(counter, now)

		require.Equal(t, start+i, counter, "counter must advance by exactly one per call")
		require.False(t, seen[code], "codes must be distinct")
		seen[code] = true
		codes = append(codes, code)
	}

	// For a fixed year the zero-padded counter makes codes strictly
	// increasing in plain string order.
	assert.True(t, sort.StringsAreSorted(codes))
}

func TestNext_ZeroPadding(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	code, _ := Next(0, now)
	assert.Equal(t, "VNA2P202600001", code)

	code, _ = Next(99998, now)
	assert.Equal(t, fmt.Sprintf("VNA2P2026%05d", 99999), code)
}

func TestNext_YearEmbedded(t *testing.T) {
	code, _ := Next(SeedCounter, time.Date(2027, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, code, "2027")
}
