// Package workflow defines the fixed set of states a submission moves
// through between intake and release.
package workflow

// The five states, in the order they are commonly progressed. Declined is
// the rejection branch; nothing in the system enforces the order, and
// managers may set any state at any time.
const (
	StatusPending        = "Đã nhận, đang chờ duyệt"
	StatusDeclined       = "Đã duyệt, từ chối phát hành"
	StatusApproved       = "Đã duyệt, đang chờ phát hành!"
	StatusAwaitingLaunch = "Đã phát hành, đang chờ ra mắt"
	StatusComplete       = "Hoàn thành phát hành!"
)

// Statuses lists every state in display order.
var Statuses = []string{
	StatusPending,
	StatusDeclined,
	StatusApproved,
	StatusAwaitingLaunch,
	StatusComplete,
}

// Initial is the state every submission starts in.
const Initial = StatusPending

// Valid reports whether s is one of the five workflow states.
func Valid(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}
