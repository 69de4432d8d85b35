package enums

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusMatched  MatchStatus = "matched"
	MatchStatusRejected MatchStatus = "rejected"
	MatchStatusBlocked  MatchStatus = "blocked"
)

// Absorbing reports whether likes can no longer change the status.
// Rejected and blocked records are never reopened.
func (s MatchStatus) Absorbing() bool {
	return s == MatchStatusRejected || s == MatchStatusBlocked
}
