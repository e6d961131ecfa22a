package domain

import "time"

// TheoryStatus is a free-form lifecycle label. The constants below are the
// labels the ledger itself uses; any other string is accepted.
type TheoryStatus string

const (
	StatusPending  TheoryStatus = "pending"
	StatusApproved TheoryStatus = "approved"
	StatusRejected TheoryStatus = "rejected"
)

// Permitted vote values.
const (
	VoteDown    = -1
	VoteAbstain = 0
	VoteUp      = 1
)

// DefaultStatusAuthority is the identity allowed to change theory status
// when no other authority is configured.
const DefaultStatusAuthority = "CONTRACT_OWNER"

// ValidVote reports whether v is one of the permitted vote values.
func ValidVote(v int) bool {
	return v >= VoteDown && v <= VoteUp
}

type Construct struct {
	ID               int64     `json:"id" yaml:"id"`
	Creator          string    `json:"creator" yaml:"creator"`
	Name             string    `json:"name" yaml:"name"`
	Description      string    `json:"description" yaml:"description"`
	Dimensions       int       `json:"dimensions" yaml:"dimensions"`
	VisualizationURL string    `json:"visualizationUrl" yaml:"visualizationUrl"`
	CreatedAt        time.Time `json:"createdAt" yaml:"createdAt"`
}

type Theory struct {
	ID          int64        `json:"id" yaml:"id"`
	Creator     string       `json:"creator" yaml:"creator"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Dimensions  int          `json:"dimensions" yaml:"dimensions"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	Votes       int64        `json:"votes" yaml:"votes"`
	Status      TheoryStatus `json:"status" yaml:"status"`
}

// VoteKey identifies one voter's ballot on one theory.
type VoteKey struct {
	TheoryID int64
	Voter    string
}
