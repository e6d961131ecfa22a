package store

import "dimledger/pkg/domain"

// ConstructStore holds minted constructs and their current owners.
type ConstructStore interface {
	// CreateConstruct assigns the next sequential ID, records the construct
	// and makes its creator the owner. The stored record is returned.
	CreateConstruct(domain.Construct) (domain.Construct, error)
	GetConstruct(id int64) (domain.Construct, bool, error)
	OwnerOf(id int64) (string, bool, error)
	// SwapOwner sets the owner of id to next only if it is currently
	// expected. It reports whether the swap happened.
	SwapOwner(id int64, expected, next string) (bool, error)
	ListConstructs() ([]domain.Construct, error)
	ListConstructsByOwner(owner string) ([]domain.Construct, error)
	ResetConstructs() error
}

// TheoryStore holds submitted theories and per-voter ballots.
type TheoryStore interface {
	// CreateTheory assigns the next sequential ID and records the theory.
	CreateTheory(domain.Theory) (domain.Theory, error)
	GetTheory(id int64) (domain.Theory, bool, error)
	ListTheories() ([]domain.Theory, error)
	// ApplyVote replaces the voter's ballot on a theory and moves the tally
	// by the difference. ok is false when the theory does not exist.
	ApplyVote(id int64, voter string, value int) (result VoteResult, ok bool, err error)
	GetVote(id int64, voter string) (int, bool, error)
	SetTheoryStatus(id int64, status domain.TheoryStatus) (bool, error)
	ResetTheories() error
}

// VoteResult describes the effect of one ApplyVote call.
type VoteResult struct {
	Previous int
	Delta    int
	Tally    int64
}
