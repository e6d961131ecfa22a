package store

import (
	"sync"

	"dimledger/pkg/domain"
)

// MemoryStore keeps constructs and theories in-process. Nothing survives
// the process.
type MemoryStore struct {
	mu sync.RWMutex

	lastConstructID int64
	constructs      map[int64]domain.Construct
	owners          map[int64]string // construct ID -> owner
	constructOrder  []int64

	lastTheoryID int64
	theories     map[int64]domain.Theory
	votes        map[domain.VoteKey]int
	theoryOrder  []int64
}

var (
	_ ConstructStore = (*MemoryStore)(nil)
	_ TheoryStore    = (*MemoryStore)(nil)
)

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		constructs: make(map[int64]domain.Construct),
		owners:     make(map[int64]string),
		theories:   make(map[int64]domain.Theory),
		votes:      make(map[domain.VoteKey]int),
	}
}

// CreateConstruct stores c under the next ID and sets its creator as owner.
func (m *MemoryStore) CreateConstruct(c domain.Construct) (domain.Construct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastConstructID++
	c.ID = m.lastConstructID
	m.constructs[c.ID] = c
	m.owners[c.ID] = c.Creator
	m.constructOrder = append(m.constructOrder, c.ID)
	return c, nil
}

// GetConstruct retrieves a construct by ID.
func (m *MemoryStore) GetConstruct(id int64) (domain.Construct, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.constructs[id]
	return c, ok, nil
}

// OwnerOf returns the current owner of a construct.
func (m *MemoryStore) OwnerOf(id int64) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.owners[id]
	return owner, ok, nil
}

// SwapOwner moves ownership from expected to next when expected is the
// recorded owner. Unknown IDs never match.
func (m *MemoryStore) SwapOwner(id int64, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[id]
	if !ok || owner != expected {
		return false, nil
	}
	m.owners[id] = next
	return true, nil
}

// ListConstructs returns constructs in mint order.
func (m *MemoryStore) ListConstructs() ([]domain.Construct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Construct, 0, len(m.constructOrder))
	for _, id := range m.constructOrder {
		if c, ok := m.constructs[id]; ok {
			res = append(res, c)
		}
	}
	return res, nil
}

// ListConstructsByOwner returns constructs currently held by owner, in mint order.
func (m *MemoryStore) ListConstructsByOwner(owner string) ([]domain.Construct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Construct, 0)
	for _, id := range m.constructOrder {
		if m.owners[id] != owner {
			continue
		}
		if c, ok := m.constructs[id]; ok {
			res = append(res, c)
		}
	}
	return res, nil
}

// ResetConstructs drops every construct and restarts IDs at 1.
func (m *MemoryStore) ResetConstructs() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastConstructID = 0
	m.constructs = make(map[int64]domain.Construct)
	m.owners = make(map[int64]string)
	m.constructOrder = nil
	return nil
}

// CreateTheory stores t under the next ID.
func (m *MemoryStore) CreateTheory(t domain.Theory) (domain.Theory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTheoryID++
	t.ID = m.lastTheoryID
	m.theories[t.ID] = t
	m.theoryOrder = append(m.theoryOrder, t.ID)
	return t, nil
}

// GetTheory retrieves a theory by ID.
func (m *MemoryStore) GetTheory(id int64) (domain.Theory, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.theories[id]
	return t, ok, nil
}

// ListTheories returns theories in submission order.
func (m *MemoryStore) ListTheories() ([]domain.Theory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Theory, 0, len(m.theoryOrder))
	for _, id := range m.theoryOrder {
		if t, ok := m.theories[id]; ok {
			res = append(res, t)
		}
	}
	return res, nil
}

// ApplyVote records value as the voter's ballot and adjusts the tally by
// value minus the previous ballot (zero when none).
func (m *MemoryStore) ApplyVote(id int64, voter string, value int) (VoteResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.theories[id]
	if !ok {
		return VoteResult{}, false, nil
	}
	key := domain.VoteKey{TheoryID: id, Voter: voter}
	previous := m.votes[key]
	delta := value - previous
	m.votes[key] = value
	t.Votes += int64(delta)
	m.theories[id] = t
	return VoteResult{Previous: previous, Delta: delta, Tally: t.Votes}, true, nil
}

// GetVote returns the voter's last ballot on a theory.
func (m *MemoryStore) GetVote(id int64, voter string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.votes[domain.VoteKey{TheoryID: id, Voter: voter}]
	return v, ok, nil
}

// SetTheoryStatus overwrites the status label of an existing theory.
func (m *MemoryStore) SetTheoryStatus(id int64, status domain.TheoryStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.theories[id]
	if !ok {
		return false, nil
	}
	t.Status = status
	m.theories[id] = t
	return true, nil
}

// ResetTheories drops every theory and ballot and restarts IDs at 1.
func (m *MemoryStore) ResetTheories() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTheoryID = 0
	m.theories = make(map[int64]domain.Theory)
	m.votes = make(map[domain.VoteKey]int)
	m.theoryOrder = nil
	return nil
}
