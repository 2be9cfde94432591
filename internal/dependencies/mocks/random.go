package mocks

import (
	"sync"

	"github.com/mcoot/codenames-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Shuffle leaves the order untouched unless permutations are queued.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	permResults [][]int
	strResults  []string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intnResults) == 0 {
		return 0
	}
	result := r.intnResults[0]
	r.intnResults = r.intnResults[1:]
	return result
}

// Shuffle applies the next queued permutation. perm[i] names the original
// index that ends up at position i.
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	if len(r.permResults) == 0 {
		r.mu.Unlock()
		return
	}
	perm := r.permResults[0]
	r.permResults = r.permResults[1:]
	r.mu.Unlock()

	// pos tracks where each original index currently sits
	pos := make([]int, n)
	at := make([]int, n)
	for i := range pos {
		pos[i] = i
		at[i] = i
	}
	for i := 0; i < n && i < len(perm); i++ {
		j := pos[perm[i]]
		if i == j {
			continue
		}
		swap(i, j)
		at[i], at[j] = at[j], at[i]
		pos[at[i]] = i
		pos[at[j]] = j
	}
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strResults) == 0 {
		return ""
	}
	result := r.strResults[0]
	r.strResults = r.strResults[1:]
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueuePermutation adds a permutation to the Shuffle queue
func (r *MockRandom) QueuePermutation(perm ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permResults = append(r.permResults, perm)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strResults = append(r.strResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.permResults = nil
	r.strResults = nil
}
