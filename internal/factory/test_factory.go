package factory

import (
	"context"

	"github.com/mcoot/codenames-go/internal/dependencies/mocks"
	"github.com/mcoot/codenames-go/internal/services/auth"
	"github.com/mcoot/codenames-go/internal/services/game"
	"github.com/mcoot/codenames-go/internal/storage/memory"
	"github.com/mcoot/codenames-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// With no queued permutations the generator deals testutil.FixedBoard from
// the fixture word pool.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(testutil.FixedTime)
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, auth.DefaultConfig(), game.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}

// LoadTestWordPool loads exactly the fixture board words
func (t *TestApp) LoadTestWordPool(ctx context.Context) error {
	return t.WordPool.LoadWords(ctx, testutil.WordPool(25))
}
