package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dicetray/dicetray/internal/dependencies/mocks"
	"github.com/dicetray/dicetray/internal/services/auth"
	"github.com/dicetray/dicetray/internal/storage/memory"
)

// Test fixtures shared by integration tests
const (
	TestPepper         = "test-pepper"
	TestInvitationCode = "test-invitation"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and a cheap hash cost
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	hasher := auth.NewHasherWithCost(TestPepper, bcrypt.MinCost)

	authCfg := auth.DefaultConfig()
	authCfg.InvitationCode = TestInvitationCode

	app, err := newWithDependencies(store, mockClock, mockRandom, hasher, authCfg)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
