package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"partner-media-backend/internal/client/kvstore"
	"partner-media-backend/internal/logging"
	"partner-media-backend/internal/models"
)

type fakeChecker struct {
	userID  uuid.UUID
	signed  bool
	profile *models.GirlProfile
	err     error
	calls   int
}

func (f *fakeChecker) CurrentUserID() (uuid.UUID, bool) {
	return f.userID, f.signed
}

func (f *fakeChecker) ProfileByUserID(uuid.UUID) (*models.GirlProfile, error) {
	f.calls++
	return f.profile, f.err
}

func newTestGate(t *testing.T, checker *fakeChecker) (*Gate, *time.Time) {
	t.Helper()
	now := time.Now()
	g := NewGate(checker, kvstore.Open(filepath.Join(t.TempDir(), "state.json")), logging.Discard{})
	g.now = func() time.Time { return now }
	return g, &now
}

func TestGate_SignedOutIsUnauthorized(t *testing.T) {
	checker := &fakeChecker{signed: false}
	g, _ := newTestGate(t, checker)

	var signedOut bool
	g.OnSignedOut(func() { signedOut = true })

	assert.Equal(t, StateUnauthorized, g.OnShow(context.Background()))
	assert.True(t, signedOut)
	assert.Zero(t, checker.calls, "no backend call when signed out")
}

func TestGate_AuthorizesLinkedProfile(t *testing.T) {
	girlID := uuid.New()
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: girlID},
	}
	g, _ := newTestGate(t, checker)

	assert.Equal(t, StateAuthorized, g.OnShow(context.Background()))
	assert.Equal(t, girlID.String(), g.GirlID())
	assert.Equal(t, 1, checker.calls)
}

func TestGate_FreshCacheSkipsBackend(t *testing.T) {
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: uuid.New()},
	}
	g, now := newTestGate(t, checker)

	g.OnShow(context.Background())
	*now = now.Add(CacheTTL - time.Minute)
	assert.Equal(t, StateAuthorized, g.OnShow(context.Background()))
	assert.Equal(t, 1, checker.calls, "fresh cache answers the second check")
}

func TestGate_ExpiredCacheHitsBackend(t *testing.T) {
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: uuid.New()},
	}
	g, now := newTestGate(t, checker)

	g.OnShow(context.Background())
	*now = now.Add(CacheTTL + time.Millisecond)
	assert.Equal(t, StateAuthorized, g.OnShow(context.Background()))
	assert.Equal(t, 2, checker.calls, "stale cache forces a recheck")
}

func TestGate_CacheIsPerAccount(t *testing.T) {
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: uuid.New()},
	}
	g, _ := newTestGate(t, checker)

	g.OnShow(context.Background())
	checker.userID = uuid.New()
	g.OnShow(context.Background())
	assert.Equal(t, 2, checker.calls, "another account cannot reuse the verdict")
}

func TestGate_UnlinkedProfileIsUnauthorized(t *testing.T) {
	checker := &fakeChecker{userID: uuid.New(), signed: true, profile: nil}
	g, _ := newTestGate(t, checker)

	var denied bool
	g.OnUnauthorized(func() { denied = true })

	assert.Equal(t, StateUnauthorized, g.OnShow(context.Background()))
	assert.True(t, denied)
	assert.Empty(t, g.GirlID())
}

func TestGate_BlockedProfileIsUnauthorized(t *testing.T) {
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: uuid.New(), IsBlocked: true},
	}
	g, _ := newTestGate(t, checker)

	assert.Equal(t, StateUnauthorized, g.OnShow(context.Background()))
}

func TestGate_BackendErrorFailsClosedWithoutCaching(t *testing.T) {
	checker := &fakeChecker{userID: uuid.New(), signed: true, err: errors.New("boom")}
	g, _ := newTestGate(t, checker)

	assert.Equal(t, StateUnauthorized, g.OnShow(context.Background()))

	// The backend recovers; the next check must reach it and succeed.
	checker.err = nil
	checker.profile = &models.GirlProfile{ID: uuid.New()}
	assert.Equal(t, StateAuthorized, g.OnShow(context.Background()))
	assert.Equal(t, 2, checker.calls)
}

func TestGate_UnblockedProfileRecoversWithoutWaitingOutTTL(t *testing.T) {
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: uuid.New(), IsBlocked: true},
	}
	g, now := newTestGate(t, checker)

	assert.Equal(t, StateUnauthorized, g.OnShow(context.Background()))

	// Support unblocks the account; a check minutes later must reach the
	// backend instead of adopting a stored denial.
	checker.profile.IsBlocked = false
	*now = now.Add(5 * time.Minute)
	assert.Equal(t, StateAuthorized, g.OnShow(context.Background()))
	assert.Equal(t, 2, checker.calls)
}

func TestGate_UnlinkedDenialIsNotCached(t *testing.T) {
	checker := &fakeChecker{userID: uuid.New(), signed: true, profile: nil}
	g, _ := newTestGate(t, checker)

	assert.Equal(t, StateUnauthorized, g.OnShow(context.Background()))

	checker.profile = &models.GirlProfile{ID: uuid.New()}
	assert.Equal(t, StateAuthorized, g.OnShow(context.Background()))
	assert.Equal(t, 2, checker.calls, "every denial forces the next check to the backend")
}

func TestGate_InitialUntilFirstVerdict(t *testing.T) {
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: uuid.New()},
	}
	g, _ := newTestGate(t, checker)

	assert.True(t, g.Initial())
	g.OnShow(context.Background())
	assert.False(t, g.Initial())
}

func TestGate_InvalidateForcesRecheck(t *testing.T) {
	checker := &fakeChecker{
		userID:  uuid.New(),
		signed:  true,
		profile: &models.GirlProfile{ID: uuid.New()},
	}
	g, _ := newTestGate(t, checker)

	g.OnShow(context.Background())
	g.Invalidate()
	assert.Equal(t, StateUninitialized, g.State())

	g.OnShow(context.Background())
	assert.Equal(t, 2, checker.calls)
}
