package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"partner-media-backend/internal/client/kvstore"
	"partner-media-backend/internal/logging"
	"partner-media-backend/internal/models"
)

// State is the gate's view of the current account.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateChecking      State = "checking"
	StateAuthorized    State = "authorized"
	StateUnauthorized  State = "unauthorized"
)

const (
	authCacheKey = "auth.authorization_cache"

	// CacheTTL bounds how long a stored verdict is trusted before the
	// backend is consulted again.
	CacheTTL = 2 * time.Hour
)

// CacheEntry is the persisted authorization verdict for one account.
type CacheEntry struct {
	AccountID    string `json:"accountId"`
	GirlID       string `json:"girlId"`
	IsAuthorized bool   `json:"isAuthorized"`
	IsBlocked    bool   `json:"isBlocked"`
	Timestamp    int64  `json:"timestamp"`
}

// Checker is what the gate needs from the auth layer.
type Checker interface {
	CurrentUserID() (uuid.UUID, bool)
	ProfileByUserID(userID uuid.UUID) (*models.GirlProfile, error)
}

// Gate decides whether the app may show its content. Only an authorized
// verdict is cached on the device, so foregrounding within the TTL costs no
// network round trip; denials and errors clear the cache and the next check
// goes back to the backend. It fails closed: any doubt means unauthorized.
type Gate struct {
	checker Checker
	store   *kvstore.Store
	log     logging.Logger
	now     func() time.Time

	onSignedOut    func()
	onUnauthorized func()

	mu       sync.Mutex
	state    State
	girlID   string
	checking bool
}

func NewGate(checker Checker, store *kvstore.Store, log logging.Logger) *Gate {
	return &Gate{
		checker: checker,
		store:   store,
		log:     log,
		now:     time.Now,
		state:   StateUninitialized,
	}
}

// OnSignedOut registers a hook fired when a check finds no session.
func (g *Gate) OnSignedOut(fn func()) { g.onSignedOut = fn }

// OnUnauthorized registers a hook fired when a signed-in account is denied.
func (g *Gate) OnUnauthorized(fn func()) { g.onUnauthorized = fn }

// State returns the last computed state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Initial reports whether no verdict exists yet. Callers block their UI on
// this rather than on a transient recheck.
func (g *Gate) Initial() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateUninitialized || g.state == StateChecking
}

// GirlID returns the authorized profile id, or "" when not authorized.
func (g *Gate) GirlID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthorized {
		return ""
	}
	return g.girlID
}

// OnShow runs an authorization check, as when the app comes to the
// foreground. The first check blocks until a verdict exists; while a check
// is in flight, further calls return the current state instead of piling
// up.
func (g *Gate) OnShow(ctx context.Context) State {
	g.mu.Lock()
	if g.checking {
		s := g.state
		g.mu.Unlock()
		return s
	}
	g.checking = true
	if g.state == StateUninitialized {
		g.state = StateChecking
	}
	g.mu.Unlock()

	state, girlID := g.check(ctx)

	g.mu.Lock()
	g.state = state
	g.girlID = girlID
	g.checking = false
	g.mu.Unlock()
	return state
}

// Invalidate drops the cached verdict and resets the gate, as on sign-out.
func (g *Gate) Invalidate() {
	_ = g.store.Delete(authCacheKey)
	g.mu.Lock()
	g.state = StateUninitialized
	g.girlID = ""
	g.mu.Unlock()
}

func (g *Gate) check(ctx context.Context) (State, string) {
	userID, ok := g.checker.CurrentUserID()
	if !ok {
		_ = g.store.Delete(authCacheKey)
		if g.onSignedOut != nil {
			g.onSignedOut()
		}
		return StateUnauthorized, ""
	}

	if entry, ok := g.freshEntry(userID.String()); ok {
		return StateAuthorized, entry.GirlID
	}

	profile, err := g.checker.ProfileByUserID(userID)
	if err != nil {
		// Fail closed without recording a verdict, so the next check
		// retries the backend.
		_ = g.store.Delete(authCacheKey)
		g.log.Warn(ctx, "authorization check failed", "error", err)
		return g.deny()
	}
	if profile == nil || profile.IsBlocked {
		// Denials clear the cache instead of being stored: an account
		// linked or unblocked server side must not wait out the TTL.
		_ = g.store.Delete(authCacheKey)
		return g.deny()
	}

	entry := CacheEntry{
		AccountID:    userID.String(),
		GirlID:       profile.ID.String(),
		IsAuthorized: true,
		Timestamp:    g.now().UnixMilli(),
	}
	_ = g.store.Set(authCacheKey, entry)
	return StateAuthorized, entry.GirlID
}

// freshEntry loads the cached verdict when it belongs to this account, is
// an authorized one, and is younger than the TTL. Anything else falls
// through to a live check.
func (g *Gate) freshEntry(accountID string) (CacheEntry, bool) {
	var entry CacheEntry
	ok, err := g.store.Get(authCacheKey, &entry)
	if err != nil || !ok {
		return CacheEntry{}, false
	}
	if entry.AccountID != accountID || !entry.IsAuthorized || entry.IsBlocked {
		return CacheEntry{}, false
	}
	age := g.now().Sub(time.UnixMilli(entry.Timestamp))
	if age < 0 || age >= CacheTTL {
		return CacheEntry{}, false
	}
	return entry, true
}

func (g *Gate) deny() (State, string) {
	if g.onUnauthorized != nil {
		g.onUnauthorized()
	}
	return StateUnauthorized, ""
}
