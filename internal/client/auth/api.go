package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"partner-media-backend/internal/client/session"
	"partner-media-backend/internal/client/telemetry"
	"partner-media-backend/internal/logging"
	"partner-media-backend/internal/models"
)

const otpCodeLength = 6

// API is the client-side auth surface. All operations return a Result with
// a categorized error; raw backend errors never reach callers.
type API struct {
	backend   Backend
	holder    *session.Holder
	attempts  *AttemptTracker
	telemetry *telemetry.Queue
	log       logging.Logger
	deviceID  string
}

func NewAPI(backend Backend, holder *session.Holder, attempts *AttemptTracker, tq *telemetry.Queue, log logging.Logger, deviceID string) *API {
	return &API{
		backend:   backend,
		holder:    holder,
		attempts:  attempts,
		telemetry: tq,
		log:       log,
		deviceID:  deviceID,
	}
}

// SignIn performs a password sign-in. Input validation and the cooldown
// check run before any network call.
func (a *API) SignIn(ctx context.Context, email, password string) Result {
	if locked, remaining := a.attempts.InCooldown(); locked {
		return failure(CodeRateLimited,
			fmt.Sprintf("Too many failed attempts. Try again in %d minutes", int(remaining.Minutes())+1))
	}
	if !ValidateEmail(email) {
		return failure(CodeInvalidEmail, "Please enter a valid email address")
	}
	if !ValidatePassword(password) {
		return failure(CodeInvalidPassword, "Password must be at least 6 characters with a letter and a digit")
	}

	sess, err := a.backend.SignInWithPassword(strings.TrimSpace(email), password)
	if err != nil {
		code, msg := ClassifyAuthError(err.Error())
		if code == CodeInvalidCredentials {
			a.attempts.RecordFailure()
		}
		a.log.Warn(ctx, "password sign-in failed", "code", string(code))
		return failure(code, msg)
	}
	return a.completeSignIn(ctx, sess, "password")
}

// SendOTP requests a one-time code for the given email.
func (a *API) SendOTP(ctx context.Context, email string) Result {
	if !ValidateEmail(email) {
		return failure(CodeInvalidEmail, "Please enter a valid email address")
	}
	if err := a.backend.SendOTP(strings.TrimSpace(email)); err != nil {
		code, msg := ClassifyAuthError(err.Error())
		a.log.Warn(ctx, "otp request failed", "code", string(code))
		return failure(code, msg)
	}
	return success()
}

// VerifyOTP exchanges an emailed code for a session.
func (a *API) VerifyOTP(ctx context.Context, email, code string) Result {
	if !ValidateEmail(email) {
		return failure(CodeInvalidEmail, "Please enter a valid email address")
	}
	code = strings.TrimSpace(code)
	if len(code) != otpCodeLength || !allDigits(code) {
		return failure(CodeInvalidOTPInput, "Enter the 6-digit code from your email")
	}

	sess, err := a.backend.VerifyOTP(strings.TrimSpace(email), code)
	if err != nil {
		ec, msg := ClassifyAuthError(err.Error())
		a.log.Warn(ctx, "otp verification failed", "code", string(ec))
		return failure(ec, msg)
	}
	return a.completeSignIn(ctx, sess, "otp")
}

// completeSignIn adopts the session, then verifies the account is eligible:
// not banned, linked to a profile, and the profile not blocked. Any
// ineligible account is signed out again before the failure is returned, so
// no half-authorized session survives.
func (a *API) completeSignIn(ctx context.Context, sess *types.Session, method string) Result {
	a.backend.AdoptSession(sess)
	a.holder.Set(sess)

	if sess.User.BannedUntil != nil && sess.User.BannedUntil.After(time.Now()) {
		a.teardown(ctx)
		return failure(CodeAuthRejected, "This account has been suspended")
	}

	profile, err := a.backend.ProfileByUserID(sess.User.ID)
	if err != nil {
		a.teardown(ctx)
		code, msg := ClassifyAuthError(err.Error())
		return failure(code, msg)
	}
	if profile == nil {
		a.teardown(ctx)
		return failure(CodeAuthRejected, "No partner profile is linked to this account")
	}
	if profile.IsBlocked {
		a.teardown(ctx)
		return failure(CodeAuthRejected, "This profile has been blocked")
	}

	a.attempts.Reset()
	a.telemetry.Enqueue(telemetry.Event{
		Name: "login",
		Fields: map[string]any{
			"user_id":   sess.User.ID.String(),
			"girl_id":   profile.ID.String(),
			"device_id": a.deviceID,
			"method":    method,
		},
	})
	a.log.Info(ctx, "signed in", "girl_id", profile.ID.String(), "method", method)
	return success()
}

// SignOut ends the session. A backend logout failure still clears local
// state.
func (a *API) SignOut(ctx context.Context) error {
	err := a.backend.SignOut()
	a.holder.Set(nil)
	if err != nil {
		a.log.Warn(ctx, "backend logout failed", "error", err)
		return err
	}
	return nil
}

// teardown quietly undoes a sign-in that turned out to be ineligible.
func (a *API) teardown(ctx context.Context) {
	if err := a.backend.SignOut(); err != nil {
		a.log.Debug(ctx, "teardown logout failed", "error", err)
	}
	a.holder.Set(nil)
}

// Session returns the current session, or nil when signed out.
func (a *API) Session() *types.Session {
	return a.holder.Get()
}

// CurrentUser returns the signed-in user, or nil.
func (a *API) CurrentUser() *types.User {
	sess := a.holder.Get()
	if sess == nil {
		return nil
	}
	return &sess.User
}

// CurrentUserID returns the signed-in user's id.
func (a *API) CurrentUserID() (uuid.UUID, bool) {
	sess := a.holder.Get()
	if sess == nil {
		return uuid.Nil, false
	}
	return sess.User.ID, true
}

// CurrentProfile loads the linked profile for the signed-in user. Returns
// nil when signed out, unlinked, or on error.
func (a *API) CurrentProfile(ctx context.Context) *models.GirlProfile {
	userID, ok := a.CurrentUserID()
	if !ok {
		return nil
	}
	profile, err := a.backend.ProfileByUserID(userID)
	if err != nil {
		a.log.Debug(ctx, "profile lookup failed", "error", err)
		return nil
	}
	return profile
}

// ProfileByUserID exposes the backend lookup for the authorization gate.
func (a *API) ProfileByUserID(userID uuid.UUID) (*models.GirlProfile, error) {
	return a.backend.ProfileByUserID(userID)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
