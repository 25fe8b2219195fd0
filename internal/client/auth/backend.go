package auth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"

	"partner-media-backend/internal/models"
)

// Backend is the narrow slice of the BaaS the auth layer depends on.
// Production uses the Supabase client; tests substitute a fake.
type Backend interface {
	SignInWithPassword(email, password string) (*types.Session, error)
	SendOTP(email string) error
	VerifyOTP(email, token string) (*types.Session, error)
	SignOut() error

	// ProfileByUserID returns (nil, nil) when no profile is linked.
	ProfileByUserID(userID uuid.UUID) (*models.GirlProfile, error)

	// AdoptSession points subsequent database/storage calls at the
	// session's access token. nil detaches.
	AdoptSession(s *types.Session)
}

type supabaseBackend struct {
	sb *supabase.Client
}

// NewSupabaseBackend wraps an anon-key Supabase client as a Backend.
func NewSupabaseBackend(sb *supabase.Client) Backend {
	return &supabaseBackend{sb: sb}
}

func (b *supabaseBackend) SignInWithPassword(email, password string) (*types.Session, error) {
	sess, err := b.sb.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (b *supabaseBackend) SendOTP(email string) error {
	return b.sb.Auth.OTP(types.OTPRequest{Email: email})
}

func (b *supabaseBackend) VerifyOTP(email, token string) (*types.Session, error) {
	resp, err := b.sb.Auth.VerifyForUser(types.VerifyForUserRequest{
		// gotrue verifies emailed one-time codes under the "email" type.
		Type:  types.VerificationType("email"),
		Email: email,
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	return &resp.Session, nil
}

func (b *supabaseBackend) SignOut() error {
	return b.sb.Auth.Logout()
}

func (b *supabaseBackend) ProfileByUserID(userID uuid.UUID) (*models.GirlProfile, error) {
	var rows []models.GirlProfile
	_, err := b.sb.From("girls").
		Select("id,user_id,is_blocked", "", false).
		Eq("user_id", userID.String()).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (b *supabaseBackend) AdoptSession(s *types.Session) {
	if s == nil {
		return
	}
	b.sb.UpdateAuthSession(*s)
}
