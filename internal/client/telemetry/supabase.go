package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
)

const profilesTable = "user_profiles"

// SupabaseSink writes login events onto the account's user_profiles row, so
// the backend keeps the last device and time each account signed in from.
type SupabaseSink struct {
	sb *supabase.Client
}

func NewSupabaseSink(sb *supabase.Client) *SupabaseSink {
	return &SupabaseSink{sb: sb}
}

// Send records a login event. Events of any other name are ignored.
func (s *SupabaseSink) Send(_ context.Context, e Event) error {
	if e.Name != "login" {
		return nil
	}

	userID, _ := e.Fields["user_id"].(string)
	if userID == "" {
		return fmt.Errorf("login event without user_id")
	}

	update := map[string]any{
		"last_login_at": e.At.UTC().Format(time.RFC3339),
	}
	if deviceID, _ := e.Fields["device_id"].(string); deviceID != "" {
		update["last_device_id"] = deviceID
	}

	_, _, err := s.sb.From(profilesTable).
		Update(update, "", "").
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}
