package db

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/justestif/historia/internal/store"
)

func TestSessionArgs_CoverInsertPlaceholders(t *testing.T) {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	session := &store.Session{
		ID:           "sid",
		UserID:       "user-1",
		Email:        "user@example.com",
		AccessToken:  "abc",
		RefreshToken: "def",
		TokenExpiry:  now.Add(time.Hour),
		CreatedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
	}

	args := sessionArgs(session)

	placeholders := regexp.MustCompile(`@(\w+)`).FindAllStringSubmatch(sessionInsert, -1)
	assert.Len(t, args, len(placeholders))
	for _, p := range placeholders {
		assert.Contains(t, args, p[1])
	}
	assert.Equal(t, "user-1", args["user_id"])
	assert.Equal(t, now.Add(24*time.Hour), args["expires_at"])
}
