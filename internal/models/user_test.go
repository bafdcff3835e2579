// internal/models/user_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserPasswordHashing(t *testing.T) {
	var user User
	assert.NoError(t, user.SetPassword("Sup3rSecret"))
	assert.NotEqual(t, "Sup3rSecret", user.PasswordHash)

	assert.NoError(t, user.CheckPassword("Sup3rSecret"))
	assert.Error(t, user.CheckPassword("wrong-password"))
}

func TestSessionValid(t *testing.T) {
	now := time.Now()

	live := Session{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, live.Valid(now))

	expired := Session{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Valid(now))

	revokedAt := now.Add(-time.Minute)
	revoked := Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}
	assert.False(t, revoked.Valid(now))
}
