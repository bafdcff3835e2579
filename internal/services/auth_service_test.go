// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/models"
	"github.com/shoploop/shoploop-backend/internal/utils"
)

func TestRegisterCreatesUserAndSession(t *testing.T) {
	db, mock := newMockDB(t)
	utils.SetJWTSecrets("access-secret", "refresh-secret")

	cfg := &config.Config{JWT: config.JWTConfig{AccessTokenTTL: 24, RefreshTokenTTL: 168}}
	// An SMTP-less notification service: the welcome email fired on the
	// registration goroutine renders but skips the send.
	svc := NewAuthService(db, cfg, NewNotificationService(db, cfg))

	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE .*email = \$1 OR username = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	resp, err := svc.Register(&RegisterRequest{
		Username: "dana",
		Email:    "dana@example.com",
		Password: "Sup3rSecret!",
	}, ClientMeta{UserAgent: "test-agent", IPAddress: "127.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, models.UserRoleCustomer, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 24*3600, resp.ExpiresIn)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAuthService(db, &config.Config{}, nil)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE .*email = \$1 OR username = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Register(&RegisterRequest{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "Sup3rSecret!",
		Role:     models.UserRoleAdmin,
	}, ClientMeta{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
	assert.NoError(t, mock.ExpectationsWereMet())
}
