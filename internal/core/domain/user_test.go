package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("Normalizes the email", func(t *testing.T) {
		user, err := NewUser("123", "  Test.User@Gmail.COM  ")
		require.NoError(t, err)

		assert.Equal(t, "test.user@gmail.com", user.Email)
		assert.Equal(t, "123", user.ID)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("Generates an id when none is given", func(t *testing.T) {
		user, err := NewUser("", "someone@example.com")
		require.NoError(t, err)
		assert.Len(t, user.ID, 36)
	})

	t.Run("Rejects malformed emails", func(t *testing.T) {
		for _, email := range []string{"", "invalid-email-format", "@example.com", "a b@example.com"} {
			_, err := NewUser("123", email)
			assert.ErrorIs(t, err, ErrInvalidEmail, email)
		}
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail(" Ada@Example.COM\n"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestUserPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"Accepts eight characters", "12345678", nil},
		{"Counts runes, not bytes", "ééééééé", ErrPasswordTooShort},
		{"Rejects short passwords", "short", ErrPasswordTooShort},
		{"Accepts the bcrypt limit", strings.Repeat("x", 72), nil},
		{"Rejects what bcrypt would truncate", strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user, err := NewUser("123", "test@test.com")
			require.NoError(t, err)

			err = user.SetPassword(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, user.PasswordHash)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.NoError(t, user.CheckPassword(tt.password))
		})
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	user, err := NewUser("123", "test@test.com")
	require.NoError(t, err)

	assert.ErrorIs(t, user.CheckPassword("anything-at-all"), ErrInvalidCredentials, "no hash yet")

	require.NoError(t, user.SetPassword("correctPassword"))
	assert.NoError(t, user.CheckPassword("correctPassword"))
	assert.ErrorIs(t, user.CheckPassword("wrongPassword"), ErrInvalidCredentials)
	assert.ErrorIs(t, user.CheckPassword(""), ErrInvalidCredentials)
}
