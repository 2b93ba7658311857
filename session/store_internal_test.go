package session

import (
	"testing"
	"time"

	"github.com/jrsteele09/flow-client/users"
	"github.com/stretchr/testify/require"
)

func TestPersistedChanged(t *testing.T) {
	consent := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	user := func() *users.User {
		at := consent
		return &users.User{ID: "u-1", Email: "sam@example.com", Role: users.RoleMember, IsActive: true, PrivacyConsentAt: &at, CreatedAt: consent}
	}
	signedIn := func(u *users.User) State {
		return State{User: u, IsAuthenticated: true, Phase: PhaseAuthenticatedNoProfile}
	}

	t.Run("decoded copy of the same user", func(t *testing.T) {
		other := user()
		local := other.PrivacyConsentAt.In(time.FixedZone("CET", 3600))
		other.PrivacyConsentAt = &local
		other.CreatedAt = other.CreatedAt.In(time.Local)
		require.False(t, persistedChanged(signedIn(user()), signedIn(other)))
	})

	t.Run("role change", func(t *testing.T) {
		other := user()
		other.Role = users.RoleAdmin
		require.True(t, persistedChanged(signedIn(user()), signedIn(other)))
	})

	t.Run("consent withdrawn", func(t *testing.T) {
		other := user()
		other.PrivacyConsentAt = nil
		require.True(t, persistedChanged(signedIn(user()), signedIn(other)))
	})

	t.Run("sign out", func(t *testing.T) {
		require.True(t, persistedChanged(signedIn(user()), Empty()))
	})
}
