package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBruteForce(store *memAttemptStore, flags Flags) *BruteForce {
	return NewBruteForce(store, flags, DefaultBruteForceConfig())
}

func TestBruteForce_UsernameLockout(t *testing.T) {
	store := &memAttemptStore{}
	bf := newTestBruteForce(store, allOn())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	bf.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		now = base.Add(time.Duration(i) * 10 * time.Second)
		require.NoError(t, bf.Record("ip1", "alice", false, "UA"))
	}

	now = base.Add(50 * time.Second)
	dec, err := bf.CheckAllowed("ip1", "alice")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonUsernameLockout, dec.Reason)
	// The oldest of the last 5 failures was at base; it ages out at
	// base+120s, so 70 seconds remain.
	assert.Equal(t, 70, dec.RetryAfter)
}

func TestBruteForce_SuccessDoesNotClearLockout(t *testing.T) {
	store := &memAttemptStore{}
	bf := newTestBruteForce(store, allOn())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	bf.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		require.NoError(t, bf.Record("ip1", "alice", false, "UA"))
	}
	// A success recorded afterwards does not erase the failure window.
	require.NoError(t, bf.Record("ip1", "alice", true, "UA"))

	dec, err := bf.CheckAllowed("ip1", "alice")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
}

func TestBruteForce_UnderThresholdAllowed(t *testing.T) {
	store := &memAttemptStore{}
	bf := newTestBruteForce(store, allOn())

	for i := 0; i < 4; i++ {
		require.NoError(t, bf.Record("ip1", "alice", false, "UA"))
	}

	dec, err := bf.CheckAllowed("ip1", "alice")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Empty(t, dec.Reason)
}

func TestBruteForce_FailuresAgeOut(t *testing.T) {
	store := &memAttemptStore{}
	bf := newTestBruteForce(store, allOn())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	bf.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		require.NoError(t, bf.Record("ip1", "alice", false, "UA"))
	}

	now = base.Add(121 * time.Second)
	dec, err := bf.CheckAllowed("ip1", "alice")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestBruteForce_CredentialStuffing(t *testing.T) {
	store := &memAttemptStore{}
	bf := newTestBruteForce(store, allOn())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	bf.now = func() time.Time { return now }

	// Six distinct usernames from one identity, no username has prior
	// failures beyond its single attempt.
	usernames := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	for i, u := range usernames {
		now = base.Add(time.Duration(i) * 5 * time.Second)
		require.NoError(t, bf.Record("ip9", u, false, "UA"))
	}

	now = base.Add(30 * time.Second)
	dec, err := bf.CheckAllowed("ip9", "u7")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonCredentialStuffing, dec.Reason)
	// Oldest attempt at base ages out at base+180s.
	assert.Equal(t, 150, dec.RetryAfter)
}

func TestBruteForce_StuffingScopedToIdentity(t *testing.T) {
	store := &memAttemptStore{}
	bf := newTestBruteForce(store, allOn())

	for _, u := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		require.NoError(t, bf.Record("ip9", u, false, "UA"))
	}

	dec, err := bf.CheckAllowed("other-ip", "u7")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestBruteForce_FlagsDisableGuard(t *testing.T) {
	store := &memAttemptStore{}
	flags := allOn()
	bf := newTestBruteForce(store, flags)

	for i := 0; i < 10; i++ {
		require.NoError(t, bf.Record("ip1", "alice", false, "UA"))
	}

	flags.bruteforce = false
	dec, err := bf.CheckAllowed("ip1", "alice")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	// Master flag off has the same effect with the sub-flag on.
	flags.bruteforce = true
	flags.defense = false
	dec, err = bf.CheckAllowed("ip1", "alice")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestBruteForce_RecordTruncatesFields(t *testing.T) {
	store := &memAttemptStore{}
	bf := newTestBruteForce(store, allOn())

	longName := make([]byte, 200)
	for i := range longName {
		longName[i] = 'a'
	}
	require.NoError(t, bf.Record("ip1", string(longName), false, "UA"))
	require.Len(t, store.attempts, 1)
	assert.Len(t, store.attempts[0].username, 80)
}

func TestBruteForce_RetryAfterNeverNegative(t *testing.T) {
	assert.Equal(t, 0, clampSeconds(-5*time.Second))
	assert.Equal(t, 5, clampSeconds(5*time.Second))
}
