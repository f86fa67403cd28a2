package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		chat         GroupChat
		participants []ChatParticipant
		want         bool
	}{
		{
			"past deadline",
			GroupChat{ExpiresAt: now.Add(-time.Minute)},
			[]ChatParticipant{{UserID: 1}, {UserID: 2}},
			true,
		},
		{
			"exactly at deadline",
			GroupChat{ExpiresAt: now},
			[]ChatParticipant{{UserID: 1}},
			true,
		},
		{
			"before deadline",
			GroupChat{ExpiresAt: now.Add(time.Hour)},
			[]ChatParticipant{{UserID: 1}},
			false,
		},
		{
			"kept by one participant",
			GroupChat{ExpiresAt: now.Add(-time.Hour)},
			[]ChatParticipant{{UserID: 1}, {UserID: 2, KeepChat: true}},
			false,
		},
		{
			"permanent chat",
			GroupChat{ExpiresAt: now.Add(-time.Hour), IsPermanent: true},
			[]ChatParticipant{{UserID: 1}},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsExpired(tc.chat, tc.participants, now))
		})
	}
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	remaining, expires := TimeRemaining(GroupChat{ExpiresAt: now.Add(90 * time.Minute)}, nil, now)
	require.True(t, expires)
	assert.Equal(t, 90*time.Minute, remaining)

	remaining, expires = TimeRemaining(GroupChat{ExpiresAt: now.Add(-time.Hour)}, nil, now)
	require.True(t, expires)
	assert.Equal(t, time.Duration(0), remaining)

	_, expires = TimeRemaining(GroupChat{ExpiresAt: now.Add(-time.Hour)},
		[]ChatParticipant{{KeepChat: true}}, now)
	assert.False(t, expires)

	_, expires = TimeRemaining(GroupChat{IsPermanent: true}, nil, now)
	assert.False(t, expires)
}

func TestAllAccepted(t *testing.T) {
	assert.False(t, AllAccepted(nil))
	assert.False(t, AllAccepted([]HangoutParticipant{}))
	assert.False(t, AllAccepted([]HangoutParticipant{
		{UserID: 1, Status: StatusAccepted},
		{UserID: 2, Status: StatusPending},
	}))
	assert.True(t, AllAccepted([]HangoutParticipant{
		{UserID: 1, Status: StatusAccepted},
		{UserID: 2, Status: StatusAccepted},
	}))
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusAccepted.Terminal())
	assert.True(t, StatusDeclined.Terminal())
	assert.True(t, StatusRescheduled.Terminal())
	assert.False(t, Status("bogus").Valid())
}
