package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusWaiting, StatusCalled, true},
		{StatusCalled, StatusServing, true},
		{StatusServing, StatusCompleted, true},
		{StatusWaiting, StatusServing, false},
		{StatusWaiting, StatusCompleted, false},
		{StatusCalled, StatusWaiting, false},
		{StatusCompleted, StatusWaiting, false},
		{StatusCompleted, StatusCompleted, false},
		{Status("bogus"), StatusCalled, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			tok := &Token{Status: tc.from}
			assert.Equal(t, tc.want, tok.CanTransitionTo(tc.to))
		})
	}
}

func TestStatus_Rank(t *testing.T) {
	assert.Equal(t, 0, StatusWaiting.Rank())
	assert.Equal(t, 3, StatusCompleted.Rank())
	assert.Equal(t, -1, Status("cancelled").Rank())
	assert.False(t, StatusCompleted.IsActive())
	assert.True(t, StatusServing.IsActive())
}

func TestSuffix(t *testing.T) {
	at := time.UnixMilli(1_700_000_123_456)
	assert.Equal(t, 3456, Suffix(at))
	assert.Equal(t, "CAR-3456", FormatNumber("CAR", Suffix(at)))
	assert.Equal(t, "EME-0007", FormatNumber("EME", 7))
}

func TestParseNumber(t *testing.T) {
	code, n, ok := ParseNumber("CAR-0042")
	require.True(t, ok)
	assert.Equal(t, "CAR", code)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"CAR0042", "-0042", "CAR-42", "CAR-abcd", "CAR-12345"} {
		_, _, ok := ParseNumber(bad)
		assert.False(t, ok, bad)
	}
}

func TestNextFreeNumber_SkipsTakenAndWraps(t *testing.T) {
	at := time.UnixMilli(9_998)
	taken := map[string]bool{"CAR-9998": true, "CAR-9999": true}

	n, err := NextFreeNumber("CAR", at, func(s string) bool { return taken[s] })
	require.NoError(t, err)
	assert.Equal(t, "CAR-0000", n)
}

func TestNextFreeNumber_Exhausted(t *testing.T) {
	_, err := NextFreeNumber("CAR", time.Now(), func(string) bool { return true })
	assert.ErrorIs(t, err, ErrNumberSpaceExhausted)
}

func TestToken_Before(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &Token{ID: 2, CreatedAt: base}
	b := &Token{ID: 1, CreatedAt: base.Add(time.Second)}
	c := &Token{ID: 3, CreatedAt: base}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, a.Before(c), "equal timestamps fall back to id")
}

func TestListQuery_Matches(t *testing.T) {
	dept := int64(4)
	tok := &Token{DepartmentID: 4, AppointmentID: 10, Status: StatusCalled, TokenNumber: "CAR-0001"}

	assert.True(t, (*ListQuery)(nil).Matches(tok))
	assert.True(t, (&ListQuery{DepartmentID: &dept, Statuses: ActiveStatuses()}).Matches(tok))
	assert.False(t, (&ListQuery{Statuses: []Status{StatusWaiting}}).Matches(tok))
	assert.False(t, (&ListQuery{AppointmentIDs: []int64{11, 12}}).Matches(tok))
}
