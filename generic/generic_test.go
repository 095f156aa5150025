package generic

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ERRORS
// =============================================================================

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"not found", NotFound("leave", 7), KindNotFound},
		{"conflict", Conflict("leave %d is Approved", 7), KindConflict},
		{"validation", Validation("end_date", "end before start"), KindValidation},
		{"forbidden", Forbidden("no role"), KindAuthorization},
		{"wrapped", fmt.Errorf("decide: %w", NotFound("expense", 3)), KindNotFound},
		{"bare sentinel", fmt.Errorf("lookup: %w", ErrConflict), KindConflict},
		{"plain", errors.New("disk on fire"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	assert.ErrorIs(t, NotFound("product", 1), ErrNotFound)
	assert.ErrorIs(t, Conflict("x"), ErrConflict)
	assert.ErrorIs(t, Validation("f", "x"), ErrValidation)
	assert.ErrorIs(t, Forbidden("x"), ErrAuthorization)
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NotFound("product", 1))))

	err := NotFound("purchase order", 12)
	assert.Equal(t, "purchase order 12 not found", err.Error())
	assert.Equal(t, "purchase order", err.Entity)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(Validation("f", "bad")))
	assert.True(t, IsClientError(Forbidden("no")))
	assert.False(t, IsClientError(errors.New("boom")))
	assert.False(t, IsClientError(nil))
}

// =============================================================================
// ROLES, ACTOR, DECISION
// =============================================================================

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" hrmanager ")
	require.NoError(t, err)
	assert.Equal(t, RoleHRManager, r)

	_, err = ParseRole("Superuser")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestActor(t *testing.T) {
	a := Actor{UserID: 4, Username: "dana", Roles: []Role{RoleEmployee, RoleFinanceManager}}

	assert.True(t, a.Has(RoleAdmin, RoleFinanceManager))
	assert.False(t, a.Has(RoleAdmin))
	assert.False(t, Actor{}.Has(RoleEmployee))
	assert.Equal(t, "dana(4)", a.String())

	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)
	got, ok := ActorFrom(WithActor(context.Background(), a))
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in      string
		want    Decision
		wantErr bool
	}{
		{"Approved", DecisionApproved, false},
		{"rejected", DecisionRejected, false},
		{" APPROVED ", DecisionApproved, false},
		{"Pending", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecision(tt.in)
			if tt.wantErr {
				assert.Equal(t, KindValidation, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// CLOCK AND DAYS
// =============================================================================

func TestManualClock(t *testing.T) {
	start := time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC)
	c := NewManualClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestDayRange(t *testing.T) {
	at := time.Date(2025, time.March, 10, 23, 59, 59, 0, time.UTC)
	from, to := DayRange(at)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), to)

	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, from, d)

	_, err = ParseDate("10/03/2025")
	assert.Error(t, err)
}

// =============================================================================
// UNIT OF WORK
// =============================================================================

func TestAfterCommit(t *testing.T) {
	ran := 0
	AfterCommit(context.Background(), func() { ran++ })
	assert.Equal(t, 1, ran, "runs at once outside a unit of work")

	ctx, run := WithCommitHooks(context.Background())
	AfterCommit(ctx, func() { ran++ })
	AfterCommit(ctx, func() { ran++ })
	assert.Equal(t, 1, ran)

	run()
	assert.Equal(t, 3, ran)
	run()
	assert.Equal(t, 3, ran, "callbacks run once")
}
