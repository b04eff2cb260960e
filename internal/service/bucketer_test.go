package service

import (
	"testing"

	"wallet_history/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = int64(86400)

func state(ts int64, sol float64) entity.ChartState {
	balances := map[string]entity.FormattedAmount{}
	if sol != 0 {
		balances[entity.NativeMint] = entity.FormattedAmount{Amount: uint64(sol * 1e9), Formatted: sol}
	}
	return entity.ChartState{Timestamp: ts, Balances: balances}
}

func TestResampleStates_SingleDeposit(t *testing.T) {
	T := int64(1_700_000_000)
	states := []entity.ChartState{state(T, 10)}
	now := T + 3600

	got := ResampleStates(states, day, 1, now)

	require.Len(t, got, 2)
	assert.Equal(t, (now/day)*day-day, got[0].Timestamp)
	assert.Less(t, got[0].Timestamp, T)
	assert.Equal(t, now, got[1].Timestamp)
	assert.Equal(t, 10.0, got[1].Balances[entity.NativeMint].Formatted)
}

func TestResampleStates_RangeClampedToWalletAge(t *testing.T) {
	now := int64(100 * 3600)
	states := []entity.ChartState{state(now-2*3600-10, 1)}

	got := ResampleStates(states, 3600, 48, now)

	// age is ceil((2h+10s)/1h) = 3 buckets, plus one
	require.Len(t, got, 5)
	assert.Equal(t, now-4*3600, got[0].Timestamp)
	assert.Equal(t, now, got[4].Timestamp)
}

func TestResampleStates_CarriesLastStateBeforeEachBoundary(t *testing.T) {
	now := int64(10 * day)
	states := []entity.ChartState{
		state(2*day+100, 1), // before day 3
		state(2*day+200, 2), // before day 3
		state(5*day, 3),     // exactly on day 5
		state(9*day+50, 4),  // after the last boundary
	}

	got := ResampleStates(states, day, 8, now)

	want := []struct {
		ts  int64
		sol float64
	}{
		{2 * day, 1}, // no state before: first state
		{3 * day, 2},
		{4 * day, 2}, // dormant, carried forward
		{5 * day, 2}, // state at 5d is not strictly before the boundary
		{6 * day, 3},
		{7 * day, 3},
		{8 * day, 3},
		{9 * day, 3},
		{now, 4},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.ts, got[i].Timestamp, "bucket %d", i)
		assert.Equal(t, w.sol, got[i].Balances[entity.NativeMint].Formatted, "bucket %d", i)
	}
}

func TestResampleStates_Properties(t *testing.T) {
	states := []entity.ChartState{
		state(1_000, 1),
		state(50_000, 0),
		state(200_000, 3),
		state(200_000, 4),
		state(900_000, 2),
	}

	tests := []struct {
		name   string
		bucket int64
		rng    uint8
		now    int64
	}{
		{name: "hourly short range", bucket: 3600, rng: 24, now: 1_000_000},
		{name: "hourly max range", bucket: 3600, rng: 255, now: 1_000_000},
		{name: "daily", bucket: day, rng: 30, now: 1_000_000},
		{name: "now before the first state", bucket: day, rng: 7, now: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := ResampleStates(states, tt.bucket, tt.rng, tt.now)
			second := ResampleStates(states, tt.bucket, tt.rng, tt.now)
			assert.Equal(t, first, second)

			age := ceilDiv(tt.now-states[0].Timestamp, tt.bucket)
			if age < 0 {
				age = 0
			}
			adjusted := min(int64(tt.rng), age+1)
			assert.Len(t, first, int(adjusted)+1)

			for i := 1; i < len(first); i++ {
				assert.LessOrEqual(t, first[i-1].Timestamp, first[i].Timestamp)
			}
			assert.Equal(t, tt.now, first[len(first)-1].Timestamp)
		})
	}
}

func TestResampleStates_EdgeCases(t *testing.T) {
	assert.Empty(t, ResampleStates(nil, day, 7, 1_000_000))

	got := ResampleStates([]entity.ChartState{state(10, 1)}, day, 0, 1_000_000)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1_000_000), got[0].Timestamp)
	assert.Equal(t, 1.0, got[0].Balances[entity.NativeMint].Formatted)
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{a: 0, b: 3600, want: 0},
		{a: 1, b: 3600, want: 1},
		{a: 3600, b: 3600, want: 1},
		{a: 3601, b: 3600, want: 2},
		{a: -1, b: 3600, want: 0},
		{a: -3601, b: 3600, want: -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ceilDiv(tt.a, tt.b), "ceilDiv(%d, %d)", tt.a, tt.b)
	}
}
