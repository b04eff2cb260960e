package service

import (
	"wallet_history/internal/entity"
)

// ResampleStates projects states, sorted ascending by timestamp, onto a grid of bucketSeconds
// wide buckets ending at the bucket boundary at or before now, followed by one bucket at now.
//
// The grid holds min(rng, walletAgeBuckets+1) buckets so no bucket predates the wallet by more
// than one step. Each bucket carries the balances of the last state strictly before its
// timestamp, or of the first state when none precedes it. The trailing bucket at now carries the
// latest state, which includes transactions after the last grid boundary.
func ResampleStates(states []entity.ChartState, bucketSeconds int64, rng uint8, now int64) []entity.ChartState {
	if len(states) == 0 || bucketSeconds <= 0 {
		return []entity.ChartState{}
	}

	finalT := floorDiv(now, bucketSeconds) * bucketSeconds
	age := ceilDiv(now-states[0].Timestamp, bucketSeconds)
	if age < 0 {
		age = 0
	}
	adjusted := min(int64(rng), age+1)
	initialT := finalT - adjusted*bucketSeconds

	out := make([]entity.ChartState, 0, adjusted+1)
	cursor := 0
	for i := int64(0); i < adjusted; i++ {
		t := initialT + i*bucketSeconds
		for cursor < len(states) && states[cursor].Timestamp < t {
			cursor++
		}

		idx := cursor - 1
		if idx < 0 {
			idx = 0
		}
		out = append(out, entity.ChartState{Timestamp: t, Balances: states[idx].Balances})
	}

	out = append(out, entity.ChartState{Timestamp: now, Balances: states[len(states)-1].Balances})
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}
