package settlement

import "github.com/shopspring/decimal"

// EditState is the scratch state of one item while its amount is edited
type EditState struct {
	InEdit              bool            `json:"in_edit"`
	SnapshotAmountToPay decimal.Decimal `json:"snapshot_amount_to_pay"`
}

// editTracker keeps edit state keyed by item index
type editTracker struct {
	states map[int]EditState
}

func newEditTracker() editTracker {
	return editTracker{states: make(map[int]EditState)}
}

func (t *editTracker) reset() {
	t.states = make(map[int]EditState)
}

func (t *editTracker) get(index int) EditState {
	return t.states[index]
}

// begin enters edit mode. A second call keeps the first snapshot.
func (t *editTracker) begin(index int, current decimal.Decimal) {
	if t.states[index].InEdit {
		return
	}
	t.states[index] = EditState{InEdit: true, SnapshotAmountToPay: current}
}

// cancel leaves edit mode and returns the snapshot to restore
func (t *editTracker) cancel(index int) (decimal.Decimal, bool) {
	state, ok := t.states[index]
	delete(t.states, index)
	if !ok || !state.InEdit {
		return decimal.Zero, false
	}
	return state.SnapshotAmountToPay, true
}

func (t *editTracker) end(index int) {
	delete(t.states, index)
}

func (t *editTracker) snapshot() map[int]EditState {
	out := make(map[int]EditState, len(t.states))
	for k, v := range t.states {
		out[k] = v
	}
	return out
}
