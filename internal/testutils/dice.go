package testutils

import (
	"fmt"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

var _ dice.Roller = (*ScriptedRoller)(nil)

// ScriptedRoller is a dice.Roller that hands out a fixed sequence of values.
// Once the script runs out it returns an error, so tests notice unexpected
// rolls.
type ScriptedRoller struct {
	mu     sync.Mutex
	values []int
	Err    error
}

// NewScriptedRoller returns a roller that yields values in order.
func NewScriptedRoller(values ...int) *ScriptedRoller {
	return &ScriptedRoller{values: values}
}

// Roll returns the next scripted value.
func (r *ScriptedRoller) Roll(_ int) (int, error) {
	out, err := r.RollN(1, 0)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// RollN returns the next count scripted values.
func (r *ScriptedRoller) RollN(count, _ int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	if count > len(r.values) {
		return nil, fmt.Errorf("scripted roller: asked for %d dice, %d left", count, len(r.values))
	}
	out := make([]int, count)
	copy(out, r.values[:count])
	r.values = r.values[count:]
	return out, nil
}

// Remaining reports how many scripted values are left.
func (r *ScriptedRoller) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}
