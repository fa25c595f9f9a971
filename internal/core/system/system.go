package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: drain external requests
	PhaseUpdate                  // 1: effect timers, game logic
	PhasePostUpdate              // 2: regen
	PhaseCleanup                 // 3: destroy queued entities
)

// System is the interface every passive system implements. An error is a
// bus handler failure and aborts the rest of the tick.
type System interface {
	Phase() Phase
	Update(dt time.Duration) error
}
