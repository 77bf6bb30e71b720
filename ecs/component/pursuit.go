package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/questmark/pursuit"
)

// Aggression decides when an agent chases the player. AtSource mirrors the
// controller state once the agent is back home.
type Aggression struct {
	Range    pursuit.Aggression
	AtSource bool
}

var AggressionComponent = NewComponent[Aggression]()

// SourcePosition is where the agent spawned and returns to.
type SourcePosition struct {
	Position cp.Vector
}

var SourcePositionComponent = NewComponent[SourcePosition]()

// PursuitAgent links an entity to its controller state. A zero Handle means
// the agent has not been registered yet.
type PursuitAgent struct {
	Handle pursuit.Handle
	Mode   pursuit.Mode
}

var PursuitAgentComponent = NewComponent[PursuitAgent]()
