package component

// PlayerTag marks the entity agents chase.
type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type EnemyTag struct{}

var EnemyTagComponent = NewComponent[EnemyTag]()

// Collidable marks entities whose bounding box blocks other agents' paths.
type Collidable struct{}

var CollidableComponent = NewComponent[Collidable]()
