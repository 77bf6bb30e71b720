package component

// Input stores per-tick movement intent in the range [-1, 1] per axis.
type Input struct {
	MoveX float64
	MoveY float64
}

var InputComponent = NewComponent[Input]()
