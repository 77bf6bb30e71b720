package component

// Script drives an entity from a tengo source file. State is carried between
// runs so scripts can keep their own memory.
type Script struct {
	Path  string
	State map[string]any
}

var ScriptComponent = NewComponent[Script]()
