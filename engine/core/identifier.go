package core

import "github.com/google/uuid"

// RunID identifies one startup of the process in the logs.
type RunID string

func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// Short returns the first block of the identifier.
func (id RunID) Short() string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func (id RunID) String() string {
	return string(id)
}
