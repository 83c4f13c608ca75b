package model

import "time"

type EventType string

const (
	EventCreate EventType = "CREATE"
	EventWrite  EventType = "WRITE"
	EventRemove EventType = "REMOVE"
	EventRename EventType = "RENAME"
)

// FileEvent is a change observed in the local tree. It only schedules a
// pass; the pass itself rereads both trees.
type FileEvent struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}
