// Package audit turns entity updates into human readable change log entries.
//
// Repositories call Recorder.Record with the state they read before
// persisting and the state they wrote. The Dispatcher describes the
// change right away and hands the sentence to a background worker pool,
// so the request that caused the change never waits on the log write.
package audit

import "context"

type Kind string

const (
	KindUser  Kind = "user"
	KindPhoto Kind = "photo"
	KindAlbum Kind = "album"
)

// Watched field names.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldName     = "name"
	FieldTitle    = "title"
)

// Snapshot is the flat state of a tracked entity at one point in time.
type Snapshot struct {
	Kind Kind
	ID   int64
	// ActorID is the owner for photos and albums and the user itself for users.
	ActorID int64
	Fields  map[string]string
}

// Recorder receives before/after pairs from repository updates.
// Implementations must not block the caller and must not fail it.
type Recorder interface {
	Record(ctx context.Context, before, after Snapshot)
}

// Nop discards every change.
type Nop struct{}

func (Nop) Record(context.Context, Snapshot, Snapshot) {}
