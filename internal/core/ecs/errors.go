package ecs

import "github.com/rotisserie/eris"

// Sentinel errors returned by entity, group, collector and context operations.
// Callers match them with errors.Is; the returned values are wrapped with the
// entity or component involved.
var (
	ErrEntityDisabled     = eris.New("entity is not enabled")
	ErrComponentExists    = eris.New("entity already has component")
	ErrComponentNotFound  = eris.New("entity does not have component")
	ErrInvalidComponent   = eris.New("component must be a non-nil pointer")
	ErrEntityNotFound     = eris.New("context does not contain entity")
	ErrEntityStillEnabled = eris.New("cannot release entity that has not been destroyed")
	ErrMultipleEntities   = eris.New("group contains more than one entity")
	ErrRetainedEntities   = eris.New("entities are still retained after destroy")
	ErrAlreadyRetained    = eris.New("entity is already retained by owner")
	ErrNotRetained        = eris.New("entity is not retained by owner")
	ErrCollectorMismatch  = eris.New("collector groups and events must have the same length")
)
