package event

import "github.com/l1jgo/ecsrt/internal/core/ecs"

// Lifecycle notifications mirrored from a Context by Observe.

type EntityCreated struct {
	Context string
	ID      uint32
	Handle  ecs.Handle
}

type EntityDestroyed struct {
	Context    string
	ID         uint32
	Handle     ecs.Handle
	Components int // components held just before destruction
	Retained   bool
}

type GroupCreated struct {
	Context string
	Matcher string
	Count   int
}

type GroupCleared struct {
	Context string
	Matcher string
}
