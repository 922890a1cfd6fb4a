package environment

import "bootkit/internal/notify"

// Change describes a new selection written through a Manager.
type Change struct {
	Previous string
	Current  string
}

// Changed is posted after a Manager persists a selection. The source of each
// post is the Store that was written, so observers can filter on one store.
var Changed = notify.New[Change](notify.WithName("environment.changed"))
