package domain

import (
	"fmt"
	"strings"
)

// LockMode selects how the synchronizer serializes mutations.
type LockMode string

const (
	// LockQueue admits one mutation at a time in issue order. Later
	// mutations wait for earlier ones to resolve.
	LockQueue LockMode = "queue"

	// LockFlag is a single busy bit. Acquiring never blocks, so concurrent
	// mutations all reach the backend and the last one to resolve wins.
	LockFlag LockMode = "flag"
)

// ParseLockMode maps a config string to a LockMode. Empty means LockQueue.
func ParseLockMode(s string) (LockMode, error) {
	switch LockMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LockQueue:
		return LockQueue, nil
	case LockFlag:
		return LockFlag, nil
	default:
		return LockQueue, fmt.Errorf("unknown lock mode %q (want queue or flag)", s)
	}
}
