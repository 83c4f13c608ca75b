// Package queue holds the shared priority queue of sync tasks and the worker
// pool that drains it.
package queue

import (
	"context"
	"fmt"
)

// Task is one unit of deferred work. Run may add further tasks to the queue
// it was taken from; those are visible to other workers before Run returns.
type Task interface {
	Priority() int
	String() string
	Run(ctx context.Context) error
}

type kinded interface {
	Kind() string
}

func kindOf(t Task) string {
	if k, ok := t.(kinded); ok {
		return k.Kind()
	}

	return fmt.Sprintf("%T", t)
}
