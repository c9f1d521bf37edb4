package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage defines the minimal interface for enqueueing background jobs into
// the underlying queue backend. The args parameter carries the job payload and
// opts customizes insertion (queue, delay, uniqueness).
type JobStorage interface {
	// AddJob enqueues a new job with the given arguments. It is atomic with
	// respect to a surrounding transaction when the backend supports it. The
	// boolean result reports whether a job was actually inserted; false means an
	// equivalent unique job already exists.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
