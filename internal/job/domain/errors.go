// Package domain defines the job engine's durable state (JobState,
// JobReport), its status enum, and the JobKind contract a runnable job
// type implements.
package domain

import (
	"github.com/allisson/jobcrypt/internal/errors"
)

var (
	// ErrUnknownJobName indicates a persisted JobReport names a job kind
	// that is not registered. Restoration marks the report Failed and
	// moves on rather than blocking startup.
	ErrUnknownJobName = errors.Wrap(errors.ErrInvalidInput, "unknown job name")

	// ErrMissingJobDataState indicates a report that requires a seed to
	// resume (Paused, or Running reinterpreted as Paused) has none.
	ErrMissingJobDataState = errors.Wrap(errors.ErrInvalidInput, "missing job seed")

	// ErrJobNotFound indicates no JobReport exists for the given UUID.
	ErrJobNotFound = errors.Wrap(errors.ErrNotFound, "job not found")

	// ErrJobNotActive indicates Pause/Resume/Cancel was attempted against
	// a job that is not currently Queued, Running, or Paused.
	ErrJobNotActive = errors.Wrap(errors.ErrInvalidInput, "job is not active")

	// ErrRegisteredAfterRestore indicates Register was called after
	// Restore; the registry is closed for writes once restoration begins,
	// since Restore resolves job names against whatever is registered at
	// that instant.
	ErrRegisteredAfterRestore = errors.Wrap(errors.ErrInvalidInput, "job kind registered after restore")

	// ErrJobKindAlreadyRegistered indicates two job kinds registered under the same name.
	ErrJobKindAlreadyRegistered = errors.Wrap(errors.ErrConflict, "job kind already registered")
)
