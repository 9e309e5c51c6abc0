package queue

import (
	"context"
	"errors"
	"fmt"

	"gearqueue/internal/logging"
)

// Lock begins a transaction unless one is already open. On failure the
// adapter stays Idle.
func (a *Adapter) Lock(ctx context.Context) error {
	if a.inTx {
		return nil
	}
	if _, err := a.exec(ensureContext(ctx), "BEGIN TRANSACTION"); err != nil {
		return newError(KindStatement, "lock", fmt.Errorf("failed to begin transaction: %w", err))
	}
	a.inTx = true
	return nil
}

// Commit ends the open transaction; it is a no-op when none is open. On
// failure the transaction is presumed still open and the flag stays set, so
// the caller must not assume the mutation was persisted.
func (a *Adapter) Commit(ctx context.Context) error {
	if !a.inTx {
		return nil
	}
	if _, err := a.exec(ensureContext(ctx), "COMMIT"); err != nil {
		return newError(KindStatement, "commit", fmt.Errorf("failed to commit transaction: %w", err))
	}
	a.inTx = false
	return nil
}

func (a *Adapter) rollback(ctx context.Context) error {
	if !a.inTx {
		return nil
	}
	if _, err := a.exec(ctx, "ROLLBACK"); err != nil {
		return newError(KindStatement, "rollback", fmt.Errorf("failed to rollback transaction: %w", err))
	}
	a.inTx = false
	return nil
}

// abort rolls back the transaction opened for a failed mutation and returns
// cause, joined with any rollback failure.
func (a *Adapter) abort(ctx context.Context, cause error) error {
	if err := a.rollback(ctx); err != nil {
		a.logger.Error("sqlite rollback failed", logging.Error(err))
		return errors.Join(cause, err)
	}
	return cause
}
