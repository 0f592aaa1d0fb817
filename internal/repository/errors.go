package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

var (
	// ErrStaleCase means the case row no longer matches the status/version read
	// at the start of the transaction.
	ErrStaleCase = errors.New("case changed since it was read")
	// ErrUnavailable marks transient store failures: timeouts, cancellations,
	// broken connections.
	ErrUnavailable = errors.New("store unavailable")
)

// classify folds driver errors into the package sentinels while keeping the
// original error in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	case errors.As(err, &pqErr):
		switch {
		case pqErr.Code == "40001" || pqErr.Code == "40P01":
			return fmt.Errorf("%s: %w: %w", op, ErrStaleCase, err)
		case pqErr.Code.Class() == "08" || pqErr.Code.Class() == "57":
			return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
