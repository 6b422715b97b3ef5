// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package azdo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azure/azdo-mcp/internal/tracing"
	"github.com/azure/azdo-mcp/internal/tracing/events"
	"github.com/azure/azdo-mcp/internal/tracing/fields"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/operations"
	"github.com/sethvargo/go-retry"
)

// DefaultPollInterval is the delay between two reads of an operation status.
const DefaultPollInterval = 5 * time.Second

var errOperationPending = errors.New("operation has not reached a terminal state")

// PollOptions bound the operation polling loop.
type PollOptions struct {
	// Interval between polls. Defaults to DefaultPollInterval.
	Interval time.Duration
	// MaxAttempts caps the number of polls. Zero polls until a terminal status.
	MaxAttempts int
	// Timeout caps the total time spent polling. Zero disables it.
	Timeout time.Duration
	// OnPoll, when set, is called with the status observed by every poll.
	OnPoll func(status operations.OperationStatus)
}

func (o PollOptions) interval() time.Duration {
	if o.Interval <= 0 {
		return DefaultPollInterval
	}

	return o.Interval
}

func (o PollOptions) backoff() retry.Backoff {
	b := retry.NewConstant(o.interval())
	if o.MaxAttempts > 0 {
		b = retry.WithMaxRetries(uint64(o.MaxAttempts-1), b)
	}

	return b
}

// IsTerminal reports whether an operation with this status will not change anymore.
func IsTerminal(status operations.OperationStatus) bool {
	switch status {
	case operations.OperationStatusValues.Succeeded,
		operations.OperationStatusValues.Failed,
		operations.OperationStatusValues.Cancelled:
		return true
	default:
		return false
	}
}

// WaitForOperation re-reads the referenced operation until it reaches a terminal status and returns that status.
// A reference that is already terminal is returned without polling.
func WaitForOperation(
	ctx context.Context,
	tracker OperationTracker,
	ref *operations.OperationReference,
	options PollOptions,
) (status operations.OperationStatus, err error) {
	if ref == nil || ref.Id == nil {
		return "", &TrackerQueryError{Err: errors.New("operation reference has no id")}
	}
	operationId := *ref.Id

	if ref.Status != nil {
		status = *ref.Status
		if IsTerminal(status) {
			return status, nil
		}
	}

	ctx, span := tracing.Start(ctx, events.OperationWaitEvent)
	polls := 0
	defer func() {
		span.SetAttributes(
			fields.OperationIdKey.String(operationId.String()),
			fields.OperationPollsKey.Int(polls),
			fields.OperationStatusKey.String(string(status)),
		)
		span.EndWithStatus(err)
	}()

	pollCtx := ctx
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	args := operations.GetOperationArgs{
		OperationId: &operationId,
	}

	err = retry.Do(pollCtx, options.backoff(), func(ctx context.Context) error {
		polls++
		operation, err := tracker.GetOperation(ctx, args)
		if err != nil {
			return &TrackerQueryError{OperationId: operationId, Err: err}
		}

		if operation != nil && operation.Status != nil {
			status = *operation.Status
		}

		if options.OnPoll != nil {
			options.OnPoll(status)
		}

		if IsTerminal(status) {
			return nil
		}

		return retry.RetryableError(errOperationPending)
	})

	var trackerErr *TrackerQueryError
	switch {
	case err == nil:
		return status, nil
	case errors.Is(pollCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		// The deadline may expire inside GetOperation, surfacing as a query error.
		return status, &TrackerQueryError{
			OperationId: operationId,
			Err:         fmt.Errorf("%w: status %q after %s: %w", ErrOperationTimeout, status, options.Timeout, err),
		}
	case errors.As(err, &trackerErr):
		return status, err
	case errors.Is(err, errOperationPending):
		return status, &TrackerQueryError{
			OperationId: operationId,
			Err:         fmt.Errorf("%w: status %q after %d polls", ErrOperationTimeout, status, polls),
		}
	default:
		return status, &TrackerQueryError{OperationId: operationId, Err: err}
	}
}
