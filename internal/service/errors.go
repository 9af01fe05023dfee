package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/storage"
)

// invalid builds a validation error for a request field.
func invalid(field, format string, args ...any) error {
	return &calculator.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// toConnectError logs err and maps it to a Connect error:
//   - validation errors become CodeInvalidArgument
//   - invariant violations become CodeInternal and are counted
//   - missing records become CodeNotFound
//   - taken member names become CodeAlreadyExists
//   - removals blocked by ledger history become CodeFailedPrecondition
//   - anything else becomes CodeInternal
func toConnectError(m *metrics.Metrics, op string, err error, attrs ...any) error {
	attrs = append(attrs, "error", err)

	var validationErr *calculator.ValidationError
	switch {
	case errors.As(err, &validationErr):
		m.ValidationFailures.WithLabelValues(fieldLabel(validationErr.Field)).Inc()
		slog.Warn(op+" rejected", attrs...)
		return connect.NewError(connect.CodeInvalidArgument, err)

	case errors.Is(err, calculator.ErrInvariant):
		m.InvariantViolations.Inc()
		slog.Error(op+" found inconsistent ledger", attrs...)
		return connect.NewError(connect.CodeInternal, err)

	case errors.Is(err, storage.ErrNotFound):
		slog.Warn(op+" failed", attrs...)
		return connect.NewError(connect.CodeNotFound, err)

	case errors.Is(err, storage.ErrAlreadyExists):
		slog.Warn(op+" rejected", attrs...)
		return connect.NewError(connect.CodeAlreadyExists, err)

	case errors.Is(err, storage.ErrMemberInUse), errors.Is(err, storage.ErrLastMember):
		slog.Warn(op+" rejected", attrs...)
		return connect.NewError(connect.CodeFailedPrecondition, err)

	default:
		slog.Error(op+" failed", attrs...)
		return connect.NewError(connect.CodeInternal, err)
	}
}

// fieldLabel drops per-member suffixes such as "values[7]" so the metric
// label stays bounded.
func fieldLabel(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if field == "" {
		return "input"
	}
	return field
}
