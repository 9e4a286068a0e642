package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("repository: duplicate record")

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// begin tags ctx for the context logger and fails fast on a cancelled context.
func begin(ctx context.Context, function string) (context.Context, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", function)
	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return ctx, err
	}
	return ctx, nil
}

// finish logs the outcome of a query. Missing rows are expected and logged at debug.
func finish(ctx context.Context, message string, start time.Time, err error) {
	duration := time.Since(start)

	switch {
	case err == nil:
		logger.DebugWithContext(ctx, message).
			Duration(duration).
			Log()
	case IsNotFound(err):
		logger.DebugWithContext(ctx, message+": not found").
			Duration(duration).
			Log()
	default:
		logger.ErrorWithContext(ctx, message+" failed").
			Duration(duration).
			Err(err).
			Log()
	}
}

// translate maps driver errors to repository errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// likePattern builds a case-insensitive LIKE pattern, escaping wildcards.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(replacer.Replace(strings.TrimSpace(term))) + "%"
}
