package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain"
)

// orEmpty substitutes an empty slice for nil so list responses marshal as
// [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// notFoundWrap turns pgx.ErrNoRows into domain.ErrNotFound, wrapping any
// other error as-is under the formatted message.
func notFoundWrap(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		err = domain.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// execExpectOne treats an Exec that touched no rows as domain.ErrNotFound.
func execExpectOne(tag pgconn.CommandTag, err error, format string, args ...any) error {
	switch {
	case err != nil:
		return fmt.Errorf(format+": %w", append(args, err)...)
	case tag.RowsAffected() == 0:
		return fmt.Errorf(format+": %w", append(args, domain.ErrNotFound)...)
	}
	return nil
}
