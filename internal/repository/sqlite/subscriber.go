package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/mailinglist/internal/apperror"
	"github.com/sakif/mailinglist/internal/model"
	"github.com/sakif/mailinglist/internal/repository"
)

// compile-time check that *DB implements repository.SubscriberRepository
var _ repository.SubscriberRepository = (*DB)(nil)

// Insert adds a new subscriber row and sets subscriber.ID.
//
// There is no SELECT-before-INSERT. The UNIQUE constraint on email decides,
// inside SQLite's write lock, which of two racing signups wins; the loser gets
// apperror.DuplicateEmail and nothing is overwritten.
func (db *DB) Insert(ctx context.Context, subscriber *model.Subscriber) error {
	result, err := db.conn.NamedExecContext(ctx,
		`INSERT INTO subscribers (name, email, band, choir, summerMusical)
		 VALUES (:name, :email, :band, :choir, :summerMusical)`,
		subscriber,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateEmail()
		}
		return fmt.Errorf("sqlite: inserting subscriber: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted subscriber id: %w", err)
	}
	subscriber.ID = id

	return nil
}

// ListEmailsByInterest returns the emails of every subscriber whose flag for
// interest is set, ordered by signup.
func (db *DB) ListEmailsByInterest(ctx context.Context, interest model.Interest) ([]string, error) {
	column, err := interestColumn(interest)
	if err != nil {
		return nil, err
	}

	emails := []string{}
	query := fmt.Sprintf(`SELECT email FROM subscribers WHERE %s = 1 ORDER BY id`, column)
	if err := db.conn.SelectContext(ctx, &emails, query); err != nil {
		return nil, fmt.Errorf("sqlite: listing %s emails: %w", interest, err)
	}

	return emails, nil
}

// interestColumn maps an Interest to its column name. The result is spliced
// into SQL, so only the fixed names below may ever come out of it.
func interestColumn(interest model.Interest) (string, error) {
	switch interest {
	case model.InterestBand:
		return "band", nil
	case model.InterestChoir:
		return "choir", nil
	case model.InterestSummerMusical:
		return "summerMusical", nil
	}
	return "", fmt.Errorf("sqlite: unknown interest %q", interest)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// primary result code only; fall back to the message
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}
