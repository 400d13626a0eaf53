package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Postgres SQLSTATEs the repositories translate.
const (
	uniqueViolation = "23505"
	// raised when a malformed id is compared against a UUID column
	invalidTextRepresentation = "22P02"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// isMalformedID reports whether Postgres rejected a parameter literal, which
// for these tables means an id that is not a UUID. Such ids cannot match a
// row, so callers treat them as not found.
func isMalformedID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

// constraintName returns the name of the violated constraint, if any.
func constraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with s's own
// wildcards escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
