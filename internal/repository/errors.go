// Package repository is the database service layer: one method per query or
// mutation used by the HTTP handlers. Expected outcomes other than success
// are reported through the sentinel errors below.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrDuplicate means a unique email or phone number is already registered.
	ErrDuplicate = errors.New("repository: duplicate record")
	// ErrNotFound means the addressed row does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrEmailTaken is returned by the email availability check.
	ErrEmailTaken = errors.New("repository: email already in use")
	// ErrOutOfStock means an order asked for more units than are available.
	ErrOutOfStock = errors.New("repository: insufficient stock")
	// ErrAlreadyRefunded means the order line was refunded before.
	ErrAlreadyRefunded = errors.New("repository: already refunded")
	// ErrProductSold means the product is referenced by order lines and must
	// stay in place for sales, deliveries and refunds.
	ErrProductSold = errors.New("repository: product has orders")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
