// Package store is the record store client over PostgreSQL. All four
// collections share one contract: List, Create, Update and Delete, each
// returning the full affected rows.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"io.winapps.babytracker/internal/domain"
)

// DB is the common interface implemented by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// execer is implemented by both DB and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Filter is an equality filter keyed by column name.
type Filter map[string]any

// ListOptions narrows and orders a List call. Zero values mean "no filter",
// the collection's default order and no limit.
type ListOptions struct {
	Filter    Filter
	OrderBy   string
	Ascending bool
	Limit     uint64
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// table implements the shared collection contract for one relation.
type table[T any] struct {
	db      DB
	name    string
	entity  string
	columns []string
	// columns usable in filters and ORDER BY
	queryable    map[string]bool
	defaultOrder string
	defaultAsc   bool
}

func (t *table[T]) returning() string {
	return "RETURNING " + strings.Join(t.columns, ", ")
}

func (t *table[T]) list(ctx context.Context, opts ListOptions) ([]T, error) {
	q := psql.Select(t.columns...).From(t.name)

	keys := make([]string, 0, len(opts.Filter))
	for col := range opts.Filter {
		keys = append(keys, col)
	}
	sort.Strings(keys)
	for _, col := range keys {
		if !t.queryable[col] {
			return nil, domain.NewValidationError("filter", fmt.Sprintf("cannot filter %s by %s", t.name, col))
		}
		q = q.Where(squirrel.Eq{col: opts.Filter[col]})
	}

	orderBy, asc := t.defaultOrder, t.defaultAsc
	if opts.OrderBy != "" {
		if !t.queryable[opts.OrderBy] {
			return nil, domain.NewValidationError("orderBy", fmt.Sprintf("cannot order %s by %s", t.name, opts.OrderBy))
		}
		orderBy, asc = opts.OrderBy, opts.Ascending
	}
	direction := "DESC"
	if asc {
		direction = "ASC"
	}
	// id breaks ties so equal sort keys keep a stable order between refetches
	q = q.OrderBy(orderBy+" "+direction, "id "+direction)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s: %w", t.name, err)
	}

	var out []T
	if err := pgxscan.Select(ctx, t.db, &out, query, args...); err != nil {
		return nil, mapError(err, t.entity, uuid.Nil)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (t *table[T]) get(ctx context.Context, id uuid.UUID) (T, error) {
	var row T
	query, args, err := psql.Select(t.columns...).From(t.name).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return row, fmt.Errorf("build get %s: %w", t.name, err)
	}
	if err := pgxscan.Get(ctx, t.db, &row, query, args...); err != nil {
		return row, mapError(err, t.entity, id)
	}
	return row, nil
}

func (t *table[T]) insert(ctx context.Context, values map[string]any) (T, error) {
	var row T
	query, args, err := psql.Insert(t.name).SetMap(values).Suffix(t.returning()).ToSql()
	if err != nil {
		return row, fmt.Errorf("build insert %s: %w", t.name, err)
	}
	if err := pgxscan.Get(ctx, t.db, &row, query, args...); err != nil {
		return row, mapError(err, t.entity, uuid.Nil)
	}
	return row, nil
}

// update applies values to the row and returns it. An empty change set
// returns the current row.
func (t *table[T]) update(ctx context.Context, id uuid.UUID, values map[string]any) (T, error) {
	if len(values) == 0 {
		return t.get(ctx, id)
	}
	var row T
	query, args, err := psql.Update(t.name).SetMap(values).Where(squirrel.Eq{"id": id}).Suffix(t.returning()).ToSql()
	if err != nil {
		return row, fmt.Errorf("build update %s: %w", t.name, err)
	}
	if err := pgxscan.Get(ctx, t.db, &row, query, args...); err != nil {
		return row, mapError(err, t.entity, id)
	}
	return row, nil
}

func (t *table[T]) deleteWhere(ctx context.Context, q execer, pred squirrel.Eq) (int64, error) {
	query, args, err := psql.Delete(t.name).Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete %s: %w", t.name, err)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, t.entity, uuid.Nil)
	}
	return tag.RowsAffected(), nil
}

func (t *table[T]) deleteByID(ctx context.Context, q execer, id uuid.UUID) error {
	n, err := t.deleteWhere(ctx, q, squirrel.Eq{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", t.entity, id, domain.ErrNotFound)
	}
	return nil
}

// inTx runs fn inside a transaction, committing on success.
func inTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func queryable(cols ...string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

// mapError converts pgx/pgconn errors to domain errors.
// context.DeadlineExceeded and context.Canceled pass through.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514", "23502": // check_violation, not_null_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
