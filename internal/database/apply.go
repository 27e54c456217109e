// Package database applies generated import scripts to PostgreSQL.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"invoicemerge/internal/logger"
)

// ErrEmptyScript is returned for a script without any statement text
var ErrEmptyScript = errors.New("empty SQL script")

const connectTimeout = 10 * time.Second

// Statement is the outcome of one statement of an applied script
type Statement struct {
	Command      string // e.g. BEGIN, INSERT, COMMIT
	RowsAffected int64
}

// ApplyScript runs script on the database at dsn through the simple query
// protocol, so the script's own BEGIN/COMMIT delimit the transaction.
func ApplyScript(ctx context.Context, dsn, script string) ([]Statement, error) {
	const op = "ApplyScript"

	log := logger.WithComponent("database")

	if strings.TrimSpace(script) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyScript)
	}

	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	conn, err := pgx.Connect(connCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect: %w", op, err)
	}
	defer conn.Close(context.Background())

	results, err := conn.PgConn().Exec(ctx, script).ReadAll()
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			log.Error().
				Str("code", pgErr.Code).
				Str("detail", pgErr.Detail).
				Str("where", pgErr.Where).
				Msg("Script failed, transaction rolled back")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	statements := make([]Statement, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("%s: %w", op, r.Err)
		}
		statements = append(statements, Statement{
			Command:      commandName(r.CommandTag),
			RowsAffected: r.CommandTag.RowsAffected(),
		})
	}

	log.Info().
		Int("statements", len(statements)).
		Int64("rows_inserted", InsertedRows(statements)).
		Msg("Script applied")

	return statements, nil
}

// InsertedRows sums the rows of all INSERT statements
func InsertedRows(statements []Statement) int64 {
	var n int64
	for _, s := range statements {
		if s.Command == "INSERT" {
			n += s.RowsAffected
		}
	}
	return n
}

func commandName(tag pgconn.CommandTag) string {
	switch {
	case tag.Insert():
		return "INSERT"
	case tag.Update():
		return "UPDATE"
	case tag.Delete():
		return "DELETE"
	case tag.Select():
		return "SELECT"
	}
	name, _, _ := strings.Cut(tag.String(), " ")
	return name
}
