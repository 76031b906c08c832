package daos

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joe-ervin05/myblog/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Row is one result row keyed by column name. Values are int64, float64,
// string or nil.
type Row map[string]any

// Database is the Row Store: a pooled connection to the blog database.
type Database struct {
	Client *sql.DB // SQL database connection

	driver string
	dsn    string
	log    *slog.Logger
}

// Open connects to the database described by cfg. A DB_URL selects the
// libsql driver; otherwise the local SQLite file at DB_PATH is used.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*Database, error) {
	driver, dsn := dataSource(cfg)

	client, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := client.PingContext(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		Client: client,
		driver: driver,
		dsn:    dsn,
		log:    log.With(slog.String("component", "daos")),
	}, nil
}

func dataSource(cfg config.Config) (string, string) {
	if cfg.DBURL != "" {
		return "libsql", cfg.DBURL
	}
	return "sqlite3", "file:" + cfg.DBPath + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

// Close releases the connection pool. Call on shutdown.
func (dao *Database) Close() error {
	return dao.Client.Close()
}

// QueryRows executes a query and returns every result row as a Row.
func (dao *Database) QueryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := dao.Client.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []Row{}

	for rows.Next() {
		// scans into any so values keep whatever storage class SQLite holds
		scanArgs := make([]any, len(names))
		for i := range scanArgs {
			scanArgs[i] = new(any)
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}

		row := make(Row, len(names))
		for i, name := range names {
			row[name] = normalize(*(scanArgs[i].(*any)))
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case int:
		return int64(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

// quoteIdent quotes a table or column name for interpolation into SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
