package daos

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// isoMillis is the UTC millisecond timestamp layout of seeded posts.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Bootstrap creates the tables if needed and seeds empty ones. Safe to run on
// every start.
func (dao *Database) Bootstrap(ctx context.Context) error {
	if err := dao.Migrate(ctx); err != nil {
		return err
	}
	return dao.Seed(ctx, time.Now())
}

// Migrate applies the embedded migrations.
func (dao *Database) Migrate(ctx context.Context) (err error) {
	m, err := dao.migrator()
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	version, _, _ := m.Version()
	dao.log.Debug("migrations applied", slog.Uint64("version", uint64(version)))

	return nil
}

// migrator builds a migrate instance over the embedded migrations. Closing
// it closes its own database handle, never dao.Client.
func (dao *Database) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	client, err := sql.Open(dao.driver, dao.dsn)
	if err != nil {
		return nil, err
	}

	driver, err := sqlite3.WithInstance(client, &sqlite3.Config{})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("migration setup: %w", err)
	}

	return m, nil
}

// SeedRireki is the first post inserted into an empty rireki table.
func SeedRireki(now time.Time) Rireki {
	return Rireki{
		ID:       "admin",
		Name:     "管理者",
		Title:    "最初の投稿",
		Date:     now.UTC().Format(isoMillis),
		Comments: "サンプルコメント",
		Photo:    BlankPhoto,
	}
}

// SeedMember is the account inserted into an empty member table.
func SeedMember() Member {
	return Member{
		ID:   "admin",
		Name: "管理者",
		Pass: "admin",
	}
}

// Seed inserts one seed row into each known table that has no rows.
func (dao *Database) Seed(ctx context.Context, now time.Time) error {
	seeds := []struct {
		table  string
		values url.Values
	}{
		{TableRireki, SeedRireki(now).Values()},
		{TableMember, SeedMember().Values()},
	}

	for _, seed := range seeds {
		var count int64
		err := dao.Client.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(seed.table))).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking %s: %w", seed.table, err)
		}
		if count > 0 {
			continue
		}

		key, err := dao.Insert(ctx, seed.table, seed.values)
		if err != nil {
			return fmt.Errorf("seeding %s: %w", seed.table, err)
		}

		dao.log.Info("seed row inserted", slog.String("table", seed.table), slog.Int64("key", key))
	}

	return nil
}
