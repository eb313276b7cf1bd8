//go:build testutil
// +build testutil

// Package testdb поднимает Postgres в контейнере для интеграционных тестов.
// Один контейнер на тестовый бинарник; Reset очищает таблицы между тестами.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Spok95/school-discipline/internal/db"
)

var tables = []string{"weekly_rankings", "records", "user_claims", "users", "students", "classes", "rules"}

type DBHandle struct {
	DB    *sql.DB
	Store *db.Store
	URI   string
}

var (
	once   sync.Once
	shared *DBHandle
	errRun error
)

// Start returns the shared database with every table emptied. The container is
// removed by the testcontainers reaper when the test binary exits.
func Start(ctx context.Context) (*DBHandle, error) {
	once.Do(func() { shared, errRun = run(ctx) })
	if errRun != nil {
		return nil, errRun
	}
	return shared, shared.Reset(ctx)
}

func (h *DBHandle) Reset(ctx context.Context) error {
	q := "TRUNCATE " + strings.Join(tables, ", ") + " CASCADE"
	if _, err := h.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func run(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:17-alpine"),
		postgres.WithDatabase("discipline"),
		postgres.WithUsername("discipline"),
		postgres.WithPassword("discipline"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres container: %w", err)
	}
	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(context.Background())
		return nil, err
	}

	// тесты ходят через lib/pq, сервер через pgx: mapErr и массивы проверяются на обоих
	database, err := sql.Open("postgres", uri)
	if err == nil {
		err = database.PingContext(ctx)
	}
	if err != nil {
		_ = pg.Terminate(context.Background())
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := db.Migrate(ctx, database); err != nil {
		_ = database.Close()
		_ = pg.Terminate(context.Background())
		return nil, err
	}
	return &DBHandle{DB: database, Store: db.NewStore(database), URI: uri}, nil
}
