package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/brioche-cafe/api/internal/config"
	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/router"
	"github.com/brioche-cafe/api/internal/tracker"
	"github.com/brioche-cafe/api/internal/ws"
	"github.com/brioche-cafe/api/migrations"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	// The poller catches status changes made outside this process (another
	// replica, a manual DB fix) and pushes them to connected sockets.
	trackerCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	t := tracker.New(
		statusFetcher{queries: queries},
		func(ch tracker.StatusChange) { publishStatusChange(hub, ch) },
		pollInterval(cfg.OrderPollSecs),
	)
	go t.Run(trackerCtx)

	r := router.New(cfg, queries, pool, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

func runMigrations(databaseURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func pollInterval(secs string) time.Duration {
	n, err := strconv.Atoi(secs)
	if err != nil || n < 1 {
		n = 3
	}
	return time.Duration(n) * time.Second
}

// statusFetcher adapts the generated query type to what the tracker needs.
type statusFetcher struct {
	queries *database.Queries
}

func (f statusFetcher) ListOrderStatusChangesSince(ctx context.Context, since time.Time) ([]tracker.StatusChange, error) {
	rows, err := f.queries.ListOrderStatusUpdatesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	changes := make([]tracker.StatusChange, len(rows))
	for i, row := range rows {
		changes[i] = tracker.StatusChange{
			OrderID:     row.ID,
			OrderNumber: row.OrderNumber,
			Status:      row.Status,
			UpdatedAt:   row.UpdatedAt,
		}
	}
	return changes, nil
}

func publishStatusChange(hub *ws.Hub, ch tracker.StatusChange) {
	payload, err := json.Marshal(struct {
		ID          uuid.UUID `json:"id"`
		OrderNumber string    `json:"order_number"`
		Status      string    `json:"status"`
		UpdatedAt   time.Time `json:"updated_at"`
	}{ch.OrderID, ch.OrderNumber, ch.Status, ch.UpdatedAt})
	if err != nil {
		log.Printf("ERROR: marshal status event: %v", err)
		return
	}
	hub.BroadcastOrderEvent(ch.OrderID, ws.Event{Type: "order.status", Payload: payload})
}
