package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/akylbek/payment-system/payment-api/internal/config"
)

type dialect struct {
	driverName string
	// positional rewrites ? placeholders into $1, $2, ...
	positional bool
	schema     []string
}

const statusCheck = `status IN ('PENDING', 'CREATED', 'PAID', 'CHARGEBACK', 'REFUSED', 'ERROR', 'REFUNDED')`

const methodCheck = `payment_method IN ('VISA', 'MASTERCARD', 'IDEAL', 'PAYPAL', 'GIROPAY')`

var dialects = map[string]dialect{
	config.DriverPostgres: {
		driverName: "postgres",
		positional: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS payments (
				id BIGSERIAL PRIMARY KEY,
				transaction_id VARCHAR(120) NOT NULL UNIQUE,
				amount TEXT NOT NULL,
				currency VARCHAR(3) NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (` + statusCheck + `),
				payment_method VARCHAR(20) NOT NULL CHECK (` + methodCheck + `),
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	config.DriverSQLite: {
		driverName: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS payments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				transaction_id VARCHAR(120) NOT NULL UNIQUE,
				amount TEXT NOT NULL,
				currency VARCHAR(3) NOT NULL,
				status VARCHAR(20) NOT NULL CHECK (` + statusCheck + `),
				payment_method VARCHAR(20) NOT NULL CHECK (` + methodCheck + `),
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
}

func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Open connects to the store selected by driver and verifies the connection.
func Open(ctx context.Context, driver, dsn string, maxOpenConns int) (*sql.DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		// One connection keeps ":memory:" databases shared and serializes
		// writers the way SQLite expects.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns / 2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}
