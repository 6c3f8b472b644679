package database

import (
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"

	"github.com/epihealth/epi-app/conf"
	"github.com/epihealth/epi-app/epi/utils"
	"github.com/epihealth/epi-app/log"
)

// Variable substitution to support testing.
var LogFatal = log.API.Fatal

// GetDbConnection opens the connection pool against DATABASE_URL and verifies
// it with a bounded retry. On failure the process exits; nothing downstream
// can work without a database.
func GetDbConnection() *sql.DB {
	databaseURL := conf.GetEnv("DATABASE_URL")
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		LogFatal(err)
	}

	db.SetMaxOpenConns(utils.GetEnvInt("EPI_DB_MAX_OPEN_CONNS", 40))
	db.SetMaxIdleConns(utils.GetEnvInt("EPI_DB_MAX_IDLE_CONNS", 10))
	db.SetConnMaxLifetime(time.Duration(utils.GetEnvInt("EPI_DB_CONN_MAX_LIFETIME_MIN", 5)) * time.Minute)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Duration(utils.GetEnvInt("EPI_DB_PING_TIMEOUT_SEC", 15)) * time.Second
	if err := backoff.Retry(db.Ping, b); err != nil {
		LogFatal(err)
	}

	return db
}
