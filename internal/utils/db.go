package utils

import (
	"database/sql"
	"net/url"

	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv assembles a DSN from PG_HOST, PG_PORT, PG_USER,
// PG_PASSWORD, PG_DB and PG_SSLMODE. PG_DSN wins when set.
func BuildPostgresDSNFromEnv() string {
	if dsn := EnvString("PG_DSN", ""); dsn != "" {
		return dsn
	}
	host := EnvString("PG_HOST", "localhost")
	port := EnvString("PG_PORT", "5432")
	user := EnvString("PG_USER", "postgres")
	pass := EnvString("PG_PASSWORD", "")
	db := EnvString("PG_DB", "experts")
	ssl := EnvString("PG_SSLMODE", "disable")
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(user),
		Host:     host + ":" + port,
		Path:     "/" + db,
		RawQuery: "sslmode=" + url.QueryEscape(ssl),
	}
	if pass != "" {
		u.User = url.UserPassword(user, pass)
	}
	return u.String()
}

// OpenPostgresFromEnv opens the mirror database. The pool is small: the
// service reads whole collections a handful of times per TTL window.
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(EnvInt("PG_MAX_OPEN_CONNS", 10))
	db.SetMaxIdleConns(EnvInt("PG_MAX_IDLE_CONNS", 5))
	return db, nil
}
