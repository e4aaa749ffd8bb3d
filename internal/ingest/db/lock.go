package db

import (
	"context"
	"database/sql"
	"hash/fnv"

	"github.com/jmoiron/sqlx"
)

// Lock is a session-scoped advisory lock held on a dedicated connection.
type Lock struct {
	conn *sql.Conn
	key  string
	kind string
}

// AcquireLock takes a named advisory lock so two import runs cannot interleave.
// It returns (nil, false, nil) when another session holds the lock. SQLite has no
// advisory locks; its single-writer file lock already serializes runs, so a no-op
// lock is returned.
func AcquireLock(ctx context.Context, db *sqlx.DB, key string, timeoutSeconds int) (*Lock, bool, error) {
	if db.DriverName() == SQLDriverSQLite {
		return &Lock{key: key, kind: SQLDriverSQLite}, true, nil
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, false, err
	}

	var res sql.NullInt64
	switch db.DriverName() {
	case SQLDriverMySQL:
		err = conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", key, timeoutSeconds).Scan(&res)
	case SQLDriverPostgres:
		var ok bool
		err = conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID(key)).Scan(&ok)
		res = sql.NullInt64{Valid: true}
		if ok {
			res.Int64 = 1
		}
	}
	if err != nil {
		_ = conn.Close()
		return nil, false, err
	}
	if !res.Valid || res.Int64 != 1 {
		_ = conn.Close()
		return nil, false, nil
	}
	return &Lock{conn: conn, key: key, kind: db.DriverName()}, true, nil
}

// Release drops the lock and returns the connection to the pool.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.conn == nil {
		return nil
	}
	var err error
	switch l.kind {
	case SQLDriverMySQL:
		_, err = l.conn.ExecContext(ctx, "SELECT RELEASE_LOCK(?)", l.key)
	case SQLDriverPostgres:
		_, err = l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lockID(l.key))
	}
	if cerr := l.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func lockID(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}
