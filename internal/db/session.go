package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Session is a request-scoped handle on a single pooled connection. Every
// repository call made through a Session runs on that connection until
// Close returns it to the pool.
type Session struct {
	conn *sql.Conn
	now  func() time.Time

	closeOnce sync.Once
	closeErr  error
}

// Session acquires a dedicated connection. Callers must Close it on every
// exit path; WithSession does that for them.
func (db *DB) Session(ctx context.Context) (*Session, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, storageErr("acquire session", err)
	}
	now := db.Now
	if now == nil {
		now = time.Now
	}
	return &Session{conn: conn, now: now}, nil
}

// WithSession acquires a session, runs fn and releases the session before
// returning, whether or not fn failed.
func (db *DB) WithSession(ctx context.Context, fn func(s *Session) error) (err error) {
	s, err := db.Session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// Close releases the underlying connection. Repeated calls are no-ops.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			s.closeErr = storageErr("release session", err)
		}
	})
	return s.closeErr
}

func (s *Session) exec() executor {
	return s.conn
}
