// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

// Package db stores the state of the transaction monitor in sqlite: the
// height at which each transaction of the watched address was seen and the
// signature of each block it walked.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"

	_log "github.com/waveskit/waveskit/internal/log"
)

// ApplicationID identifies a pairs database ("WAVE").
const ApplicationID int32 = 0x57415645

const baseFlags = sqlite.SQLITE_OPEN_WAL |
	sqlite.SQLITE_OPEN_URI |
	sqlite.SQLITE_OPEN_NOMUTEX

var log = _log.New("pkg", "db")

// Open opens the pairs database at dbURI, creating or migrating it as
// needed. The Interrupt on the Conn is set to ctx.Done().
func Open(ctx context.Context, dbURI string) (conn *sqlite.Conn, err error) {
	flags := baseFlags | sqlite.SQLITE_OPEN_READWRITE | sqlite.SQLITE_OPEN_CREATE
	if conn, err = sqlite.OpenConn(dbURI, flags); err != nil {
		return nil, fmt.Errorf("sqlite.OpenConn(%q, %x): %w", dbURI, flags, err)
	}
	defer func() {
		if err != nil {
			if err := conn.Close(); err != nil {
				log.Error(err)
			}
		}
	}()

	conn.SetInterrupt(ctx.Done())

	if err = checkOrSetApplicationID(conn); err != nil {
		return
	}
	if err = applyMigrations(conn); err != nil {
		return
	}
	return conn, nil
}

// Close checkpoints the WAL and closes conn.
func Close(conn *sqlite.Conn) error {
	conn.SetInterrupt(nil)
	if err := sqlitex.ExecScript(conn, `PRAGMA wal_checkpoint;`); err != nil {
		return err
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("conn.Close(): %w", err)
	}
	return nil
}

// Path returns the database file within dir, creating dir if needed.
func Path(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "pairs"+dbFileExtension), nil
}

const dbFileExtension = ".sqlite3"

func checkOrSetApplicationID(conn *sqlite.Conn) error {
	var appID int32
	if err := sqlitex.ExecTransient(conn, `PRAGMA "main"."application_id";`,
		func(stmt *sqlite.Stmt) error {
			appID = stmt.ColumnInt32(0)
			return nil
		}); err != nil {
		return err
	}
	switch appID {
	case 0: // ApplicationID not set
		return sqlitex.ExecTransient(conn,
			fmt.Sprintf(`PRAGMA "main"."application_id" = %v;`,
				ApplicationID),
			nil)
	case ApplicationID:
		return nil
	}
	return fmt.Errorf("invalid database: application_id")
}
