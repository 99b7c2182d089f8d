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

package db

import (
	"fmt"

	"crawshaw.io/sqlite"

	"github.com/waveskit/waveskit/waves"
)

// SelectTransactionHeight returns the height saved for the transaction id.
// ok is false if id was never saved.
func SelectTransactionHeight(conn *sqlite.Conn,
	id waves.Digest) (height int64, ok bool, err error) {
	stmt := conn.Prep(`SELECT "height" FROM "transaction" WHERE "id" = ?;`)
	defer stmt.Reset()
	stmt.BindBytes(1, id[:])
	hasRow, err := stmt.Step()
	if err != nil || !hasRow {
		return 0, false, err
	}
	return stmt.ColumnInt64(0), true, nil
}

// SaveTransaction saves or replaces the height of the transaction id.
func SaveTransaction(conn *sqlite.Conn, id waves.Digest, height int64) error {
	stmt := conn.Prep(`INSERT OR REPLACE INTO "transaction"
                ("id", "height") VALUES (?, ?);`)
	stmt.BindBytes(1, id[:])
	stmt.BindInt64(2, height)
	_, err := stmt.Step()
	return err
}

// CountTransactions returns the number of saved transactions.
func CountTransactions(conn *sqlite.Conn) (int64, error) {
	stmt := conn.Prep(`SELECT count(*) FROM "transaction";`)
	defer stmt.Reset()
	if _, err := stmt.Step(); err != nil {
		return 0, err
	}
	return stmt.ColumnInt64(0), nil
}

// SelectSignature returns the block signature saved at height, or nil.
func SelectSignature(conn *sqlite.Conn, height int64) ([]byte, error) {
	stmt := conn.Prep(`SELECT "signature" FROM "signature" WHERE "height" = ?;`)
	defer stmt.Reset()
	stmt.BindInt64(1, height)
	hasRow, err := stmt.Step()
	if err != nil || !hasRow {
		return nil, err
	}
	sig := make([]byte, stmt.ColumnLen(0))
	if stmt.ColumnBytes(0, sig) != len(sig) {
		return nil, fmt.Errorf("signature at %v: short read", height)
	}
	return sig, nil
}

// SaveSignature saves or replaces the block signature at height.
func SaveSignature(conn *sqlite.Conn, height int64, sig []byte) error {
	stmt := conn.Prep(`INSERT OR REPLACE INTO "signature"
                ("height", "signature") VALUES (?, ?);`)
	stmt.BindInt64(1, height)
	stmt.BindBytes(2, sig)
	_, err := stmt.Step()
	return err
}
