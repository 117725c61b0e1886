package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// nopDB satisfies TxBeginner for tests that never reach the database.
type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("nopDB: no database")
}

func (nopDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("nopDB: no database")
}

func (nopDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return errRow{}
}

func (nopDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("nopDB: no database")
}

type errRow struct{}

func (errRow) Scan(...any) error { return errors.New("nopDB: no database") }

// recordingJobs captures inserted job args.
type recordingJobs struct {
	mu   sync.Mutex
	args []river.JobArgs
	err  error
}

func (r *recordingJobs) InsertTx(_ context.Context, _ pgx.Tx, args river.JobArgs, _ *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.args = append(r.args, args)
	return &rivertype.JobInsertResult{}, nil
}

func (r *recordingJobs) inserted() []river.JobArgs {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]river.JobArgs(nil), r.args...)
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
