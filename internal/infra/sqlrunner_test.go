package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type fakeQuerier struct {
	lastSQL string
	calls   int
	tag     pgconn.CommandTag
	err     error
	row     pgx.Row
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.calls++
	f.lastSQL = sql
	return f.tag, f.err
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.calls++
	f.lastSQL = sql
	return f.row
}

func (f *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.calls++
	f.lastSQL = sql
	return nil, f.err
}

type scanRow func(dest ...any) error

func (s scanRow) Scan(dest ...any) error { return s(dest...) }

const testQuery = `--sql 4cab956e-7c05-4aec-b346-02f657c45bdd
select 1;`

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		marker  string
		wantErr bool
	}{
		{name: "valid", query: testQuery, marker: "4cab956e-7c05-4aec-b346-02f657c45bdd"},
		{name: "leading whitespace", query: "\n  " + testQuery, marker: "4cab956e-7c05-4aec-b346-02f657c45bdd"},
		{name: "missing", query: "select 1;", wantErr: true},
		{name: "not a uuid", query: "--sql abc\nselect 1;", wantErr: true},
		{name: "empty", query: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, body, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if marker != tc.marker || strings.Contains(body, "--sql") {
				t.Fatalf("marker=%q body=%q", marker, body)
			}
		})
	}
}

func TestMarkedExecStripsMarkerAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 3")}

	tag, err := markedExec(context.Background(), q, logger, testQuery)
	if err != nil {
		t.Fatalf("markedExec: %v", err)
	}
	if tag.RowsAffected() != 3 {
		t.Fatalf("rows = %d", tag.RowsAffected())
	}
	if strings.TrimSpace(q.lastSQL) != "select 1;" {
		t.Fatalf("sent %q", q.lastSQL)
	}
	if !strings.Contains(buf.String(), "sql[4cab956e-7c05-4aec-b346-02f657c45bdd] ok rows=3") {
		t.Fatalf("log = %s", buf.String())
	}
}

func TestMarkedExecRefusesUnmarkedQuery(t *testing.T) {
	q := &fakeQuerier{}
	if _, err := markedExec(context.Background(), q, zerolog.Nop(), "delete from token_balances"); err == nil {
		t.Fatalf("expected error for unmarked query")
	}
	if _, err := markedQuery(context.Background(), q, zerolog.Nop(), "select 1"); err == nil {
		t.Fatalf("expected error for unmarked query")
	}
	row := markedQueryRow(context.Background(), q, zerolog.Nop(), "select 1")
	if err := row.Scan(); err == nil {
		t.Fatalf("expected scan error for unmarked query")
	}
	if q.calls != 0 {
		t.Fatalf("unmarked queries reached the database")
	}
}

func TestMarkedQueryRowNoRowsNotLogged(t *testing.T) {
	var buf bytes.Buffer
	q := &fakeQuerier{row: scanRow(func(...any) error { return pgx.ErrNoRows })}

	err := markedQueryRow(context.Background(), q, zerolog.New(&buf), testQuery).Scan()
	if !IsNoRows(err) {
		t.Fatalf("err = %v, want no rows", err)
	}
	if strings.Contains(buf.String(), "scan error") {
		t.Fatalf("no-rows should not be logged as an error: %s", buf.String())
	}
}

func TestMarkedExecPropagatesErrors(t *testing.T) {
	boom := errors.New("connection refused")
	q := &fakeQuerier{err: boom}
	if _, err := markedExec(context.Background(), q, zerolog.Nop(), testQuery); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
