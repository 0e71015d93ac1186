// Package store indexes extracted GIF metadata in Postgres so it can be
// searched across many files.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/illusionman1212/gifmetadata-go/pkg/gifmeta"
)

var ErrNoResult = errors.New("store: file record has no parse result")

// FileRecord is everything known about one parsed file.
type FileRecord struct {
	Path   string
	SHA256 string
	Result *gifmeta.Result
	Events []gifmeta.ExtensionEvent
}

// Match is one extension whose text matched a search.
type Match struct {
	Path   string
	Kind   string
	Text   string
	Offset int64
}

type Store struct {
	db *sql.DB
}

// Open connects to dsn and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces any earlier record of the same path and content.
func (s *Store) Save(ctx context.Context, rec FileRecord) (int64, error) {
	if rec.Result == nil {
		return 0, ErrNoResult
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gif_files WHERE sha256=$1 AND path=$2`, rec.SHA256, rec.Path); err != nil {
		return 0, fmt.Errorf("delete previous record: %w", err)
	}

	res := rec.Result
	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO gif_files (path, sha256, version, width, height, images, saw_trailer, bytes_read)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		rec.Path, rec.SHA256, res.Version, int(res.Width), int(res.Height), res.Images, res.SawTrailer, res.BytesRead,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}

	for i, ev := range rec.Events {
		raw := ev.Text
		if raw == nil {
			raw = []byte{} // nil would be sent as NULL
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gif_extensions (file_id, seq, kind, text, raw, byte_offset) VALUES ($1, $2, $3, $4, $5, $6)`,
			id, i, ev.Kind.String(), Printable(ev.Text), raw, ev.Offset,
		); err != nil {
			return 0, fmt.Errorf("insert extension %d: %w", i, err)
		}
	}
	for _, w := range res.Warnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gif_warnings (file_id, kind, byte_offset, detail) VALUES ($1, $2, $3, $4)`,
			id, w.Kind.String(), w.Offset, w.Detail,
		); err != nil {
			return 0, fmt.Errorf("insert warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Search returns extensions whose text contains substr, case-insensitively.
func (s *Store) Search(ctx context.Context, substr string) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.path, e.kind, e.text, e.byte_offset
		 FROM gif_extensions e JOIN gif_files f ON f.id = e.file_id
		 WHERE e.text ILIKE $1
		 ORDER BY f.path, e.seq`,
		"%"+escapeLike(substr)+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Path, &m.Kind, &m.Text, &m.Offset); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Printable converts extension text to something a TEXT column accepts:
// cut at the first NUL, invalid UTF-8 replaced.
func Printable(b []byte) string {
	s := string(b)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.ToValidUTF8(s, "�")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
