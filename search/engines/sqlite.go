package engines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
)

// sqlite is the in-process backend: a local FTS5 index of wiki pages that
// the engine queries directly, with no HTTP round trip.
type sqlite struct {
	name        string
	articlePath string
	db          *sql.DB
}

var (
	_ search.Engine = &sqlite{}
	_ Indexer       = &sqlite{}
)

// Indexer is the write side of a local search backend.
// The "index" subcommand feeds pages through it.
type Indexer interface {
	// UpdatePage inserts or replaces one page in the index.
	UpdatePage(ctx context.Context, title string, namespace int, text string) error

	// DeletePage removes one page from the index.
	// Deleting a page that was never indexed is not an error.
	DeletePage(ctx context.Context, title string, namespace int) error
}

// Schema statements, applied in order on startup.
// The FTS table mirrors pages through triggers so the write path stays
// ordinary SQL.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		namespace INTEGER NOT NULL DEFAULT 0,
		text TEXT NOT NULL,
		size INTEGER NOT NULL,
		wordcount INTEGER NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(namespace, title)
	)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
		title, text,
		content='pages', content_rowid='id',
		tokenize='porter unicode61'
	)`,
	`CREATE TRIGGER IF NOT EXISTS pages_ai AFTER INSERT ON pages BEGIN
		INSERT INTO pages_fts(rowid, title, text) VALUES (new.id, new.title, new.text);
	END`,
	`CREATE TRIGGER IF NOT EXISTS pages_ad AFTER DELETE ON pages BEGIN
		INSERT INTO pages_fts(pages_fts, rowid, title, text) VALUES ('delete', old.id, old.title, old.text);
	END`,
	`CREATE TRIGGER IF NOT EXISTS pages_au AFTER UPDATE ON pages BEGIN
		INSERT INTO pages_fts(pages_fts, rowid, title, text) VALUES ('delete', old.id, old.title, old.text);
		INSERT INTO pages_fts(rowid, title, text) VALUES (new.id, new.title, new.text);
	END`,
}

func init() {
	// Default is false because this requires configuration.
	search.Add("sqlite", false, func(config search.Config) (search.Engine, error) {
		var path string
		var ok bool

		if config.Extra == nil {
			return nil, errors.New("no extra configuration despite being required")
		}

		if _, ok = config.Extra["path"]; !ok {
			return nil, errors.New("path not specified")
		}

		if path, ok = config.Extra["path"].(string); !ok {
			return nil, errors.New("path is not a string")
		}

		ap, _ := config.Extra["article_path"].(string)

		db, err := sql.Open("sqlite3", path)
		if err != nil {
			return nil, fmt.Errorf("opening index: %w", err)
		}

		// Performance pragmas; same set ergs-style FTS databases use.
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 30000",
			"PRAGMA temp_store = memory",
		}
		for _, pragma := range pragmas {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
			}
		}

		for _, stmt := range sqliteSchema {
			if _, err := db.Exec(stmt); err != nil {
				db.Close()
				return nil, fmt.Errorf("initializing schema: %w", err)
			}
		}

		return &sqlite{
			name:        config.Name,
			articlePath: ap,
			db:          db,
		}, nil
	})
}

func (s *sqlite) Search(ctx context.Context, query search.Query) (*search.ResultSet, error) {
	match := escapeFTSQuery(query.Text)
	if match == "" {
		return &search.ResultSet{}, nil
	}

	if query.What == "title" {
		match = "title : (" + match + ")"
	}

	// Namespace filter; an empty list means the main namespace.
	namespaces := query.Namespaces
	if len(namespaces) == 0 {
		namespaces = []int{0}
	}
	nsMarks := make([]string, len(namespaces))
	args := []any{match}
	for i, ns := range namespaces {
		nsMarks[i] = "?"
		args = append(args, ns)
	}
	nsFilter := "p.namespace IN (" + strings.Join(nsMarks, ", ") + ")"

	order := "bm25(pages_fts)"
	switch query.Sort {
	case "last_edit_desc":
		order = "p.updated_at DESC"
	case "last_edit_asc":
		order = "p.updated_at ASC"
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	// The snippet() helper highlights matched terms for us; asking for
	// wikitext bold markers directly saves a sanitizing pass.
	q := `
		SELECT p.title, p.namespace, p.size, p.wordcount, p.updated_at,
		       snippet(pages_fts, 1, '''''''', '''''''', ' … ', 24)
		FROM pages p
		JOIN pages_fts ON p.id = pages_fts.rowid
		WHERE pages_fts MATCH ?
		  AND ` + nsFilter + `
		ORDER BY ` + order + `
		LIMIT ? OFFSET ?`
	args = append(args, limit, query.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	set := &search.ResultSet{}
	for rows.Next() {
		var r search.Result
		var updatedAt string

		if err := rows.Scan(&r.Title, &r.Namespace, &r.Size, &r.WordCount, &updatedAt, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			r.Timestamp = ts
		}
		r.URL = s.pageURL(r.Title)

		set.Hits = append(set.Hits, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Total hit count, ignoring limit and offset.
	countQ := `
		SELECT COUNT(*)
		FROM pages p
		JOIN pages_fts ON p.id = pages_fts.rowid
		WHERE pages_fts MATCH ?
		  AND ` + nsFilter
	countArgs := args[:1+len(namespaces)]
	if err := s.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&set.Total); err != nil {
		return nil, fmt.Errorf("counting hits: %w", err)
	}

	return set, nil
}

// UpdatePage inserts or replaces one page in the index.
func (s *sqlite) UpdatePage(ctx context.Context, title string, namespace int, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (title, namespace, text, size, wordcount, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, title) DO UPDATE SET
			text = excluded.text,
			size = excluded.size,
			wordcount = excluded.wordcount,
			updated_at = excluded.updated_at`,
		title, namespace, text, len(text), len(strings.Fields(text)),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("indexing page %q: %w", title, err)
	}
	return nil
}

// DeletePage removes one page from the index.
func (s *sqlite) DeletePage(ctx context.Context, title string, namespace int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE namespace = ? AND title = ?`, namespace, title)
	if err != nil {
		return fmt.Errorf("deleting page %q: %w", title, err)
	}
	return nil
}

// Ping checks to see if the index is reachable.
func (s *sqlite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *sqlite) Close() error {
	return s.db.Close()
}

func (s *sqlite) pageURL(title string) string {
	if s.articlePath == "" {
		return ""
	}

	t := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	if strings.Contains(s.articlePath, "$1") {
		return strings.Replace(s.articlePath, "$1", t, 1)
	}
	return s.articlePath + t
}

// escapeFTSQuery quotes every token of the query so that FTS5 operator
// characters coming from page authors can't break the MATCH expression.
func escapeFTSQuery(query string) string {
	fields := strings.Fields(query)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}
