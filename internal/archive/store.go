// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps every generated ContentEnvelope in a local SQLite
// database with a full-text index over titles and bodies.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/content-engine/pkg/types"
)

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("envelope not found")

const defaultLimit = 20

// timeLayout has a fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages the archive database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry summarizes one archived envelope.
type Entry struct {
	ID               string    `json:"id" yaml:"id"`
	Title            string    `json:"title" yaml:"title"`
	Topic            string    `json:"topic" yaml:"topic"`
	WordCount        int       `json:"word_count" yaml:"word_count"`
	CredibilityScore float64   `json:"credibility_score" yaml:"credibility_score"`
	EngagementScore  float64   `json:"engagement_score" yaml:"engagement_score"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`

	// Snippet is the matching excerpt; set by Search only.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// NewStore opens or creates the database at cfg.Path, creating parent
// directories and the schema as needed.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultEngineConfig().Archive.Path
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS envelopes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			topic TEXT,
			body TEXT NOT NULL,
			envelope TEXT NOT NULL,
			word_count INTEGER,
			credibility REAL,
			engagement REAL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_envelopes_created ON envelopes(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='envelopes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	// FTS4 ships in the default go-sqlite3 build; FTS5 needs a build tag.
	ftsStatements := []string{
		`CREATE VIRTUAL TABLE envelopes_fts USING fts4(content="envelopes", title, body)`,
		`CREATE TRIGGER envelopes_ai AFTER INSERT ON envelopes BEGIN
			INSERT INTO envelopes_fts(docid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
		`CREATE TRIGGER envelopes_bd BEFORE DELETE ON envelopes BEGIN
			DELETE FROM envelopes_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER envelopes_bu BEFORE UPDATE ON envelopes BEGIN
			DELETE FROM envelopes_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER envelopes_au AFTER UPDATE ON envelopes BEGIN
			INSERT INTO envelopes_fts(docid, title, body) VALUES (new.rowid, new.title, new.body);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Save stores env under its request_id metadata value, or a fresh UUID when
// it has none, and returns the ID. Saving the same ID again replaces the entry.
func (s *Store) Save(ctx context.Context, env *types.ContentEnvelope) (string, error) {
	id, _ := env.Metadata["request_id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	topic, _ := env.Metadata["topic"].(string)

	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshaling envelope: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO envelopes (id, title, topic, body, envelope, word_count, credibility, engagement, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, topic=excluded.topic, body=excluded.body,
			envelope=excluded.envelope, word_count=excluded.word_count,
			credibility=excluded.credibility, engagement=excluded.engagement,
			created_at=excluded.created_at`,
		id, env.Title, topic, env.Content, string(data),
		env.Stats.WordCount, env.Stats.CredibilityScore, env.Stats.EngagementScore,
		s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("saving envelope %s: %w", id, err)
	}
	return id, nil
}

// Get returns the archived envelope with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*types.ContentEnvelope, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT envelope FROM envelopes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up envelope: %w", err)
	}
	var env types.ContentEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, fmt.Errorf("decoding envelope %s: %w", id, err)
	}
	return &env, nil
}

// List returns the newest entries first. limit 0 uses the default of 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, topic, word_count, credibility, engagement, created_at, ''
		 FROM envelopes
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	return scanEntries(rows)
}

// Search runs a full-text query over titles and bodies, newest first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.title, e.topic, e.word_count, e.credibility, e.engagement, e.created_at,
			snippet(envelopes_fts, '[', ']', '...', -1, 12)
		 FROM envelopes_fts
		 JOIN envelopes e ON e.rowid = envelopes_fts.docid
		 WHERE envelopes_fts MATCH ?
		 ORDER BY e.created_at DESC, e.rowid DESC
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching archive: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			topic   sql.NullString
			created string
		)
		if err := rows.Scan(&e.ID, &e.Title, &topic, &e.WordCount,
			&e.CredibilityScore, &e.EngagementScore, &created, &e.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Topic = topic.String
		if t, err := time.Parse(timeLayout, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
