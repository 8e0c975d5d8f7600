package state

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/jengamon/lexi/pkg/core"
)

var errNotOpened = errors.New("database not opened")

// Snapshot describes one recorded version of a project.
type Snapshot struct {
	ID             string    `json:"id"`
	Project        string    `json:"project"`
	FamilyID       uuid.UUID `json:"family_id"`
	Version        string    `json:"version"`
	TakenAt        time.Time `json:"taken_at"`
	Languages      int       `json:"languages"`
	Protolanguages int       `json:"protolanguages"`
	Note           string    `json:"note,omitempty"`
}

// SQLiteStore keeps a history of project snapshots in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore creates a new history store instance. A nil logger
// discards output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger, now: time.Now}
}

// NewSQLiteStoreWithDB wraps an existing connection. Migrations are not run.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens the history database and runs migrations.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping history database: %w", err)
	}

	s.db = db
	s.path = path
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save records a snapshot of g under project. It satisfies the autosave
// Saver interface.
func (s *SQLiteStore) Save(ctx context.Context, project string, g *core.LanguageGroup) error {
	_, err := s.Record(ctx, project, g, "")
	return err
}

// Record stores g as a new snapshot of project.
func (s *SQLiteStore) Record(ctx context.Context, project string, g *core.LanguageGroup, note string) (*Snapshot, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if project == "" {
		return nil, fmt.Errorf("record snapshot: %w", core.ErrEmptyName)
	}

	var body bytes.Buffer
	if err := core.Encode(&body, g); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:             uuid.New().String(),
		Project:        project,
		FamilyID:       g.FamilyID,
		Version:        g.Version,
		TakenAt:        s.now().UTC(),
		Languages:      len(g.Langs),
		Protolanguages: len(g.Protolangs),
		Note:           note,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, project, family_id, version, taken_at, languages, protolanguages, body, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Project, snap.FamilyID.String(), snap.Version, snap.TakenAt.UnixNano(),
		snap.Languages, snap.Protolanguages, body.String(), snap.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	s.logger.Debug("recorded snapshot", "project", project, "id", snap.ID)
	return snap, nil
}

const snapshotColumns = `id, project, family_id, version, taken_at, languages, protolanguages, note`

func scanSnapshot(scan func(dest ...any) error) (*Snapshot, error) {
	var (
		snap     Snapshot
		familyID string
		takenAt  int64
	)
	if err := scan(&snap.ID, &snap.Project, &familyID, &snap.Version, &takenAt,
		&snap.Languages, &snap.Protolanguages, &snap.Note); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(familyID)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: bad family id: %w", snap.ID, err)
	}
	snap.FamilyID = id
	snap.TakenAt = time.Unix(0, takenAt).UTC()
	return &snap, nil
}

// List returns snapshots newest first. An empty project lists every
// project; limit <= 0 means no limit.
func (s *SQLiteStore) List(ctx context.Context, project string, limit int) ([]Snapshot, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + snapshotColumns + ` FROM snapshots`)
	if project != "" {
		query.WriteString(` WHERE project = ?`)
		args = append(args, project)
	}
	query.WriteString(` ORDER BY taken_at DESC, rowid DESC`)
	if limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return out, nil
}

// Get loads one snapshot and its decoded language group.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, *core.LanguageGroup, error) {
	if s.db == nil {
		return nil, nil, errNotOpened
	}

	var body string
	snap, err := scanSnapshot(func(dest ...any) error {
		return s.db.QueryRowContext(ctx,
			`SELECT `+snapshotColumns+`, body FROM snapshots WHERE id = ?`, id,
		).Scan(append(dest, &body)...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("snapshot %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	g, err := core.Decode(strings.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, g, nil
}

// Prune deletes all but the newest keep snapshots of project and returns
// how many rows were removed.
func (s *SQLiteStore) Prune(ctx context.Context, project string, keep int) (int64, error) {
	if s.db == nil {
		return 0, errNotOpened
	}
	if keep < 0 {
		keep = 0
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE project = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE project = ? ORDER BY taken_at DESC, rowid DESC LIMIT ?
		)`,
		project, project, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	if n > 0 {
		s.logger.Info("pruned snapshots", "project", project, "removed", n)
	}
	return n, nil
}
