package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// draftStore is a local journal of edits that have not reached the server
// yet. Rows are written when a persist fails or the program exits with
// unsynced state, cleared when a sync succeeds, and offered for replay the
// next time the project is opened. It exists so that no edit is ever lost
// to a crash or a dead network.
type draftStore struct {
	conn *sql.DB
}

// Draft is one journaled slide edit.
type Draft struct {
	ProjectID  string
	SlideIndex int
	Title      *string
	Body       string
	HasText    bool
	Style      *Style
}

func defaultDraftPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "caro-drafts.db"
	}
	return filepath.Join(homeDir, ".local", "share", "caro", "drafts.db")
}

func openDraftStore(dbPath string) (*draftStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	store := &draftStore{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *draftStore) Close() error {
	return s.conn.Close()
}

func (s *draftStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS drafts (
			project_id TEXT NOT NULL,
			slide_index INTEGER NOT NULL,
			title TEXT,
			body TEXT NOT NULL DEFAULT '',
			has_text INTEGER NOT NULL DEFAULT 0,
			style_json TEXT,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (project_id, slide_index)
		)`,
	}
	for _, migration := range migrations {
		if _, err := s.conn.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// SaveText journals an unsynced text edit for one slide.
func (s *draftStore) SaveText(projectID string, slide int, title *string, body string) error {
	_, err := s.conn.Exec(`
		INSERT INTO drafts (project_id, slide_index, title, body, has_text, updated_at)
		VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(project_id, slide_index) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			has_text = 1,
			updated_at = CURRENT_TIMESTAMP`,
		projectID, slide, title, body)
	if err != nil {
		return fmt.Errorf("journal text: %w", err)
	}
	return nil
}

// SaveStyle journals an unsynced style for one slide.
func (s *draftStore) SaveStyle(projectID string, slide int, style Style) error {
	data, err := json.Marshal(style)
	if err != nil {
		return fmt.Errorf("encode style: %w", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO drafts (project_id, slide_index, style_json, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(project_id, slide_index) DO UPDATE SET
			style_json = excluded.style_json,
			updated_at = CURRENT_TIMESTAMP`,
		projectID, slide, string(data))
	if err != nil {
		return fmt.Errorf("journal style: %w", err)
	}
	return nil
}

// Clear removes the journal row for a slide after a successful sync.
func (s *draftStore) Clear(projectID string, slide int) error {
	_, err := s.conn.Exec(
		`DELETE FROM drafts WHERE project_id = ? AND slide_index = ?`,
		projectID, slide)
	if err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// ClearProject removes every journal row for a project.
func (s *draftStore) ClearProject(projectID string) error {
	_, err := s.conn.Exec(`DELETE FROM drafts WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("clear drafts: %w", err)
	}
	return nil
}

// Load returns all journaled edits for a project, keyed by slide index.
func (s *draftStore) Load(projectID string) (map[int]Draft, error) {
	rows, err := s.conn.Query(`
		SELECT slide_index, title, body, has_text, style_json
		FROM drafts WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load drafts: %w", err)
	}
	defer rows.Close()

	drafts := make(map[int]Draft)
	for rows.Next() {
		var d Draft
		var title sql.NullString
		var hasText int
		var styleJSON sql.NullString
		if err := rows.Scan(&d.SlideIndex, &title, &d.Body, &hasText, &styleJSON); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		d.ProjectID = projectID
		d.HasText = hasText != 0
		if title.Valid {
			value := title.String
			d.Title = &value
		}
		if styleJSON.Valid && styleJSON.String != "" {
			var style Style
			if err := json.Unmarshal([]byte(styleJSON.String), &style); err == nil {
				d.Style = &style
			}
		}
		drafts[d.SlideIndex] = d
	}
	return drafts, rows.Err()
}
