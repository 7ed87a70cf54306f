package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/nearbuy/backend/internal/domain"
)

// SQLiteStore persists saved lists and saved searches in a local sqlite
// database. It implements domain.SavedListRepository and
// domain.SavedSearchRepository.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (creating if needed) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS saved_lists (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS saved_searches (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		shopping_list TEXT NOT NULL,
		search_type   TEXT NOT NULL,
		results       TEXT NOT NULL,
		created_at    DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_saved_searches_created ON saved_searches(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveList inserts or replaces a saved list
func (s *SQLiteStore) SaveList(ctx context.Context, list domain.SavedList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO saved_lists (id, name, content, created_at) VALUES (?,?,?,?)`,
		list.ID, list.Name, list.Content, list.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving list: %w", err)
	}
	return nil
}

// Lists returns all saved lists in the order they were created
func (s *SQLiteStore) Lists(ctx context.Context) ([]domain.SavedList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, created_at FROM saved_lists ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying lists: %w", err)
	}
	defer rows.Close()

	var lists []domain.SavedList
	for rows.Next() {
		var list domain.SavedList
		if err := rows.Scan(&list.ID, &list.Name, &list.Content, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// DeleteList removes a saved list by id
func (s *SQLiteStore) DeleteList(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveSearch inserts or replaces a saved search; results are stored as the
// discriminated-union JSON.
func (s *SQLiteStore) SaveSearch(ctx context.Context, search domain.SavedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := json.Marshal(search.Results)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO saved_searches (id, name, shopping_list, search_type, results, created_at)
		 VALUES (?,?,?,?,?,?)`,
		search.ID, search.Name, search.ShoppingList, search.SearchType, string(results), search.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving search: %w", err)
	}
	return nil
}

// Searches returns all saved searches, newest first
func (s *SQLiteStore) Searches(ctx context.Context) ([]domain.SavedSearch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, shopping_list, search_type, results, created_at
		 FROM saved_searches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var searches []domain.SavedSearch
	for rows.Next() {
		var (
			search  domain.SavedSearch
			results string
		)
		if err := rows.Scan(&search.ID, &search.Name, &search.ShoppingList, &search.SearchType, &results, &search.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		search.Results, err = domain.UnmarshalSearchResults([]byte(results))
		if err != nil {
			return nil, fmt.Errorf("decoding results for search %s: %w", search.ID, err)
		}
		searches = append(searches, search)
	}
	return searches, rows.Err()
}

// DeleteSearch removes a saved search by id
func (s *SQLiteStore) DeleteSearch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting search: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ interface {
	domain.SavedListRepository
	domain.SavedSearchRepository
} = (*SQLiteStore)(nil)
