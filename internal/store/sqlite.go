package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// SQLiteStore implements EntityStore using SQLite
type SQLiteStore struct {
	db         *sql.DB
	config     *Config
	logger     *logrus.Logger
	migrations []*Migration
}

// NewSQLiteStore creates a new SQLite entity store
func NewSQLiteStore(config *Config) *SQLiteStore {
	return &SQLiteStore{
		config:     config,
		logger:     utils.GetLogger(),
		migrations: GetSQLiteMigrations(),
	}
}

// Connect establishes the database connection
func (s *SQLiteStore) Connect() error {
	dir := filepath.Dir(s.config.ConnectionString)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase, "Failed to create database directory", err.Error())
		}
	}

	db, err := sql.Open("sqlite", s.config.ConnectionString)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to open SQLite database", err.Error())
	}

	db.SetMaxOpenConns(s.config.MaxConnections)
	db.SetMaxIdleConns(s.config.MaxConnections / 2)
	db.SetConnMaxLifetime(s.config.MaxIdleTime)

	// WAL mode for concurrent readers during pipeline writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to enable WAL mode", err.Error())
	}

	s.db = db
	s.logger.WithField("path", s.config.ConnectionString).Info("SQLite entity store connected")

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.logger.Info("SQLite entity store closed")
		return err
	}
	return nil
}

// Ping checks database connectivity
func (s *SQLiteStore) Ping() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}
	return s.db.Ping()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}

	for _, migration := range s.migrations {
		s.logger.WithFields(logrus.Fields{
			"version":     migration.Version,
			"description": migration.Description,
		}).Info("Applying migration")

		if _, err := s.db.Exec(migration.SQL); err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase,
				fmt.Sprintf("Migration %s failed", migration.Version),
				err.Error())
		}
	}

	return nil
}

const sqliteUpsert = `
	INSERT INTO %s (key, chain_id, document, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
		chain_id = excluded.chain_id,
		document = excluded.document,
		updated_at = CURRENT_TIMESTAMP
`

func (s *SQLiteStore) putDocument(ctx context.Context, tx *sql.Tx, table, key string, chainID uint64, entity interface{}) error {
	document, err := json.Marshal(entity)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to marshal entity document", err.Error())
	}

	query := fmt.Sprintf(sqliteUpsert, table)
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, key, chainID, string(document))
	} else {
		_, err = s.db.ExecContext(ctx, query, key, chainID, string(document))
	}
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase,
			fmt.Sprintf("Failed to upsert into %s", table), err.Error())
	}
	return nil
}

func (s *SQLiteStore) getDocument(ctx context.Context, table, key string, entity interface{}) (bool, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE key = ?", table)
	var document string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&document)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, utils.NewAppError(utils.ErrCodeDatabase,
			fmt.Sprintf("Failed to query %s", table), err.Error())
	}
	if err := json.Unmarshal([]byte(document), entity); err != nil {
		return false, utils.NewAppError(utils.ErrCodeDatabase, "Failed to unmarshal entity document", err.Error())
	}
	return true, nil
}

func (s *SQLiteStore) listDocuments(ctx context.Context, table string, chainID uint64) ([]string, error) {
	query := fmt.Sprintf("SELECT document FROM %s ORDER BY key", table)
	args := []interface{}{}
	if chainID != 0 {
		query = fmt.Sprintf("SELECT document FROM %s WHERE chain_id = ? ORDER BY key", table)
		args = append(args, chainID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase,
			fmt.Sprintf("Failed to list %s", table), err.Error())
	}
	defer rows.Close()

	var documents []string
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan entity row", err.Error())
		}
		documents = append(documents, document)
	}
	return documents, rows.Err()
}

func (s *SQLiteStore) GetAction(ctx context.Context, key string) (*models.Action, error) {
	var action models.Action
	found, err := s.getDocument(ctx, "actions", key, &action)
	if err != nil || !found {
		return nil, err
	}
	return &action, nil
}

func (s *SQLiteStore) PutAction(ctx context.Context, action *models.Action) error {
	return s.putDocument(ctx, nil, "actions", action.Key, action.ChainID, action)
}

func (s *SQLiteStore) ListActions(ctx context.Context, chainID uint64) ([]*models.Action, error) {
	documents, err := s.listDocuments(ctx, "actions", chainID)
	if err != nil {
		return nil, err
	}
	actions := make([]*models.Action, 0, len(documents))
	for _, document := range documents {
		var action models.Action
		if err := json.Unmarshal([]byte(document), &action); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to unmarshal action", err.Error())
		}
		actions = append(actions, &action)
	}
	return actions, nil
}

func (s *SQLiteStore) GetGarden(ctx context.Context, key string) (*models.Garden, error) {
	var garden models.Garden
	found, err := s.getDocument(ctx, "gardens", key, &garden)
	if err != nil || !found {
		return nil, err
	}
	return &garden, nil
}

func (s *SQLiteStore) PutGarden(ctx context.Context, garden *models.Garden) error {
	return s.putDocument(ctx, nil, "gardens", garden.Key, garden.ChainID, garden)
}

func (s *SQLiteStore) ListGardens(ctx context.Context, chainID uint64) ([]*models.Garden, error) {
	documents, err := s.listDocuments(ctx, "gardens", chainID)
	if err != nil {
		return nil, err
	}
	gardens := make([]*models.Garden, 0, len(documents))
	for _, document := range documents {
		var garden models.Garden
		if err := json.Unmarshal([]byte(document), &garden); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to unmarshal garden", err.Error())
		}
		gardens = append(gardens, &garden)
	}
	return gardens, nil
}

func (s *SQLiteStore) GetGardener(ctx context.Context, key string) (*models.Gardener, error) {
	var gardener models.Gardener
	found, err := s.getDocument(ctx, "gardeners", key, &gardener)
	if err != nil || !found {
		return nil, err
	}
	return &gardener, nil
}

func (s *SQLiteStore) PutGardener(ctx context.Context, gardener *models.Gardener) error {
	return s.putDocument(ctx, nil, "gardeners", gardener.Key, gardener.ChainID, gardener)
}

func (s *SQLiteStore) ListGardeners(ctx context.Context, chainID uint64) ([]*models.Gardener, error) {
	documents, err := s.listDocuments(ctx, "gardeners", chainID)
	if err != nil {
		return nil, err
	}
	gardeners := make([]*models.Gardener, 0, len(documents))
	for _, document := range documents {
		var gardener models.Gardener
		if err := json.Unmarshal([]byte(document), &gardener); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to unmarshal gardener", err.Error())
		}
		gardeners = append(gardeners, &gardener)
	}
	return gardeners, nil
}

// PutMembership writes the garden and its gardeners in one transaction
func (s *SQLiteStore) PutMembership(ctx context.Context, garden *models.Garden, gardeners []*models.Gardener) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to begin transaction", err.Error())
	}
	defer tx.Rollback()

	if err := s.putDocument(ctx, tx, "gardens", garden.Key, garden.ChainID, garden); err != nil {
		return err
	}
	for _, gardener := range gardeners {
		if err := s.putDocument(ctx, tx, "gardeners", gardener.Key, gardener.ChainID, gardener); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to commit membership transaction", err.Error())
	}
	return nil
}

// Stats returns entity counts
func (s *SQLiteStore) Stats(ctx context.Context) (*EntityStats, error) {
	stats := &EntityStats{}
	for table, target := range map[string]*int64{
		"actions":   &stats.Actions,
		"gardens":   &stats.Gardens,
		"gardeners": &stats.Gardeners,
	} {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := s.db.QueryRowContext(ctx, query).Scan(target); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase,
				fmt.Sprintf("Failed to count %s", table), err.Error())
		}
	}
	return stats, nil
}
