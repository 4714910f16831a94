package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteAppender - история запусков в embedded SQLite базе.
// Дает оператору запрашиваемую историю (`SELECT ... WHERE status='failure'`)
// без внешней инфраструктуры.
type SQLiteAppender struct {
	db         *sql.DB
	tableName  string
	level      Level
	insertStmt *sql.Stmt
	ownsDB     bool
}

// SQLiteAppenderConfig - конфигурация SQLite appender
type SQLiteAppenderConfig struct {
	// Path - путь к файлу базы (":memory:" для тестов)
	Path string

	// TableName - имя таблицы истории (по умолчанию "run_history")
	TableName string

	// Level - уровень детализации
	Level Level
}

// NewSQLiteAppender - создать appender, открыв базу и создав таблицу
func NewSQLiteAppender(config SQLiteAppenderConfig) (*SQLiteAppender, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if config.TableName == "" {
		config.TableName = "run_history"
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	sa := &SQLiteAppender{
		db:        db,
		tableName: config.TableName,
		level:     config.Level,
		ownsDB:    true,
	}

	if err := sa.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	if err := sa.prepareInsert(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return sa, nil
}

// createTable - создать таблицу истории запусков
func (sa *SQLiteAppender) createTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			operation TEXT NOT NULL,
			status TEXT NOT NULL,
			pipeline TEXT,
			resource TEXT,
			records INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			error_message TEXT,
			metadata TEXT
		)
	`, sa.tableName)

	if _, err := sa.db.Exec(query); err != nil {
		return err
	}

	indexes := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s(timestamp)", sa.tableName, sa.tableName),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_status ON %s(status)", sa.tableName, sa.tableName),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_operation ON %s(operation)", sa.tableName, sa.tableName),
	}
	for _, indexQuery := range indexes {
		if _, err := sa.db.Exec(indexQuery); err != nil {
			return err
		}
	}

	return nil
}

// prepareInsert - подготовить insert statement
func (sa *SQLiteAppender) prepareInsert() error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, timestamp, operation, status, pipeline, resource,
			records, duration_ms, error_message, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sa.tableName)

	stmt, err := sa.db.Prepare(query)
	if err != nil {
		return err
	}
	sa.insertStmt = stmt
	return nil
}

// Append - записать entry в таблицу
func (sa *SQLiteAppender) Append(ctx context.Context, entry *Entry) error {
	filtered := entry.FilterByLevel(sa.level)

	var metadata []byte
	if len(filtered.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(filtered.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	_, err := sa.insertStmt.ExecContext(ctx,
		filtered.ID,
		filtered.Timestamp,
		string(filtered.Operation),
		string(filtered.Status),
		filtered.Pipeline,
		filtered.Resource,
		filtered.Records,
		filtered.Duration.Milliseconds(),
		filtered.ErrorMessage,
		string(metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// Count - число записей с данным статусом (пустой статус = все)
func (sa *SQLiteAppender) Count(ctx context.Context, status Status) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", sa.tableName)
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}

	var count int64
	if err := sa.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Close - закрыть statement и базу
func (sa *SQLiteAppender) Close() error {
	if sa.insertStmt != nil {
		sa.insertStmt.Close()
	}
	if sa.ownsDB && sa.db != nil {
		return sa.db.Close()
	}
	return nil
}
