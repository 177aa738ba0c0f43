package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yegors/readback-check/internal/models"
	"github.com/yegors/readback-check/pkg/logger"
)

// ErrSessionRequired is returned when an exchange is stored or queried without a session
var ErrSessionRequired = errors.New("session id is required")

const exchangeColumns = `id, session_id, callsign, instruction, readback, instruction_type, quality,
	is_correct, error_count, error_type, severity, phase, timestamp, created_at`

// ExchangeStorage handles storage of analysed exchanges
type ExchangeStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewExchangeStorage creates the exchange storage and its tables
func NewExchangeStorage(db *sql.DB, log *logger.Logger) (*ExchangeStorage, error) {
	storage := &ExchangeStorage{
		db:     db,
		logger: log.Named("sqlite-exchanges"),
	}

	if err := storage.initDB(); err != nil {
		storage.logger.Error("Failed to initialize exchange storage", logger.Error(err))
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database tables
func (s *ExchangeStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS exchanges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			callsign TEXT,
			instruction TEXT NOT NULL,
			readback TEXT NOT NULL,
			instruction_type TEXT NOT NULL,
			quality TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			error_count INTEGER NOT NULL DEFAULT 0,
			error_type TEXT,
			severity TEXT NOT NULL,
			phase TEXT,
			timestamp TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create exchanges table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_callsign ON exchanges(callsign)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_severity ON exchanges(severity)`,
	}

	for _, indexSQL := range indexes {
		if _, err = s.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create exchange index: %w", err)
		}
	}

	return nil
}

// StoreExchange stores an exchange record and returns its ID
func (s *ExchangeStorage) StoreExchange(record *ExchangeRecord) (int64, error) {
	if record.SessionID == "" {
		return 0, ErrSessionRequired
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = record.CreatedAt
	}

	result, err := s.db.Exec(
		`INSERT INTO exchanges
		(session_id, callsign, instruction, readback, instruction_type, quality,
		 is_correct, error_count, error_type, severity, phase, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		nullable(record.Callsign),
		record.Instruction,
		record.Readback,
		record.InstructionType,
		string(record.Quality),
		record.IsCorrect,
		record.ErrorCount,
		nullable(string(record.ErrorType)),
		string(record.Severity),
		nullable(string(record.Phase)),
		record.Timestamp.UTC().Format(time.RFC3339),
		record.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert exchange: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	record.ID = id

	s.logger.WithSession(record.SessionID).Debug("Stored exchange",
		logger.Int64("id", id),
		logger.String("severity", string(record.Severity)))

	return id, nil
}

// GetSessionExchanges returns the newest limit exchanges of a session, oldest first
func (s *ExchangeStorage) GetSessionExchanges(sessionID string, limit int) ([]*ExchangeRecord, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	rows, err := s.db.Query(
		`SELECT `+exchangeColumns+`
		FROM exchanges
		WHERE session_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session exchanges: %w", err)
	}
	defer rows.Close()

	records, err := s.scanExchangeRows(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// GetHistory returns the last window exchanges of a session as sequence
// tracker input, oldest first
func (s *ExchangeStorage) GetHistory(sessionID string, window int) ([]models.HistoryEntry, error) {
	records, err := s.GetSessionExchanges(sessionID, window)
	if err != nil {
		return nil, err
	}
	history := make([]models.HistoryEntry, len(records))
	for i, r := range records {
		history[i] = r.HistoryEntry()
	}
	return history, nil
}

// GetExchangesByCallsign returns the newest exchanges of an aircraft across
// sessions. Callsigns match case-insensitively.
func (s *ExchangeStorage) GetExchangesByCallsign(callsign string, limit int) ([]*ExchangeRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+exchangeColumns+`
		FROM exchanges
		WHERE callsign = ? COLLATE NOCASE
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		callsign, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges by callsign: %w", err)
	}
	defer rows.Close()

	return s.scanExchangeRows(rows)
}

// DeleteSession removes every exchange of a session and returns how many were removed
func (s *ExchangeStorage) DeleteSession(sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrSessionRequired
	}
	result, err := s.db.Exec(`DELETE FROM exchanges WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted exchanges: %w", err)
	}
	return n, nil
}

// scanExchangeRows scans database rows into ExchangeRecord structs
func (s *ExchangeStorage) scanExchangeRows(rows *sql.Rows) ([]*ExchangeRecord, error) {
	var records []*ExchangeRecord
	for rows.Next() {
		var record ExchangeRecord
		var timestamp, createdAt, quality, severity string
		var callsign, errorType, phase sql.NullString

		if err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&callsign,
			&record.Instruction,
			&record.Readback,
			&record.InstructionType,
			&quality,
			&record.IsCorrect,
			&record.ErrorCount,
			&errorType,
			&severity,
			&phase,
			&timestamp,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}

		var err error
		record.Timestamp, err = time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		record.Quality = models.Quality(quality)
		record.Severity = models.Severity(severity)
		record.Callsign = callsign.String
		record.ErrorType = models.ErrorType(errorType.String)
		record.Phase = models.FlightPhase(phase.String)

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}

	return records, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
