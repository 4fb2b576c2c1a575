package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/common"
	"github.com/dmitrijs2005/quizera/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, e *models.HistoryEntry) error {
	if e.Quiz == nil {
		return fmt.Errorf("%w: history entry without quiz", common.ErrorValidation)
	}
	quiz, err := json.Marshal(e.Quiz)
	if err != nil {
		return fmt.Errorf("failed to encode quiz: %w", err)
	}

	query := `INSERT INTO history (id, created_at, source, output_type, language, difficulty, total_questions, quiz)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, e.ID, e.CreatedAt.UnixMilli(), string(e.Source),
		e.OutputType, e.Language, e.Difficulty, e.TotalQuestions, quiz)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT id, created_at, source, output_type, language, difficulty, total_questions
		FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	defer rows.Close()

	result := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e       models.HistoryEntry
			created int64
			source  string
		)
		if err := rows.Scan(&e.ID, &created, &source, &e.OutputType, &e.Language, &e.Difficulty, &e.TotalQuestions); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created)
		e.Source = models.SourceType(source)
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.HistoryEntry, error) {
	query := `SELECT id, created_at, source, output_type, language, difficulty, total_questions, quiz
		FROM history WHERE id = ?`

	var (
		e       models.HistoryEntry
		created int64
		source  string
		quiz    []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &created, &source, &e.OutputType,
		&e.Language, &e.Difficulty, &e.TotalQuestions, &quiz)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry %s: %w", id, err)
	}

	e.CreatedAt = time.UnixMilli(created)
	e.Source = models.SourceType(source)
	e.Quiz = &models.Quiz{}
	if err := json.Unmarshal(quiz, e.Quiz); err != nil {
		return nil, fmt.Errorf("%w: history entry %s: %v", common.ErrorMalformedData, id, err)
	}
	return &e, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
