package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stellar/internal/models"
)

const recordColumns = `id, user_id, type, content, audio_url, emotion_analysis, keywords,
	theme_cluster, color_hex, position_data, created_at, updated_at`

// RecordFilter selects a page of a user's records, newest first. An empty Type matches
// every type.
type RecordFilter struct {
	Type  models.RecordType
	Skip  int
	Limit int
}

func (s *Store) CreateRecord(ctx context.Context, r *models.Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = dbTime(r.CreatedAt)

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.UserID, r.Type, r.Content, r.AudioURL, r.EmotionAnalysis, r.Keywords,
		r.ThemeCluster, r.ColorHex, r.PositionData, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// GetRecord returns the record only if it belongs to userID.
func (s *Store) GetRecord(ctx context.Context, userID, id string) (*models.Record, error) {
	var r models.Record
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+recordColumns+` FROM records
		WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) DeleteRecord(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM records WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(res)
}

// ListRecords returns one page and the total number of matching records.
func (s *Store) ListRecords(ctx context.Context, userID string, f RecordFilter) ([]models.Record, int, error) {
	where := `user_id = ?`
	args := []any{userID}
	if f.Type != "" {
		where += ` AND type = ?`
		args = append(args, f.Type)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.q(`SELECT COUNT(*) FROM records WHERE `+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	records := []models.Record{}
	err := s.db.SelectContext(ctx, &records, s.q(`SELECT `+recordColumns+` FROM records WHERE `+where+`
		ORDER BY created_at DESC LIMIT ? OFFSET ?`), append(args, f.Limit, f.Skip)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	return records, total, nil
}

// RecordsBetween returns the records created in [from, to), oldest first. An empty
// typ matches every type.
func (s *Store) RecordsBetween(ctx context.Context, userID string, from, to time.Time, typ models.RecordType) ([]models.Record, error) {
	where := `user_id = ? AND created_at >= ? AND created_at < ?`
	args := []any{userID, dbTime(from), dbTime(to)}
	if typ != "" {
		where += ` AND type = ?`
		args = append(args, typ)
	}
	records := []models.Record{}
	err := s.db.SelectContext(ctx, &records, s.q(`SELECT `+recordColumns+` FROM records WHERE `+where+`
		ORDER BY created_at ASC`), args...)
	if err != nil {
		return nil, fmt.Errorf("records between: %w", err)
	}
	return records, nil
}

// RecordsSince returns the records created at or after since, newest first.
func (s *Store) RecordsSince(ctx context.Context, userID string, since time.Time, typ models.RecordType) ([]models.Record, error) {
	where := `user_id = ? AND created_at >= ?`
	args := []any{userID, dbTime(since)}
	if typ != "" {
		where += ` AND type = ?`
		args = append(args, typ)
	}
	records := []models.Record{}
	err := s.db.SelectContext(ctx, &records, s.q(`SELECT `+recordColumns+` FROM records WHERE `+where+`
		ORDER BY created_at DESC`), args...)
	if err != nil {
		return nil, fmt.Errorf("records since: %w", err)
	}
	return records, nil
}

// CountRecords counts a user's records of one type, or of every type when typ is empty.
func (s *Store) CountRecords(ctx context.Context, userID string, typ models.RecordType) (int, error) {
	query := `SELECT COUNT(*) FROM records WHERE user_id = ?`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, typ)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(query), args...); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// FirstRecordAt returns the creation time of the user's oldest record, or ErrNotFound.
func (s *Store) FirstRecordAt(ctx context.Context, userID string) (time.Time, error) {
	var r models.Record
	err := s.db.GetContext(ctx, &r, s.q(`SELECT `+recordColumns+` FROM records WHERE user_id = ?
		ORDER BY created_at ASC LIMIT 1`), userID)
	if err != nil {
		return time.Time{}, notFound(err)
	}
	return r.CreatedAt, nil
}
