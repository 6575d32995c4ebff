package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"stellar/internal/cache"
	"stellar/internal/emotion"
	"stellar/internal/models"
	"stellar/internal/planet"
	"stellar/internal/store"
)

const (
	MaxContentLength = 5000
	// DefaultThoughtTheme is assigned to every thought until clustering exists.
	DefaultThoughtTheme = "日常思考"

	sparkKeywords   = 3
	thoughtKeywords = 5
)

var ErrInvalidInput = errors.New("invalid input")

type CreateRecordInput struct {
	Type     models.RecordType
	Content  string
	AudioURL *string
}

type RecordService struct {
	store    *store.Store
	analyzer emotion.Analyzer
	enc      *EncryptionService
	cache    cache.PlanetCache
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func NewRecordService(st *store.Store, analyzer emotion.Analyzer, enc *EncryptionService,
	pc cache.PlanetCache, loc *time.Location, logger *zap.Logger) *RecordService {
	return &RecordService{
		store:    st,
		analyzer: analyzer,
		enc:      enc,
		cache:    pc,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Create derives the type-specific fields and stores the record. Mood analysis never
// fails the request; the analyzer is expected to fall back to a neutral result.
func (s *RecordService) Create(ctx context.Context, userID string, in CreateRecordInput) (*models.Record, error) {
	typ, ok := models.ParseRecordType(string(in.Type))
	if !ok {
		return nil, fmt.Errorf("%w: unknown record type %q", ErrInvalidInput, in.Type)
	}
	in.Type = typ
	n := utf8.RuneCountInString(in.Content)
	if strings.TrimSpace(in.Content) == "" || n > MaxContentLength {
		return nil, fmt.Errorf("%w: content must be 1 to %d characters", ErrInvalidInput, MaxContentLength)
	}

	now := s.now()
	rec := &models.Record{
		UserID:    userID,
		Type:      in.Type,
		Content:   in.Content,
		AudioURL:  in.AudioURL,
		CreatedAt: now,
	}

	switch in.Type {
	case models.RecordMood:
		a, err := s.analyzer.Analyze(ctx, in.Content)
		if err != nil {
			s.logger.Warn("emotion analysis failed, using neutral", zap.Error(err))
			a = emotion.Neutral()
		}
		rec.EmotionAnalysis = models.NewJSON(models.EmotionAnalysis(a))
		color := planet.Color(a.Valence, a.Arousal)
		rec.ColorHex = &color

	case models.RecordSpark:
		rec.Keywords = models.NewJSON(firstWords(in.Content, sparkKeywords))
		count, err := s.store.CountRecords(ctx, userID, models.RecordSpark)
		if err != nil {
			return nil, err
		}
		pos := planet.StarPosition(count, count+1, now)
		rec.PositionData = models.NewJSON(models.OrbitPositionData(pos))

	case models.RecordThought:
		theme := DefaultThoughtTheme
		rec.ThemeCluster = &theme
		rec.Keywords = models.NewJSON(firstWords(in.Content, thoughtKeywords))
		pos := planet.TreePosition(theme, 0)
		rec.PositionData = models.NewJSON(models.SurfacePositionData(pos))
	}

	stored := *rec
	if err := s.enc.EncryptRecord(&stored); err != nil {
		return nil, err
	}
	if err := s.store.CreateRecord(ctx, &stored); err != nil {
		return nil, err
	}
	rec.ID, rec.CreatedAt = stored.ID, stored.CreatedAt

	s.invalidate(ctx, userID, rec.CreatedAt)
	return rec, nil
}

func (s *RecordService) Get(ctx context.Context, userID, id string) (*models.Record, error) {
	rec, err := s.store.GetRecord(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.enc.DecryptRecord(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, userID, id string) error {
	rec, err := s.store.GetRecord(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRecord(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID, rec.CreatedAt)
	return nil
}

func (s *RecordService) List(ctx context.Context, userID string, f store.RecordFilter) ([]models.Record, int, error) {
	records, total, err := s.store.ListRecords(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}
	if err := s.enc.DecryptRecords(records); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Recent returns the records of the last days*24h, newest first.
func (s *RecordService) Recent(ctx context.Context, userID string, days int, typ models.RecordType) ([]models.Record, error) {
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	records, err := s.store.RecordsSince(ctx, userID, since, typ)
	if err != nil {
		return nil, err
	}
	if err := s.enc.DecryptRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *RecordService) invalidate(ctx context.Context, userID string, at time.Time) {
	day := planet.DateOf(at.In(s.loc))
	if err := s.cache.Invalidate(ctx, userID, day); err != nil {
		s.logger.Warn("planet cache invalidate failed", zap.String("user_id", userID), zap.Stringer("date", day), zap.Error(err))
	}
}

func firstWords(content string, n int) []string {
	words := strings.Fields(content)
	if len(words) > n {
		words = words[:n]
	}
	if words == nil {
		words = []string{}
	}
	return words
}
