package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stellar/internal/cache"
	"stellar/internal/models"
	"stellar/internal/planet"
	"stellar/internal/store"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 365
)

type PlanetService struct {
	store  *store.Store
	cache  cache.PlanetCache
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

func NewPlanetService(st *store.Store, pc cache.PlanetCache, loc *time.Location, logger *zap.Logger) *PlanetService {
	return &PlanetService{store: st, cache: pc, loc: loc, logger: logger, now: time.Now}
}

// Today is the current calendar day in the configured zone.
func (s *PlanetService) Today() planet.Date {
	return planet.DateOf(s.now().In(s.loc))
}

// State renders the planet for one day, reading through the cache.
func (s *PlanetService) State(ctx context.Context, userID string, day planet.Date) (planet.State, error) {
	if st, ok, err := s.cache.Get(ctx, userID, day); err != nil {
		s.logger.Warn("planet cache read failed", zap.String("user_id", userID), zap.Error(err))
	} else if ok {
		return st, nil
	}

	entries, err := s.entries(ctx, userID, day, day)
	if err != nil {
		return planet.State{}, err
	}
	st := planet.BuildState(day, entries)

	if err := s.cache.Set(ctx, userID, st); err != nil {
		s.logger.Warn("planet cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return st, nil
}

// History covers every day in [start, end]. An inverted range yields no days.
func (s *PlanetService) History(ctx context.Context, userID string, start, end planet.Date) (planet.History, error) {
	if start.After(end) {
		return planet.BuildHistory(start, end, nil), nil
	}
	entries, err := s.entries(ctx, userID, start, end)
	if err != nil {
		return planet.History{}, err
	}
	return planet.BuildHistory(start, end, planet.GroupByDay(entries, s.loc)), nil
}

// RecentHistory covers [today-days, today].
func (s *PlanetService) RecentHistory(ctx context.Context, userID string, days int) (planet.History, error) {
	end := s.Today()
	return s.History(ctx, userID, end.AddDays(-days), end)
}

type Blend struct {
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
	Color   string  `json:"color"`
}

type Stats struct {
	TotalRecords int          `json:"total_records"`
	MoodCount    int          `json:"mood_count"`
	SparkCount   int          `json:"spark_count"`
	ThoughtCount int          `json:"thought_count"`
	StartDate    *planet.Date `json:"start_date"`
	DaysActive   int          `json:"days_active"`
	TodayBlend   Blend        `json:"today_blend"`
}

// Stats runs the independent counts concurrently.
func (s *PlanetService) Stats(ctx context.Context, userID string) (Stats, error) {
	var out Stats
	today := s.Today()

	g, gctx := errgroup.WithContext(ctx)
	count := func(typ models.RecordType, dst *int) {
		g.Go(func() error {
			n, err := s.store.CountRecords(gctx, userID, typ)
			*dst = n
			return err
		})
	}
	count("", &out.TotalRecords)
	count(models.RecordMood, &out.MoodCount)
	count(models.RecordSpark, &out.SparkCount)
	count(models.RecordThought, &out.ThoughtCount)

	g.Go(func() error {
		first, err := s.store.FirstRecordAt(gctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		start := planet.DateOf(first.In(s.loc))
		out.StartDate = &start
		out.DaysActive = start.DaysUntil(today) + 1
		return nil
	})

	g.Go(func() error {
		entries, err := s.entries(gctx, userID, today, today)
		if err != nil {
			return err
		}
		var emotions []planet.Emotion
		for _, m := range planet.Moods(entries) {
			emotions = append(emotions, m.Emotion)
		}
		e := planet.BlendEmotions(emotions)
		out.TodayBlend = Blend{Valence: e.Valence, Arousal: e.Arousal, Color: planet.Color(e.Valence, e.Arousal)}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return out, nil
}

// entries loads the records of [from, to] (whole days in the configured zone).
func (s *PlanetService) entries(ctx context.Context, userID string, from, to planet.Date) ([]planet.Entry, error) {
	start, _ := from.Bounds(s.loc)
	_, end := to.Bounds(s.loc)
	records, err := s.store.RecordsBetween(ctx, userID, start, end, "")
	if err != nil {
		return nil, err
	}
	entries := make([]planet.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}
