package planet

import (
	"sort"
	"time"
)

const (
	DefaultAtmosphereColor = "#87CEEB"
	NoDataColor            = "#CCCCCC"
	StarColor              = "#FFD700"
	StarSize               = 0.1
	DefaultStarKeyword     = "灵感"
	UncategorizedTheme     = "未分类"
)

type Star struct {
	ID       string             `json:"id"`
	Position map[string]float64 `json:"position"`
	Color    string             `json:"color"`
	Size     float64            `json:"size"`
	Keyword  string             `json:"keyword"`
}

type Tree struct {
	ID        string             `json:"id"`
	Position  map[string]float64 `json:"position"`
	Theme     string             `json:"theme"`
	LeafCount int                `json:"leaf_count"`
	Size      float64            `json:"size"`
}

// State is the planet as it looks on one day.
type State struct {
	Date            Date   `json:"date"`
	AtmosphereColor string `json:"atmosphere_color"`
	Stars           []Star `json:"stars"`
	Trees           []Tree `json:"trees"`
	TotalRecords    int    `json:"total_records"`
}

type HistoryDay struct {
	Date            Date   `json:"date"`
	AtmosphereColor string `json:"atmosphere_color"`
	RecordCount     int    `json:"record_count"`
}

type History struct {
	History   []HistoryDay `json:"history"`
	StartDate Date         `json:"start_date"`
	EndDate   Date         `json:"end_date"`
}

// BuildState aggregates one day's entries into a planet state.
// Entries are expected in ascending created_at order; equal timestamps keep input order.
func BuildState(date Date, entries []Entry) State {
	ordered := chronological(entries)

	state := State{
		Date:            date,
		AtmosphereColor: DefaultAtmosphereColor,
		Stars:           []Star{},
		Trees:           []Tree{},
		TotalRecords:    len(ordered),
	}

	if m, ok := lastMood(ordered); ok && m.Color != "" {
		state.AtmosphereColor = m.Color
	}

	type group struct {
		theme    string
		position *Coordinate
		count    int
	}
	var groups []*group
	byTheme := map[string]*group{}

	for _, e := range ordered {
		switch v := e.(type) {
		case Spark:
			state.Stars = append(state.Stars, newStar(v))
		case *Spark:
			state.Stars = append(state.Stars, newStar(*v))
		case Thought, *Thought:
			t := asThought(v)
			theme := t.Cluster
			if theme == "" {
				theme = UncategorizedTheme
			}
			g, ok := byTheme[theme]
			if !ok {
				g = &group{theme: theme, position: t.Position}
				byTheme[theme] = g
				groups = append(groups, g)
			}
			g.count++
		}
	}

	for _, g := range groups {
		state.Trees = append(state.Trees, Tree{
			ID:        "tree-" + g.theme,
			Position:  coordinateMap(g.position),
			Theme:     g.theme,
			LeafCount: g.count,
			Size:      TreeSize(g.count),
		})
	}
	return state
}

// TreeSize grows with leaf count and saturates at 1.0 from seven leaves on.
func TreeSize(leaves int) float64 {
	return 0.3 + min(float64(leaves)*0.1, 0.7)
}

// BuildHistory emits one entry per calendar day in [start, end], ascending,
// whether or not that day has records.
func BuildHistory(start, end Date, byDay map[Date][]Entry) History {
	h := History{History: []HistoryDay{}, StartDate: start, EndDate: end}
	for d := start; !d.After(end); d = d.AddDays(1) {
		day := HistoryDay{Date: d, AtmosphereColor: NoDataColor}
		entries := chronological(byDay[d])
		day.RecordCount = len(entries)
		if m, ok := lastMood(entries); ok && m.Color != "" {
			day.AtmosphereColor = m.Color
		}
		h.History = append(h.History, day)
	}
	return h
}

// GroupByDay buckets entries by their calendar day in loc, preserving input order.
func GroupByDay(entries []Entry, loc *time.Location) map[Date][]Entry {
	if loc == nil {
		loc = time.UTC
	}
	out := make(map[Date][]Entry)
	for _, e := range entries {
		d := DateOf(e.header().CreatedAt.In(loc))
		out[d] = append(out[d], e)
	}
	return out
}

// Moods returns the mood entries, in order.
func Moods(entries []Entry) []Mood {
	var out []Mood
	for _, e := range entries {
		switch v := e.(type) {
		case Mood:
			out = append(out, v)
		case *Mood:
			out = append(out, *v)
		}
	}
	return out
}

func lastMood(entries []Entry) (Mood, bool) {
	moods := Moods(entries)
	if len(moods) == 0 {
		return Mood{}, false
	}
	return moods[len(moods)-1], true
}

func chronological(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].header().CreatedAt.Before(out[j].header().CreatedAt)
	})
	return out
}

func asThought(e Entry) Thought {
	if p, ok := e.(*Thought); ok {
		return *p
	}
	return e.(Thought)
}

func newStar(s Spark) Star {
	keyword := DefaultStarKeyword
	if len(s.Keywords) > 0 {
		keyword = s.Keywords[0]
	}
	pos := map[string]float64{}
	if s.Position != nil {
		pos = s.Position.Map()
	}
	return Star{
		ID:       s.ID,
		Position: pos,
		Color:    StarColor,
		Size:     StarSize,
		Keyword:  keyword,
	}
}

func coordinateMap(c *Coordinate) map[string]float64 {
	if c == nil {
		return map[string]float64{}
	}
	return c.Map()
}

// Map renders the position in the loose key/value form clients consume.
func (p OrbitPosition) Map() map[string]float64 {
	return map[string]float64{
		"x":            p.X,
		"y":            p.Y,
		"z":            p.Z,
		"orbit_radius": p.OrbitRadius,
		"orbit_angle":  p.OrbitAngle,
	}
}

func (c Coordinate) Map() map[string]float64 {
	return map[string]float64{"x": c.X, "y": c.Y, "z": c.Z}
}
