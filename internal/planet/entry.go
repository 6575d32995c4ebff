package planet

import "time"

// Kind names the three record variants.
type Kind string

const (
	KindMood    Kind = "mood"
	KindSpark   Kind = "spark"
	KindThought Kind = "thought"
)

// Header carries what every record variant shares.
type Header struct {
	ID        string
	CreatedAt time.Time
}

func (h Header) header() Header { return h }

// Entry is one of Mood, Spark or Thought.
type Entry interface {
	Kind() Kind
	header() Header
}

// Emotion is a point in the valence/arousal plane.
type Emotion struct {
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
}

type Mood struct {
	Header
	Emotion Emotion
	Color   string
}

type Spark struct {
	Header
	Keywords []string
	Position *OrbitPosition
}

type Thought struct {
	Header
	Cluster  string
	Keywords []string
	Position *Coordinate
}

func (Mood) Kind() Kind    { return KindMood }
func (Spark) Kind() Kind   { return KindSpark }
func (Thought) Kind() Kind { return KindThought }
