package models

import (
	"strings"
	"time"

	"stellar/internal/planet"
)

type User struct {
	ID                       string     `db:"id" json:"id"`
	Username                 string     `db:"username" json:"username"`
	Email                    string     `db:"email" json:"email"`
	PasswordHash             string     `db:"password_hash" json:"-"`
	IsActive                 bool       `db:"is_active" json:"is_active"`
	IsEmailVerified          bool       `db:"is_email_verified" json:"is_email_verified"`
	VerificationToken        *string    `db:"verification_token" json:"-"`
	VerificationTokenExpires *time.Time `db:"verification_token_expires" json:"-"`
	CreatedAt                time.Time  `db:"created_at" json:"created_at"`
}

type RecordType string

const (
	RecordMood    RecordType = "mood"
	RecordSpark   RecordType = "spark"
	RecordThought RecordType = "thought"
)

// ParseRecordType accepts the lowercase or uppercase type name.
func ParseRecordType(s string) (RecordType, bool) {
	switch RecordType(strings.ToLower(s)) {
	case RecordMood:
		return RecordMood, true
	case RecordSpark:
		return RecordSpark, true
	case RecordThought:
		return RecordThought, true
	}
	return "", false
}

type EmotionAnalysis struct {
	Valence        float64            `json:"valence"`
	Arousal        float64            `json:"arousal"`
	PrimaryEmotion string             `json:"primary_emotion"`
	EmotionScores  map[string]float64 `json:"emotion_scores"`
}

// PositionData is the stored 3D placement of a spark or thought. Orbit fields are
// only set for sparks.
type PositionData struct {
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Z           float64  `json:"z"`
	OrbitRadius *float64 `json:"orbit_radius,omitempty"`
	OrbitAngle  *float64 `json:"orbit_angle,omitempty"`
}

type Record struct {
	ID              string                `db:"id"`
	UserID          string                `db:"user_id"`
	Type            RecordType            `db:"type"`
	Content         string                `db:"content"`
	AudioURL        *string               `db:"audio_url"`
	EmotionAnalysis JSON[EmotionAnalysis] `db:"emotion_analysis"`
	Keywords        JSON[[]string]        `db:"keywords"`
	ThemeCluster    *string               `db:"theme_cluster"`
	ColorHex        *string               `db:"color_hex"`
	PositionData    JSON[PositionData]    `db:"position_data"`
	CreatedAt       time.Time             `db:"created_at"`
	UpdatedAt       *time.Time            `db:"updated_at"`
}

// Entry converts the stored row into the planet variant for its type.
func (r Record) Entry() planet.Entry {
	h := planet.Header{ID: r.ID, CreatedAt: r.CreatedAt}
	switch r.Type {
	case RecordMood:
		m := planet.Mood{Header: h, Emotion: planet.Neutral}
		if r.EmotionAnalysis.Valid {
			m.Emotion = planet.Emotion{Valence: r.EmotionAnalysis.V.Valence, Arousal: r.EmotionAnalysis.V.Arousal}
		}
		if r.ColorHex != nil {
			m.Color = *r.ColorHex
		}
		return m
	case RecordSpark:
		s := planet.Spark{Header: h, Keywords: r.Keywords.V}
		if r.PositionData.Valid {
			p := r.PositionData.V
			op := planet.OrbitPosition{X: p.X, Y: p.Y, Z: p.Z}
			if p.OrbitRadius != nil {
				op.OrbitRadius = *p.OrbitRadius
			}
			if p.OrbitAngle != nil {
				op.OrbitAngle = *p.OrbitAngle
			}
			s.Position = &op
		}
		return s
	default:
		t := planet.Thought{Header: h, Keywords: r.Keywords.V}
		if r.ThemeCluster != nil {
			t.Cluster = *r.ThemeCluster
		}
		if r.PositionData.Valid {
			p := r.PositionData.V
			t.Position = &planet.Coordinate{X: p.X, Y: p.Y, Z: p.Z}
		}
		return t
	}
}

// OrbitPositionData stores a star placement.
func OrbitPositionData(p planet.OrbitPosition) PositionData {
	radius, angle := p.OrbitRadius, p.OrbitAngle
	return PositionData{X: p.X, Y: p.Y, Z: p.Z, OrbitRadius: &radius, OrbitAngle: &angle}
}

// SurfacePositionData stores a tree placement.
func SurfacePositionData(c planet.Coordinate) PositionData {
	return PositionData{X: c.X, Y: c.Y, Z: c.Z}
}
