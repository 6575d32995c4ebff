package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"stellar/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type UserDTO struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	IsActive        bool   `json:"is_active"`
	IsEmailVerified bool   `json:"is_email_verified"`
	CreatedAt       string `json:"created_at"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

// RecordDTO is the full record as returned by create, get and list.
type RecordDTO struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	Type            models.RecordType       `json:"type"`
	Content         string                  `json:"content"`
	AudioURL        *string                 `json:"audio_url"`
	EmotionAnalysis *models.EmotionAnalysis `json:"emotion_analysis"`
	Keywords        *[]string               `json:"keywords"`
	ThemeCluster    *string                 `json:"theme_cluster"`
	ColorHex        *string                 `json:"color_hex"`
	PositionData    *models.PositionData    `json:"position_data"`
	CreatedAt       string                  `json:"created_at"`
	UpdatedAt       *string                 `json:"updated_at"`
}

func toDateTimeStringPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func ToRecordDTO(r models.Record) RecordDTO {
	return RecordDTO{
		ID:              r.ID,
		UserID:          r.UserID,
		Type:            r.Type,
		Content:         r.Content,
		AudioURL:        r.AudioURL,
		EmotionAnalysis: r.EmotionAnalysis.Ptr(),
		Keywords:        r.Keywords.Ptr(),
		ThemeCluster:    r.ThemeCluster,
		ColorHex:        r.ColorHex,
		PositionData:    r.PositionData.Ptr(),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       toDateTimeStringPtr(r.UpdatedAt),
	}
}

func ToRecordDTOs(records []models.Record) []RecordDTO {
	out := make([]RecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, ToRecordDTO(r))
	}
	return out
}

// HistoryItemDTO is the compact form used by /records/history. Only the extra field
// matching the record type is present.
type HistoryItemDTO struct {
	ID        string                  `json:"id"`
	Type      models.RecordType       `json:"type"`
	Content   string                  `json:"content"`
	CreatedAt string                  `json:"created_at"`
	Emotion   *models.EmotionAnalysis `json:"emotion,omitempty"`
	Keywords  []string                `json:"keywords,omitempty"`
	Theme     string                  `json:"theme,omitempty"`
}

func ToHistoryItem(r models.Record) HistoryItemDTO {
	item := HistoryItemDTO{
		ID:        r.ID,
		Type:      r.Type,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	switch r.Type {
	case models.RecordMood:
		item.Emotion = r.EmotionAnalysis.Ptr()
	case models.RecordSpark:
		item.Keywords = r.Keywords.V
	case models.RecordThought:
		if r.ThemeCluster != nil {
			item.Theme = *r.ThemeCluster
		}
	}
	return item
}
