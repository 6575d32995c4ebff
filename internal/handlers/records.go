package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stellar/internal/middleware"
	"stellar/internal/models"
	"stellar/internal/services"
	"stellar/internal/speech"
	"stellar/internal/store"
)

const maxAudioBytes = 10 << 20

var audioExtensions = map[string]bool{"mp3": true, "wav": true, "m4a": true, "ogg": true}

type RecordsHandler struct {
	records     *services.RecordService
	transcriber speech.Transcriber
	logger      *zap.Logger
}

func NewRecordsHandler(records *services.RecordService, transcriber speech.Transcriber, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, transcriber: transcriber, logger: logger}
}

type createRecordRequest struct {
	Type     string  `json:"type"`
	Content  string  `json:"content"`
	AudioURL *string `json:"audio_url"`
}

func userID(r *http.Request) string {
	u, _ := middleware.UserFrom(r.Context())
	return u.ID
}

func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	rec, err := h.records.Create(r.Context(), userID(r), services.CreateRecordInput{
		Type:     models.RecordType(req.Type),
		Content:  req.Content,
		AudioURL: req.AudioURL,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("create record", zap.Error(err))
		http.Error(w, "could not create record", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ToRecordDTO(*rec))
}

type recordListResponse struct {
	Records  []RecordDTO `json:"records"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func typeParam(r *http.Request) (models.RecordType, bool) {
	raw := r.URL.Query().Get("record_type")
	if raw == "" {
		return "", true
	}
	return models.ParseRecordType(raw)
}

func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, ok := intParam(r, "skip", 0)
	if !ok {
		http.Error(w, "invalid skip", http.StatusBadRequest)
		return
	}
	limit, ok := intParam(r, "limit", 50)
	if !ok || limit < 1 || limit > 100 {
		http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
		return
	}
	typ, ok := typeParam(r)
	if !ok {
		http.Error(w, "invalid record type", http.StatusBadRequest)
		return
	}

	records, total, err := h.records.List(r.Context(), userID(r), store.RecordFilter{Type: typ, Skip: skip, Limit: limit})
	if err != nil {
		h.logger.Error("list records", zap.Error(err))
		http.Error(w, "could not fetch records", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recordListResponse{
		Records:  ToRecordDTOs(records),
		Total:    total,
		Page:     skip/limit + 1,
		PageSize: limit,
	})
}

func (h *RecordsHandler) History(w http.ResponseWriter, r *http.Request) {
	days, ok := intParam(r, "days", services.DefaultHistoryDays)
	if !ok || days < 1 || days > services.MaxHistoryDays {
		http.Error(w, "days must be between 1 and 365", http.StatusBadRequest)
		return
	}
	typ, ok := typeParam(r)
	if !ok {
		http.Error(w, "invalid record type", http.StatusBadRequest)
		return
	}

	records, err := h.records.Recent(r.Context(), userID(r), days, typ)
	if err != nil {
		h.logger.Error("record history", zap.Error(err))
		http.Error(w, "could not fetch history", http.StatusInternalServerError)
		return
	}
	items := make([]HistoryItemDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, ToHistoryItem(rec))
	}
	writeJSON(w, http.StatusOK, items)
}

// recordID reads the {id} path parameter and writes 400 if it is not a UUID.
func recordID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return "", false
	}
	return id.String(), true
}

func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := h.records.Get(r.Context(), userID(r), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		h.logger.Error("get record", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToRecordDTO(*rec))
}

func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	if err := h.records.Delete(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		h.logger.Error("delete record", zap.Error(err))
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transcribeResponse struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
}

func (h *RecordsHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+1<<20)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, hdr, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "missing audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(hdr.Filename), "."))
	if !audioExtensions[ext] {
		http.Error(w, "unsupported audio format: "+ext, http.StatusBadRequest)
		return
	}
	if hdr.Size > maxAudioBytes {
		http.Error(w, "file exceeds 10MB limit", http.StatusBadRequest)
		return
	}

	text, err := h.transcriber.Transcribe(r.Context(), hdr.Filename, file)
	if err != nil {
		h.logger.Error("transcribe audio", zap.Error(err))
		http.Error(w, "transcription failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, transcribeResponse{Text: text, Success: true})
}
