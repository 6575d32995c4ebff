package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a nullable column holding a JSON document (JSONB on Postgres, TEXT on SQLite).
type JSON[T any] struct {
	V     T
	Valid bool
}

func NewJSON[T any](v T) JSON[T] { return JSON[T]{V: v, Valid: true} }

func (j *JSON[T]) Scan(src any) error {
	var raw []byte
	switch s := src.(type) {
	case nil:
		*j = JSON[T]{}
		return nil
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return fmt.Errorf("json column: unsupported source %T", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*j = JSON[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("json column: %w", err)
	}
	*j = JSON[T]{V: v, Valid: true}
	return nil
}

func (j JSON[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Ptr returns the value or nil, for optional response fields.
func (j JSON[T]) Ptr() *T {
	if !j.Valid {
		return nil
	}
	v := j.V
	return &v
}
