package services

import (
	"fmt"

	"stellar/internal/crypto"
	"stellar/internal/models"
)

// EncryptionService protects record content at rest. A service built without a key
// leaves content untouched.
type EncryptionService struct {
	crypto *crypto.Cipher
}

// NewEncryptionService accepts a 32-byte key, or nil to disable encryption.
func NewEncryptionService(key []byte) (*EncryptionService, error) {
	if key == nil {
		return &EncryptionService{}, nil
	}
	c, err := crypto.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{crypto: c}, nil
}

func (s *EncryptionService) Enabled() bool { return s.crypto != nil }

// EncryptRecord seals the content before the record is stored.
func (s *EncryptionService) EncryptRecord(r *models.Record) error {
	if s.crypto == nil {
		return nil
	}
	sealed, err := s.crypto.Seal(r.Content)
	if err != nil {
		return fmt.Errorf("encrypt content: %w", err)
	}
	r.Content = sealed
	return nil
}

// DecryptRecord opens content read from the database. Plaintext rows pass through.
func (s *EncryptionService) DecryptRecord(r *models.Record) error {
	if !crypto.IsSealed(r.Content) {
		return nil
	}
	if s.crypto == nil {
		return fmt.Errorf("record %s is encrypted but no ENCRYPTION_KEY is configured", r.ID)
	}
	plain, err := s.crypto.Open(r.Content)
	if err != nil {
		return fmt.Errorf("decrypt record %s: %w", r.ID, err)
	}
	r.Content = plain
	return nil
}

func (s *EncryptionService) DecryptRecords(records []models.Record) error {
	for i := range records {
		if err := s.DecryptRecord(&records[i]); err != nil {
			return err
		}
	}
	return nil
}
