package entity

import "time"

// ArchiveRecord is the immutable, encrypted GoBD snapshot of one invoice.
// Exactly one record may exist per invoice; the unique constraint on
// InvoiceID is the guard against concurrent double archival.
type ArchiveRecord struct {
	ID            string
	InvoiceID     string
	EncryptedData []byte
	DataHash      string // SHA-256 hex digest of the plaintext bundle
	FileSize      int64  // plaintext bundle size in bytes
	CreatedAt     time.Time
}
