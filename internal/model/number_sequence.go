package model

import (
	"time"

	"github.com/google/uuid"
)

// Document types that draw ids from a numbering series.
const (
	DocTypeInvoice = "invoice"
	DocTypeInquiry = "inquiry"
)

// NumberSequence is the per-epoch counter of a numbering series: the last
// sequence handed out for (DocType, Epoch). Epoch is the fiscal tag (2526)
// for invoices and the month tag (JY2025) for inquiries.
type NumberSequence struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocType   string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_number_sequences_doc_epoch"`
	Epoch     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_number_sequences_doc_epoch"`
	LastValue int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NumberSequence) TableName() string { return "number_sequences" }
