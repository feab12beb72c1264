package repository

import (
	"context"
	"fmt"

	"kecdesk/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository is the allocator's view of storage: the per-epoch
// counter rows and the ids already written on documents.
//
// Every method takes the transaction to run in; a nil tx uses the
// repository's own connection.
type NumberSequenceRepository interface {
	// LockCounter reads the counter row with SELECT … FOR UPDATE.
	// Returns gorm.ErrRecordNotFound when the series has no row yet.
	LockCounter(ctx context.Context, tx *gorm.DB, docType, epoch string) (*model.NumberSequence, error)
	CreateCounter(ctx context.Context, tx *gorm.DB, seq *model.NumberSequence) error
	SaveCounter(ctx context.Context, tx *gorm.DB, seq *model.NumberSequence) error
	// ListAssignedIDs returns every assigned id of docType that belongs to epoch,
	// either by its epoch column or by the epoch suffix of the id itself.
	ListAssignedIDs(ctx context.Context, tx *gorm.DB, docType, epoch string) ([]string, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type numberSequenceRepo struct{ db *gorm.DB }

func NewNumberSequenceRepository(db *gorm.DB) NumberSequenceRepository {
	return &numberSequenceRepo{db: db}
}

func (r *numberSequenceRepo) DB() *gorm.DB { return r.db }

func (r *numberSequenceRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *numberSequenceRepo) LockCounter(ctx context.Context, tx *gorm.DB, docType, epoch string) (*model.NumberSequence, error) {
	var seq model.NumberSequence
	err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doc_type = ? AND epoch = ?", docType, epoch).
		First(&seq).Error
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

func (r *numberSequenceRepo) CreateCounter(ctx context.Context, tx *gorm.DB, seq *model.NumberSequence) error {
	return r.conn(ctx, tx).Create(seq).Error
}

func (r *numberSequenceRepo) SaveCounter(ctx context.Context, tx *gorm.DB, seq *model.NumberSequence) error {
	return r.conn(ctx, tx).Model(seq).Update("last_value", seq.LastValue).Error
}

func (r *numberSequenceRepo) ListAssignedIDs(ctx context.Context, tx *gorm.DB, docType, epoch string) ([]string, error) {
	var ids []string
	q := r.conn(ctx, tx)
	switch docType {
	case model.DocTypeInvoice:
		err := q.Model(&model.Invoice{}).
			Where("fiscal_year = ? OR invoice_number LIKE ?", epoch, "%/"+epoch).
			Pluck("invoice_number", &ids).Error
		return ids, err
	case model.DocTypeInquiry:
		err := q.Model(&model.Inquiry{}).
			Where("month_epoch = ? OR create_id LIKE ?", epoch, "%"+epoch).
			Pluck("create_id", &ids).Error
		return ids, err
	default:
		return nil, fmt.Errorf("number sequences: unknown document type %q", docType)
	}
}
