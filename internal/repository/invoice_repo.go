package repository

import (
	"context"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	// CreateTx inserts inside the allocation transaction; nil tx uses the repo's DB.
	CreateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	Update(ctx context.Context, inv *model.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListUnpaid returns unpaid invoices with the parent order's owners loaded.
	ListUnpaid(ctx context.Context) ([]model.Invoice, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) CreateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Omit("PurchaseOrder").Create(inv).Error
}

func (r *invoiceRepo) withOwners(q *gorm.DB) *gorm.DB {
	return q.Preload("PurchaseOrder").
		Preload("PurchaseOrder.SalesPerson").
		Preload("PurchaseOrder.ProjectManager")
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.withOwners(r.db.WithContext(ctx)).First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Invoice{})
	switch filter.Paid {
	case "true":
		q = q.Where("paid_at IS NOT NULL")
	case "false":
		q = q.Where("paid_at IS NULL")
	}
	if filter.FiscalYear != "" {
		q = q.Where("fiscal_year = ?", filter.FiscalYear)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		q = q.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("PurchaseOrder").
		Order("invoice_date DESC, invoice_number DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Omit("PurchaseOrder", "InvoiceNumber", "FiscalYear").Save(inv).Error
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Invoice{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepo) ListUnpaid(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.withOwners(r.db.WithContext(ctx)).
		Where("paid_at IS NULL").
		Find(&invoices).Error
	return invoices, err
}
