package repository

import (
	"context"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter dto.PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error)
	Update(ctx context.Context, po *model.PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListOpen returns open orders with their owners loaded.
	ListOpen(ctx context.Context) ([]model.PurchaseOrder, error)
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Contact", "SalesPerson", "ProjectManager").Create(po).Error
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Contact.Company").
		Preload("SalesPerson").
		Preload("ProjectManager").
		First(&po, "id = ?", id).Error
	return &po, err
}

func (r *purchaseOrderRepo) List(ctx context.Context, filter dto.PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		q = q.Where("po_number ILIKE ? OR customer_name ILIKE ? OR company_name ILIKE ?", like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Contact.Company").Preload("SalesPerson").Preload("ProjectManager").
		Order("delivery_date ASC, po_number ASC").
		Limit(filter.Limit).Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *purchaseOrderRepo) Update(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Contact", "SalesPerson", "ProjectManager").Save(po).Error
}

func (r *purchaseOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.PurchaseOrder{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *purchaseOrderRepo) ListOpen(ctx context.Context) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("SalesPerson").
		Preload("ProjectManager").
		Where("status = ?", model.POStatusOpen).
		Find(&orders).Error
	return orders, err
}
