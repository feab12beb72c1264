package repository

import (
	"context"
	"time"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryRepository interface {
	// CreateTx inserts inside the allocation transaction; nil tx uses the repo's DB.
	CreateTx(ctx context.Context, tx *gorm.DB, inq *model.Inquiry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Inquiry, error)
	List(ctx context.Context, filter dto.InquiryFilter) ([]model.Inquiry, int64, error)
	Update(ctx context.Context, inq *model.Inquiry) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ReplaceItems swaps the item list of an inquiry in one transaction.
	ReplaceItems(ctx context.Context, inquiryID uuid.UUID, items []model.InquiryItem) error
	// ListFollowUps returns inquiries whose next date is day, sales owner loaded.
	ListFollowUps(ctx context.Context, day time.Time) ([]model.Inquiry, error)
}

type inquiryRepo struct{ db *gorm.DB }

func NewInquiryRepository(db *gorm.DB) InquiryRepository { return &inquiryRepo{db: db} }

func (r *inquiryRepo) CreateTx(ctx context.Context, tx *gorm.DB, inq *model.Inquiry) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Omit("Sales").Create(inq).Error
}

func (r *inquiryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Inquiry, error) {
	var inq model.Inquiry
	err := r.db.WithContext(ctx).
		Preload("Sales").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&inq, "id = ?", id).Error
	return &inq, err
}

func (r *inquiryRepo) List(ctx context.Context, filter dto.InquiryFilter) ([]model.Inquiry, int64, error) {
	var inquiries []model.Inquiry
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Inquiry{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SalesID != "" {
		q = q.Where("sales_id = ?", filter.SalesID)
	}
	if filter.Month != "" {
		q = q.Where("month_epoch = ?", filter.Month)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		q = q.Where("create_id ILIKE ? OR customer_name ILIKE ? OR company_name ILIKE ? OR lead_description ILIKE ?",
			like, like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Sales").
		Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&inquiries).Error
	return inquiries, total, err
}

func (r *inquiryRepo) Update(ctx context.Context, inq *model.Inquiry) error {
	return r.db.WithContext(ctx).Omit("Sales", "Items", "CreateID", "MonthEpoch").Save(inq).Error
}

func (r *inquiryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Inquiry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *inquiryRepo) ReplaceItems(ctx context.Context, inquiryID uuid.UUID, items []model.InquiryItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inquiry_id = ?", inquiryID).Delete(&model.InquiryItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].InquiryID = inquiryID
		}
		return tx.Create(&items).Error
	})
}

func (r *inquiryRepo) ListFollowUps(ctx context.Context, day time.Time) ([]model.Inquiry, error) {
	var inquiries []model.Inquiry
	err := r.db.WithContext(ctx).
		Preload("Sales").
		Where("next_date = ?", day.Format("2006-01-02")).
		Find(&inquiries).Error
	return inquiries, err
}
