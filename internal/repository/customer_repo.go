package repository

import (
	"context"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context, filter dto.CompanyFilter) ([]model.Company, int64, error)
	// Update saves the company and refreshes the location city of its contacts.
	Update(ctx context.Context, c *model.Company) error
	// Delete removes the company; its contacts go with it.
	Delete(ctx context.Context, id uuid.UUID) error
}

type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) error
	// FindByID loads the contact with its company.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, filter dto.ContactFilter) ([]model.Contact, int64, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *companyRepo) List(ctx context.Context, filter dto.CompanyFilter) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Company{})
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		q = q.Where("company_name ILIKE ? OR city_1 ILIKE ? OR city_2 ILIKE ?", like, like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("company_name ASC, city_1 ASC").
		Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit).
		Find(&companies).Error
	return companies, total, err
}

func (r *companyRepo) Update(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(c).Error; err != nil {
			return err
		}
		return tx.Model(&model.Contact{}).
			Where("company_id = ?", c.ID).
			Update("location_city", c.City1).Error
	})
}

func (r *companyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Company{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type contactRepo struct{ db *gorm.DB }

func NewContactRepository(db *gorm.DB) ContactRepository { return &contactRepo{db: db} }

func (r *contactRepo) Create(ctx context.Context, c *model.Contact) error {
	return r.db.WithContext(ctx).Omit("Company").Create(c).Error
}

func (r *contactRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	var c model.Contact
	err := r.db.WithContext(ctx).Preload("Company").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *contactRepo) List(ctx context.Context, filter dto.ContactFilter) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Contact{})
	if filter.CompanyID != "" {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		q = q.Where("contact_name ILIKE ? OR email_1 ILIKE ? OR location_city ILIKE ?", like, like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Company").
		Order("created_at DESC").
		Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit).
		Find(&contacts).Error
	return contacts, total, err
}

func (r *contactRepo) Update(ctx context.Context, c *model.Contact) error {
	return r.db.WithContext(ctx).Omit("Company").Save(c).Error
}

func (r *contactRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Contact{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
