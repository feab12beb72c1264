package service

import (
	"context"
	"errors"
	"strings"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"
	"kecdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyService manages customer companies.
type CompanyService interface {
	Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error)
	List(ctx context.Context, filter dto.CompanyFilter) (*dto.CompanyListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error)
	// Delete removes the company and its contacts. Purchase orders keep their
	// copied names and lose the contact link.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContactService manages the people purchase orders are raised for.
type ContactService interface {
	Create(ctx context.Context, req dto.CreateContactRequest) (*dto.ContactResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ContactResponse, error)
	List(ctx context.Context, filter dto.ContactFilter) (*dto.ContactListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateContactRequest) (*dto.ContactResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyService struct{ repo repository.CompanyRepository }

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Create(ctx context.Context, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	c := &model.Company{
		CompanyName: strings.TrimSpace(req.CompanyName),
		City1:       strings.TrimSpace(req.City1),
		City2:       req.City2,
		Address1:    req.Address1,
		Address2:    req.Address2,
		Address3:    req.Address3,
	}
	if c.CompanyName == "" || c.City1 == "" {
		return nil, invalidf("company_name and city_1 are required")
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, companyWriteErr(err)
	}
	resp := toCompanyResponse(c)
	return &resp, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*dto.CompanyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "company")
	}
	resp := toCompanyResponse(c)
	return &resp, nil
}

func (s *companyService) List(ctx context.Context, filter dto.CompanyFilter) (*dto.CompanyListResponse, error) {
	companies, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.CompanyListResponse{
		Data:     make([]dto.CompanyResponse, 0, len(companies)),
		ListMeta: dto.NewListMeta(total, filter.Page, filter.Limit),
	}
	for i := range companies {
		out.Data = append(out.Data, toCompanyResponse(&companies[i]))
	}
	return out, nil
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "company")
	}
	if req.CompanyName != nil {
		c.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.City1 != nil {
		c.City1 = strings.TrimSpace(*req.City1)
	}
	if req.City2 != nil {
		c.City2 = req.City2
	}
	if req.Address1 != nil {
		c.Address1 = *req.Address1
	}
	if req.Address2 != nil {
		c.Address2 = req.Address2
	}
	if req.Address3 != nil {
		c.Address3 = req.Address3
	}
	if c.CompanyName == "" || c.City1 == "" {
		return nil, invalidf("company_name and city_1 must not be blank")
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, companyWriteErr(err)
	}
	resp := toCompanyResponse(c)
	return &resp, nil
}

func (s *companyService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id), "company")
}

func companyWriteErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return invalidf("a company with that name already exists in that city")
	}
	return err
}

func toCompanyResponse(c *model.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:          c.ID.String(),
		CompanyName: c.CompanyName,
		City1:       c.City1,
		City2:       c.City2,
		Cities:      c.Cities(),
		Address1:    c.Address1,
		Address2:    c.Address2,
		Address3:    c.Address3,
	}
}

type contactService struct {
	repo      repository.ContactRepository
	companies repository.CompanyRepository
}

func NewContactService(repo repository.ContactRepository, companies repository.CompanyRepository) ContactService {
	return &contactService{repo: repo, companies: companies}
}

func (s *contactService) Create(ctx context.Context, req dto.CreateContactRequest) (*dto.ContactResponse, error) {
	company, err := s.company(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	c := &model.Contact{
		ContactName:       strings.TrimSpace(req.ContactName),
		Email1:            strings.TrimSpace(req.Email1),
		Email2:            req.Email2,
		Phone1:            req.Phone1,
		Phone2:            req.Phone2,
		Phone3:            req.Phone3,
		IndividualAddress: req.IndividualAddress,
	}
	if c.ContactName == "" {
		return nil, invalidf("contact_name is required")
	}
	c.AttachCompany(company)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := toContactResponse(c)
	return &resp, nil
}

func (s *contactService) Get(ctx context.Context, id uuid.UUID) (*dto.ContactResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contact")
	}
	resp := toContactResponse(c)
	return &resp, nil
}

func (s *contactService) List(ctx context.Context, filter dto.ContactFilter) (*dto.ContactListResponse, error) {
	contacts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.ContactListResponse{
		Data:     make([]dto.ContactResponse, 0, len(contacts)),
		ListMeta: dto.NewListMeta(total, filter.Page, filter.Limit),
	}
	for i := range contacts {
		out.Data = append(out.Data, toContactResponse(&contacts[i]))
	}
	return out, nil
}

func (s *contactService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contact")
	}
	if req.ContactName != nil {
		if c.ContactName = strings.TrimSpace(*req.ContactName); c.ContactName == "" {
			return nil, invalidf("contact_name must not be blank")
		}
	}
	if req.Email1 != nil {
		c.Email1 = strings.TrimSpace(*req.Email1)
	}
	if req.Email2 != nil {
		c.Email2 = req.Email2
	}
	if req.Phone1 != nil {
		c.Phone1 = *req.Phone1
	}
	if req.Phone2 != nil {
		c.Phone2 = req.Phone2
	}
	if req.Phone3 != nil {
		c.Phone3 = req.Phone3
	}
	if req.IndividualAddress != nil {
		c.IndividualAddress = *req.IndividualAddress
	}
	if req.CompanyID != nil {
		company, err := s.company(ctx, *req.CompanyID)
		if err != nil {
			return nil, err
		}
		c.AttachCompany(company)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := toContactResponse(c)
	return &resp, nil
}

func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id), "contact")
}

func (s *contactService) company(ctx context.Context, raw string) (*model.Company, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidf("company_id: not a uuid")
	}
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("company_id: company %s does not exist", id)
		}
		return nil, err
	}
	return c, nil
}

func toContactResponse(c *model.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:                c.ID.String(),
		ContactName:       c.ContactName,
		Emails:            c.Emails(),
		Phones:            c.Phones(),
		CompanyID:         c.CompanyID.String(),
		CompanyName:       c.CompanyName(),
		LocationCity:      c.LocationCity,
		IndividualAddress: c.IndividualAddress,
	}
}

func contactRef(c *model.Contact) *dto.ContactRef {
	if c == nil {
		return nil
	}
	return &dto.ContactRef{ID: c.ID.String(), Name: c.ContactName, CompanyName: c.CompanyName()}
}

// resolveContact loads an optional contact with its company. Empty clears it.
func resolveContact(ctx context.Context, contacts repository.ContactRepository, raw *string) (*model.Contact, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, invalidf("contact_id: not a uuid")
	}
	c, err := contacts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("contact_id: contact %s does not exist", id)
		}
		return nil, err
	}
	return c, nil
}
