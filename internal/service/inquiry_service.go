package service

import (
	"context"
	"strings"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"
	"kecdesk/internal/numbering"
	"kecdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryService interface {
	// Create assigns the create-id of the current month and stores the inquiry.
	Create(ctx context.Context, req dto.CreateInquiryRequest) (*dto.InquiryResponse, error)
	// ReserveID allocates the next create-id of the month containing the
	// requested date (today when empty) without creating an inquiry.
	ReserveID(ctx context.Context, req dto.ReserveInquiryIDRequest) (*dto.ReservedNumberResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InquiryResponse, error)
	List(ctx context.Context, filter dto.InquiryFilter) (*dto.InquiryListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateInquiryStatusRequest) (*dto.InquiryResponse, error)
	UpdateRemarks(ctx context.Context, id uuid.UUID, req dto.UpdateInquiryRemarksRequest) (*dto.InquiryResponse, error)
	ReplaceItems(ctx context.Context, id uuid.UUID, req dto.ReplaceInquiryItemsRequest) (*dto.InquiryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type inquiryService struct {
	repo  repository.InquiryRepository
	users repository.UserRepository
	seq   SequenceService
	cal   Calendar
}

func NewInquiryService(repo repository.InquiryRepository, users repository.UserRepository, seq SequenceService, cal Calendar) InquiryService {
	return &inquiryService{repo: repo, users: users, seq: seq, cal: cal}
}

func (s *inquiryService) Create(ctx context.Context, req dto.CreateInquiryRequest) (*dto.InquiryResponse, error) {
	status := numbering.DefaultStatus
	if req.Status != "" {
		var err error
		if status, err = numbering.ParseStatus(req.Status); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.LeadDescription) == "" {
		return nil, invalidf("lead_description is required")
	}

	today := s.cal.Today()
	quoteDate := today
	if req.DateOfQuote != "" {
		var err error
		if quoteDate, err = parseDate("date_of_quote", req.DateOfQuote); err != nil {
			return nil, err
		}
	}
	nextDate, err := parseOptionalDate("next_date", req.NextDate)
	if err != nil {
		return nil, err
	}
	salesID, err := resolveUser(ctx, s.users, "sales_id", req.SalesID)
	if err != nil {
		return nil, err
	}

	month := numbering.MonthEpochOf(today)
	inq := &model.Inquiry{
		MonthEpoch:      month.Tag(),
		Status:          string(status),
		LeadDescription: req.LeadDescription,
		CompanyName:     req.CompanyName,
		CustomerName:    req.CustomerName,
		DateOfQuote:     quoteDate,
		Remarks:         req.Remarks,
		SalesID:         salesID,
		NextDate:        nextDate,
	}

	_, err = s.seq.WithInquiryID(ctx, month, func(tx *gorm.DB, createID string) error {
		inq.ID = uuid.Nil
		inq.CreateID = createID
		return s.repo.CreateTx(ctx, tx, inq)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, inq.ID)
}

func (s *inquiryService) ReserveID(ctx context.Context, req dto.ReserveInquiryIDRequest) (*dto.ReservedNumberResponse, error) {
	day := s.cal.Today()
	if req.Date != "" {
		var err error
		if day, err = parseDate("date", req.Date); err != nil {
			return nil, err
		}
	}
	month := numbering.MonthEpochOf(day)
	id, err := s.seq.AllocateInquiryID(ctx, month)
	if err != nil {
		return nil, err
	}
	return &dto.ReservedNumberResponse{Number: id, Epoch: month.Tag()}, nil
}

func (s *inquiryService) Get(ctx context.Context, id uuid.UUID) (*dto.InquiryResponse, error) {
	inq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "inquiry")
	}
	resp := toInquiryResponse(inq)
	return &resp, nil
}

func (s *inquiryService) List(ctx context.Context, filter dto.InquiryFilter) (*dto.InquiryListResponse, error) {
	inquiries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.InquiryListResponse{
		Data:     make([]dto.InquiryResponse, 0, len(inquiries)),
		ListMeta: dto.NewListMeta(total, filter.Page, filter.Limit),
	}
	for i := range inquiries {
		out.Data = append(out.Data, toInquiryResponse(&inquiries[i]))
	}
	return out, nil
}

func (s *inquiryService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateInquiryStatusRequest) (*dto.InquiryResponse, error) {
	status, err := numbering.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	inq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "inquiry")
	}
	inq.Status = string(status)
	if req.NextDate != nil {
		if inq.NextDate, err = parseOptionalDate("next_date", req.NextDate); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, inq); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *inquiryService) UpdateRemarks(ctx context.Context, id uuid.UUID, req dto.UpdateInquiryRemarksRequest) (*dto.InquiryResponse, error) {
	inq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "inquiry")
	}
	if req.Remarks != nil {
		inq.Remarks = req.Remarks
	}
	if req.RemarksAdd != nil {
		inq.RemarksAdd = req.RemarksAdd
	}
	if err := s.repo.Update(ctx, inq); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *inquiryService) ReplaceItems(ctx context.Context, id uuid.UUID, req dto.ReplaceInquiryItemsRequest) (*dto.InquiryResponse, error) {
	items := make([]model.InquiryItem, 0, len(req.Items))
	for _, it := range req.Items {
		if !it.Quantity.IsPositive() {
			return nil, invalidf("items: quantity of %q must be positive", it.ItemName)
		}
		if it.Price.IsNegative() {
			return nil, invalidf("items: price of %q must not be negative", it.ItemName)
		}
		items = append(items, model.InquiryItem{ItemName: it.ItemName, Quantity: it.Quantity, Price: it.Price})
	}
	if err := s.repo.ReplaceItems(ctx, id, items); err != nil {
		return nil, notFound(err, "inquiry")
	}
	return s.Get(ctx, id)
}

func (s *inquiryService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id), "inquiry")
}

func toInquiryResponse(inq *model.Inquiry) dto.InquiryResponse {
	resp := dto.InquiryResponse{
		ID:              inq.ID.String(),
		CreateID:        inq.CreateID,
		QuoteNo:         inq.QuoteNo,
		OpportunityID:   inq.OpportunityID,
		Status:          inq.Status,
		LeadDescription: inq.LeadDescription,
		CompanyName:     inq.CompanyName,
		CustomerName:    inq.CustomerName,
		DateOfQuote:     formatDate(inq.DateOfQuote),
		Sales:           userRef(inq.Sales),
		NextDate:        formatOptionalDate(inq.NextDate),
		Remarks:         inq.Remarks,
		RemarksAdd:      inq.RemarksAdd,
		Total:           inq.Total(),
	}
	for _, it := range inq.Items {
		resp.Items = append(resp.Items, dto.InquiryItemResponse{
			ID:       it.ID.String(),
			ItemName: it.ItemName,
			Quantity: it.Quantity,
			Price:    it.Price,
			Amount:   it.Amount,
		})
	}
	return resp
}
