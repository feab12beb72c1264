package service

import (
	"context"
	"errors"

	"kecdesk/internal/duedate"
	"kecdesk/internal/dto"
	"kecdesk/internal/model"
	"kecdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderService interface {
	Create(ctx context.Context, req dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseOrderResponse, error)
	List(ctx context.Context, filter dto.PurchaseOrderFilter) (*dto.PurchaseOrderListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.PurchaseOrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type purchaseOrderService struct {
	repo        repository.PurchaseOrderRepository
	users       repository.UserRepository
	contacts    repository.ContactRepository
	cal         Calendar
	dueSoonDays int
}

func NewPurchaseOrderService(repo repository.PurchaseOrderRepository, users repository.UserRepository, contacts repository.ContactRepository, cal Calendar, dueSoonDays int) PurchaseOrderService {
	return &purchaseOrderService{repo: repo, users: users, contacts: contacts, cal: cal, dueSoonDays: dueSoonDays}
}

func (s *purchaseOrderService) Create(ctx context.Context, req dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	orderDate, err := parseDate("order_date", req.OrderDate)
	if err != nil {
		return nil, err
	}
	po := &model.PurchaseOrder{
		PONumber:                 req.PONumber,
		OrderDate:                orderDate,
		CompanyName:              req.CompanyName,
		CustomerName:             req.CustomerName,
		OrderValue:               req.OrderValue,
		DaysToMfg:                req.DaysToMfg,
		PaymentTermsDays:         req.PaymentTermsDays,
		Status:                   model.POStatusOpen,
		SalesPercentage:          req.SalesPercentage,
		ProjectManagerPercentage: req.ProjectManagerPercentage,
		Remarks:                  req.Remarks,
	}
	// A linked contact overrides the free-text customer fields.
	contact, err := resolveContact(ctx, s.contacts, req.ContactID)
	if err != nil {
		return nil, err
	}
	if contact != nil {
		po.CopyCustomer(contact)
	} else if po.CustomerName == "" {
		return nil, invalidf("customer_name is required without contact_id")
	}
	if po.SalesPersonID, err = s.userRef(ctx, "sales_person_id", req.SalesPersonID); err != nil {
		return nil, err
	}
	if po.ProjectManagerID, err = s.userRef(ctx, "project_manager_id", req.ProjectManagerID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, po); err != nil {
		return nil, s.writeErr(err)
	}
	return s.Get(ctx, po.ID)
}

func (s *purchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*dto.PurchaseOrderResponse, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase order")
	}
	resp := s.toResponse(po)
	return &resp, nil
}

func (s *purchaseOrderService) List(ctx context.Context, filter dto.PurchaseOrderFilter) (*dto.PurchaseOrderListResponse, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.PurchaseOrderListResponse{
		Data:     make([]dto.PurchaseOrderResponse, 0, len(orders)),
		ListMeta: dto.NewListMeta(total, filter.Page, filter.Limit),
	}
	for i := range orders {
		out.Data = append(out.Data, s.toResponse(&orders[i]))
	}
	return out, nil
}

func (s *purchaseOrderService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase order")
	}

	if req.OrderDate != nil {
		if po.OrderDate, err = parseDate("order_date", *req.OrderDate); err != nil {
			return nil, err
		}
	}
	if req.CompanyName != nil {
		po.CompanyName = *req.CompanyName
	}
	if req.CustomerName != nil {
		po.CustomerName = *req.CustomerName
	}
	if req.ContactID != nil {
		contact, err := resolveContact(ctx, s.contacts, req.ContactID)
		if err != nil {
			return nil, err
		}
		if contact != nil {
			po.CopyCustomer(contact)
		} else {
			po.ContactID, po.Contact = nil, nil
		}
	}
	if req.OrderValue != nil {
		po.OrderValue = *req.OrderValue
	}
	if req.DaysToMfg != nil {
		po.DaysToMfg = *req.DaysToMfg
	}
	if req.PaymentTermsDays != nil {
		po.PaymentTermsDays = req.PaymentTermsDays
	}
	if req.SalesPersonID != nil {
		if po.SalesPersonID, err = s.userRef(ctx, "sales_person_id", req.SalesPersonID); err != nil {
			return nil, err
		}
		po.SalesPerson = nil
	}
	if req.SalesPercentage != nil {
		po.SalesPercentage = req.SalesPercentage
	}
	if req.ProjectManagerID != nil {
		if po.ProjectManagerID, err = s.userRef(ctx, "project_manager_id", req.ProjectManagerID); err != nil {
			return nil, err
		}
		po.ProjectManager = nil
	}
	if req.ProjectManagerPercentage != nil {
		po.ProjectManagerPercentage = req.ProjectManagerPercentage
	}
	if req.Remarks != nil {
		po.Remarks = req.Remarks
	}

	if err := s.repo.Update(ctx, po); err != nil {
		return nil, s.writeErr(err)
	}
	return s.Get(ctx, id)
}

func (s *purchaseOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*dto.PurchaseOrderResponse, error) {
	switch status {
	case model.POStatusOpen, model.POStatusDelivered, model.POStatusClosed:
	default:
		return nil, invalidf("status: unknown purchase order status %q", status)
	}
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase order")
	}
	po.Status = status
	if err := s.repo.Update(ctx, po); err != nil {
		return nil, s.writeErr(err)
	}
	return s.Get(ctx, id)
}

func (s *purchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id), "purchase order")
}

// userRef resolves an optional user id; an empty string clears it.
func (s *purchaseOrderService) userRef(ctx context.Context, field string, raw *string) (*uuid.UUID, error) {
	return resolveUser(ctx, s.users, field, raw)
}

func (s *purchaseOrderService) writeErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return invalidf("po_number already exists")
	case errors.Is(err, duedate.ErrNegativeDays):
		return invalidf("%v", err)
	}
	return err
}

func (s *purchaseOrderService) toResponse(po *model.PurchaseOrder) dto.PurchaseOrderResponse {
	dueDays := po.DueDays(s.cal.Today())
	return dto.PurchaseOrderResponse{
		ID:                       po.ID.String(),
		PONumber:                 po.PONumber,
		OrderDate:                formatDate(po.OrderDate),
		Contact:                  contactRef(po.Contact),
		CompanyName:              po.CompanyName,
		CustomerName:             po.CustomerName,
		OrderValue:               po.OrderValue,
		DaysToMfg:                po.DaysToMfg,
		PaymentTermsDays:         po.PaymentTermsDays,
		DeliveryDate:             formatDate(po.DeliveryDate),
		DueDays:                  dueDays,
		DueStatus:                duedate.Classify(dueDays, s.dueSoonDays).String(),
		DueText:                  duedate.DisplayText(dueDays),
		Status:                   po.Status,
		SalesPerson:              userRef(po.SalesPerson),
		SalesPercentage:          po.SalesPercentage,
		ProjectManager:           userRef(po.ProjectManager),
		ProjectManagerPercentage: po.ProjectManagerPercentage,
		Remarks:                  po.Remarks,
	}
}

func userRef(u *model.User) *dto.UserRef {
	if u == nil {
		return nil
	}
	return &dto.UserRef{ID: u.ID.String(), Name: u.DisplayName()}
}

// resolveUser checks that a referenced user exists. Empty clears the reference.
func resolveUser(ctx context.Context, users repository.UserRepository, field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, invalidf("%s: not a uuid", field)
	}
	if _, err := users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("%s: user %s does not exist", field, id)
		}
		return nil, err
	}
	return &id, nil
}
