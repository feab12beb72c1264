package service

import (
	"context"
	"errors"

	"kecdesk/internal/duedate"
	"kecdesk/internal/dto"
	"kecdesk/internal/model"
	"kecdesk/internal/numbering"
	"kecdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceService interface {
	// Create raises an invoice against a purchase order and assigns its number.
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	// ReserveNumber allocates the next number of the fiscal year containing the
	// requested date (today when empty) without creating an invoice.
	ReserveNumber(ctx context.Context, req dto.ReserveInvoiceNumberRequest) (*dto.ReservedNumberResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	MarkPaid(ctx context.Context, id uuid.UUID, req dto.MarkInvoicePaidRequest) (*dto.InvoiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type InvoiceOptions struct {
	DefaultPaymentTermsDays int
	DueSoonDays             int
}

type invoiceService struct {
	repo   repository.InvoiceRepository
	orders repository.PurchaseOrderRepository
	seq    SequenceService
	cal    Calendar
	opts   InvoiceOptions
}

func NewInvoiceService(repo repository.InvoiceRepository, orders repository.PurchaseOrderRepository, seq SequenceService, cal Calendar, opts InvoiceOptions) InvoiceService {
	return &invoiceService{repo: repo, orders: orders, seq: seq, cal: cal, opts: opts}
}

func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	poID, err := uuid.Parse(req.PurchaseOrderID)
	if err != nil {
		return nil, invalidf("purchase_order_id: not a uuid")
	}
	invoiceDate, err := parseDate("invoice_date", req.InvoiceDate)
	if err != nil {
		return nil, err
	}
	grnDate, err := parseDate("grn_date", req.GRNDate)
	if err != nil {
		return nil, err
	}

	po, err := s.orders.FindByID(ctx, poID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("purchase_order_id: order %s does not exist", poID)
		}
		return nil, err
	}

	terms := s.opts.DefaultPaymentTermsDays
	if po.PaymentTermsDays != nil {
		terms = *po.PaymentTermsDays
	}

	fy := numbering.FiscalYearOf(invoiceDate)
	inv := &model.Invoice{
		FiscalYear:       fy.Tag(),
		InvoiceDate:      invoiceDate,
		PurchaseOrderID:  po.ID,
		CustomerName:     po.CustomerName,
		OrderValue:       po.OrderValue,
		GRNDate:          grnDate,
		PaymentTermsDays: terms,
		Remarks:          req.Remarks,
	}
	if err := inv.Recompute(); err != nil {
		return nil, invalidf("%v", err)
	}

	_, err = s.seq.WithInvoiceNumber(ctx, fy, func(tx *gorm.DB, number string) error {
		inv.ID = uuid.Nil
		inv.InvoiceNumber = number
		return s.repo.CreateTx(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, inv.ID)
}

func (s *invoiceService) ReserveNumber(ctx context.Context, req dto.ReserveInvoiceNumberRequest) (*dto.ReservedNumberResponse, error) {
	day := s.cal.Today()
	if req.Date != "" {
		var err error
		if day, err = parseDate("date", req.Date); err != nil {
			return nil, err
		}
	}
	fy := numbering.FiscalYearOf(day)
	number, err := s.seq.AllocateInvoiceNumber(ctx, fy)
	if err != nil {
		return nil, err
	}
	return &dto.ReservedNumberResponse{Number: number, Epoch: fy.Tag()}, nil
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice")
	}
	resp := s.toResponse(inv)
	return &resp, nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceListResponse{
		Data:     make([]dto.InvoiceResponse, 0, len(invoices)),
		ListMeta: dto.NewListMeta(total, filter.Page, filter.Limit),
	}
	for i := range invoices {
		out.Data = append(out.Data, s.toResponse(&invoices[i]))
	}
	return out, nil
}

func (s *invoiceService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice")
	}
	if req.GRNDate != nil {
		if inv.GRNDate, err = parseDate("grn_date", *req.GRNDate); err != nil {
			return nil, err
		}
	}
	if req.PaymentTermsDays != nil {
		inv.PaymentTermsDays = *req.PaymentTermsDays
	}
	if req.Remarks != nil {
		inv.Remarks = req.Remarks
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		if errors.Is(err, duedate.ErrNegativeDays) {
			return nil, invalidf("%v", err)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *invoiceService) MarkPaid(ctx context.Context, id uuid.UUID, req dto.MarkInvoicePaidRequest) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice")
	}
	paid := s.cal.Today()
	if req.PaidOn != "" {
		if paid, err = parseDate("paid_on", req.PaidOn); err != nil {
			return nil, err
		}
	}
	inv.PaidAt = &paid
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id), "invoice")
}

func (s *invoiceService) toResponse(inv *model.Invoice) dto.InvoiceResponse {
	dueDays := inv.DueDays(s.cal.Today())
	status := duedate.Classify(dueDays, s.opts.DueSoonDays).PaymentLabel()
	if inv.IsPaid() {
		status = "Paid"
	}
	resp := dto.InvoiceResponse{
		ID:               inv.ID.String(),
		InvoiceNumber:    inv.InvoiceNumber,
		FiscalYear:       inv.FiscalYear,
		InvoiceDate:      formatDate(inv.InvoiceDate),
		PurchaseOrderID:  inv.PurchaseOrderID.String(),
		CustomerName:     inv.CustomerName,
		OrderValue:       inv.OrderValue,
		GRNDate:          formatDate(inv.GRNDate),
		PaymentTermsDays: inv.PaymentTermsDays,
		PaymentDueDate:   formatDate(inv.PaymentDueDate),
		DueDays:          dueDays,
		PaymentStatus:    status,
		DueText:          duedate.DisplayText(dueDays),
		PaidAt:           formatOptionalDate(inv.PaidAt),
		Remarks:          inv.Remarks,
	}
	if inv.PurchaseOrder != nil {
		resp.PONumber = inv.PurchaseOrder.PONumber
	}
	return resp
}
