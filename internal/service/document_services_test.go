package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"
	"kecdesk/internal/numbering"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCalendar(y int, m time.Month, d int) Calendar {
	now := time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	return Calendar{Loc: time.UTC, Now: func() time.Time { return now }}
}

func intPtr(v int) *int { return &v }

type fixture struct {
	orders    *stubPurchaseOrderRepo
	invoices  *stubInvoiceRepo
	inquiries *stubInquiryRepo
	users     *stubUserRepo
	companies *stubCompanyRepo
	contacts  *stubContactRepo
	seqRepo   *stubSequenceRepo
	seq       SequenceService
	cal       Calendar
}

func newFixture(cal Calendar) *fixture {
	f := &fixture{
		orders:    newStubPurchaseOrderRepo(),
		inquiries: newStubInquiryRepo(),
		users:     &stubUserRepo{},
		seqRepo:   newStubSequenceRepo(),
		cal:       cal,
	}
	f.invoices = newStubInvoiceRepo(f.orders)
	f.companies, f.contacts = newStubCustomerRepos()
	f.seq = NewSequenceService(f.seqRepo, nil, SequenceOptions{Prefix: "KEC", MaxAttempts: 3})
	return f
}

func (f *fixture) poService() PurchaseOrderService {
	return NewPurchaseOrderService(f.orders, f.users, f.contacts, f.cal, 7)
}

func (f *fixture) invoiceService() InvoiceService {
	return NewInvoiceService(f.invoices, f.orders, f.seq, f.cal, InvoiceOptions{DefaultPaymentTermsDays: 15, DueSoonDays: 7})
}

func (f *fixture) inquiryService() InquiryService {
	return NewInquiryService(f.inquiries, f.users, f.seq, f.cal)
}

// ── purchase orders ──────────────────────────────────────────────────────────

func TestPurchaseOrder_CreateDueToday(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))

	resp, err := f.poService().Create(context.Background(), dto.CreatePurchaseOrderRequest{
		PONumber:     "PO-2026-001",
		OrderDate:    "2026-01-02",
		CustomerName: "Acme",
		OrderValue:   decimal.NewFromInt(50000),
		DaysToMfg:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", resp.DeliveryDate)
	assert.Equal(t, 0, resp.DueDays)
	assert.Equal(t, "Due Today", resp.DueStatus)
	assert.Equal(t, "Due today", resp.DueText)
	assert.Equal(t, model.POStatusOpen, resp.Status)
}

func TestPurchaseOrder_UpdateRecomputesDelivery(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	svc := f.poService()

	created, err := svc.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		PONumber: "PO-1", OrderDate: "2025-12-20", CustomerName: "Acme", DaysToMfg: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-12-28", created.DeliveryDate)
	assert.Equal(t, -5, created.DueDays)
	assert.Equal(t, "Overdue", created.DueStatus)

	id := uuid.MustParse(created.ID)
	updated, err := svc.Update(context.Background(), id, dto.UpdatePurchaseOrderRequest{DaysToMfg: intPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-19", updated.DeliveryDate)
	assert.Equal(t, "On Track", updated.DueStatus)
	assert.Equal(t, "17 days left", updated.DueText)
}

func TestPurchaseOrder_Errors(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	svc := f.poService()
	ctx := context.Background()

	req := dto.CreatePurchaseOrderRequest{PONumber: "PO-1", OrderDate: "2026-01-02", CustomerName: "Acme"}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput, "duplicate po number")

	bad := req
	bad.PONumber, bad.OrderDate = "PO-2", "02/01/2026"
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	ghost := uuid.New().String()
	bad = req
	bad.PONumber, bad.SalesPersonID = "PO-3", &ghost
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(ctx, uuid.New(), "shipped")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrNotFound)
}

// ── invoices ─────────────────────────────────────────────────────────────────

func seedOrder(t *testing.T, f *fixture, number string, terms *int) *model.PurchaseOrder {
	t.Helper()
	po := &model.PurchaseOrder{
		PONumber:         number,
		OrderDate:        time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
		CustomerName:     "Acme",
		OrderValue:       decimal.NewFromInt(120000),
		PaymentTermsDays: terms,
	}
	require.NoError(t, f.orders.Create(context.Background(), po))
	return po
}

func TestInvoice_CreateAssignsNumberAndCopiesFromOrder(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	po := seedOrder(t, f, "PO-1", intPtr(30))
	svc := f.invoiceService()

	inv, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PurchaseOrderID: po.ID.String(),
		InvoiceDate:     "2026-01-02",
		GRNDate:         "2025-12-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "KEC/001/2526", inv.InvoiceNumber)
	assert.Equal(t, "2526", inv.FiscalYear)
	assert.Equal(t, "Acme", inv.CustomerName)
	assert.True(t, inv.OrderValue.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, 30, inv.PaymentTermsDays)
	assert.Equal(t, "2026-01-04", inv.PaymentDueDate)
	assert.Equal(t, "Due Soon", inv.PaymentStatus)
	assert.Equal(t, "PO-1", inv.PONumber)

	second, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		PurchaseOrderID: po.ID.String(),
		InvoiceDate:     "2026-04-01",
		GRNDate:         "2026-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "KEC/001/2627", second.InvoiceNumber, "new fiscal year restarts the series")
}

func TestInvoice_DefaultPaymentTerms(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	po := seedOrder(t, f, "PO-1", nil)

	inv, err := f.invoiceService().Create(context.Background(), dto.CreateInvoiceRequest{
		PurchaseOrderID: po.ID.String(),
		InvoiceDate:     "2025-12-20",
		GRNDate:         "2025-12-20",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, inv.PaymentTermsDays)
	assert.Equal(t, "2026-01-04", inv.PaymentDueDate)
}

func TestInvoice_UnknownOrder(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	_, err := f.invoiceService().Create(context.Background(), dto.CreateInvoiceRequest{
		PurchaseOrderID: uuid.New().String(),
		InvoiceDate:     "2026-01-02",
		GRNDate:         "2026-01-02",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.seqRepo.counters, "no number is consumed for a rejected invoice")
}

func TestInvoice_MarkPaidAndUpdateKeepsNumber(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	po := seedOrder(t, f, "PO-1", nil)
	svc := f.invoiceService()
	ctx := context.Background()

	inv, err := svc.Create(ctx, dto.CreateInvoiceRequest{PurchaseOrderID: po.ID.String(), InvoiceDate: "2025-12-01", GRNDate: "2025-12-01"})
	require.NoError(t, err)
	assert.Equal(t, "Overdue", inv.PaymentStatus)
	id := uuid.MustParse(inv.ID)

	updated, err := svc.Update(ctx, id, dto.UpdateInvoiceRequest{PaymentTermsDays: intPtr(45)})
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, "2026-01-15", updated.PaymentDueDate)
	assert.Equal(t, "Not Due", updated.PaymentStatus)

	paid, err := svc.MarkPaid(ctx, id, dto.MarkInvoicePaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Paid", paid.PaymentStatus)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "2026-01-02", *paid.PaidAt)
}

func TestInvoice_ReserveNumber(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	svc := f.invoiceService()

	got, err := svc.ReserveNumber(context.Background(), dto.ReserveInvoiceNumberRequest{})
	require.NoError(t, err)
	assert.Equal(t, "KEC/001/2526", got.Number)
	assert.Equal(t, "2526", got.Epoch)

	got, err = svc.ReserveNumber(context.Background(), dto.ReserveInvoiceNumberRequest{Date: "2026-05-10"})
	require.NoError(t, err)
	assert.Equal(t, "KEC/001/2627", got.Number)
}

// ── inquiries ────────────────────────────────────────────────────────────────

func TestInquiry_CreateAssignsMonthID(t *testing.T) {
	f := newFixture(fixedCalendar(2025, time.July, 14))
	f.seqRepo.docs[seqKey(model.DocTypeInquiry, "JY2025")] = []string{"KEC019JY2025"}
	svc := f.inquiryService()

	inq, err := svc.Create(context.Background(), dto.CreateInquiryRequest{
		LeadDescription: "Hydraulic press refurbishment",
		CustomerName:    "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "KEC020JY2025", inq.CreateID)
	assert.Equal(t, "KEC020JY2025", inq.QuoteNo)
	assert.Equal(t, "Inputs", inq.Status)
	assert.Equal(t, "eKEC020JY2025", inq.OpportunityID)
	assert.Equal(t, "2025-07-14", inq.DateOfQuote)
}

func TestInquiry_StatusDrivesOpportunityID(t *testing.T) {
	f := newFixture(fixedCalendar(2025, time.July, 14))
	svc := f.inquiryService()
	ctx := context.Background()

	inq, err := svc.Create(ctx, dto.CreateInquiryRequest{LeadDescription: "Conveyor", Status: "Quotation"})
	require.NoError(t, err)
	id := uuid.MustParse(inq.ID)

	got, err := svc.UpdateStatus(ctx, id, dto.UpdateInquiryStatusRequest{Status: "PO-Confirm"})
	require.NoError(t, err)
	assert.Equal(t, "o"+inq.CreateID, got.OpportunityID)

	got, err = svc.UpdateStatus(ctx, id, dto.UpdateInquiryStatusRequest{Status: "Lost"})
	require.NoError(t, err)
	assert.Equal(t, "LOST", got.OpportunityID)
	assert.Equal(t, inq.CreateID, got.CreateID)

	_, err = svc.UpdateStatus(ctx, id, dto.UpdateInquiryStatusRequest{Status: "Shipped"})
	var verr *numbering.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestInquiry_RejectsUnknownStatusBeforeAllocating(t *testing.T) {
	f := newFixture(fixedCalendar(2025, time.July, 14))
	_, err := f.inquiryService().Create(context.Background(), dto.CreateInquiryRequest{LeadDescription: "x", Status: "po confirm"})
	var verr *numbering.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, f.seqRepo.counters)
}

func TestInquiry_ItemsAndRemarks(t *testing.T) {
	f := newFixture(fixedCalendar(2025, time.July, 14))
	svc := f.inquiryService()
	ctx := context.Background()

	inq, err := svc.Create(ctx, dto.CreateInquiryRequest{LeadDescription: "Gearbox"})
	require.NoError(t, err)
	id := uuid.MustParse(inq.ID)

	got, err := svc.ReplaceItems(ctx, id, dto.ReplaceInquiryItemsRequest{Items: []dto.InquiryItemRequest{
		{ItemName: "Gear", Quantity: decimal.NewFromInt(4), Price: decimal.RequireFromString("250.50")},
		{ItemName: "Shaft", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1000)},
	}})
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(2002)))

	_, err = svc.ReplaceItems(ctx, id, dto.ReplaceInquiryItemsRequest{Items: []dto.InquiryItemRequest{
		{ItemName: "Gear", Quantity: decimal.Zero, Price: decimal.NewFromInt(1)},
	}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	extra := "Spare seals supplied free"
	got, err = svc.UpdateRemarks(ctx, id, dto.UpdateInquiryRemarksRequest{RemarksAdd: &extra})
	require.NoError(t, err)
	require.NotNil(t, got.RemarksAdd)
	assert.Equal(t, extra, *got.RemarksAdd)
}

func TestInquiry_ReserveID(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	got, err := f.inquiryService().ReserveID(context.Background(), dto.ReserveInquiryIDRequest{})
	require.NoError(t, err)
	assert.Equal(t, "KEC001JA2026", got.Number)
	assert.Equal(t, "JA2026", got.Epoch)
}
