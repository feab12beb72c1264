package service

import (
	"context"
	"testing"
	"time"

	"kecdesk/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seedContact(t *testing.T, f *fixture, company, city, name string) (*dto.CompanyResponse, *dto.ContactResponse) {
	t.Helper()
	ctx := context.Background()
	co, err := NewCompanyService(f.companies).Create(ctx, dto.CreateCompanyRequest{
		CompanyName: company, City1: city, Address1: "Plot 4, MIDC",
	})
	require.NoError(t, err)
	ct, err := NewContactService(f.contacts, f.companies).Create(ctx, dto.CreateContactRequest{
		ContactName:       name,
		Email1:            "buyer@example.com",
		Phone1:            "9800000000",
		CompanyID:         co.ID,
		IndividualAddress: "Stores dept",
	})
	require.NoError(t, err)
	return co, ct
}

func TestCompany_DuplicateNameInCity(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	svc := NewCompanyService(f.companies)
	ctx := context.Background()

	req := dto.CreateCompanyRequest{CompanyName: "Tata Steel", City1: "Pune", Address1: "Chakan"}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req.City1 = "Nagpur"
	_, err = svc.Create(ctx, req)
	assert.NoError(t, err, "same name in another city is a separate company")
}

func TestContact_TakesCityFromCompany(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	co, ct := seedContact(t, f, "Tata Steel", "Pune", "R. Kulkarni")

	assert.Equal(t, "Pune", ct.LocationCity)
	assert.Equal(t, "Tata Steel", ct.CompanyName)
	assert.Equal(t, co.ID, ct.CompanyID)
	assert.Equal(t, []string{"buyer@example.com"}, ct.Emails)

	_, err := NewCompanyService(f.companies).Update(context.Background(), uuid.MustParse(co.ID), dto.UpdateCompanyRequest{City1: strPtr("Mumbai")})
	require.NoError(t, err)
	got, err := NewContactService(f.contacts, f.companies).Get(context.Background(), uuid.MustParse(ct.ID))
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.LocationCity)
}

func TestContact_UnknownCompany(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	_, err := NewContactService(f.contacts, f.companies).Create(context.Background(), dto.CreateContactRequest{
		ContactName: "Nobody", Email1: "n@example.com", Phone1: "1", CompanyID: uuid.NewString(), IndividualAddress: "x",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompany_DeleteTakesContacts(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	co, ct := seedContact(t, f, "Tata Steel", "Pune", "R. Kulkarni")
	ctx := context.Background()

	require.NoError(t, NewCompanyService(f.companies).Delete(ctx, uuid.MustParse(co.ID)))
	_, err := NewContactService(f.contacts, f.companies).Get(ctx, uuid.MustParse(ct.ID))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, NewCompanyService(f.companies).Delete(ctx, uuid.MustParse(co.ID)), ErrNotFound)
}

func TestPurchaseOrder_CreateCopiesCustomerFromContact(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	_, ct := seedContact(t, f, "Tata Steel", "Pune", "R. Kulkarni")

	resp, err := f.poService().Create(context.Background(), dto.CreatePurchaseOrderRequest{
		PONumber:     "PO-77",
		OrderDate:    "2026-01-02",
		ContactID:    &ct.ID,
		CustomerName: "typed by hand",
		CompanyName:  "typed by hand",
		DaysToMfg:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, "R. Kulkarni", resp.CustomerName)
	assert.Equal(t, "Tata Steel", resp.CompanyName)
	require.NotNil(t, resp.Contact)
	assert.Equal(t, ct.ID, resp.Contact.ID)

	stored := f.orders.orders[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored.ContactID)
	assert.Equal(t, ct.ID, stored.ContactID.String())
}

func TestPurchaseOrder_UpdateContact(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	_, first := seedContact(t, f, "Tata Steel", "Pune", "R. Kulkarni")
	_, second := seedContact(t, f, "Bharat Forge", "Pune", "S. Deshmukh")
	svc := f.poService()
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreatePurchaseOrderRequest{PONumber: "PO-1", OrderDate: "2026-01-02", ContactID: &first.ID})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	updated, err := svc.Update(ctx, id, dto.UpdatePurchaseOrderRequest{ContactID: &second.ID})
	require.NoError(t, err)
	assert.Equal(t, "S. Deshmukh", updated.CustomerName)
	assert.Equal(t, "Bharat Forge", updated.CompanyName)

	cleared, err := svc.Update(ctx, id, dto.UpdatePurchaseOrderRequest{ContactID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Contact)
	assert.Equal(t, "S. Deshmukh", cleared.CustomerName, "copied names stay after unlinking")
}

func TestPurchaseOrder_ContactErrors(t *testing.T) {
	f := newFixture(fixedCalendar(2026, time.January, 2))
	svc := f.poService()
	ctx := context.Background()

	ghost := uuid.NewString()
	_, err := svc.Create(ctx, dto.CreatePurchaseOrderRequest{PONumber: "PO-1", OrderDate: "2026-01-02", ContactID: &ghost})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, dto.CreatePurchaseOrderRequest{PONumber: "PO-2", OrderDate: "2026-01-02"})
	assert.ErrorIs(t, err, ErrInvalidInput, "no contact and no customer name")
	assert.Empty(t, f.orders.orders)
}
