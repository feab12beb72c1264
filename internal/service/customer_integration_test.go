//go:build integration

package service_test

import (
	"context"
	"testing"
	"time"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"
	"kecdesk/internal/repository"
	"kecdesk/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_PurchaseOrderKeepsNamesWhenCompanyGoes(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	companies := repository.NewCompanyRepository(env.db)
	contacts := repository.NewContactRepository(env.db)
	orders := repository.NewPurchaseOrderRepository(env.db)

	co, err := service.NewCompanyService(companies).Create(ctx, dto.CreateCompanyRequest{
		CompanyName: "Tata Steel", City1: "Pune", Address1: "Chakan MIDC",
	})
	require.NoError(t, err)
	ct, err := service.NewContactService(contacts, companies).Create(ctx, dto.CreateContactRequest{
		ContactName: "R. Kulkarni", Email1: "rk@example.com", Phone1: "9800000000",
		CompanyID: co.ID, IndividualAddress: "Stores dept",
	})
	require.NoError(t, err)

	poSvc := service.NewPurchaseOrderService(orders, repository.NewUserRepository(env.db), contacts,
		fixedCalendar(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)), 7)
	po, err := poSvc.Create(ctx, dto.CreatePurchaseOrderRequest{
		PONumber: "PO-INT-1", OrderDate: "2026-01-02", ContactID: &ct.ID, DaysToMfg: 5,
	})
	require.NoError(t, err)
	require.NotNil(t, po.Contact)
	assert.Equal(t, "Tata Steel", po.Contact.CompanyName)

	_, err = service.NewCompanyService(companies).Create(ctx, dto.CreateCompanyRequest{
		CompanyName: "Tata Steel", City1: "Pune", Address1: "elsewhere",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	require.NoError(t, service.NewCompanyService(companies).Delete(ctx, uuid.MustParse(co.ID)))

	var stored model.PurchaseOrder
	require.NoError(t, env.db.First(&stored, "id = ?", po.ID).Error)
	assert.Nil(t, stored.ContactID)
	assert.Equal(t, "R. Kulkarni", stored.CustomerName)
	assert.Equal(t, "Tata Steel", stored.CompanyName)
}
