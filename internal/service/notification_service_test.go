package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kecdesk/internal/model"
	"kecdesk/internal/notification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mailUser(username, roles, mail string) model.User {
	return model.User{ID: uuid.New(), Username: username, Name: username, Roles: roles, Email: &mail, Active: true}
}

type notifyFixture struct {
	*fixture
	notifier *recordingNotifier
	svc      NotificationService
	sales    model.User
	pm       model.User
}

func newNotifyFixture(t *testing.T) *notifyFixture {
	t.Helper()
	f := &notifyFixture{fixture: newFixture(fixedCalendar(2026, time.January, 2)), notifier: &recordingNotifier{}}
	f.sales = mailUser("ravi", "sales", "ravi@kec.test")
	f.pm = mailUser("meena", "project_manager", "meena@kec.test")
	f.users.users = []model.User{
		f.sales,
		f.pm,
		mailUser("admin", "admin", "admin@kec.test"),
		mailUser("owner", "manager,admin", "owner@kec.test"),
	}
	f.svc = NewNotificationService(f.orders, f.invoices, f.inquiries, f.users, f.notifier)
	return f
}

func (f *notifyFixture) addOrder(t *testing.T, number string, orderDate time.Time, days int, value int64) *model.PurchaseOrder {
	t.Helper()
	po := &model.PurchaseOrder{
		PONumber:       number,
		OrderDate:      orderDate,
		DaysToMfg:      days,
		CustomerName:   "Acme",
		OrderValue:     decimal.NewFromInt(value),
		SalesPerson:    &f.sales,
		ProjectManager: &f.pm,
	}
	require.NoError(t, f.orders.Create(context.Background(), po))
	return po
}

var jan2 = time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

func TestRunDailyNotifications_Buckets(t *testing.T) {
	f := newNotifyFixture(t)
	f.addOrder(t, "PO-TODAY", jan2, 0, 1000)
	f.addOrder(t, "PO-LATE", time.Date(2025, time.December, 28, 0, 0, 0, 0, time.UTC), 0, 2500)
	f.addOrder(t, "PO-LATER", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), 10, 500)
	f.addOrder(t, "PO-FUTURE", jan2, 20, 9000)
	closed := f.addOrder(t, "PO-CLOSED", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), 0, 700)
	closed.Status = model.POStatusClosed
	require.NoError(t, f.orders.Update(context.Background(), closed))

	res, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	require.NoError(t, err)

	assert.Equal(t, 1, res.DueTodayPOs)
	assert.Equal(t, 0, res.DueTodayInvoices)
	assert.Equal(t, 2, res.OverduePOs)
	assert.Equal(t, 0, res.OverdueInvoices)

	require.Len(t, f.notifier.sent, 2)
	reminder := f.notifier.sent[0]
	assert.Equal(t, []string{"ravi@kec.test", "meena@kec.test"}, reminder.To)
	assert.Contains(t, reminder.Subject, "PO-TODAY")

	escalation := f.notifier.sent[1]
	assert.Equal(t, []string{"admin@kec.test", "owner@kec.test"}, escalation.To)
	assert.Contains(t, escalation.Text, "PO-LATE")
	assert.Contains(t, escalation.Text, "5 days overdue")
	assert.Contains(t, escalation.Text, "Total: 3000.00")
	assert.NotContains(t, escalation.Text, "PO-CLOSED")

	require.Len(t, res.Actions, 2)
	assert.True(t, strings.HasPrefix(res.Actions[0], "sent reminder for Purchase Order PO-TODAY"))
	assert.True(t, strings.HasPrefix(res.Actions[1], "sent escalation of 2 overdue purchase orders (total 3000.00)"))
}

func TestRunDailyNotifications_InvoicesUsePaymentDueDate(t *testing.T) {
	f := newNotifyFixture(t)
	po := f.addOrder(t, "PO-1", time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), 0, 10000)

	add := func(number string, grn time.Time, paid bool) {
		inv := &model.Invoice{InvoiceNumber: number, FiscalYear: "2526", PurchaseOrderID: po.ID,
			CustomerName: "Acme", OrderValue: decimal.NewFromInt(4000), GRNDate: grn, PaymentTermsDays: 15}
		if paid {
			inv.PaidAt = &jan2
		}
		require.NoError(t, f.invoices.CreateTx(context.Background(), nil, inv))
	}
	add("KEC/001/2526", time.Date(2025, time.December, 18, 0, 0, 0, 0, time.UTC), false)
	add("KEC/002/2526", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), false)
	add("KEC/003/2526", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), true)

	res, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DueTodayInvoices)
	assert.Equal(t, 1, res.OverdueInvoices)
	assert.Equal(t, 1, res.OverduePOs, "the parent order itself is overdue")
}

func TestRunDailyNotifications_ResendsOnEveryInvocation(t *testing.T) {
	f := newNotifyFixture(t)
	f.addOrder(t, "PO-TODAY", jan2, 0, 1000)

	first, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	require.NoError(t, err)
	second, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	require.NoError(t, err)

	assert.Equal(t, first.Actions, second.Actions)
	assert.Len(t, f.notifier.sent, 2, "no sent-log: the same reminder goes out twice")
}

func TestRunDailyNotifications_SendFailureDoesNotAbort(t *testing.T) {
	f := newNotifyFixture(t)
	f.addOrder(t, "PO-TODAY", jan2, 0, 1000)
	f.addOrder(t, "PO-LATE", time.Date(2025, time.December, 28, 0, 0, 0, 0, time.UTC), 0, 2500)
	f.notifier.fail = func(m notification.Message) bool { return strings.Contains(m.Subject, "PO-TODAY") }

	res, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	require.NoError(t, err)
	require.Len(t, res.Actions, 2)
	assert.True(t, strings.HasPrefix(res.Actions[0], "failed reminder"))
	assert.True(t, strings.HasPrefix(res.Actions[1], "sent escalation"))
}

func TestRunDailyNotifications_SkipsOwnerless(t *testing.T) {
	f := newNotifyFixture(t)
	po := &model.PurchaseOrder{PONumber: "PO-ORPHAN", OrderDate: jan2, CustomerName: "Acme"}
	require.NoError(t, f.orders.Create(context.Background(), po))
	f.users.users = nil

	res, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DueTodayPOs)
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, []string{"skipped reminder for Purchase Order PO-ORPHAN: no recipients with email"}, res.Actions)
}

func TestRunDailyNotifications_FollowUps(t *testing.T) {
	f := newNotifyFixture(t)
	next := jan2
	for _, inq := range []*model.Inquiry{
		{CreateID: "KEC001JA2026", MonthEpoch: "JA2026", Status: "Quotation", LeadDescription: "a", NextDate: &next, Sales: &f.sales},
		{CreateID: "KEC002JA2026", MonthEpoch: "JA2026", Status: "Project Closed", LeadDescription: "b", NextDate: &next, Sales: &f.sales},
	} {
		require.NoError(t, f.inquiries.CreateTx(context.Background(), nil, inq))
	}

	res, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FollowUpInquiries)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, []string{"ravi@kec.test"}, f.notifier.sent[0].To)
	assert.Contains(t, f.notifier.sent[0].Subject, "KEC001JA2026")
}

func TestRunDailyNotifications_LoadErrorFails(t *testing.T) {
	f := newNotifyFixture(t)
	f.users.err = errors.New("db down")
	_, err := f.svc.RunDailyNotifications(context.Background(), jan2)
	assert.Error(t, err)
}
