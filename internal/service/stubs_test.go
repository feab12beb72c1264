package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"kecdesk/internal/dto"
	"kecdesk/internal/model"
	"kecdesk/internal/notification"
	"kecdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── number sequences ─────────────────────────────────────────────────────────

// stubSequenceRepo keeps counters and assigned ids in memory. It has no
// transactions, so a failed attempt is not rolled back.
type stubSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int
	docs     map[string][]string
	scans    int
}

var _ repository.NumberSequenceRepository = (*stubSequenceRepo)(nil)

func newStubSequenceRepo() *stubSequenceRepo {
	return &stubSequenceRepo{counters: map[string]int{}, docs: map[string][]string{}}
}

func seqKey(docType, epoch string) string { return docType + "|" + epoch }

func (r *stubSequenceRepo) DB() *gorm.DB { return nil }

func (r *stubSequenceRepo) LockCounter(_ context.Context, _ *gorm.DB, docType, epoch string) (*model.NumberSequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.counters[seqKey(docType, epoch)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.NumberSequence{DocType: docType, Epoch: epoch, LastValue: v}, nil
}

func (r *stubSequenceRepo) CreateCounter(_ context.Context, _ *gorm.DB, seq *model.NumberSequence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := seqKey(seq.DocType, seq.Epoch)
	if _, ok := r.counters[k]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.counters[k] = seq.LastValue
	return nil
}

func (r *stubSequenceRepo) SaveCounter(_ context.Context, _ *gorm.DB, seq *model.NumberSequence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[seqKey(seq.DocType, seq.Epoch)] = seq.LastValue
	return nil
}

func (r *stubSequenceRepo) ListAssignedIDs(_ context.Context, _ *gorm.DB, docType, epoch string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans++
	return append([]string(nil), r.docs[seqKey(docType, epoch)]...), nil
}

// store is a PersistFunc writing into the document set with a unique backstop.
func (r *stubSequenceRepo) store(docType, epoch string) PersistFunc {
	return func(_ *gorm.DB, id string) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		k := seqKey(docType, epoch)
		for _, existing := range r.docs[k] {
			if existing == id {
				return gorm.ErrDuplicatedKey
			}
		}
		r.docs[k] = append(r.docs[k], id)
		return nil
	}
}

type stubLocker struct {
	mu       sync.Mutex
	err      error
	keys     []string
	released int
}

func (l *stubLocker) Obtain(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

// ── documents ────────────────────────────────────────────────────────────────

type stubPurchaseOrderRepo struct {
	orders map[uuid.UUID]*model.PurchaseOrder
}

var _ repository.PurchaseOrderRepository = (*stubPurchaseOrderRepo)(nil)

func newStubPurchaseOrderRepo() *stubPurchaseOrderRepo {
	return &stubPurchaseOrderRepo{orders: map[uuid.UUID]*model.PurchaseOrder{}}
}

func (r *stubPurchaseOrderRepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	for _, existing := range r.orders {
		if existing.PONumber == po.PONumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if err := po.BeforeSave(nil); err != nil {
		return err
	}
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	cp := *po
	r.orders[po.ID] = &cp
	return nil
}

func (r *stubPurchaseOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *po
	return &cp, nil
}

func (r *stubPurchaseOrderRepo) List(_ context.Context, _ dto.PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error) {
	var out []model.PurchaseOrder
	for _, po := range r.orders {
		out = append(out, *po)
	}
	return out, int64(len(out)), nil
}

func (r *stubPurchaseOrderRepo) Update(_ context.Context, po *model.PurchaseOrder) error {
	if _, ok := r.orders[po.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := po.BeforeSave(nil); err != nil {
		return err
	}
	cp := *po
	r.orders[po.ID] = &cp
	return nil
}

func (r *stubPurchaseOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *stubPurchaseOrderRepo) ListOpen(_ context.Context) ([]model.PurchaseOrder, error) {
	var out []model.PurchaseOrder
	for _, po := range r.orders {
		if po.IsOpen() {
			out = append(out, *po)
		}
	}
	return out, nil
}

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
	orders   *stubPurchaseOrderRepo
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

func newStubInvoiceRepo(orders *stubPurchaseOrderRepo) *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: map[uuid.UUID]*model.Invoice{}, orders: orders}
}

func (r *stubInvoiceRepo) CreateTx(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	for _, existing := range r.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if err := inv.BeforeSave(nil); err != nil {
		return err
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *stubInvoiceRepo) withOrder(inv model.Invoice) model.Invoice {
	if r.orders != nil {
		if po, ok := r.orders.orders[inv.PurchaseOrderID]; ok {
			inv.PurchaseOrder = po
		}
	}
	return inv
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := r.withOrder(*inv)
	return &cp, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, _ dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		out = append(out, r.withOrder(*inv))
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	existing, ok := r.invoices[inv.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if err := inv.BeforeSave(nil); err != nil {
		return err
	}
	cp := *inv
	cp.InvoiceNumber = existing.InvoiceNumber
	cp.FiscalYear = existing.FiscalYear
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *stubInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.invoices[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *stubInvoiceRepo) ListUnpaid(_ context.Context) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if !inv.IsPaid() {
			out = append(out, r.withOrder(*inv))
		}
	}
	return out, nil
}

type stubInquiryRepo struct {
	inquiries map[uuid.UUID]*model.Inquiry
}

var _ repository.InquiryRepository = (*stubInquiryRepo)(nil)

func newStubInquiryRepo() *stubInquiryRepo {
	return &stubInquiryRepo{inquiries: map[uuid.UUID]*model.Inquiry{}}
}

func (r *stubInquiryRepo) CreateTx(_ context.Context, _ *gorm.DB, inq *model.Inquiry) error {
	for _, existing := range r.inquiries {
		if existing.CreateID == inq.CreateID {
			return gorm.ErrDuplicatedKey
		}
	}
	if err := inq.BeforeSave(nil); err != nil {
		return err
	}
	if inq.ID == uuid.Nil {
		inq.ID = uuid.New()
	}
	cp := *inq
	r.inquiries[inq.ID] = &cp
	return nil
}

func (r *stubInquiryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Inquiry, error) {
	inq, ok := r.inquiries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inq
	return &cp, nil
}

func (r *stubInquiryRepo) List(_ context.Context, _ dto.InquiryFilter) ([]model.Inquiry, int64, error) {
	var out []model.Inquiry
	for _, inq := range r.inquiries {
		out = append(out, *inq)
	}
	return out, int64(len(out)), nil
}

func (r *stubInquiryRepo) Update(_ context.Context, inq *model.Inquiry) error {
	existing, ok := r.inquiries[inq.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inq.CreateID = existing.CreateID
	if err := inq.BeforeSave(nil); err != nil {
		return err
	}
	cp := *inq
	r.inquiries[inq.ID] = &cp
	return nil
}

func (r *stubInquiryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.inquiries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.inquiries, id)
	return nil
}

func (r *stubInquiryRepo) ReplaceItems(_ context.Context, id uuid.UUID, items []model.InquiryItem) error {
	inq, ok := r.inquiries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		items[i].InquiryID = id
		_ = items[i].BeforeSave(nil)
	}
	inq.Items = append([]model.InquiryItem(nil), items...)
	return nil
}

func (r *stubInquiryRepo) ListFollowUps(_ context.Context, day time.Time) ([]model.Inquiry, error) {
	var out []model.Inquiry
	for _, inq := range r.inquiries {
		if inq.NextDate != nil && inq.NextDate.Equal(day) {
			out = append(out, *inq)
		}
	}
	return out, nil
}

type stubUserRepo struct {
	users []model.User
	err   error
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.users = append(r.users, *u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			return &r.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for i := range r.users {
		if r.users[i].Username == username {
			return &r.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error { return nil }

func (r *stubUserRepo) ListActiveWithRole(_ context.Context, role string) ([]model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.User
	for _, u := range r.users {
		if u.Active && u.HasRole(role) {
			out = append(out, u)
		}
	}
	return out, nil
}

// ── customers ────────────────────────────────────────────────────────────────

type stubCompanyRepo struct {
	companies map[uuid.UUID]*model.Company
	contacts  *stubContactRepo
}

var _ repository.CompanyRepository = (*stubCompanyRepo)(nil)

func (r *stubCompanyRepo) Create(_ context.Context, c *model.Company) error {
	for _, existing := range r.companies {
		if existing.CompanyName == c.CompanyName && existing.City1 == c.City1 {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCompanyRepo) List(_ context.Context, _ dto.CompanyFilter) ([]model.Company, int64, error) {
	var out []model.Company
	for _, c := range r.companies {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompanyRepo) Update(_ context.Context, c *model.Company) error {
	if _, ok := r.companies[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.companies[c.ID] = &cp
	for _, ct := range r.contacts.contacts {
		if ct.CompanyID == c.ID {
			ct.AttachCompany(&cp)
		}
	}
	return nil
}

func (r *stubCompanyRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.companies[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.companies, id)
	for cid, ct := range r.contacts.contacts {
		if ct.CompanyID == id {
			delete(r.contacts.contacts, cid)
		}
	}
	return nil
}

type stubContactRepo struct {
	contacts map[uuid.UUID]*model.Contact
}

var _ repository.ContactRepository = (*stubContactRepo)(nil)

func newStubCustomerRepos() (*stubCompanyRepo, *stubContactRepo) {
	contacts := &stubContactRepo{contacts: map[uuid.UUID]*model.Contact{}}
	return &stubCompanyRepo{companies: map[uuid.UUID]*model.Company{}, contacts: contacts}, contacts
}

func (r *stubContactRepo) Create(_ context.Context, c *model.Contact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *stubContactRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Contact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubContactRepo) List(_ context.Context, filter dto.ContactFilter) ([]model.Contact, int64, error) {
	var out []model.Contact
	for _, c := range r.contacts {
		if filter.CompanyID != "" && c.CompanyID.String() != filter.CompanyID {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubContactRepo) Update(_ context.Context, c *model.Contact) error {
	if _, ok := r.contacts[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.contacts[c.ID] = &cp
	return nil
}

func (r *stubContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.contacts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.contacts, id)
	return nil
}

// ── notifier ─────────────────────────────────────────────────────────────────

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
	fail func(notification.Message) bool
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil && n.fail(msg) {
		return errors.New("smtp: 451 try again later")
	}
	n.sent = append(n.sent, msg)
	return nil
}
