// Package notification decides who hears about which open purchase orders,
// invoices and inquiries on a given day, and renders the emails. It performs
// no I/O; the daily run in the service layer loads rows and delivers messages.
package notification

import (
	"sort"
	"time"

	"kecdesk/internal/duedate"
	"kecdesk/internal/model"
	"kecdesk/internal/numbering"

	"github.com/shopspring/decimal"
)

// Kind names the document a notification is about.
type Kind string

const (
	KindPurchaseOrder Kind = "purchase_order"
	KindInvoice       Kind = "invoice"
	KindInquiry       Kind = "inquiry"
)

func (k Kind) Label() string {
	switch k {
	case KindPurchaseOrder:
		return "Purchase Order"
	case KindInvoice:
		return "Invoice"
	case KindInquiry:
		return "Inquiry"
	default:
		return string(k)
	}
}

// Recipient is a mailbox plus the name used in greetings.
type Recipient struct {
	Name  string
	Email string
}

// Item is one open document with its due position relative to today.
type Item struct {
	Kind       Kind
	Ref        string
	Customer   string
	Value      decimal.Decimal
	TargetDate time.Time
	DueDays    int
	Owners     []Recipient
}

// OverdueBy is the positive number of days an overdue item is late.
func (i Item) OverdueBy() int {
	if i.DueDays >= 0 {
		return 0
	}
	return -i.DueDays
}

// Buckets is the partition of open documents for one day.
type Buckets struct {
	DueTodayPOs      []Item
	DueTodayInvoices []Item
	OverduePOs       []Item
	OverdueInvoices  []Item
}

// Select partitions the given orders and invoices against today. Closed or
// delivered orders and paid invoices are ignored, as is anything not yet due.
// Overdue buckets are ordered most-late first.
func Select(today time.Time, pos []model.PurchaseOrder, invoices []model.Invoice) Buckets {
	var b Buckets
	for i := range pos {
		po := &pos[i]
		if !po.IsOpen() {
			continue
		}
		item := Item{
			Kind:       KindPurchaseOrder,
			Ref:        po.PONumber,
			Customer:   po.CustomerName,
			Value:      po.OrderValue,
			TargetDate: po.DeliveryDate,
			DueDays:    po.DueDays(today),
			Owners:     recipients(po.Owners()),
		}
		switch {
		case item.DueDays == 0:
			b.DueTodayPOs = append(b.DueTodayPOs, item)
		case item.DueDays < 0:
			b.OverduePOs = append(b.OverduePOs, item)
		}
	}
	for i := range invoices {
		inv := &invoices[i]
		if inv.IsPaid() {
			continue
		}
		item := Item{
			Kind:       KindInvoice,
			Ref:        inv.InvoiceNumber,
			Customer:   inv.CustomerName,
			Value:      inv.OrderValue,
			TargetDate: inv.PaymentDueDate,
			DueDays:    inv.DueDays(today),
			Owners:     recipients(inv.Owners()),
		}
		switch {
		case item.DueDays == 0:
			b.DueTodayInvoices = append(b.DueTodayInvoices, item)
		case item.DueDays < 0:
			b.OverdueInvoices = append(b.OverdueInvoices, item)
		}
	}
	sortItems(b.DueTodayPOs)
	sortItems(b.DueTodayInvoices)
	sortItems(b.OverduePOs)
	sortItems(b.OverdueInvoices)
	return b
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].DueDays != items[b].DueDays {
			return items[a].DueDays < items[b].DueDays
		}
		return items[a].Ref < items[b].Ref
	})
}

// Total sums item values.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Value)
	}
	return total
}

// FollowUp is an inquiry whose next-contact date is today.
type FollowUp struct {
	CreateID      string
	OpportunityID string
	Status        string
	Customer      string
	Lead          string
	Owner         *Recipient
}

// SelectFollowUps returns inquiries with NextDate == today whose status is
// not terminal. Unknown statuses are skipped.
func SelectFollowUps(today time.Time, inquiries []model.Inquiry) []FollowUp {
	var out []FollowUp
	for i := range inquiries {
		inq := &inquiries[i]
		if inq.NextDate == nil || duedate.DueDays(*inq.NextDate, today) != 0 {
			continue
		}
		info, err := numbering.Status(inq.Status).Info()
		if err != nil || info.Terminal {
			continue
		}
		f := FollowUp{
			CreateID:      inq.CreateID,
			OpportunityID: inq.OpportunityID,
			Status:        inq.Status,
			Customer:      inq.CustomerName,
			Lead:          inq.LeadDescription,
		}
		if rs := recipients([]*model.User{inq.Sales}); len(rs) > 0 {
			f.Owner = &rs[0]
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreateID < out[b].CreateID })
	return out
}

// Recipients converts users with a usable mailbox, dropping duplicates.
func Recipients(users []model.User) []Recipient {
	ptrs := make([]*model.User, len(users))
	for i := range users {
		ptrs[i] = &users[i]
	}
	return recipients(ptrs)
}

func recipients(users []*model.User) []Recipient {
	var out []Recipient
	seen := map[string]bool{}
	for _, u := range users {
		addr := u.Mailbox()
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, Recipient{Name: u.DisplayName(), Email: addr})
	}
	return out
}

// Addresses lists the mailboxes of rs.
func Addresses(rs []Recipient) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Email)
	}
	return out
}
