package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"
	"time"

	"kecdesk/internal/duedate"

	"github.com/shopspring/decimal"
)

// Message is one rendered email.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

var funcs = template.FuncMap{
	"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"due":   duedate.DisplayText,
	"join":  strings.Join,
}

const reminderText = `Hello {{.Greeting}},

{{.Item.Kind.Label}} {{.Item.Ref}} for {{.Item.Customer}} is due today ({{date .Item.TargetDate}}).
Value: {{money .Item.Value}}

Please update its status once it is {{.Action}}.
`

const reminderHTML = `<p>Hello {{.Greeting}},</p>
<p>{{.Item.Kind.Label}} <strong>{{.Item.Ref}}</strong> for {{.Item.Customer}} is due today ({{date .Item.TargetDate}}).<br>
Value: {{money .Item.Value}}</p>
<p>Please update its status once it is {{.Action}}.</p>
`

const escalationText = `{{len .Items}} overdue {{.Plural}} as of {{date .Today}}:
{{range .Items}}
- {{.Ref}} | {{.Customer}} | due {{date .TargetDate}} | {{.OverdueBy}} days overdue | {{money .Value}}{{end}}

Total: {{money .Total}}
`

const escalationHTML = `<p>{{len .Items}} overdue {{.Plural}} as of {{date .Today}}:</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Ref</th><th>Customer</th><th>Due date</th><th>Days overdue</th><th>Value</th></tr>
{{range .Items}}<tr><td>{{.Ref}}</td><td>{{.Customer}}</td><td>{{date .TargetDate}}</td><td>{{.OverdueBy}}</td><td>{{money .Value}}</td></tr>
{{end}}<tr><td colspan="4"><strong>Total</strong></td><td><strong>{{money .Total}}</strong></td></tr>
</table>
`

const followUpText = `Hello {{.Greeting}},

Inquiry {{.F.CreateID}} ({{.F.OpportunityID}}) for {{.F.Customer}} is scheduled for follow-up today ({{date .Today}}).
Status: {{.F.Status}}
{{if .F.Lead}}Lead: {{.F.Lead}}
{{end}}`

var (
	reminderT   = template.Must(template.New("reminder").Funcs(funcs).Parse(reminderText))
	escalationT = template.Must(template.New("escalation").Funcs(funcs).Parse(escalationText))
	followUpT   = template.Must(template.New("followup").Funcs(funcs).Parse(followUpText))
	reminderH   = htmltemplate.Must(htmltemplate.New("reminder").Funcs(htmltemplate.FuncMap(funcs)).Parse(reminderHTML))
	escalationH = htmltemplate.Must(htmltemplate.New("escalation").Funcs(htmltemplate.FuncMap(funcs)).Parse(escalationHTML))
)

// templ is satisfied by both text and html templates.
type templ interface {
	Execute(w io.Writer, data any) error
}

func render(t templ, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("notification: render: %w", err)
	}
	return buf.String(), nil
}

// Reminder renders the due-today message for one item, addressed to its
// owners. ok is false when no owner has a mailbox.
func Reminder(item Item) (msg Message, ok bool, err error) {
	if len(item.Owners) == 0 {
		return Message{}, false, nil
	}
	names := make([]string, 0, len(item.Owners))
	for _, o := range item.Owners {
		names = append(names, o.Name)
	}
	action := "delivered"
	if item.Kind == KindInvoice {
		action = "paid"
	}
	data := struct {
		Greeting string
		Item     Item
		Action   string
	}{strings.Join(names, ", "), item, action}

	text, err := render(reminderT, data)
	if err != nil {
		return Message{}, false, err
	}
	html, err := render(reminderH, data)
	if err != nil {
		return Message{}, false, err
	}
	return Message{
		To:      Addresses(item.Owners),
		Subject: fmt.Sprintf("%s %s due today", item.Kind.Label(), item.Ref),
		Text:    text,
		HTML:    html,
	}, true, nil
}

// Escalation renders one aggregated message for an overdue bucket. ok is
// false when the bucket is empty or nobody is on the recipient list.
func Escalation(kind Kind, items []Item, admins []Recipient, today time.Time) (msg Message, ok bool, err error) {
	if len(items) == 0 || len(admins) == 0 {
		return Message{}, false, nil
	}
	plural := strings.ToLower(kind.Label()) + "s"
	total := Total(items)
	data := struct {
		Items  []Item
		Plural string
		Today  time.Time
		Total  decimal.Decimal
	}{items, plural, today, total}

	text, err := render(escalationT, data)
	if err != nil {
		return Message{}, false, err
	}
	html, err := render(escalationH, data)
	if err != nil {
		return Message{}, false, err
	}
	return Message{
		To:      Addresses(admins),
		Subject: fmt.Sprintf("%d overdue %s (total %s)", len(items), plural, total.StringFixed(2)),
		Text:    text,
		HTML:    html,
	}, true, nil
}

// FollowUpReminder renders the next-contact reminder for an inquiry's sales
// owner. ok is false when the inquiry has no reachable owner.
func FollowUpReminder(f FollowUp, today time.Time) (msg Message, ok bool, err error) {
	if f.Owner == nil {
		return Message{}, false, nil
	}
	text, err := render(followUpT, struct {
		Greeting string
		F        FollowUp
		Today    time.Time
	}{f.Owner.Name, f, today})
	if err != nil {
		return Message{}, false, err
	}
	return Message{
		To:      []string{f.Owner.Email},
		Subject: fmt.Sprintf("Follow up on inquiry %s today", f.CreateID),
		Text:    text,
	}, true, nil
}
