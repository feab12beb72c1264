package dto

// NotificationRunResponse reports one daily notification run.
type NotificationRunResponse struct {
	Date              string   `json:"date"`
	DueTodayPOs       int      `json:"due_today_pos"`
	DueTodayInvoices  int      `json:"due_today_invoices"`
	OverduePOs        int      `json:"overdue_pos"`
	OverdueInvoices   int      `json:"overdue_invoices"`
	FollowUpInquiries int      `json:"follow_up_inquiries"`
	Actions           []string `json:"actions"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	DB          bool   `json:"db"`
	Redis       bool   `json:"redis"`
	MailBreaker string `json:"mail_breaker"`
	Version     string `json:"version"`
}
