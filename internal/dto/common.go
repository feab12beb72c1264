package dto

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ListMeta is embedded in paginated responses.
type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func NewListMeta(total int64, page, limit int) ListMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return ListMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// UserRef is the compact form of a user inside other responses.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
