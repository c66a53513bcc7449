package model

// SearchFilters is the set of optional email filter keys. The zero value
// means "no filters". An empty string is equivalent to an absent filter:
// Clean drops it before anything is sent to the backend.
type SearchFilters struct {
	AccountID      string `json:"accountId,omitempty"`
	Folder         string `json:"folder,omitempty"`
	From           string `json:"from,omitempty"`
	To             string `json:"to,omitempty"`
	Subject        string `json:"subject,omitempty"`
	DateFrom       string `json:"dateFrom,omitempty"`
	DateTo         string `json:"dateTo,omitempty"`
	HasAttachments *bool  `json:"hasAttachments,omitempty"`
	IsRead         *bool  `json:"isRead,omitempty"`
	IsFlagged      *bool  `json:"isFlagged,omitempty"`
}

// Merge returns a copy of f overlaid with the non-zero fields of other.
// Zero-valued fields of other leave the existing values untouched, so
// callers can update individual keys without resetting the rest.
func (f SearchFilters) Merge(other SearchFilters) SearchFilters {
	merged := f

	if other.AccountID != "" {
		merged.AccountID = other.AccountID
	}
	if other.Folder != "" {
		merged.Folder = other.Folder
	}
	if other.From != "" {
		merged.From = other.From
	}
	if other.To != "" {
		merged.To = other.To
	}
	if other.Subject != "" {
		merged.Subject = other.Subject
	}
	if other.DateFrom != "" {
		merged.DateFrom = other.DateFrom
	}
	if other.DateTo != "" {
		merged.DateTo = other.DateTo
	}
	if other.HasAttachments != nil {
		merged.HasAttachments = other.HasAttachments
	}
	if other.IsRead != nil {
		merged.IsRead = other.IsRead
	}
	if other.IsFlagged != nil {
		merged.IsFlagged = other.IsFlagged
	}

	return merged
}

// Clean returns only the filters that carry a value, keyed by their wire
// names. Absent, empty, and nil filters are omitted so the backend cannot
// distinguish "no filter" from "empty filter".
func (f SearchFilters) Clean() map[string]string {
	out := make(map[string]string)

	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}

	set("accountId", f.AccountID)
	set("folder", f.Folder)
	set("from", f.From)
	set("to", f.To)
	set("subject", f.Subject)
	set("dateFrom", f.DateFrom)
	set("dateTo", f.DateTo)

	setBool := func(key string, value *bool) {
		if value == nil {
			return
		}
		if *value {
			out[key] = "true"
		} else {
			out[key] = "false"
		}
	}

	setBool("hasAttachments", f.HasAttachments)
	setBool("isRead", f.IsRead)
	setBool("isFlagged", f.IsFlagged)

	return out
}

// IsZero reports whether no filter key carries a value.
func (f SearchFilters) IsZero() bool {
	return len(f.Clean()) == 0
}

// Pagination tracks the current page of the email list. Total is always
// the server's last reported value; the client never computes it locally.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 50

// DefaultPagination returns the first page with the default page size.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, Limit: DefaultPageSize}
}

// TotalPages returns the number of pages implied by Total and Limit,
// never less than 1.
func (p Pagination) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}
	pages := (p.Total + p.Limit - 1) / p.Limit
	if pages < 1 {
		return 1
	}
	return pages
}
