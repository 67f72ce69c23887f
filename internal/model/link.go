package model

import "time"

// Link maps a short code to a target URL. A non-nil DeletedAt marks the
// link as soft-deleted: invisible to lookups and redirects, but the row
// (and its code) stays in storage.
type Link struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	TargetURL     string     `json:"targetUrl"`
	TotalClicks   int64      `json:"totalClicks"`
	LastClickedAt *time.Time `json:"lastClickedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	DeletedAt     *time.Time `json:"deletedAt"`
	Clicks        []Click    `json:"clicks,omitempty"`
}

// Click is one recorded visit to a link. Rows are only ever created as a
// side effect of a redirect and are never updated afterwards.
type Click struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"linkId"`
	CreatedAt time.Time `json:"createdAt"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}

// CreateLinkRequest is the API request body for POST /api/links.
type CreateLinkRequest struct {
	URL  string `json:"url"`
	Code string `json:"code,omitempty"` // optional custom short code
}

// DeleteResponse is returned after a successful soft delete.
type DeleteResponse struct {
	Message string `json:"message"`
}
