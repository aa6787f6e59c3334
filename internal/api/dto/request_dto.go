package dto

// CreateRequestRequest is the body of POST /api/request.
// A sample_size of zero or less asks for every item of the type.
type CreateRequestRequest struct {
	Type       string `json:"type" binding:"required"`
	SampleSize int    `json:"sample_size"`
}

// UpdateRequestRequest is the body of PUT /api/request
type UpdateRequestRequest struct {
	ID     int64  `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
	URL    string `json:"url"`
}

// ListRequestsRequest holds the query of GET /api/request
type ListRequestsRequest struct {
	Type     string `form:"type"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

// ListRequestsResponse is a page of requests
type ListRequestsResponse struct {
	Requests   []RequestDTO `json:"requests"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// RequestDTO is the wire form of a report request
type RequestDTO struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	SampleSize int    `json:"sample_size"`
	Status     string `json:"status"`
	URL        string `json:"url,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// JobMessage is one element of the queue message the worker consumes
type JobMessage struct {
	IDRequest  int64 `json:"id_request"`
	SampleSize int   `json:"sample_size"`
}
