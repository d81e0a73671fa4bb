package v1

import (
	sb_uuid "github.com/schoolbudget/backend/internal/uuid"
)

type URIID struct {
	ID sb_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type URICategory struct {
	ID  sb_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the project
	Key string       `uri:"key" binding:"required"`              // Category key or display label
}

// Pagination contains information about the pagination for list endpoint calls.
type Pagination struct {
	Count  int   `json:"count"`  // The amount of records returned in this response
	Offset uint  `json:"offset"` // The offset for the first record returned
	Limit  int   `json:"limit"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total"`  // The total number of resources matching the query
}
