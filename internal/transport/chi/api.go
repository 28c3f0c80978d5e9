package chi

import "encoding/json"

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeUnresolvedTenant   ErrorCode = "unresolved_tenant"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeStorageTimeout     ErrorCode = "storage_timeout"
	ErrorCodeStorageUnavailable ErrorCode = "storage_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /v1/recommendations/search.
type SearchRequest struct {
	StartRow    *int                       `json:"startRow"`
	EndRow      *int                       `json:"endRow"`
	SortModel   []SortModelItem            `json:"sortModel"`
	FilterModel map[string]FilterModelItem `json:"filterModel"`
}

// SortModelItem is one sort key.
type SortModelItem struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// FilterModelItem is one filter entry. Which value fields apply depends on Kind.
type FilterModelItem struct {
	Kind     string            `json:"kind"`
	Operator string            `json:"operator,omitempty"`
	Value    json.RawMessage   `json:"value,omitempty"`
	Range    []json.RawMessage `json:"range,omitempty"`
	Values   []json.RawMessage `json:"values,omitempty"`
}

// SearchResponse is one page of records.
type SearchResponse struct {
	Rows    []Recommendation `json:"rows"`
	LastRow int              `json:"lastRow"`
}

// Recommendation is the public row shape of a record.
type Recommendation struct {
	ID                      string   `json:"id"`
	RecommendationID        string   `json:"recommendationId,omitempty"`
	RecommendationTitle     string   `json:"recommendationTitle,omitempty"`
	RecommendationBody      string   `json:"recommendationBody,omitempty"`
	RecommendationType      string   `json:"recommendationType,omitempty"`
	RecommendationCategory  string   `json:"recommendationCategory,omitempty"`
	RecommendationPriority  string   `json:"recommendationPriority,omitempty"`
	RecommendationStatus    string   `json:"recommendationStatus,omitempty"`
	SubmissionBaseNr        string   `json:"submissionBaseNr"`
	SubmissionID            string   `json:"submissionId,omitempty"`
	ObjectID                string   `json:"objectId,omitempty"`
	ObjectName              string   `json:"objectName,omitempty"`
	RCID                    string   `json:"rcId,omitempty"`
	LossEstimateBeforeValue *float64 `json:"lossEstimateBeforeValue,omitempty"`
	LossEstimateAfterValue  *float64 `json:"lossEstimateAfterValue,omitempty"`
	Currency                string   `json:"currency,omitempty"`
	DueDate                 string   `json:"dueDate,omitempty"`
	CompletedDate           string   `json:"recommendationCompletedDate,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
	Version   string            `json:"version"`
}
