package dto

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Data  interface{}  `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// NewSuccessResponse wraps data in the response envelope
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{Data: data}
}

// MessageData is the payload for operations that return no resource
type MessageData struct {
	Message string `json:"message" example:"Internship deleted successfully"`
}
