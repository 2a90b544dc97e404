package dto

import "encoding/json"

// ChatPrompt is the answer to a chat request without a usable message
const ChatPrompt = "Please provide a message."

// ChatApology is the answer when a chat request fails unexpectedly
const ChatApology = "Sorry, something went wrong while processing your request. Please try again."

// ChatRequest is the body of POST /admin/chat. Message stays raw so a
// non-string value can be told apart from a missing one.
type ChatRequest struct {
	Message json.RawMessage `json:"message"`
}

// Text returns the message when it is a JSON string
func (r ChatRequest) Text() (string, bool) {
	if len(r.Message) == 0 || r.Message[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Message, &s); err != nil {
		return "", false
	}
	return s, true
}

// ChatResponse is the answer to an admin chat message
type ChatResponse struct {
	Response string `json:"response"`
	Data     any    `json:"data"`
}

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}
