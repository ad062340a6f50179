// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package errors

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	} `json:"error"`
	Status string `json:"status"` // Always "error"
}

// NewErrorResponse creates a new error response with the specified code, message, and details
func NewErrorResponse(code, message string, details interface{}) ErrorResponse {
	resp := ErrorResponse{
		Status: "error",
	}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return resp
}
