package handlers

import (
	"github.com/fatflowers/paygate/pkg/response"
)

// RespError is the error envelope returned by every endpoint on failure.
// Data carries field -> message pairs for validation errors and a string otherwise.
type RespError struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}
