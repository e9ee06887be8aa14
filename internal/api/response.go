package api

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIResponse is the envelope every endpoint answers with. Status is 0
// on success and the HTTP status code on failure.
type APIResponse struct {
	Status int         `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`

	code int
}

func (res *APIResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, res.code)
	return nil
}

func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data, code: http.StatusOK}
}

func ErrorResponse(status int, msg string, err error) *APIResponse {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &APIResponse{Status: status, Msg: msg, code: status}
}

func BadRequestResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusBadRequest, msg, err)
}

func NotFoundResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusNotFound, msg, err)
}

func InternalErrorResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusInternalServerError, msg, err)
}
