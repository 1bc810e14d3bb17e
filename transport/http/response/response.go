package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"hostel/shared/constant"
	"hostel/shared/failure"
	"hostel/shared/logger"
	"net/http"
	"strconv"
)

type Data[T any] struct {
	Success bool `json:"success"`
	Data    *T   `json:"data,omitempty"`
}

type Error struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
}

type Message struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a successful response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Success: true, Message: &message})
}

// WithOutcome sends a 200 whose success flag carries the result of the operation.
func WithOutcome(writer http.ResponseWriter, success bool, message string) {
	payload := Message{Success: success}
	if message != constant.Empty {
		payload.Message = &message
	}

	response(writer, http.StatusOK, payload)
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, Data[any]{Success: true, Data: &jsonPayload})
}

// WithError sends a response with an error message. Errors without a status
// are reported with a generic message and their detail stays in the logs.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	errMsg := constant.ResponseErrorInternal

	var fail *failure.Failure
	if errors.As(err, &fail) {
		errMsg = fail.Message
	}

	response(writer, code, Error{Message: &errMsg})
}

// WithFile sends content as a download.
func WithFile(writer http.ResponseWriter, fileName, contentType string, content []byte) {
	writer.Header().Set(constant.RequestHeaderContentType, contentType)
	writer.Header().Set(constant.RequestHeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", fileName))
	writer.Header().Set("Content-Length", strconv.Itoa(len(content)))
	writer.WriteHeader(http.StatusOK)

	if _, err := writer.Write(content); err != nil {
		logger.ErrorWithStack(err)
	}
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	response(writer, http.StatusTooManyRequests, Error{Message: ptr(constant.ResponseErrorRequestLimitExceeded)})
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	response(writer, http.StatusServiceUnavailable, Error{Message: ptr(constant.ResponseErrorPrepareShutdown)})
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	response(writer, http.StatusServiceUnavailable, Error{Message: ptr(constant.ResponseErrorUnhealthy)})
}

func ptr(s string) *string { return &s }

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
