package services

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindConfiguration   ErrorKind = "ConfigurationError"
	KindValidation      ErrorKind = "ValidationError"
	KindPayloadTooLarge ErrorKind = "PayloadTooLargeError"
	KindUpstreamFormat  ErrorKind = "UpstreamFormatError"
	KindUnknown         ErrorKind = "UnknownError"
)

const (
	MsgMissingAPIKey       = "Missing GEMINI_API_KEY"
	MsgUsernameRequired    = "Username is required"
	MsgNoFilesUploaded     = "No files uploaded"
	MsgInvalidModelJSON    = "Model did not return valid JSON"
	MsgSchemaMismatch      = "Model response does not match the analysis schema"
	MsgInternalServerError = "Internal Server Error"
)

// AnalysisError is the single error type returned by the analyzer. Message is
// what the client sees; Err keeps the underlying cause for logs.
type AnalysisError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func NewConfigurationError(message string) *AnalysisError {
	return &AnalysisError{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: message}
}

func NewValidationError(message string) *AnalysisError {
	return &AnalysisError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func NewPayloadTooLargeError(filename string, maxBytes int64) *AnalysisError {
	return &AnalysisError{
		Kind:    KindPayloadTooLarge,
		Status:  http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("File %s is too large. Maximum size is %s.", filename, formatSize(maxBytes)),
	}
}

func NewUpstreamFormatError(message string, cause error) *AnalysisError {
	return &AnalysisError{Kind: KindUpstreamFormat, Status: http.StatusBadGateway, Message: message, Err: cause}
}

func NewUnknownError(err error) *AnalysisError {
	message := MsgInternalServerError
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &AnalysisError{Kind: KindUnknown, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// ToAnalysisError finds an AnalysisError in err's chain, or classifies err as
// unknown.
func ToAnalysisError(err error) *AnalysisError {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	return NewUnknownError(err)
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
