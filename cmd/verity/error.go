package main

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeExtraction     ErrorType = "extraction"
	ErrorTypeProvider       ErrorType = "provider"
	ErrorTypeAggregation    ErrorType = "aggregation"
	ErrorTypeClassification ErrorType = "classification"
	ErrorTypeCache          ErrorType = "cache"
	ErrorTypeInternal       ErrorType = "internal"
)

// Error codes
const (
	ErrExtractEmptyInput  = "EXTRACT_001"
	ErrExtractFetch       = "EXTRACT_002"
	ErrExtractUnsupported = "EXTRACT_003"

	ErrProviderTimeout = "PROVIDER_001"
	ErrProviderFetch   = "PROVIDER_002"

	ErrAggregationFailed = "AGG_001"

	ErrClassificationAmbiguous = "CLASS_001"

	ErrCacheMiss = "CACHE_001"
)

// VerityError is the application error type
type VerityError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Inner   error     `json:"-"`
}

func (e *VerityError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("[%s-%s] %s: %v", e.Type, e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("[%s-%s] %s", e.Type, e.Code, e.Message)
}

func (e *VerityError) Unwrap() error {
	return e.Inner
}

// NewError creates a new VerityError
func NewError(errType ErrorType, code string, message string, inner error) *VerityError {
	return &VerityError{
		Type:    errType,
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

// Common error constructors
func NewExtractionError(code string, message string, inner error) *VerityError {
	return NewError(ErrorTypeExtraction, code, message, inner)
}

func NewProviderError(code string, message string, inner error) *VerityError {
	return NewError(ErrorTypeProvider, code, message, inner)
}

func NewAggregationError(message string, inner error) *VerityError {
	return NewError(ErrorTypeAggregation, ErrAggregationFailed, message, inner)
}

// IsErrorType reports whether err is a VerityError of the given type
func IsErrorType(err error, t ErrorType) bool {
	var ve *VerityError
	if errors.As(err, &ve) {
		return ve.Type == t
	}
	return false
}
