package types

import (
	"errors"

	appErr "github.com/angryss/idp-engine/pkg/errors"
)

// FromAppError converts an error into the wire representation. Validation
// violations attached as metadata become the details list.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		out := &APIError{Code: string(ae.Code), Message: ae.Message}
		if v, ok := ae.Meta["violations"].([]string); ok {
			out.Details = v
		}
		return out
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}
