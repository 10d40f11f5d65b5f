package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/RaghavGalappanavar/Deployment/middleware"
	"github.com/RaghavGalappanavar/Deployment/pkg/logger"
	"github.com/RaghavGalappanavar/Deployment/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidData      = "INVALID_DATA"
	CodeDuplicateRequest = "DUPLICATE_REQUEST"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
	TraceID string       `json:"traceId,omitempty"`
}

// FieldError names a request field that failed a validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

var registerJSONNames sync.Once

// useJSONFieldNames makes validator report fields by their JSON names.
func useJSONFieldNames() {
	registerJSONNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

func respondError(c *gin.Context, status int, code, message string, details []FieldError) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
		TraceID: middleware.GetTraceID(c),
	})
}

// respondBindError maps a ShouldBindJSON failure to a 400.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field: fieldPath(fe.Namespace()),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		logger.Warn(c.Request.Context(), "contract request failed validation", "fields", len(details))
		respondError(c, http.StatusBadRequest, CodeValidationFailed, "Request validation failed", details)
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Request body is required", nil)
	case errors.As(err, &typeErr):
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", []FieldError{{Field: typeErr.Field, Rule: "type", Param: typeErr.Type.String()}})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Malformed JSON body", nil)
	default:
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", nil)
	}
}

// respondServiceError maps service errors to statuses. Anything unknown is a
// 500 whose body carries no internals.
func respondServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrDuplicateRequest):
		logger.Warn(ctx, "duplicate contract request", "error", err)
		respondError(c, http.StatusConflict, CodeDuplicateRequest, "Contract already exists for this purchase request", nil)
	case errors.Is(err, service.ErrInvalidData):
		logger.Warn(ctx, "invalid contract data", "error", err)
		respondError(c, http.StatusBadRequest, CodeInvalidData, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrArtifactNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, "Contract not found", nil)
	default:
		logger.Error(ctx, "contract request failed", "error", err)
		respondError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
