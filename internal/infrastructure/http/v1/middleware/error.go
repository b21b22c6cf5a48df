package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"weavebooks/internal/core/apperror"
	"weavebooks/internal/infrastructure/http/v1/dto"
	"weavebooks/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		appErr := Translate(err)
		if appErr.Code == apperror.CodeInternal {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			appErr = apperror.NewInternal(nil).WithDetail("request_id", c.GetString("request_id"))
		} else if appErr.Err != nil {
			logger.Warn(c.Request.Context(), "request error", "code", appErr.Code, "cause", appErr.Err)
		}

		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{Error: dto.ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}})
	}
}

// Translate maps any error to an AppError. Binding errors become
// VALIDATION_ERROR with one detail per field; unknown errors become INTERNAL_ERROR.
func Translate(err error) *apperror.AppError {
	if appErr, ok := apperror.AsAppError(err); ok {
		if appErr.HTTPStatus == 0 {
			appErr.HTTPStatus = http.StatusInternalServerError
		}
		return appErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldName(fe)] = fe.Tag()
		}
		return apperror.NewValidation("invalid request").WithDetail("fields", fields)
	}

	return apperror.NewInternal(err)
}

// fieldName strips the top-level struct name from the namespace: "CreateInvoiceRequest.Items[0].Qty" -> "Items[0].Qty".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
