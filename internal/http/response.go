package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/listing"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/state"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var errInvalidBody = errors.New("invalid JSON body")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password_strength", passwordStrength)
	return v
}

// passwordStrength requires 8+ characters with upper, lower, digit and special characters.
func passwordStrength(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(`!@#$%^&*(),.?":{}|<>`, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure leaves nothing to report to the client.
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return validate.Struct(dst)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{catalog.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{orders.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{cart.ErrItemNotInCart, http.StatusNotFound, "item_not_in_cart"},
	{session.ErrNoUser, http.StatusNotFound, "no_user"},
	{session.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{orders.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
	{state.ErrNothingStaged, http.StatusConflict, "nothing_staged"},
	{state.ErrNothingInCart, http.StatusConflict, "nothing_in_cart"},
	{cart.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{cart.ErrDuplicateItem, http.StatusBadRequest, "duplicate_item"},
	{cart.ErrInvalidProduct, http.StatusBadRequest, "invalid_product"},
	{catalog.ErrInvalidProduct, http.StatusBadRequest, "invalid_product"},
	{checkout.ErrEmptySelection, http.StatusBadRequest, "empty_selection"},
	{checkout.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{domain.ErrUnknownOrderStatus, http.StatusBadRequest, "invalid_status"},
	{session.ErrPasswordMismatch, http.StatusBadRequest, "password_mismatch"},
	{session.ErrMissingEmail, http.StatusBadRequest, "missing_email"},
	{state.ErrMissingContact, http.StatusBadRequest, "missing_contact"},
	{listing.ErrPageOutOfRange, http.StatusBadRequest, "page_out_of_range"},
	{errInvalidBody, http.StatusBadRequest, "invalid_request"},
	{errInvalidQuery, http.StatusBadRequest, "invalid_query"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// errorMessages overrides the client-facing message of a mapped error.
var errorMessages = map[error]string{
	session.ErrInvalidCredentials: "Invalid email or password",
}

// handleError maps domain errors to HTTP responses. Anything unmapped is a 500.
func handleError(w http.ResponseWriter, r *http.Request, l *zap.Logger, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			switch fe.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", fe.Field()))
			case "eqfield":
				details = append(details, fmt.Sprintf("%s must match %s", fe.Field(), strings.ToLower(fe.Param())))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", fe.Field()))
			}
		}
		respondError(w, http.StatusBadRequest, "validation_failed", "validation failed", strings.Join(details, "; "))
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg, ok := errorMessages[m.target]
			if !ok {
				msg = err.Error()
			}
			respondError(w, m.status, m.code, msg, "")
			return
		}
	}

	logger.WithTrace(r.Context(), l).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error", "")
}
