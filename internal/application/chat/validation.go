package chat

import (
	"errors"
	"reflect"
	"strings"

	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// Parameter shapes checked before a command touches the store
type (
	getOrdersParams struct {
		Status string `json:"status" validate:"omitempty,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
	}
	updateOrderParams struct {
		OrderID string `json:"orderId" validate:"required,alphanum,min=8,max=64"`
		Status  string `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
	}
	shipOrderParams struct {
		OrderID        string `json:"orderId" validate:"required,alphanum,min=8,max=64"`
		TrackingNumber string `json:"trackingNumber" validate:"required,min=1,max=100"`
	}
	salesAnalyticsParams struct {
		Days int `json:"days" validate:"min=1,max=365"`
	}
	lookupPaymentParams struct {
		PaymentID string `json:"paymentId" validate:"required,startswith=pi_,min=4,max=255"`
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the parameters of cmd and returns a *shared.ValidationError
// naming every violated field, or nil.
func Validate(cmd Command) error {
	var params any
	switch cmd.Kind {
	case KindGetOrders:
		p := getOrdersParams{}
		if cmd.Status != nil {
			p.Status = string(*cmd.Status)
		}
		params = p
	case KindUpdateOrder:
		params = updateOrderParams{OrderID: cmd.OrderID, Status: string(cmd.NewStatus)}
	case KindShipOrder:
		params = shipOrderParams{OrderID: cmd.OrderID, TrackingNumber: strings.TrimSpace(cmd.TrackingNumber)}
	case KindSalesAnalytics:
		params = salesAnalyticsParams{Days: cmd.Days}
	case KindLookupPayment:
		params = lookupPaymentParams{PaymentID: cmd.PaymentID}
	case KindCheckInventory, KindProductPerformance, KindCustomerStats, KindUnknown:
		return nil
	default:
		return shared.NewValidationError(shared.FieldViolation{Field: "kind", Message: "Unknown command kind: " + cmd.Kind.String()})
	}

	err := validate.Struct(params)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &shared.ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), validationMessage(fe))
	}
	return out
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "alphanum":
		return "Must be alphanumeric"
	case "startswith":
		return "Must start with " + e.Param()
	default:
		return "Invalid value"
	}
}
