// Package services – BillingService
//
// BillingService is a thin pass-through to the payment gateway. Every charge
// is attached to a gateway customer found (or registered) by tax id.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-restaurant-ops/internal/billing"
)

// Gateway is the subset of *billing.Client the service needs.
type Gateway interface {
	FindCustomerByTaxID(ctx context.Context, taxID string) (*billing.Customer, error)
	CreateCustomer(ctx context.Context, in billing.Customer) (*billing.Customer, error)
	CreatePayment(ctx context.Context, in billing.Payment) (*billing.Payment, error)
	CreateSubscription(ctx context.Context, in billing.Subscription) (*billing.Subscription, error)
}

// CustomerInput identifies the payer.
type CustomerInput struct {
	Name  string
	Email string
	TaxID string
}

// ChargeInput describes a payment or subscription.
type ChargeInput struct {
	Customer    CustomerInput
	BillingType string
	Value       decimal.Decimal
	DueDate     string
	Cycle       string // subscriptions only
	Description string
}

var (
	billingTypes = map[string]bool{"BOLETO": true, "CREDIT_CARD": true, "PIX": true, "UNDEFINED": true}
	cycles       = map[string]bool{"WEEKLY": true, "BIWEEKLY": true, "MONTHLY": true, "QUARTERLY": true, "SEMIANNUALLY": true, "YEARLY": true}
	nonDigits    = regexp.MustCompile(`\D`)
)

// BillingService creates gateway charges.
type BillingService struct {
	Gateway Gateway
}

// CreatePayment creates a one-off charge for the customer.
func (s *BillingService) CreatePayment(ctx context.Context, in ChargeInput) (*billing.Payment, error) {
	tr := otel.Tracer("services/BillingService")
	ctx, span := tr.Start(ctx, "CreatePayment")
	defer span.End()

	if err := validateCharge(&in, false); err != nil {
		return nil, err
	}
	cus, err := s.customer(ctx, in.Customer)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("billing.customer", cus.ID))

	p, err := s.Gateway.CreatePayment(ctx, billing.Payment{
		Customer:    cus.ID,
		BillingType: in.BillingType,
		Value:       in.Value,
		DueDate:     in.DueDate,
		Description: in.Description,
	})
	if err != nil {
		return nil, gatewayErr(err)
	}
	log.Info().Str("customer", cus.ID).Str("payment", p.ID).Str("value", in.Value.StringFixed(2)).Msg("payment created")
	return p, nil
}

// CreateSubscription creates a recurring charge for the customer.
func (s *BillingService) CreateSubscription(ctx context.Context, in ChargeInput) (*billing.Subscription, error) {
	tr := otel.Tracer("services/BillingService")
	ctx, span := tr.Start(ctx, "CreateSubscription",
		trace.WithAttributes(attribute.String("billing.cycle", in.Cycle)),
	)
	defer span.End()

	if err := validateCharge(&in, true); err != nil {
		return nil, err
	}
	cus, err := s.customer(ctx, in.Customer)
	if err != nil {
		return nil, err
	}

	sub, err := s.Gateway.CreateSubscription(ctx, billing.Subscription{
		Customer:    cus.ID,
		BillingType: in.BillingType,
		Value:       in.Value,
		NextDueDate: in.DueDate,
		Cycle:       in.Cycle,
		Description: in.Description,
	})
	if err != nil {
		return nil, gatewayErr(err)
	}
	log.Info().Str("customer", cus.ID).Str("subscription", sub.ID).Str("cycle", in.Cycle).Msg("subscription created")
	return sub, nil
}

// customer finds the gateway customer by tax id, registering it when absent.
func (s *BillingService) customer(ctx context.Context, in CustomerInput) (*billing.Customer, error) {
	if s.Gateway == nil {
		return nil, ErrBillingMissing
	}
	found, err := s.Gateway.FindCustomerByTaxID(ctx, in.TaxID)
	if err != nil {
		return nil, gatewayErr(err)
	}
	if found != nil {
		return found, nil
	}
	created, err := s.Gateway.CreateCustomer(ctx, billing.Customer{Name: in.Name, Email: in.Email, CpfCnpj: in.TaxID})
	if err != nil {
		return nil, gatewayErr(err)
	}
	return created, nil
}

func validateCharge(in *ChargeInput, subscription bool) error {
	in.Customer.Name = strings.TrimSpace(in.Customer.Name)
	in.Customer.TaxID = nonDigits.ReplaceAllString(in.Customer.TaxID, "")
	in.BillingType = strings.ToUpper(strings.TrimSpace(in.BillingType))
	in.Cycle = strings.ToUpper(strings.TrimSpace(in.Cycle))

	if in.Customer.Name == "" {
		return invalid("customer name is required")
	}
	if n := len(in.Customer.TaxID); n != 11 && n != 14 {
		return invalid("customer tax id must have 11 or 14 digits")
	}
	if !billingTypes[in.BillingType] {
		return invalid("unsupported billing type")
	}
	if !in.Value.IsPositive() {
		return invalid("value must be positive")
	}
	if _, err := time.Parse(time.DateOnly, in.DueDate); err != nil {
		return invalid("due date must be YYYY-MM-DD")
	}
	if subscription && !cycles[in.Cycle] {
		return invalid("unsupported subscription cycle")
	}
	return nil
}

// gatewayErr maps client failures onto the service taxonomy.
func gatewayErr(err error) error {
	switch {
	case errors.Is(err, billing.ErrNoToken):
		return ErrBillingMissing
	case errors.Is(err, billing.ErrRejected):
		var apiErr *billing.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return invalid(apiErr.Message)
		}
		return invalid("rejected by billing gateway")
	default:
		return fmt.Errorf("billing gateway: %w", err)
	}
}
