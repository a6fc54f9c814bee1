// Upstream gateway HTTP handlers.
//
//   - POST   /address/validate         (geocode a delivery address)
//   - POST   /billing/payments         (one-off charge)
//   - POST   /billing/subscriptions    (recurring charge)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-restaurant-ops/internal/geocode"
	"github.com/tbourn/go-restaurant-ops/internal/services"
)

// ValidateAddressRequest is the address to check.
type ValidateAddressRequest struct {
	Street       string `json:"street"                 example:"Avenida Paulista"`
	Number       string `json:"number"                 example:"1578"`
	Neighborhood string `json:"neighborhood,omitempty" example:"Bela Vista"`
	City         string `json:"city,omitempty"         example:"São Paulo"`
	State        string `json:"state,omitempty"        example:"SP"`
	ZipCode      string `json:"zipCode"                example:"01310-200"`
	Complement   string `json:"complement,omitempty"`
}

// CustomerRequest identifies the payer by tax id (CPF or CNPJ).
type CustomerRequest struct {
	Name  string `json:"name"  example:"Cantina da Nona"`
	Email string `json:"email" example:"billing@nona.example"`
	TaxID string `json:"tax_id" example:"123.456.789-09"`
}

// ChargeRequest is the JSON payload for payments and subscriptions.
type ChargeRequest struct {
	Customer    CustomerRequest `json:"customer"`
	BillingType string          `json:"billing_type" example:"PIX"`
	Value       decimal.Decimal `json:"value"        swaggertype:"string" example:"149.90"`
	// DueDate is YYYY-MM-DD; for subscriptions it is the first due date.
	DueDate     string `json:"due_date"              example:"2026-11-10"`
	Cycle       string `json:"cycle,omitempty"       example:"MONTHLY"`
	Description string `json:"description,omitempty" example:"Pro plan"`
}

func (r ChargeRequest) input() services.ChargeInput {
	return services.ChargeInput{
		Customer: services.CustomerInput{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			TaxID: r.Customer.TaxID,
		},
		BillingType: r.BillingType,
		Value:       r.Value,
		DueDate:     r.DueDate,
		Cycle:       r.Cycle,
		Description: r.Description,
	}
}

// ValidateAddress godoc
// @ID          validateAddress
// @Summary     Validate a delivery address
// @Description Geocodes the address. Zero results or an approximate match are reported as invalid with a reason.
// @Description Calls are limited per caller across all instances.
// @Tags        Address
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ValidateAddressRequest  true  "Address"
//
// @Success     200  {object} geocode.Result
// @Failure     400  {object} handlers.ErrorResponse "Missing street, number or zipCode"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     429  {object} handlers.ErrorResponse "rate_limited"
// @Failure     503  {object} handlers.ErrorResponse "Geocoder not configured"
// @Router      /address/validate [post]
func (h *Handlers) ValidateAddress(c *gin.Context) {
	var req ValidateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.address.Validate(c.Request.Context(), callerID(c), geocode.Address(req))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// CreatePayment godoc
// @ID          createPayment
// @Summary     Create a payment
// @Description Finds or creates the customer by tax id, then creates a one-off charge at the billing gateway.
// @Tags        Billing
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ChargeRequest  true  "Charge"
//
// @Success     201  {object} billing.Payment
// @Failure     400  {object} handlers.ErrorResponse "Bad request or rejected by gateway"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     503  {object} handlers.ErrorResponse "Billing not configured"
// @Router      /billing/payments [post]
func (h *Handlers) CreatePayment(c *gin.Context) {
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.billing.CreatePayment(c.Request.Context(), req.input())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// CreateSubscription godoc
// @ID          createSubscription
// @Summary     Create a subscription
// @Tags        Billing
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ChargeRequest  true  "Charge with cycle"
//
// @Success     201  {object} billing.Subscription
// @Failure     400  {object} handlers.ErrorResponse "Bad request or rejected by gateway"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     503  {object} handlers.ErrorResponse "Billing not configured"
// @Router      /billing/subscriptions [post]
func (h *Handlers) CreateSubscription(c *gin.Context) {
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	s, err := h.billing.CreateSubscription(c.Request.Context(), req.input())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, s)
}
