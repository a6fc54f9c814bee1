// License HTTP handlers.
//
//   - POST   /license                       (issue a token for the caller's plan)
//   - POST   /license/revocations           (revoke a token by jti)
//   - GET    /license/revocations/{jti}     (online revocation check)
//
// Responses carry Cache-Control: no-store, set by the router.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LicenseResponse is an issued entitlement token.
type LicenseResponse struct {
	Token     string    `json:"token"      example:"eyJhbGciOiJFZERTQSIs..."`
	Plan      string    `json:"plan"       example:"pro"`
	PlanName  string    `json:"plan_name"  example:"Pro"`
	Features  []string  `json:"features"`
	TokenID   string    `json:"token_id"   example:"5b0c9b1e-5f0e-4f59-9a53-0b1f3f7f1a10"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RevokeLicenseRequest is the JSON payload for revoking a token.
type RevokeLicenseRequest struct {
	TokenID string `json:"token_id" binding:"required" example:"5b0c9b1e-5f0e-4f59-9a53-0b1f3f7f1a10"`
	Reason  string `json:"reason,omitempty"           example:"device lost"`
}

// RevocationResponse answers an online revocation check.
type RevocationResponse struct {
	TokenID string `json:"token_id"`
	Revoked bool   `json:"revoked"`
}

// IssueLicense godoc
// @ID          issueLicense
// @Summary     Issue a license token
// @Description Signs an EdDSA entitlement token for the caller. The plan is read from the user record, never from the request.
// @Tags        License
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} handlers.LicenseResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized or token_expired"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     503  {object} handlers.ErrorResponse "Signing key not configured"
// @Router      /license [post]
func (h *Handlers) IssueLicense(c *gin.Context) {
	lic, err := h.licenses.Issue(c.Request.Context(), callerID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, LicenseResponse{
		Token:     lic.Token,
		Plan:      lic.Plan,
		PlanName:  lic.PlanName,
		Features:  lic.Features,
		TokenID:   lic.TokenID,
		IssuedAt:  lic.IssuedAt,
		ExpiresAt: lic.ExpiresAt,
	})
}

// RevokeLicense godoc
// @ID          revokeLicense
// @Summary     Revoke a license token
// @Description Only the account a token was issued to can revoke it.
// @Tags        License
// @Accept      json
// @Security    BearerAuth
//
// @Param       body  body  handlers.RevokeLicenseRequest  true  "Token to revoke"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "No license with this id was issued to the caller"
// @Router      /license/revocations [post]
func (h *Handlers) RevokeLicense(c *gin.Context) {
	var req RevokeLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token_id required")
		return
	}
	if err := h.licenses.Revoke(c.Request.Context(), callerID(c), req.TokenID, req.Reason); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// LicenseRevocation godoc
// @ID          licenseRevocation
// @Summary     Check whether a token was revoked
// @Tags        License
// @Produce     json
// @Security    BearerAuth
//
// @Param       jti  path  string  true  "Token ID"
//
// @Success     200  {object} handlers.RevocationResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /license/revocations/{jti} [get]
func (h *Handlers) LicenseRevocation(c *gin.Context) {
	jti := c.Param("jti")
	revoked, err := h.licenses.IsRevoked(c.Request.Context(), jti)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, RevocationResponse{TokenID: jti, Revoked: revoked})
}
