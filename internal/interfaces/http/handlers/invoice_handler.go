package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appbilling "github.com/turtacn/fulfill-billing/internal/application/billing"
	"github.com/turtacn/fulfill-billing/pkg/errors"
)

// InvoiceHandler serves the invoice computation and lifecycle endpoints.
type InvoiceHandler struct {
	invoices *appbilling.InvoiceService
}

// NewInvoiceHandler constructs an InvoiceHandler.
func NewInvoiceHandler(invoices *appbilling.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

type computeRequest struct {
	VendorName string `json:"vendor_name" binding:"required"`
	PeriodFrom string `json:"period_from" binding:"required"`
	PeriodTo   string `json:"period_to" binding:"required"`
}

func (r computeRequest) toServiceRequest() (appbilling.ComputeRequest, error) {
	period, err := parsePeriod(r.PeriodFrom, r.PeriodTo)
	if err != nil {
		return appbilling.ComputeRequest{}, err
	}
	return appbilling.ComputeRequest{
		VendorName: r.VendorName,
		Period:     period,
	}, nil
}

// Compute builds a draft invoice preview.  The draft is not persisted;
// recomputing with the same inputs yields the same lines.
func (h *InvoiceHandler) Compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}
	sreq, err := req.toServiceRequest()
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.invoices.Compute(c.Request.Context(), sreq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Finalize recomputes the invoice from source data and persists it as final,
// replacing any earlier invoice for the same vendor and period.
func (h *InvoiceHandler) Finalize(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}
	sreq, err := req.toServiceRequest()
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.invoices.Compute(c.Request.Context(), sreq)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.invoices.Finalize(c.Request.Context(), res.Invoice); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Get returns one invoice with its line items.
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// History lists a vendor's invoice headers, newest first.
func (h *InvoiceHandler) History(c *gin.Context) {
	invoices, err := h.invoices.History(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "total": len(invoices)})
}
