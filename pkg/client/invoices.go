package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// InvoicesClient exposes the invoice endpoints.
type InvoicesClient struct {
	c *Client
}

// LineItem is one invoice fee line.
type LineItem struct {
	Label     string `json:"label"`
	Qty       int64  `json:"qty"`
	UnitPrice int64  `json:"unit_price"`
	Amount    int64  `json:"amount"`
}

// Advisory is a non-fatal condition raised during fee computation.
type Advisory struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Period is the billing window of an invoice.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Invoice is an invoice header with its line items.
type Invoice struct {
	ID          string     `json:"id"`
	Vendor      string     `json:"vendor"`
	Period      Period     `json:"period"`
	Status      string     `json:"status"`
	Items       []LineItem `json:"items"`
	TotalAmount int64      `json:"total_amount"`
	Currency    string     `json:"currency"`
	CreatedAt   time.Time  `json:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// ComputeRequest asks for an invoice over a billing period.
type ComputeRequest struct {
	VendorName string `json:"vendor_name"`
	PeriodFrom string `json:"period_from"`
	PeriodTo   string `json:"period_to"`
}

// ComputeResult is the computed invoice plus any advisories raised.
type ComputeResult struct {
	Invoice    *Invoice   `json:"invoice"`
	Advisories []Advisory `json:"advisories,omitempty"`
}

// Compute builds a draft invoice preview without persisting it.
func (i *InvoicesClient) Compute(ctx context.Context, req ComputeRequest) (*ComputeResult, error) {
	var out ComputeResult
	if err := i.c.do(ctx, http.MethodPost, "/api/v1/invoices/compute", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Finalize recomputes the invoice from source data and persists it as final.
func (i *InvoicesClient) Finalize(ctx context.Context, req ComputeRequest) (*ComputeResult, error) {
	var out ComputeResult
	if err := i.c.do(ctx, http.MethodPost, "/api/v1/invoices/finalize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one invoice with its line items.
func (i *InvoicesClient) Get(ctx context.Context, id string) (*Invoice, error) {
	var out Invoice
	if err := i.c.do(ctx, http.MethodGet, "/api/v1/invoices/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists a vendor's invoice headers, newest first.
func (i *InvoicesClient) History(ctx context.Context, vendorName string) ([]Invoice, error) {
	var out struct {
		Invoices []Invoice `json:"invoices"`
	}
	path := "/api/v1/vendors/" + url.PathEscape(vendorName) + "/invoices"
	if err := i.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}
