package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// VendorsClient exposes the vendor registry endpoints.
type VendorsClient struct {
	c *Client
}

// ServiceFlags mirrors the per-vendor value-added service toggles.
type ServiceFlags struct {
	Barcode       bool `json:"barcode"`
	VoidFill      bool `json:"void_fill"`
	PolyBag       bool `json:"poly_bag"`
	CustomBox     bool `json:"custom_box"`
	OutboundVideo bool `json:"outbound_video"`
	ReturnVideo   bool `json:"return_video"`
}

// Vendor is a registered vendor.
type Vendor struct {
	Name       string       `json:"name"`
	RatePlan   string       `json:"rate_plan"`
	SizeBucket string       `json:"size_bucket"`
	Flags      ServiceFlags `json:"flags"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Alias is one alias registration.
type Alias struct {
	Alias      string    `json:"alias"`
	Vendor     string    `json:"vendor"`
	SourceType string    `json:"source_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateVendorRequest registers a vendor.
type CreateVendorRequest struct {
	Name       string       `json:"name"`
	RatePlan   string       `json:"rate_plan,omitempty"`
	SizeBucket string       `json:"size_bucket,omitempty"`
	Flags      ServiceFlags `json:"flags"`
}

// Create registers a vendor.
func (v *VendorsClient) Create(ctx context.Context, req CreateVendorRequest) (*Vendor, error) {
	var out Vendor
	if err := v.c.do(ctx, http.MethodPost, "/api/v1/vendors", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns all registered vendors.
func (v *VendorsClient) List(ctx context.Context) ([]Vendor, error) {
	var out struct {
		Vendors []Vendor `json:"vendors"`
	}
	if err := v.c.do(ctx, http.MethodGet, "/api/v1/vendors", nil, &out); err != nil {
		return nil, err
	}
	return out.Vendors, nil
}

// Get returns one vendor by canonical name.
func (v *VendorsClient) Get(ctx context.Context, name string) (*Vendor, error) {
	var out Vendor
	if err := v.c.do(ctx, http.MethodGet, "/api/v1/vendors/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a vendor and its aliases.
func (v *VendorsClient) Delete(ctx context.Context, name string) error {
	return v.c.do(ctx, http.MethodDelete, "/api/v1/vendors/"+url.PathEscape(name), nil, nil)
}

// AddAliasRequest registers an alias within one source log type.
type AddAliasRequest struct {
	Alias      string `json:"alias"`
	SourceType string `json:"source_type"`
}

// AddAlias registers an alias for the vendor.
func (v *VendorsClient) AddAlias(ctx context.Context, vendorName string, req AddAliasRequest) (*Alias, error) {
	var out Alias
	path := "/api/v1/vendors/" + url.PathEscape(vendorName) + "/aliases"
	if err := v.c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveAlias deletes one alias registration.
func (v *VendorsClient) RemoveAlias(ctx context.Context, vendorName, alias, sourceType string) error {
	q := url.Values{"alias": {alias}, "source_type": {sourceType}}
	path := "/api/v1/vendors/" + url.PathEscape(vendorName) + "/aliases?" + q.Encode()
	return v.c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ResolveNames returns every spelling the vendor is known by in one source log
// type, canonical name first.
func (v *VendorsClient) ResolveNames(ctx context.Context, vendorName, sourceType string) ([]string, error) {
	var out struct {
		Names []string `json:"names"`
	}
	path := "/api/v1/vendors/" + url.PathEscape(vendorName) + "/names?source_type=" + url.QueryEscape(sourceType)
	if err := v.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Names, nil
}
