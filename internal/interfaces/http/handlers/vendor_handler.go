package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// VendorHandler serves the vendor registry and alias index endpoints.
type VendorHandler struct {
	repo     vendor.Repository
	identity *vendor.IdentityService
}

// NewVendorHandler constructs a VendorHandler.
func NewVendorHandler(repo vendor.Repository, identity *vendor.IdentityService) *VendorHandler {
	return &VendorHandler{repo: repo, identity: identity}
}

type createVendorRequest struct {
	Name       string              `json:"name" binding:"required"`
	RatePlan   string              `json:"rate_plan"`
	SizeBucket string              `json:"size_bucket"`
	Flags      vendor.ServiceFlags `json:"flags"`
}

// Create registers a vendor.
func (h *VendorHandler) Create(c *gin.Context) {
	var req createVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	v, err := vendor.NewVendor(req.Name, common.RatePlan(req.RatePlan))
	if err != nil {
		respondError(c, err)
		return
	}
	v.SizeBucket = req.SizeBucket
	v.Flags = req.Flags

	if err := h.repo.Save(c.Request.Context(), v); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// List returns all vendors.
func (h *VendorHandler) List(c *gin.Context) {
	vendors, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors, "total": len(vendors)})
}

// Get returns one vendor by canonical name.
func (h *VendorHandler) Get(c *gin.Context) {
	v, err := h.repo.FindByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Delete removes a vendor and its aliases.
func (h *VendorHandler) Delete(c *gin.Context) {
	if err := h.identity.DeleteVendor(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addAliasRequest struct {
	Alias      string `json:"alias" binding:"required"`
	SourceType string `json:"source_type" binding:"required"`
}

// AddAlias registers an alias for the vendor in one source log type.
func (h *VendorHandler) AddAlias(c *gin.Context) {
	var req addAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	a, err := h.identity.RegisterAlias(c.Request.Context(),
		req.Alias, c.Param("name"), common.SourceType(req.SourceType))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// RemoveAlias deletes one alias registration.  Alias text and source type
// come from query parameters.
func (h *VendorHandler) RemoveAlias(c *gin.Context) {
	alias := c.Query("alias")
	sourceType := c.Query("source_type")
	if alias == "" || sourceType == "" {
		respondError(c, errors.New(errors.ErrCodeBadRequest, "alias and source_type are required"))
		return
	}

	err := h.identity.RemoveAlias(c.Request.Context(),
		alias, c.Param("name"), common.SourceType(sourceType))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResolveNames returns every spelling the vendor is known by in one source
// log type, canonical name first.
func (h *VendorHandler) ResolveNames(c *gin.Context) {
	sourceType := c.DefaultQuery("source_type", string(common.SourceAll))

	names, err := h.identity.ResolveNames(c.Request.Context(),
		c.Param("name"), common.SourceType(sourceType))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}
