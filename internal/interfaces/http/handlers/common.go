// Package handlers implements the HTTP request handlers.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/fulfill-billing/pkg/errors"
	"github.com/turtacn/fulfill-billing/pkg/types/common"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status and writes the
// standard error body.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.AbortWithStatusJSON(errors.HTTPStatus(code), ErrorResponse{
		Code:    string(code),
		Message: err.Error(),
	})
}

// parsePeriod builds the billing window from "YYYY-MM-DD" bounds.
func parsePeriod(from, to string) (common.DateRange, error) {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return common.DateRange{}, errors.New(errors.ErrCodePeriodInvalid, "invalid period start").
			WithDetail(from)
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return common.DateRange{}, errors.New(errors.ErrCodePeriodInvalid, "invalid period end").
			WithDetail(to)
	}
	r, err := common.NewDateRange(f, t)
	if err != nil {
		return common.DateRange{}, errors.Wrap(err, errors.ErrCodePeriodInvalid, "invalid period")
	}
	return r, nil
}
