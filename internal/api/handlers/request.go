package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"agroplan.io/agroplan/internal/api/middleware"
	"agroplan.io/agroplan/internal/domain"
	apperrors "agroplan.io/agroplan/internal/pkg/errors"
)

// requireActor returns the authenticated caller. Routes are mounted behind
// JWTAuth, so a miss means the middleware chain is misconfigured.
func requireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActor(c.Request.Context())
	if !ok {
		_ = c.Error(apperrors.Unauthorized(apperrors.CodeUnauthorized, "authentication required"))
		return domain.Actor{}, false
	}
	return actor, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, name+" must be a positive integer").
			WithFieldErrors([]apperrors.FieldError{{Field: name, Code: "INVALID_VALUE"}}))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.CodeValidationFailed, "request body is not valid JSON for this endpoint", http.StatusBadRequest))
		return false
	}
	return true
}

func queryBool(c *gin.Context, name string) (bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, name+" must be true or false"))
		return false, false
	}
	return v, true
}

func statusFilter(c *gin.Context) (domain.StatusFilter, bool) {
	f, err := domain.ParseStatusFilter(strings.TrimSpace(c.Query("status")))
	if err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "status must be pending, approved, rejected or all").
			WithFieldErrors([]apperrors.FieldError{{Field: "status", Code: "INVALID_VALUE"}}))
		return domain.StatusFilter{}, false
	}
	return f, true
}

func itemList[T any](items []T) gin.H {
	if items == nil {
		items = []T{}
	}
	return gin.H{"items": items}
}

// flexibleAcres reads an acreage sent either as a JSON number or a numeric
// string. Anything else, including non-finite values, yields nil.
func flexibleAcres(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

func parseOptionalDate(field string, raw *string) (*time.Time, *apperrors.FieldError) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &apperrors.FieldError{
		Field:   field,
		Code:    "INVALID_DATE",
		Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", s),
	}
}
