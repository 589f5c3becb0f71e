package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 10
	// Unlimited is the limit query value that disables the page cap.
	Unlimited = "unlimited"
)

// Pagination holds skip/limit parameters. Limit is -1 when unlimited.
type Pagination struct {
	Skip  int
	Limit int
}

// IsUnlimited reports whether the page cap is disabled.
func (p Pagination) IsUnlimited() bool {
	return p.Limit < 0
}

// LimitValue renders the limit the way it is echoed back to clients.
func (p Pagination) LimitValue() any {
	if p.IsUnlimited() {
		return Unlimited
	}
	return p.Limit
}

// ParsePagination reads skip and limit query params with sane defaults.
// When allowUnlimited is set, limit=unlimited disables the cap.
func ParsePagination(c *fiber.Ctx, allowUnlimited bool) Pagination {
	return NewPagination(c.Query("skip"), c.Query("limit"), allowUnlimited)
}

// NewPagination parses raw skip and limit values.
func NewPagination(skipRaw, limitRaw string, allowUnlimited bool) Pagination {
	skip := parseInt(skipRaw, 0)
	if skip < 0 {
		skip = 0
	}

	if allowUnlimited && limitRaw == Unlimited {
		return Pagination{Skip: skip, Limit: -1}
	}

	limit := parseInt(limitRaw, DefaultLimit)
	if limit <= 0 {
		limit = DefaultLimit
	}

	return Pagination{Skip: skip, Limit: limit}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
