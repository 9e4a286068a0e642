package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard Response Field Keys
const (
	ResponseFieldTotal     = "total"
	ResponseFieldPage      = "page"
	ResponseFieldLimit     = "limit"
	ResponseFieldPageTotal = "pages"
	ResponseFieldData      = "data"

	ResponseFieldMessage = "message"
	ResponseFieldDetails = "details"
	ResponseFieldCode    = "code"
)

// PaginationParams holds the page window requested by the client
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePaginationParams parses page and limit query values, falling back to defaultLimit
func ParsePaginationParams(c *gin.Context, defaultLimit string) PaginationParams {
	if defaultLimit == "" {
		defaultLimit = DefaultLimit
	}

	page, _ := strconv.Atoi(c.DefaultQuery(QueryParamPage, DefaultPage))
	limit, _ := strconv.Atoi(c.DefaultQuery(QueryParamLimit, defaultLimit))

	return NewPaginationParams(page, limit)
}

// NewPaginationParams clamps page and limit into the allowed range
func NewPaginationParams(page, limit int) PaginationParams {
	if page < MinPage {
		page = MinPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// PageTotal returns the number of pages needed for total items
func (p PaginationParams) PageTotal(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Response Format Functions
func BuildListResponse(total int64, params PaginationParams, data any) map[string]any {
	return map[string]any{
		ResponseFieldData:      data,
		ResponseFieldTotal:     total,
		ResponseFieldPage:      params.Page,
		ResponseFieldLimit:     params.Limit,
		ResponseFieldPageTotal: params.PageTotal(total),
	}
}

func BuildErrorResponse(message string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldMessage: message,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}

func BuildCodedErrorResponse(code, message string, details any) map[string]any {
	response := BuildErrorResponse(message, details)
	if code != "" {
		response[ResponseFieldCode] = code
	}
	return response
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}
