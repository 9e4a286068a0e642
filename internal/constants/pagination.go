package constants

// Pagination Query Parameters
const (
	QueryParamPage   = "page"
	QueryParamLimit  = "limit"
	QueryParamSearch = "search"
	QueryParamSortBy = "sortBy"
)

// Default Pagination Values (as strings for query parsing)
const (
	DefaultPage        = "1"
	DefaultLimit       = "10"
	DefaultCourseLimit = "12"
)

// Pagination Limits (as integers for validation)
const (
	MinPage  = 1
	MinLimit = 1
	MaxLimit = 100
)

// Course sort keys
const (
	SortNewest  = "newest"
	SortPopular = "popular"
	SortRating  = "rating"
	SortTitle   = "title"
)
