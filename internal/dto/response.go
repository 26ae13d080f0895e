package dto

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Message: "ok", Data: data}
}

func OKMessage(msg string, data interface{}) Response {
	return Response{Success: true, Message: msg, Data: data}
}

func Fail(msg string) Response {
	return Response{Success: false, Message: msg}
}

// PageResult wraps a paginated list payload.
type PageResult struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

func NewPageResult(list interface{}, total int64, page, pageSize int) PageResult {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResult{List: list, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}

// Pagination carries normalized paging parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// DefaultPageSize applies when the client sends no pageSize.
const DefaultPageSize = 20

const maxPageSize = 50

// NormalizePagination clamps raw query values into valid bounds:
// page floors at 1, pageSize floors at 1 and caps at 50.
func NormalizePagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }
