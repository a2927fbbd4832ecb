package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 对外响应的错误码
const (
	CodeBadQuery    = "BAD_QUERY"
	CodeServerError = "SERVER_ERROR"
)
