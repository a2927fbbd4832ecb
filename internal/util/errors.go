package util

import "errors"

// ErrSourceUnavailable 分页抓取失败，整次摄取中止
var ErrSourceUnavailable = errors.New("record source unavailable")
