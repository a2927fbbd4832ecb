package model

import "time"

// RangeFilter 客户端可选的日期下界过滤
type RangeFilter string

const (
	RangeAll         RangeFilter = "all"
	RangeLast4Weeks  RangeFilter = "4w"
	RangeLast12Weeks RangeFilter = "12w"
	RangeYearToDate  RangeFilter = "ytd"
)

// ParseRangeFilter 解析过滤参数，空值按 all 处理
func ParseRangeFilter(s string) (RangeFilter, bool) {
	switch RangeFilter(s) {
	case RangeAll, RangeLast4Weeks, RangeLast12Weeks, RangeYearToDate:
		return RangeFilter(s), true
	case "":
		return RangeAll, true
	}
	return RangeAll, false
}

// WeeklyPoint 每周完成数及 3 点滑动平均
type WeeklyPoint struct {
	WeekStart time.Time `json:"weekStart"`
	WeekLabel string    `json:"weekLabel"`
	Done      int       `json:"done"`
	MovingAvg float64   `json:"movingAvg"`
}

// BurnupPoint 按日累计的 burn-up 点，两个累计值单调不减
type BurnupPoint struct {
	Day             time.Time `json:"day"`
	CumulativeTotal int       `json:"cumulativeTotal"`
	CumulativeDone  int       `json:"cumulativeDone"`
}

// TopicAverages 主题平均完成度，无可统计记录时对应项为空
type TopicAverages struct {
	Python  *float64 `json:"python,omitempty"`
	LLM     *float64 `json:"llm,omitempty"`
	Overall *float64 `json:"overall,omitempty"`
}

// AggregateSnapshot 一次分析计算的完整输出，每次过滤变化都整体重算
type AggregateSnapshot struct {
	Total      int           `json:"total"`
	Done       int           `json:"done"`
	Open       int           `json:"open"`
	Completion int           `json:"completion"`
	Streak     int           `json:"streak"`
	Weekly     []WeeklyPoint `json:"weekly"`
	Burnup     []BurnupPoint `json:"burnup"`
	Averages   TopicAverages `json:"topicAverages"`
}
