package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// 「Mon, Jan 02」或「Jan 02」，可带完整月份名
	monthDayPattern = regexp.MustCompile(`^(?:[A-Za-z]+,\s*)?([A-Za-z]{3,9})\.?\s+(\d{1,2})$`)
)

// 带年份的常见渲染格式；不含无年份格式（由 monthDayPattern 单独处理）
var generalDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999Z07:00",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"Mon, Jan 2, 2006",
	"Mon Jan 2 2006",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123,
	time.RFC1123Z,
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// NormalizeDate 把外部渲染不一致的日期字符串规约为 UTC 时刻。
// 全函数不失败：解析不了就落到当前 UTC 日零点，单条坏记录不允许拖垮整次摄取。
func NormalizeDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if raw == "" {
		return today
	}

	// 1. 纯 ISO 日期按 UTC 午夜解释，避免本地时区造成的日期漂移
	if isoDatePattern.MatchString(raw) {
		if t, err := time.Parse(DateFormat, raw); err == nil {
			return t
		}
		return today
	}

	// 2. 通用解析，仅接受 2015 年之后的结果（防止解析器把无年份字符串
	//    落到 2001 之类的纪元默认值）
	for _, layout := range generalDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil && t.Year() > 2015 {
			return t.UTC()
		}
	}

	// 3. 「Mon, Jan 02」/「Jan 02」类缩写，按当前 UTC 年补全
	if m := monthDayPattern.FindStringSubmatch(raw); m != nil {
		prefix := strings.ToLower(m[1])
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		if month, ok := monthsByPrefix[prefix]; ok {
			day, _ := strconv.Atoi(m[2])
			if day >= 1 && day <= 31 {
				return time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
			}
		}
	}

	// 4. 兜底
	return today
}

// DayKey 向下取整到 UTC 零点，作为日桶键
func DayKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekKey 向下取整到最近的 UTC 周一零点（ISO 周起点），作为周桶键
func WeekKey(t time.Time) time.Time {
	day := DayKey(t)
	// time.Weekday 周日为 0，换算成周一为 0
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// FormatWeekRange 生成周起点对应 7 天窗口的展示标签，仅用于展示，
// 分桶本身始终按 UTC 计算
func FormatWeekRange(weekStart time.Time) string {
	end := weekStart.AddDate(0, 0, 6)
	return fmt.Sprintf("%s - %s", weekStart.Format("Jan 02"), end.Format("Jan 02"))
}
