package service

import (
	"math"
	"sort"
	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/util"
	"time"
)

// AnalyticsService 对规范记录序列做纯计算，无状态、可重入，
// 每次过滤变化都从头整体重算
type AnalyticsService struct{}

func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{}
}

// IsDone 宽松完成判定：任一主题 100 即计入 streak/velocity/burn-up，
// 用于奖励当天的部分进展。与 OverallPct/Status 的严格定义是两个
// 独立判定，刻意不合并。
func IsDone(r model.ProgressRecord) bool {
	return r.OverallPct == 100 || r.PythonPct == 100 || r.LLMPct == 100
}

// rangeCutoff 过滤档位对应的日期下界；all 无下界
func rangeCutoff(rng model.RangeFilter, now time.Time) (time.Time, bool) {
	today := util.DayKey(now)
	switch rng {
	case model.RangeLast4Weeks:
		return today.AddDate(0, 0, -28), true
	case model.RangeLast12Weeks:
		return today.AddDate(0, 0, -84), true
	case model.RangeYearToDate:
		return time.Date(now.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FilterRecords 应用日期下界。all 档保留全部记录（含无日期的）；
// 有下界时无日期的记录视为不在窗口内
func (s *AnalyticsService) FilterRecords(records []model.ProgressRecord, rng model.RangeFilter, now time.Time) []model.ProgressRecord {
	cutoff, bounded := rangeCutoff(rng, now)
	if !bounded {
		return records
	}

	out := make([]model.ProgressRecord, 0, len(records))
	for _, r := range records {
		if r.Date != nil && !r.Date.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot 在过滤后的序列上派生一次完整的聚合快照
func (s *AnalyticsService) Snapshot(records []model.ProgressRecord, rng model.RangeFilter, now time.Time) *model.AggregateSnapshot {
	filtered := s.FilterRecords(records, rng, now)

	total := len(filtered)
	done := 0
	for _, r := range filtered {
		if IsDone(r) {
			done++
		}
	}

	completion := 0
	if total > 0 {
		completion = int(math.Round(float64(done*100) / float64(total)))
	}

	return &model.AggregateSnapshot{
		Total:      total,
		Done:       done,
		Open:       total - done,
		Completion: completion,
		Streak:     currentStreak(filtered),
		Weekly:     weeklyVelocity(filtered),
		Burnup:     cumulativeBurnup(filtered),
		Averages:   topicAverages(filtered),
	}
}

// WeekRecords 周下钻：返回派生日期落在 [weekStart, weekStart+7d)
// 的记录，按日期升序。恰好落在周一零点的记录属于该周
func (s *AnalyticsService) WeekRecords(records []model.ProgressRecord, weekStart time.Time, rng model.RangeFilter, now time.Time) []model.ProgressRecord {
	filtered := s.FilterRecords(records, rng, now)

	start := util.DayKey(weekStart)
	end := start.AddDate(0, 0, 7)

	out := make([]model.ProgressRecord, 0)
	for _, r := range filtered {
		if r.Date == nil {
			continue
		}
		d := r.Date.UTC()
		if !d.Before(start) && d.Before(end) {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(*out[j].Date)
	})
	return out
}

// currentStreak 从最近的完成日起逐个 UTC 日往回数，遇到第一个
// 缺口停止。同一天的多条记录折叠成一个连续日
func currentStreak(records []model.ProgressRecord) int {
	days := make(map[time.Time]bool)
	var latest time.Time

	for _, r := range records {
		if r.Date == nil || !IsDone(r) {
			continue
		}
		day := util.DayKey(*r.Date)
		days[day] = true
		if day.After(latest) {
			latest = day
		}
	}

	if len(days) == 0 {
		return 0
	}

	streak := 0
	for day := latest; days[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// weeklyVelocity 按周桶统计完成数并附 3 点尾随滑动平均。
// 窗口是最近 3 个数据点，不是 3 个日历周
func weeklyVelocity(records []model.ProgressRecord) []model.WeeklyPoint {
	counts := make(map[time.Time]int)
	for _, r := range records {
		if r.Date == nil || !IsDone(r) {
			continue
		}
		counts[util.WeekKey(*r.Date)]++
	}

	weeks := make([]time.Time, 0, len(counts))
	for w := range counts {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Before(weeks[j])
	})

	points := make([]model.WeeklyPoint, 0, len(weeks))
	for i, w := range weeks {
		lo := i - 2
		if lo < 0 {
			lo = 0
		}
		sum := 0
		for _, prev := range weeks[lo : i+1] {
			sum += counts[prev]
		}

		points = append(points, model.WeeklyPoint{
			WeekStart: w,
			WeekLabel: util.FormatWeekRange(w),
			Done:      counts[w],
			MovingAvg: float64(sum) / float64(i+1-lo),
		})
	}
	return points
}

// cumulativeBurnup 全部过滤后记录按日桶分组后做前缀和，
// 两个累计值按构造单调不减
func cumulativeBurnup(records []model.ProgressRecord) []model.BurnupPoint {
	type dayAgg struct {
		added int
		done  int
	}

	buckets := make(map[time.Time]*dayAgg)
	for _, r := range records {
		if r.Date == nil {
			continue
		}
		day := util.DayKey(*r.Date)
		agg, ok := buckets[day]
		if !ok {
			agg = &dayAgg{}
			buckets[day] = agg
		}
		agg.added++
		if IsDone(r) {
			agg.done++
		}
	}

	days := make([]time.Time, 0, len(buckets))
	for d := range buckets {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	points := make([]model.BurnupPoint, 0, len(days))
	runningTotal, runningDone := 0, 0
	for _, d := range days {
		runningTotal += buckets[d].added
		runningDone += buckets[d].done
		points = append(points, model.BurnupPoint{
			Day:             d,
			CumulativeTotal: runningTotal,
			CumulativeDone:  runningDone,
		})
	}
	return points
}

// topicAverages 主题平均完成度。只统计带有对应状态字段的记录，
// 缺失值不按 0 参与；overall 只在两个主题都有评级时统计
func topicAverages(records []model.ProgressRecord) model.TopicAverages {
	var out model.TopicAverages
	pySum, pyN := 0, 0
	llmSum, llmN := 0, 0
	ovSum, ovN := 0, 0

	for _, r := range records {
		if r.PythonRated {
			pySum += r.PythonPct
			pyN++
		}
		if r.LLMRated {
			llmSum += r.LLMPct
			llmN++
		}
		if r.PythonRated && r.LLMRated {
			ovSum += r.OverallPct
			ovN++
		}
	}

	if pyN > 0 {
		v := float64(pySum) / float64(pyN)
		out.Python = &v
	}
	if llmN > 0 {
		v := float64(llmSum) / float64(llmN)
		out.LLM = &v
	}
	if ovN > 0 {
		v := float64(ovSum) / float64(ovN)
		out.Overall = &v
	}
	return out
}
