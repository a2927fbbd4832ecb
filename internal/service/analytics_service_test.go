package service

import (
	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-08-31 是周一
var analyticsNow = time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

func recordOn(day time.Time, pythonPct, llmPct int) model.ProgressRecord {
	d := day
	overall := 0
	if pythonPct == 100 && llmPct == 100 {
		overall = 100
	}
	return model.ProgressRecord{
		Date:        &d,
		PythonPct:   pythonPct,
		LLMPct:      llmPct,
		OverallPct:  overall,
		PythonRated: true,
		LLMRated:    true,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDoneLooserThanOverallPct(t *testing.T) {
	// 宽松判定与 overallPct 的严格判定刻意不一致：
	// 单主题完成计入 done，但 overallPct 仍为 0
	single := recordOn(day(2026, time.August, 31), 100, 0)
	assert.True(t, IsDone(single))
	assert.Equal(t, 0, single.OverallPct)

	both := recordOn(day(2026, time.August, 31), 100, 100)
	assert.True(t, IsDone(both))
	assert.Equal(t, 100, both.OverallPct)

	assert.False(t, IsDone(recordOn(day(2026, time.August, 31), 0, 0)))
}

func TestSnapshotKPIs(t *testing.T) {
	svc := NewAnalyticsService()
	records := []model.ProgressRecord{
		recordOn(day(2026, time.August, 28), 100, 100),
		recordOn(day(2026, time.August, 29), 100, 0),
		recordOn(day(2026, time.August, 30), 0, 0),
		recordOn(day(2026, time.August, 31), 0, 0),
	}

	snap := svc.Snapshot(records, model.RangeAll, analyticsNow)
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 2, snap.Done)
	assert.Equal(t, 2, snap.Open)
	assert.Equal(t, 50, snap.Completion)
}

func TestSnapshotEmptyInput(t *testing.T) {
	svc := NewAnalyticsService()
	snap := svc.Snapshot(nil, model.RangeAll, analyticsNow)

	assert.Equal(t, 0, snap.Total)
	assert.Equal(t, 0, snap.Completion)
	assert.Equal(t, 0, snap.Streak)
	assert.Empty(t, snap.Weekly)
	assert.Empty(t, snap.Burnup)
	assert.Nil(t, snap.Averages.Python)
}

func TestStreakStopsAtGap(t *testing.T) {
	svc := NewAnalyticsService()
	// 完成日 {D, D-1, D-3}，D-2 缺口：连续 2 天而非 3 天
	d := day(2026, time.August, 31)
	records := []model.ProgressRecord{
		recordOn(d, 100, 100),
		recordOn(d.AddDate(0, 0, -1), 100, 0),
		recordOn(d.AddDate(0, 0, -3), 100, 100),
	}

	snap := svc.Snapshot(records, model.RangeAll, analyticsNow)
	assert.Equal(t, 2, snap.Streak)
}

func TestStreakCollapsesSameDayRecords(t *testing.T) {
	svc := NewAnalyticsService()
	d := day(2026, time.August, 31)
	records := []model.ProgressRecord{
		recordOn(d, 100, 100),
		recordOn(d, 100, 0),
		recordOn(d, 0, 100),
	}

	snap := svc.Snapshot(records, model.RangeAll, analyticsNow)
	assert.Equal(t, 1, snap.Streak)
}

func TestStreakZeroWithoutDoneRecords(t *testing.T) {
	svc := NewAnalyticsService()
	records := []model.ProgressRecord{
		recordOn(day(2026, time.August, 31), 0, 0),
	}
	assert.Equal(t, 0, svc.Snapshot(records, model.RangeAll, analyticsNow).Streak)
}

func TestWeeklyVelocityMovingAverage(t *testing.T) {
	svc := NewAnalyticsService()
	w1 := day(2026, time.August, 10) // 周一
	w2 := day(2026, time.August, 17)
	w3 := day(2026, time.August, 24)

	records := []model.ProgressRecord{
		recordOn(w1, 100, 100),
		recordOn(w1.AddDate(0, 0, 1), 100, 100),
		recordOn(w1.AddDate(0, 0, 2), 100, 100),
		recordOn(w1.AddDate(0, 0, 3), 100, 100), // w1: 4
		recordOn(w2, 100, 100),                  // w2: 1
		recordOn(w3.AddDate(0, 0, 2), 100, 100),
		recordOn(w3.AddDate(0, 0, 4), 100, 100), // w3: 2
		recordOn(w3, 0, 0),                      // 未完成不计入
	}

	snap := svc.Snapshot(records, model.RangeAll, analyticsNow)
	require.Len(t, snap.Weekly, 3)

	// 第一个点的滑动平均就是自身（窗口大小 1）
	assert.Equal(t, w1, snap.Weekly[0].WeekStart)
	assert.Equal(t, 4, snap.Weekly[0].Done)
	assert.InDelta(t, 4.0, snap.Weekly[0].MovingAvg, 1e-9)

	assert.Equal(t, 1, snap.Weekly[1].Done)
	assert.InDelta(t, 2.5, snap.Weekly[1].MovingAvg, 1e-9)

	// 第三个点等于前三个点的平均
	assert.Equal(t, 2, snap.Weekly[2].Done)
	assert.InDelta(t, (4.0+1.0+2.0)/3.0, snap.Weekly[2].MovingAvg, 1e-9)

	assert.Equal(t, "Aug 10 - Aug 16", snap.Weekly[0].WeekLabel)
}

func TestWeeklyVelocityWindowIsDataPoints(t *testing.T) {
	svc := NewAnalyticsService()
	// 两个有数据的周之间隔了空档周：窗口按数据点而非日历周取
	w1 := day(2026, time.June, 1)
	w2 := day(2026, time.August, 24)
	records := []model.ProgressRecord{
		recordOn(w1, 100, 100),
		recordOn(w2, 100, 100),
		recordOn(w2.AddDate(0, 0, 1), 100, 100),
		recordOn(w2.AddDate(0, 0, 2), 100, 100),
	}

	snap := svc.Snapshot(records, model.RangeAll, analyticsNow)
	require.Len(t, snap.Weekly, 2)
	assert.InDelta(t, (1.0+3.0)/2.0, snap.Weekly[1].MovingAvg, 1e-9)
}

func TestBurnupMonotonic(t *testing.T) {
	svc := NewAnalyticsService()
	records := []model.ProgressRecord{
		recordOn(day(2026, time.August, 25), 100, 100),
		recordOn(day(2026, time.August, 25), 0, 0),
		recordOn(day(2026, time.August, 27), 100, 0),
		recordOn(day(2026, time.August, 28), 0, 0),
		recordOn(day(2026, time.August, 31), 100, 100),
	}

	snap := svc.Snapshot(records, model.RangeAll, analyticsNow)
	require.Len(t, snap.Burnup, 4)

	for i := 1; i < len(snap.Burnup); i++ {
		assert.GreaterOrEqual(t, snap.Burnup[i].CumulativeTotal, snap.Burnup[i-1].CumulativeTotal)
		assert.GreaterOrEqual(t, snap.Burnup[i].CumulativeDone, snap.Burnup[i-1].CumulativeDone)
		assert.True(t, snap.Burnup[i].Day.After(snap.Burnup[i-1].Day))
	}

	last := snap.Burnup[len(snap.Burnup)-1]
	assert.Equal(t, 5, last.CumulativeTotal)
	assert.Equal(t, 3, last.CumulativeDone)
}

func TestTopicAveragesExcludeUnrated(t *testing.T) {
	svc := NewAnalyticsService()

	rated := recordOn(day(2026, time.August, 31), 100, 0)
	pyOnly := model.ProgressRecord{PythonPct: 100, PythonRated: true}
	unrated := model.ProgressRecord{}

	snap := svc.Snapshot([]model.ProgressRecord{rated, pyOnly, unrated}, model.RangeAll, analyticsNow)

	require.NotNil(t, snap.Averages.Python)
	assert.InDelta(t, 100.0, *snap.Averages.Python, 1e-9)

	require.NotNil(t, snap.Averages.LLM)
	assert.InDelta(t, 0.0, *snap.Averages.LLM, 1e-9)

	// overall 只统计双主题都有评级的记录
	require.NotNil(t, snap.Averages.Overall)
	assert.InDelta(t, 0.0, *snap.Averages.Overall, 1e-9)
}

func TestFilterRecordsRanges(t *testing.T) {
	svc := NewAnalyticsService()
	old := recordOn(day(2025, time.December, 31), 100, 100)
	janFirst := recordOn(day(2026, time.January, 1), 100, 100)
	recent := recordOn(day(2026, time.August, 20), 100, 100)
	undated := model.ProgressRecord{PythonPct: 100, PythonRated: true}

	records := []model.ProgressRecord{old, janFirst, recent, undated}

	all := svc.FilterRecords(records, model.RangeAll, analyticsNow)
	assert.Len(t, all, 4)

	ytd := svc.FilterRecords(records, model.RangeYearToDate, analyticsNow)
	assert.Len(t, ytd, 2)

	last4 := svc.FilterRecords(records, model.RangeLast4Weeks, analyticsNow)
	assert.Len(t, last4, 1)

	last12 := svc.FilterRecords(records, model.RangeLast12Weeks, analyticsNow)
	assert.Len(t, last12, 1)
}

func TestWeekRecordsBoundary(t *testing.T) {
	svc := NewAnalyticsService()
	monday := day(2026, time.August, 31)

	atBoundary := recordOn(monday, 100, 100)                  // 恰在周一零点
	inside := recordOn(monday.AddDate(0, 0, 3), 0, 0)         // 周四
	nextMonday := recordOn(monday.AddDate(0, 0, 7), 100, 100) // 下周一
	before := recordOn(monday.AddDate(0, 0, -1), 100, 100)    // 上周日

	got := svc.WeekRecords([]model.ProgressRecord{nextMonday, inside, atBoundary, before}, monday, model.RangeAll, analyticsNow)
	require.Len(t, got, 2)

	// 周一零点属于本周且排序按日期升序
	assert.Equal(t, monday, *got[0].Date)
	assert.Equal(t, monday.AddDate(0, 0, 3), *got[1].Date)
}

func TestEndToEndTenRecords(t *testing.T) {
	svc := NewAnalyticsService()

	pages := []repository.RawPage{
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-24"),
			"Python Status": selectField("Completed"),
			"LLM Status":    selectField("Completed"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-25"),
			"Python Status": selectField("Completed"),
			"LLM Status":    selectField("Completed"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-26"),
			"Python Status": selectField("In progress"),
			"LLM Status":    selectField("Not started"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-27"),
			"Python Status": selectField("In progress"),
			"LLM Status":    selectField("In progress"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-28"),
			"Python Status": selectField("Not started"),
			"LLM Status":    selectField("In progress"),
		}),
		// 无日期行：计入 KPI，不参与日/周分桶
		page(map[string]model.FieldValue{
			"Python Status": selectField("Not started"),
			"LLM Status":    selectField("Not started"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-29"),
			"Python Status": selectField("Not started"),
			"LLM Status":    selectField("Not started"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-30"),
			"Python Status": selectField("Not started"),
			"LLM Status":    selectField("Not started"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-31"),
			"Python Status": selectField("Not started"),
			"LLM Status":    selectField("Not started"),
		}),
		page(map[string]model.FieldValue{
			"Day":           dateField("2026-08-23"),
			"Python Status": selectField("Not started"),
			"LLM Status":    selectField("Not started"),
		}),
	}

	records := make([]model.ProgressRecord, 0, len(pages))
	for _, p := range pages {
		records = append(records, MapRecord(p, analyticsNow))
	}

	snap := svc.Snapshot(records, model.RangeAll, analyticsNow)
	assert.Equal(t, 10, snap.Total)
	assert.Equal(t, 2, snap.Done)
	assert.Equal(t, 8, snap.Open)
	assert.Equal(t, 20, snap.Completion)

	// 无日期行不进 burn-up：9 条有日期
	last := snap.Burnup[len(snap.Burnup)-1]
	assert.Equal(t, 9, last.CumulativeTotal)
	assert.Equal(t, 2, last.CumulativeDone)

	// 2026-08-24、08-25 连续完成，之后中断：从最近完成日回数
	assert.Equal(t, 2, snap.Streak)
}
