package service

import (
	"strconv"
	"strings"
	"study_tracker_backend/internal/model"
	"study_tracker_backend/internal/repository"
	"study_tracker_backend/internal/util"
	"time"
)

// 同一逻辑概念的候选字段名按优先级排列，统一由 firstField 消费，
// 不在映射逻辑里散落字段名判断
var (
	dateFieldNames         = []string{"Day", "Date"}
	pythonTopicFieldNames  = []string{"Python Topic", "Python"}
	llmTopicFieldNames     = []string{"LLM Topic", "LLM"}
	pythonStatusFieldNames = []string{"Python Status", "Python Progress"}
	llmStatusFieldNames    = []string{"LLM Status", "LLM Progress"}
)

// joinRuns 把 title/rich_text 的文本段顺序拼接为整段纯文本
func joinRuns(runs []model.RichText) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.PlainText)
	}
	return b.String()
}

// firstField 返回候选名单中第一个存在的字段；全部缺失视为无值而非错误
func firstField(props map[string]model.FieldValue, names []string) (model.FieldValue, bool) {
	for _, name := range names {
		if v, ok := props[name]; ok {
			return v, true
		}
	}
	return model.FieldValue{}, false
}

// PlainText 对标签联合做全覆盖的纯文本提取，未知分支返回空串
func PlainText(v model.FieldValue) string {
	switch v.Type {
	case "title":
		return joinRuns(v.Title)
	case "rich_text":
		return joinRuns(v.RichText)
	case "select":
		if v.Select != nil {
			return v.Select.Name
		}
	case "status":
		if v.Status != nil {
			return v.Status.Name
		}
	case "number":
		if v.Number != nil {
			return strconv.FormatFloat(*v.Number, 'f', -1, 64)
		}
	case "date":
		if v.Date != nil {
			return v.Date.Start
		}
	case "multi_select":
		labels := make([]string, 0, len(v.MultiSelect))
		for _, opt := range v.MultiSelect {
			labels = append(labels, opt.Name)
		}
		return strings.Join(labels, ", ")
	case "formula":
		if v.Formula != nil {
			return formulaText(*v.Formula)
		}
	}
	return ""
}

// formulaText 公式字段递归到其自身的类型标签
func formulaText(f model.FormulaValue) string {
	switch f.Type {
	case "string":
		if f.String != nil {
			return *f.String
		}
	case "number":
		if f.Number != nil {
			return strconv.FormatFloat(*f.Number, 'f', -1, 64)
		}
	case "boolean":
		if f.Boolean != nil {
			return strconv.FormatBool(*f.Boolean)
		}
	case "date":
		if f.Date != nil {
			return f.Date.Start
		}
	}
	return ""
}

// ProgressFromStatus 唯一的完成度业务规则：completed 记 100，其余一律 0
func ProgressFromStatus(status string) int {
	if strings.TrimSpace(strings.ToLower(status)) == "completed" {
		return 100
	}
	return 0
}

// DeriveOverallStatus 按固定优先级合成综合状态：
// Done > InProgress > Skipped > NotStarted。
// 一边 in progress 压过另一边 skipped；skipped 仅在双方都不是
// completed 时成立。
func DeriveOverallStatus(pythonStatus, llmStatus string) model.ProgressStatus {
	py := strings.TrimSpace(strings.ToLower(pythonStatus))
	llm := strings.TrimSpace(strings.ToLower(llmStatus))

	switch {
	case py == "completed" && llm == "completed":
		return model.StatusDone
	case py == "in progress" || llm == "in progress":
		return model.StatusInProgress
	case (py == "skipped" || llm == "skipped") && py != "completed" && llm != "completed":
		return model.StatusSkipped
	default:
		return model.StatusNotStarted
	}
}

// MapRecord 把一行原始记录映射为规范记录。全函数不失败：
// 字段缺失或形态不对就降级为空值/0，绝不让单条坏记录中断摄取。
func MapRecord(page repository.RawPage, now time.Time) model.ProgressRecord {
	props := page.Properties
	rec := model.ProgressRecord{}

	if f, ok := firstField(props, dateFieldNames); ok {
		if raw := PlainText(f); raw != "" {
			d := util.NormalizeDate(raw, now)
			rec.Date = &d
		}
	}

	if f, ok := firstField(props, pythonTopicFieldNames); ok {
		rec.PythonTopic = PlainText(f)
	}
	if f, ok := firstField(props, llmTopicFieldNames); ok {
		rec.LLMTopic = PlainText(f)
	}

	var pyStatus, llmStatus string
	if f, ok := firstField(props, pythonStatusFieldNames); ok {
		pyStatus = PlainText(f)
		rec.PythonRated = true
	}
	if f, ok := firstField(props, llmStatusFieldNames); ok {
		llmStatus = PlainText(f)
		rec.LLMRated = true
	}

	rec.PythonPct = ProgressFromStatus(pyStatus)
	rec.LLMPct = ProgressFromStatus(llmStatus)
	// 两个主题都 100 才算整体 100，比 Status 的判定更严格
	if rec.PythonPct == 100 && rec.LLMPct == 100 {
		rec.OverallPct = 100
	}
	rec.Status = DeriveOverallStatus(pyStatus, llmStatus)

	return rec
}
