package model

import "time"

// ProgressStatus 单条记录的综合完成状态
type ProgressStatus string

const (
	StatusDone       ProgressStatus = "Done"
	StatusInProgress ProgressStatus = "InProgress"
	StatusSkipped    ProgressStatus = "Skipped"
	StatusNotStarted ProgressStatus = "NotStarted"
)

// ProgressRecord 规范化后的每日学习记录，一次摄取构造一次，之后不可变
type ProgressRecord struct {
	Date        *time.Time     `json:"date,omitempty"`
	Status      ProgressStatus `json:"status"`
	PythonTopic string         `json:"pythonTopic,omitempty"`
	LLMTopic    string         `json:"llmTopic,omitempty"`
	PythonPct   int            `json:"pythonPct"`
	LLMPct      int            `json:"llmPct"`
	OverallPct  int            `json:"overallPct"`

	// 主题均值只统计原始记录里带有对应状态字段的行，标志位不进响应体
	PythonRated bool `json:"-"`
	LLMRated    bool `json:"-"`
}
