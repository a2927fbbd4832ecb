package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"study_tracker_backend/internal/config"
	"study_tracker_backend/internal/model"
	"time"
)

// SortField 请求源端按该字段升序返回；源端 schema 不含该字段时会拒绝此排序提示
const SortField = "Day"

// NotionRepository 过 HTTP 访问 Notion 数据库查询接口的仓储层
type NotionRepository struct {
	cfg    config.NotionConfig
	client *http.Client
}

func NewNotionRepository(cfg config.NotionConfig) *NotionRepository {
	return &NotionRepository{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RawPage 源端返回的一行原始记录
type RawPage struct {
	ID         string                      `json:"id"`
	Properties map[string]model.FieldValue `json:"properties"`
}

// QueryPage 一次分页查询的结果
type QueryPage struct {
	Results    []RawPage `json:"results"`
	HasMore    bool      `json:"has_more"`
	NextCursor *string   `json:"next_cursor"`
}

type queryRequest struct {
	PageSize    int         `json:"page_size"`
	StartCursor string      `json:"start_cursor,omitempty"`
	Sorts       []querySort `json:"sorts,omitempty"`
}

type querySort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// sortRejectedError 源端因排序字段不存在而拒绝查询（HTTP 400）
type sortRejectedError struct {
	body string
}

func (e *sortRejectedError) Error() string {
	return fmt.Sprintf("source rejected query (status 400): %s", e.body)
}

// QueryDatabase 拉取一页原始记录。先带主日期字段的升序排序提示请求；
// 源端因字段缺失拒绝时去掉排序重试一次，排序只是提示而非硬性要求。
func (r *NotionRepository) QueryDatabase(ctx context.Context, databaseID, startCursor string) (*QueryPage, error) {
	page, err := r.query(ctx, databaseID, startCursor, true)
	if err == nil {
		return page, nil
	}

	var rejected *sortRejectedError
	if errors.As(err, &rejected) {
		return r.query(ctx, databaseID, startCursor, false)
	}
	return nil, err
}

func (r *NotionRepository) query(ctx context.Context, databaseID, startCursor string, withSort bool) (*QueryPage, error) {
	reqBody := queryRequest{
		PageSize:    r.cfg.PageSize,
		StartCursor: startCursor,
	}
	if withSort {
		reqBody.Sorts = []querySort{{Property: SortField, Direction: "ascending"}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", r.cfg.BaseURL, databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	req.Header.Set("Notion-Version", r.cfg.Version)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest && withSort {
		body, _ := io.ReadAll(resp.Body)
		return nil, &sortRejectedError{body: string(body)}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("source query failed (status %d): %s", resp.StatusCode, string(body))
	}

	var page QueryPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}

	return &page, nil
}
