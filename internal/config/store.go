package config

import "sync/atomic"

// Store 并发安全的配置持有者。热更新整体换入新快照，读取方每次
// Load 拿到一份完整一致的配置；任何代码都不做字段级的原地修改。
type Store struct {
	current atomic.Pointer[Config]
}

func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Load 返回当前配置快照，调用方不得修改
func (s *Store) Load() *Config {
	return s.current.Load()
}

// Swap 原子地换入新配置
func (s *Store) Swap(cfg *Config) {
	s.current.Store(cfg)
}
