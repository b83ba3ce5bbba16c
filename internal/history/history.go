// Package history 保存最近几次翻译运行的记录
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxItems 默认保留的记录数
const DefaultMaxItems = 10

// FileRecord 单个文件的结果
type FileRecord struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Record 一次翻译运行
type Record struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	SourceLang   string        `json:"source_lang"`
	TargetLang   string        `json:"target_lang"`
	Domain       string        `json:"domain"`
	Provider     string        `json:"provider"`
	OutputFormat string        `json:"output_format"`
	Files        []FileRecord  `json:"files"`
	SuccessCount int           `json:"success_count"`
	Duration     time.Duration `json:"duration"`
	Canceled     bool          `json:"canceled,omitempty"`
}

// Store 基于 JSON 文件的历史记录，最新的在前
type Store struct {
	filePath string
	maxItems int
	records  []Record
	mutex    sync.RWMutex
	logger   *zap.Logger
}

// Open 打开历史文件，不存在时从空记录开始
func Open(filePath string, maxItems int, logger *zap.Logger) (*Store, error) {
	if maxItems < 1 {
		maxItems = DefaultMaxItems
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{filePath: filePath, maxItems: maxItems, logger: logger}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.records); err != nil {
			return nil, fmt.Errorf("failed to parse history file: %w", err)
		}
	}
	if len(s.records) > s.maxItems {
		s.records = s.records[:s.maxItems]
	}
	logger.Debug("loaded translation history", zap.String("file", filePath), zap.Int("records", len(s.records)))
	return s, nil
}

// Add 在最前面插入一条记录并保存，超出上限的旧记录被丢弃
// ID 和时间为空时自动填充
func (s *Store) Add(r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.records = append([]Record{r}, s.records...)
	if len(s.records) > s.maxItems {
		s.records = s.records[:s.maxItems]
	}
	return r, s.saveUnsafe()
}

// List 返回最多 limit 条记录，limit <= 0 时返回全部
func (s *Store) List(limit int) []Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, n)
	copy(out, s.records[:n])
	return out
}

// Clear 清空历史
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.records = nil
	return s.saveUnsafe()
}

// saveUnsafe 原子写入（需要已持有锁）
func (s *Store) saveUnsafe() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	records := s.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename history file: %w", err)
	}
	return nil
}
