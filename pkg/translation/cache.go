package translation

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache 译文缓存
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Stats() CacheStats
}

// CacheStats 缓存统计
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int64 `json:"size"`
}

// MemoryCache 内存缓存实现
type MemoryCache struct {
	data  map[string]string
	mutex sync.RWMutex
	stats CacheStats
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]string),
	}
}

// Get 获取缓存
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value, ok := c.data[key]
	if !ok {
		c.stats.Misses++
		return "", false
	}
	c.stats.Hits++
	return value, true
}

// Set 设置缓存
func (c *MemoryCache) Set(key, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = value
	c.stats.Size = int64(len(c.data))
	return nil
}

// Stats 获取缓存统计信息
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stats
}

// FileCache 文件缓存，每个键一个 JSON 文件，内存缓存作为一级缓存
type FileCache struct {
	basePath string
	memory   *MemoryCache
	mutex    sync.Mutex
	stats    CacheStats
}

// cacheEntry 缓存文件内容
type cacheEntry struct {
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFileCache 创建文件缓存，目录无法创建时返回错误
func NewFileCache(basePath string) (*FileCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{
		basePath: basePath,
		memory:   NewMemoryCache(),
	}, nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.basePath, key+".cache")
}

// Get 获取缓存
func (c *FileCache) Get(key string) (string, bool) {
	if value, ok := c.memory.Get(key); ok {
		c.count(true)
		return value, true
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		c.count(false)
		return "", false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.count(false)
		return "", false
	}

	_ = c.memory.Set(key, entry.Value)
	c.count(true)
	return entry.Value, true
}

func (c *FileCache) count(hit bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if hit {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
}

// Set 设置缓存
func (c *FileCache) Set(key, value string) error {
	if err := c.memory.Set(key, value); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{Value: value, Timestamp: time.Now()})
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return err
	}

	c.mutex.Lock()
	c.stats.Size++
	c.mutex.Unlock()
	return nil
}

// Stats 获取缓存统计信息
func (c *FileCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stats
}

// CacheKeyComponents 缓存key组件
type CacheKeyComponents struct {
	Provider   string
	SourceLang string
	TargetLang string
	Domain     string
	Text       string
}

// GenerateCacheKey 生成基于多个组件的缓存key
func GenerateCacheKey(components CacheKeyComponents) string {
	keyData := fmt.Sprintf("provider:%s|src:%s|tgt:%s|domain:%s|text:%s",
		components.Provider,
		components.SourceLang,
		components.TargetLang,
		components.Domain,
		components.Text,
	)
	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("%x", hash)
}

// NewCache 根据配置创建缓存实例；目录为空时只用内存缓存
func NewCache(useCache bool, cacheDir string) (Cache, error) {
	if !useCache {
		return nil, nil
	}
	if cacheDir != "" {
		return NewFileCache(cacheDir)
	}
	return NewMemoryCache(), nil
}
