package watchlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry 是自选列表中的一只股票。
type Entry struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

type fileYAML struct {
	Stocks []Entry `yaml:"stocks"`
}

// Watchlist 管理 watchlist.yaml 的读写，作为看板首页的股票清单。
type Watchlist struct {
	path string
	mu   sync.RWMutex
}

func New(path string) *Watchlist {
	return &Watchlist{path: path}
}

// List 返回当前全部条目，按代码排序；文件不存在视为空列表。
func (w *Watchlist) List() ([]Entry, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, err := w.read()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(doc.Stocks))
	copy(out, doc.Stocks)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Add 追加一只股票；已存在时只更新名称。
func (w *Watchlist) Add(entry Entry) error {
	entry.Code = strings.ToLower(strings.TrimSpace(entry.Code))
	if entry.Code == "" {
		return fmt.Errorf("code 不能为空")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := w.read()
	if err != nil {
		return err
	}
	for i, e := range doc.Stocks {
		if e.Code == entry.Code {
			doc.Stocks[i].Name = entry.Name
			return w.write(doc)
		}
	}
	doc.Stocks = append(doc.Stocks, entry)
	return w.write(doc)
}

// Remove 删除指定代码；不存在时为 no-op。
func (w *Watchlist) Remove(code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, err := w.read()
	if err != nil {
		return err
	}
	kept := doc.Stocks[:0]
	for _, e := range doc.Stocks {
		if e.Code != code {
			kept = append(kept, e)
		}
	}
	doc.Stocks = kept
	return w.write(doc)
}

func (w *Watchlist) read() (*fileYAML, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileYAML{}, nil
		}
		return nil, fmt.Errorf("读取自选列表失败: %w", err)
	}
	var doc fileYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析自选列表失败: %w", err)
	}
	return &doc, nil
}

// write 先写临时文件再改名，避免进程中断留下半个文件。
func (w *Watchlist) write(doc *fileYAML) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	tmp := w.path + ".tmp"
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, w.path)
}
