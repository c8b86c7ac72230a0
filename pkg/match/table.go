package match

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"chatsim/pkg/logger"
)

// Entry pairs one canonical question with its candidate answers.
type Entry struct {
	Question string
	Answers  []string
}

// Table is the loaded response table. Entries keep the document order of
// the source file, so tie-breaking during lookup is stable per load.
type Table struct {
	Entries []Entry
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// ParseTable decodes a YAML mapping of question -> answer list, preserving
// document order. Decoding goes through yaml.Node because plain map
// unmarshaling would lose ordering.
func ParseTable(b []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("invalid responses yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return &Table{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("responses yaml: top level must be a mapping, got %v", root.Kind)
	}
	t := &Table{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]
		var answers []string
		switch val.Kind {
		case yaml.SequenceNode:
			if err := val.Decode(&answers); err != nil {
				return nil, fmt.Errorf("responses yaml: answers for %q: %w", key.Value, err)
			}
		case yaml.ScalarNode:
			// allow a single bare answer
			answers = []string{val.Value}
		default:
			return nil, fmt.Errorf("responses yaml: answers for %q must be a list", key.Value)
		}
		if key.Value == "" || len(answers) == 0 {
			continue
		}
		t.Entries = append(t.Entries, Entry{Question: key.Value, Answers: answers})
	}
	return t, nil
}

// LoadTable reads and parses the response table at path.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTable(b)
}

// CacheState tracks the lazy table load.
type CacheState int

const (
	StateUnloaded CacheState = iota
	StateLoading
	StateLoaded
	StateFailed
)

// TableCache loads the response table once on first use. Callers arriving
// during an in-flight load wait for that load instead of triggering their
// own. A failed load resolves to an empty table and is never retried for
// the process lifetime.
type TableCache struct {
	mu      sync.Mutex
	state   CacheState
	table   *Table
	pending chan struct{}
	path    string
}

// NewTableCache returns an unloaded cache bound to path.
func NewTableCache(path string) *TableCache {
	return &TableCache{path: path, table: &Table{}}
}

// Get returns the table, loading it on first call. Never returns nil.
func (c *TableCache) Get() *Table {
	c.mu.Lock()
	for {
		switch c.state {
		case StateLoaded, StateFailed:
			t := c.table
			c.mu.Unlock()
			return t
		case StateLoading:
			ch := c.pending
			c.mu.Unlock()
			<-ch
			c.mu.Lock()
		case StateUnloaded:
			c.state = StateLoading
			c.pending = make(chan struct{})
			c.mu.Unlock()

			t, err := LoadTable(c.path)

			c.mu.Lock()
			if err != nil {
				logger.Warn("responder_table_load_failed", "path", c.path, "error", err)
				c.table = &Table{}
				c.state = StateFailed
			} else {
				logger.Info("responder_table_loaded", "path", c.path, "entries", t.Len())
				c.table = t
				c.state = StateLoaded
			}
			close(c.pending)
		}
	}
}

// State returns the current cache state.
func (c *TableCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
