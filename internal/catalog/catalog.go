package catalog

import (
	"errors"
	"fmt"
)

// ErrDuplicateTemplate is returned when two records share a name.
var ErrDuplicateTemplate = errors.New("duplicate template name")

// Catalog is the read-only accessor for template records. GetAll returns a
// snapshot whose order is the catalog order.
type Catalog interface {
	GetAll() []TemplateRecord
}

// Find returns the record named name from any catalog.
func Find(c Catalog, name string) (TemplateRecord, bool) {
	if m, ok := c.(*Memory); ok {
		return m.Lookup(name)
	}
	for _, r := range c.GetAll() {
		if r.Name == name {
			return r, true
		}
	}
	return TemplateRecord{}, false
}

// Memory is an in-process catalog.
type Memory struct {
	records []TemplateRecord
	index   map[string]int
}

// NewMemory builds a catalog from records, preserving their order.
func NewMemory(records ...TemplateRecord) (*Memory, error) {
	m := &Memory{
		records: make([]TemplateRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("template record without a name (group %q)", r.GroupIdentity)
		}
		if _, dup := m.index[r.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTemplate, r.Name)
		}
		m.index[r.Name] = len(m.records)
		m.records = append(m.records, r)
	}
	return m, nil
}

// GetAll returns the records in catalog order.
func (m *Memory) GetAll() []TemplateRecord {
	out := make([]TemplateRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Lookup returns the record with the given name.
func (m *Memory) Lookup(name string) (TemplateRecord, bool) {
	i, ok := m.index[name]
	if !ok {
		return TemplateRecord{}, false
	}
	return m.records[i], true
}

// Len returns the number of records.
func (m *Memory) Len() int {
	return len(m.records)
}
