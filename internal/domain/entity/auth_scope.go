package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ScopeStatus is the consent state of a scope: waiting, accepted or rejected.
type ScopeStatus string

const (
	ScopeStatusWaiting  ScopeStatus = "W"
	ScopeStatusAccepted ScopeStatus = "A"
	ScopeStatusRejected ScopeStatus = "R"
)

// Valid reports whether s is one of the known statuses.
func (s ScopeStatus) Valid() bool {
	switch s {
	case ScopeStatusWaiting, ScopeStatusAccepted, ScopeStatusRejected:
		return true
	}
	return false
}

// ScopeItem is a single named scope of a ScopeSet.
type ScopeItem struct {
	ID         uint        `gorm:"primaryKey" json:"-"`
	ScopeSetID uint        `gorm:"not null;uniqueIndex:idx_auth_scope_items_set_name,priority:1" json:"-"`
	Name       string      `gorm:"size:255;not null;uniqueIndex:idx_auth_scope_items_set_name,priority:2" json:"name"`
	Status     ScopeStatus `gorm:"size:1;not null;default:'W'" json:"status"`
	LastWrite  time.Time   `gorm:"not null" json:"last_write"`
}

func (ScopeItem) TableName() string {
	return "auth_scope_items"
}

// ScopeSet is a set of scopes owned either by a binding or by a provider as its default template.
type ScopeSet struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Items     []ScopeItem `gorm:"foreignKey:ScopeSetID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

func (ScopeSet) TableName() string {
	return "auth_scope_sets"
}

// DefaultScopeSet references the template copied into every new binding of a provider.
type DefaultScopeSet struct {
	Provider   string `gorm:"primaryKey;size:64"`
	ScopeSetID uint   `gorm:"not null"`
}

func (DefaultScopeSet) TableName() string {
	return "auth_default_scope_sets"
}

// Contains reports whether the set holds a scope with the given name.
func (s *ScopeSet) Contains(name string) bool {
	return s.Find(name) != nil
}

// Find returns the item with the given name or nil.
func (s *ScopeSet) Find(name string) *ScopeItem {
	for i := range s.Items {
		if s.Items[i].Name == name {
			return &s.Items[i]
		}
	}
	return nil
}

// Add inserts the item or replaces the status of an existing item with the same name.
func (s *ScopeSet) Add(item ScopeItem) {
	if item.Status == "" {
		item.Status = ScopeStatusWaiting
	}
	if existing := s.Find(item.Name); existing != nil {
		existing.Status = item.Status
		existing.LastWrite = item.LastWrite
		return
	}
	s.Items = append(s.Items, item)
}

// Clone returns an unsaved deep copy of the set. Item statuses are kept.
func (s *ScopeSet) Clone() *ScopeSet {
	c := &ScopeSet{Items: make([]ScopeItem, 0, len(s.Items))}
	for _, it := range s.Items {
		c.Items = append(c.Items, ScopeItem{Name: it.Name, Status: it.Status, LastWrite: it.LastWrite})
	}
	return c
}

// Validate checks scope names: non empty, no whitespace, no duplicates, known status.
func (s *ScopeSet) Validate() error {
	seen := make(map[string]struct{}, len(s.Items))
	for _, it := range s.Items {
		if it.Name == "" || strings.ContainsAny(it.Name, " \t\r\n") {
			return fmt.Errorf("invalid scope name %q", it.Name)
		}
		if _, dup := seen[it.Name]; dup {
			return fmt.Errorf("duplicate scope %q", it.Name)
		}
		seen[it.Name] = struct{}{}
		if !it.Status.Valid() {
			return fmt.Errorf("invalid status %q for scope %q", it.Status, it.Name)
		}
	}
	return nil
}

// String renders the set as "[W]name [A]other", ordered by name.
func (s *ScopeSet) String() string {
	if s == nil {
		return ""
	}
	items := make([]ScopeItem, len(s.Items))
	copy(items, s.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, "["+string(it.Status)+"]"+it.Name)
	}
	return strings.Join(parts, " ")
}
