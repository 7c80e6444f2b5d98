package models

import "fmt"

// ScopeKind selects which records a view loads
type ScopeKind string

const (
	ScopeAll   ScopeKind = "all"
	ScopeList  ScopeKind = "list"
	ScopeRated ScopeKind = "rated"
)

// Scope is the set of records a view covers. ListID is only set for ScopeList.
type Scope struct {
	Kind   ScopeKind
	ListID int64
}

// ListScope returns the scope of a single list
func ListScope(listID int64) Scope {
	return Scope{Kind: ScopeList, ListID: listID}
}

// Validate checks the scope is well formed
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeAll, ScopeRated:
		return nil
	case ScopeList:
		if s.ListID <= 0 {
			return fmt.Errorf("list scope requires a list id")
		}
		return nil
	}
	return fmt.Errorf("invalid scope %q", s.Kind)
}

func (s Scope) String() string {
	if s.Kind == ScopeList {
		return fmt.Sprintf("list:%d", s.ListID)
	}
	return string(s.Kind)
}
