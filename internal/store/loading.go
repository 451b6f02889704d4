// Package store holds the per-entity state containers. Each store owns its
// collection, a current-selection slot, and independent per-operation
// loading flags; operations call the gateway, normalize through transform,
// and mutate locally. Collections follow last-writer-wins: resolution
// order, not submission order, decides contents.
package store

import (
	"encoding/json"
	"sync"
)

// Operation names for the loading flags. Flags are keyed by name rather
// than declared as individual fields so new operations never widen the
// store's public contract.
const (
	OpList    = "list"
	OpDetail  = "detail"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpLike    = "like"
	OpView    = "view"
	OpHot     = "hot"
	OpNewest  = "newest"
	OpSearch  = "search"
	OpMine    = "mine"
	OpDrafts  = "drafts"
	OpPublish = "publish"
	OpAll     = "all"
	OpStats   = "stats"
	OpYears   = "years"
	OpByYear  = "byYear"
	OpByMonth = "byMonth"
	OpCloud   = "cloud"
	OpInfo    = "info"
	OpUpload  = "upload"
	OpHistory = "history"
	OpLiked   = "liked"
)

// loadingSet tracks which operations are in flight. A list fetch and a
// delete on the same store never contend for the same flag.
type loadingSet struct {
	mu  sync.RWMutex
	ops map[string]bool
}

// begin marks op in flight and returns the matching clear func, meant for
// defer so the flag drops on both success and failure.
func (l *loadingSet) begin(op string) func() {
	l.mu.Lock()
	if l.ops == nil {
		l.ops = make(map[string]bool)
	}
	l.ops[op] = true
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.ops[op] = false
		l.mu.Unlock()
	}
}

func (l *loadingSet) loading(op string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ops[op]
}

// pagedData is the paged listing envelope payload: the raw item array plus
// the server-reported total. Each store transforms List with its own
// normalizer.
type pagedData struct {
	List  json.RawMessage `json:"list"`
	Total int             `json:"total"`
}
