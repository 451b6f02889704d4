// Package guard gates navigation targets that require authentication. The
// decision is synchronous and storage-backed; it never waits on the network.
package guard

import (
	"encoding/json"
	"strings"

	"bloghub/internal/gateway"
	"bloghub/pkg/storage"
)

// Route is one navigation target. Segments starting with ':' match any
// value ("/article/edit/:id").
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
}

// Decision is the outcome of resolving a navigation. From preserves the
// originally intended path so a post-login redirect can return to it.
type Decision struct {
	Allow      bool
	RedirectTo string
	Notice     string
	From       string
}

const landingPath = "/"

// SessionChecker is the slice of the session manager the guard consults.
type SessionChecker interface {
	IsLoggedIn() bool
}

type Guard struct {
	routes   []Route
	session  SessionChecker
	notifier gateway.Notifier
}

func New(session SessionChecker, notifier gateway.Notifier) *Guard {
	if notifier == nil {
		notifier = gateway.LogNotifier{}
	}
	return &Guard{session: session, notifier: notifier}
}

// Register appends routes to the table. Order matters only for overlapping
// patterns; first match wins.
func (g *Guard) Register(routes ...Route) {
	g.routes = append(g.routes, routes...)
}

// Resolve decides whether navigation to path may proceed. Unknown paths are
// allowed; only targets flagged RequiresAuth are gated.
func (g *Guard) Resolve(path string) Decision {
	route, ok := g.match(path)
	if !ok || !route.RequiresAuth {
		return Decision{Allow: true}
	}
	if g.session.IsLoggedIn() {
		return Decision{Allow: true}
	}

	g.notifier.Warn("please log in first")
	return Decision{
		Allow:      false,
		RedirectTo: landingPath,
		Notice:     "please log in first",
		From:       path,
	}
}

func (g *Guard) match(path string) (Route, bool) {
	for _, r := range g.routes {
		if matchPattern(r.Path, path) {
			return r, true
		}
	}
	return Route{}, false
}

func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

// LoggedInFromStorage re-derives the login predicate straight from durable
// storage. It exists for contexts where the session manager has not been
// constructed yet, and must stay in sync with session.Restore's validation.
func LoggedInFromStorage(store storage.Store) bool {
	raw, ok := store.Get(storage.KeyUser)
	if !ok {
		return false
	}
	var user struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return false
	}
	return user.ID != 0 && user.Username != ""
}
