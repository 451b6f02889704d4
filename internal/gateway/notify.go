package gateway

import "log"

// Notifier is where user-visible messages surface. Keeping it at the gateway
// boundary gives every store the same error UX without re-implementing it.
type Notifier interface {
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// Navigator performs navigation side effects (the 401 redirect, the guard's
// bounce to the landing page).
type Navigator interface {
	Redirect(path string)
}

// LogNotifier writes notifications to the process log. The CLI uses it; a UI
// embedding this layer would supply its own.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Printf("[notify] %s", msg) }
func (LogNotifier) Warn(msg string)    { log.Printf("[notify] warning: %s", msg) }
func (LogNotifier) Error(msg string)   { log.Printf("[notify] error: %s", msg) }

// LogNavigator records redirects in the log instead of performing them.
type LogNavigator struct{}

func (LogNavigator) Redirect(path string) { log.Printf("[navigate] -> %s", path) }
