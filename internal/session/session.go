// Package session owns the authenticated-user record and the bearer
// credential. Durable storage is a synchronized mirror of the in-memory
// state, never a second source of truth.
package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bloghub/internal/gateway"
	"bloghub/internal/transform"
	"bloghub/pkg/config"
	"bloghub/pkg/models"
	"bloghub/pkg/storage"
)

type Manager struct {
	gw        *gateway.Client
	store     storage.Store
	mode      config.CredentialMode
	autoLogin bool

	mu    sync.RWMutex
	user  *models.User
	token string
}

func New(gw *gateway.Client, store storage.Store, cfg config.Config) *Manager {
	m := &Manager{
		gw:        gw,
		store:     store,
		mode:      cfg.Mode,
		autoLogin: cfg.AutoLoginOnRegister,
	}
	gw.AttachSession(m)
	return m
}

// loginData matches the login/register envelope payload. Cookie-mode servers
// omit the token; some return the bare user object with no wrapper.
type loginData struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

func (m *Manager) Login(ctx context.Context, username, password string) (models.User, error) {
	body := map[string]string{"username": username, "password": password}
	data, err := m.gw.Send(ctx, http.MethodPost, "/api/user/login", body)
	if err != nil {
		return models.User{}, err
	}
	return m.adoptLoginPayload(data)
}

// Register creates an account. Whether it also logs in is configurable; the
// observed API variants differ.
func (m *Manager) Register(ctx context.Context, username, email, password string) (models.User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	data, err := m.gw.Send(ctx, http.MethodPost, "/api/user/register", body)
	if err != nil {
		return models.User{}, err
	}
	if !m.autoLogin {
		return decodeUser(data)
	}
	return m.adoptLoginPayload(data)
}

func (m *Manager) adoptLoginPayload(data json.RawMessage) (models.User, error) {
	var ld loginData
	_ = json.Unmarshal(data, &ld)

	userRaw := ld.User
	if len(userRaw) == 0 {
		userRaw = data
	}
	user, err := decodeUser(userRaw)
	if err != nil {
		return models.User{}, err
	}

	m.setSession(user, ld.Token)
	return user, nil
}

// Logout clears local state synchronously; the remote call is
// fire-and-forget and its failure never blocks the transition.
func (m *Manager) Logout(ctx context.Context) {
	if _, err := m.gw.Send(ctx, http.MethodPost, "/api/user/logout", nil); err != nil {
		log.Printf("[session] remote logout failed: %v", err)
	}
	m.Clear()
}

// FetchCurrentUser refreshes the user record from the server; an invalid
// session is cleared rather than left half-alive.
func (m *Manager) FetchCurrentUser(ctx context.Context) (models.User, error) {
	data, err := m.gw.Send(ctx, http.MethodGet, "/api/user/info", nil)
	if err != nil {
		m.Clear()
		return models.User{}, err
	}
	user, err := decodeUser(data)
	if err != nil {
		return models.User{}, err
	}

	m.mu.Lock()
	m.user = &user
	token := m.token
	m.mu.Unlock()
	m.persist(user, token)
	return user, nil
}

func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	_, err := m.gw.Send(ctx, http.MethodPost, "/api/user/change-password", body)
	return err
}

// UpdateProfile patches the remote profile and keeps the local mirror in sync.
func (m *Manager) UpdateProfile(ctx context.Context, patch map[string]any) (models.User, error) {
	data, err := m.gw.Send(ctx, http.MethodPut, "/api/user/profile", patch)
	if err != nil {
		return models.User{}, err
	}
	user, err := decodeUser(data)
	if err != nil {
		return models.User{}, err
	}

	m.mu.Lock()
	m.user = &user
	token := m.token
	m.mu.Unlock()
	m.persist(user, token)
	return user, nil
}

// Restore runs once at process start: it reads durable storage, validates
// the shape, and either becomes authenticated or clears the corrupt data.
func (m *Manager) Restore() {
	raw, ok := m.store.Get(storage.KeyUser)
	if !ok {
		return
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == 0 || user.Username == "" {
		log.Printf("[session] stored user invalid, clearing")
		m.Clear()
		return
	}

	token := ""
	if m.mode == config.ModeBearer {
		token, _ = m.store.Get(storage.KeyToken)
		if token != "" && tokenExpired(token) {
			log.Printf("[session] stored token expired, clearing")
			m.Clear()
			return
		}
	}

	m.mu.Lock()
	m.user = &user
	m.token = token
	m.mu.Unlock()
	m.gw.ResetExpiry()
}

// SyncUser replaces the authenticated user record and persists it. Stores
// call it when a server response updates the session owner (avatar upload,
// profile edit by id).
func (m *Manager) SyncUser(user models.User) {
	m.mu.Lock()
	m.user = &user
	token := m.token
	m.mu.Unlock()
	m.persist(user, token)
}

// CurrentUser returns a copy of the authenticated user, ok=false when
// anonymous.
func (m *Manager) CurrentUser() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// IsLoggedIn is a pure predicate over current state; it never touches the
// network, so the route guard can call it on every navigation.
func (m *Manager) IsLoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// Token implements gateway.Session.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Clear implements gateway.Session: drop in-memory state and durable
// storage, transitioning to anonymous.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
	if err := m.store.Remove(storage.KeyUser); err != nil {
		log.Printf("[session] clear user: %v", err)
	}
	if err := m.store.Remove(storage.KeyToken); err != nil {
		log.Printf("[session] clear token: %v", err)
	}
}

func (m *Manager) setSession(user models.User, token string) {
	m.mu.Lock()
	m.user = &user
	if m.mode == config.ModeBearer {
		m.token = token
	}
	m.mu.Unlock()
	m.persist(user, token)
	m.gw.ResetExpiry()
}

func (m *Manager) persist(user models.User, token string) {
	data, err := json.Marshal(user)
	if err != nil {
		log.Printf("[session] encode user: %v", err)
		return
	}
	if err := m.store.Set(storage.KeyUser, string(data)); err != nil {
		log.Printf("[session] persist user: %v", err)
	}
	if m.mode == config.ModeBearer && token != "" {
		if err := m.store.Set(storage.KeyToken, token); err != nil {
			log.Printf("[session] persist token: %v", err)
		}
	}
}

func decodeUser(data json.RawMessage) (models.User, error) {
	var raw transform.RawUser
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.User{}, err
	}
	return transform.User(raw), nil
}

// tokenExpired inspects the JWT exp claim without verifying the signature
// (the client has no key; the server remains the authority). Opaque tokens
// pass through and get rejected server-side if stale.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
