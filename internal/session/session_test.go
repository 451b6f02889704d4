package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub/internal/gateway"
	"bloghub/pkg/config"
	"bloghub/pkg/storage"
)

type quietNotifier struct{}

func (quietNotifier) Success(string) {}
func (quietNotifier) Warn(string)    {}
func (quietNotifier) Error(string)   {}

type quietNavigator struct{}

func (quietNavigator) Redirect(string) {}

func newManager(t *testing.T, handler http.Handler) (*Manager, *storage.Memory) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		BaseURL:             srv.URL,
		Mode:                config.ModeBearer,
		Timeout:             5 * time.Second,
		AutoLoginOnRegister: true,
	}
	gw := gateway.New(cfg, quietNotifier{}, quietNavigator{})
	store := storage.NewMemory()
	return New(gw, store, cfg), store
}

func loginRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/user/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": "ok",
			"data": gin.H{
				"token": "t1",
				"user":  gin.H{"id": 7, "username": "alice"},
			},
		})
	})
	return r
}

func TestLoginAdoptsTokenAndUser(t *testing.T) {
	m, store := newManager(t, loginRouter())

	user, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "alice", user.Username)

	assert.True(t, m.IsLoggedIn())
	assert.Equal(t, "t1", m.Token())

	raw, ok := store.Get(storage.KeyUser)
	require.True(t, ok)
	assert.Contains(t, raw, `"username":"alice"`)
	tok, ok := store.Get(storage.KeyToken)
	require.True(t, ok)
	assert.Equal(t, "t1", tok)
}

func TestLoginBareUserPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/user/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code": 200,
			"data": gin.H{"id": 3, "username": "bob"},
		})
	})
	m, _ := newManager(t, r)

	user, err := m.Login(context.Background(), "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.True(t, m.IsLoggedIn())
	assert.Empty(t, m.Token(), "no token in payload stays anonymous at the wire level")
}

func TestLoginFailureStaysAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/user/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": "bad credentials"})
	})
	m, store := newManager(t, r)

	_, err := m.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.IsType(t, &gateway.BusinessError{}, err)
	assert.False(t, m.IsLoggedIn())
	_, ok := store.Get(storage.KeyToken)
	assert.False(t, ok)
}

func TestRegisterAutoLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/user/register", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code": 201,
			"data": gin.H{
				"token": "fresh",
				"user":  gin.H{"id": 9, "username": "carol"},
			},
		})
	})
	m, _ := newManager(t, r)

	user, err := m.Register(context.Background(), "carol", "c@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.True(t, m.IsLoggedIn())
	assert.Equal(t, "fresh", m.Token())
}

func TestLogoutClearsDespiteRemoteFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := loginRouter()
	r.POST("/api/user/logout", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "boom"})
	})
	m, store := newManager(t, r)

	_, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	m.Logout(context.Background())
	assert.False(t, m.IsLoggedIn())
	assert.Empty(t, m.Token())
	_, ok := store.Get(storage.KeyUser)
	assert.False(t, ok)
	_, ok = store.Get(storage.KeyToken)
	assert.False(t, ok)
}

func TestRestoreValidSession(t *testing.T) {
	m, store := newManager(t, loginRouter())
	require.NoError(t, store.Set(storage.KeyUser, `{"id":7,"username":"alice"}`))
	require.NoError(t, store.Set(storage.KeyToken, "opaque-token"))

	m.Restore()
	assert.True(t, m.IsLoggedIn())
	assert.Equal(t, "opaque-token", m.Token())
	user, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestRestoreCorruptUserClears(t *testing.T) {
	m, store := newManager(t, loginRouter())
	require.NoError(t, store.Set(storage.KeyUser, `{not json`))
	require.NoError(t, store.Set(storage.KeyToken, "t"))

	m.Restore()
	assert.False(t, m.IsLoggedIn())
	_, ok := store.Get(storage.KeyUser)
	assert.False(t, ok, "corrupt record is removed, not retried")
	_, ok = store.Get(storage.KeyToken)
	assert.False(t, ok)
}

func TestRestoreZeroIDClears(t *testing.T) {
	m, store := newManager(t, loginRouter())
	require.NoError(t, store.Set(storage.KeyUser, `{"id":0,"username":"ghost"}`))

	m.Restore()
	assert.False(t, m.IsLoggedIn())
}

func TestRestoreExpiredJWTClears(t *testing.T) {
	m, store := newManager(t, loginRouter())
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 7,
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	tok, err := expired.SignedString([]byte("test-key"))
	require.NoError(t, err)

	require.NoError(t, store.Set(storage.KeyUser, `{"id":7,"username":"alice"}`))
	require.NoError(t, store.Set(storage.KeyToken, tok))

	m.Restore()
	assert.False(t, m.IsLoggedIn())
	_, ok := store.Get(storage.KeyToken)
	assert.False(t, ok)
}

func TestRestoreUnexpiredJWTSurvives(t *testing.T) {
	m, store := newManager(t, loginRouter())
	live := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 7,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	tok, err := live.SignedString([]byte("test-key"))
	require.NoError(t, err)

	require.NoError(t, store.Set(storage.KeyUser, `{"id":7,"username":"alice"}`))
	require.NoError(t, store.Set(storage.KeyToken, tok))

	m.Restore()
	assert.True(t, m.IsLoggedIn())
	assert.Equal(t, tok, m.Token())
}

func TestFetchCurrentUserErrorClears(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := loginRouter()
	r.GET("/api/user/info", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "expired"})
	})
	m, _ := newManager(t, r)

	_, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = m.FetchCurrentUser(context.Background())
	require.Error(t, err)
	assert.False(t, m.IsLoggedIn())
}

func TestSyncUserPersists(t *testing.T) {
	m, store := newManager(t, loginRouter())
	_, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	user, _ := m.CurrentUser()
	user.Avatar = "/uploads/new.png"
	m.SyncUser(user)

	got, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "/uploads/new.png", got.Avatar)
	raw, ok := store.Get(storage.KeyUser)
	require.True(t, ok)
	assert.Contains(t, raw, "new.png")
}
