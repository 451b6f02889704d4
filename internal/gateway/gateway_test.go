package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloghub/pkg/config"
)

type stubSession struct {
	token   string
	cleared atomic.Int32
}

func (s *stubSession) Token() string { return s.token }
func (s *stubSession) Clear()        { s.cleared.Add(1) }

type stubNotifier struct {
	mu     sync.Mutex
	errors []string
}

func (n *stubNotifier) Success(msg string) {}
func (n *stubNotifier) Warn(msg string)    {}
func (n *stubNotifier) Error(msg string) {
	n.mu.Lock()
	n.errors = append(n.errors, msg)
	n.mu.Unlock()
}

type stubNavigator struct {
	redirects atomic.Int32
}

func (n *stubNavigator) Redirect(path string) { n.redirects.Add(1) }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *stubSession, *stubNotifier, *stubNavigator) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{BaseURL: srv.URL, Mode: config.ModeBearer, Timeout: 5 * time.Second}
	notifier := &stubNotifier{}
	nav := &stubNavigator{}
	client := New(cfg, notifier, nav)
	sess := &stubSession{token: "tok-1"}
	client.AttachSession(sess)
	return client, sess, notifier, nav
}

func envelopeRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": gin.H{"value": 42}})
	})
	r.GET("/api/business-fail", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 4001, "message": "title already taken", "data": nil})
	})
	r.GET("/api/echo-auth", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": gin.H{
			"authorization": c.GetHeader("Authorization"),
			"requestId":     c.GetHeader("X-Request-ID"),
		}})
	})
	return r
}

func TestSendUnwrapsEnvelope(t *testing.T) {
	client, _, _, _ := newTestClient(t, envelopeRouter())

	data, err := client.Send(context.Background(), http.MethodGet, "/api/ok", nil)
	require.NoError(t, err)

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 42, out.Value)
}

func TestSendBusinessError(t *testing.T) {
	client, _, notifier, _ := newTestClient(t, envelopeRouter())

	_, err := client.Send(context.Background(), http.MethodGet, "/api/business-fail", nil)
	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 4001, be.Code)
	assert.Equal(t, "title already taken", be.Message)
	assert.Contains(t, notifier.errors, "title already taken")
}

func TestSendAttachesBearerAndRequestID(t *testing.T) {
	client, _, _, _ := newTestClient(t, envelopeRouter())

	var out struct {
		Authorization string `json:"authorization"`
		RequestID     string `json:"requestId"`
	}
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/api/echo-auth", nil, &out))
	assert.Equal(t, "Bearer tok-1", out.Authorization)
	assert.NotEmpty(t, out.RequestID)
}

func TestCookieModeSkipsBearerHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/echo-auth", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": gin.H{
			"authorization": c.GetHeader("Authorization"),
		}})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client := New(config.Config{BaseURL: srv.URL, Mode: config.ModeCookie, Timeout: 5 * time.Second}, &stubNotifier{}, &stubNavigator{})
	client.AttachSession(&stubSession{token: "tok-1"})

	var out struct {
		Authorization string `json:"authorization"`
	}
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/api/echo-auth", nil, &out))
	assert.Empty(t, out.Authorization)
}

func TestStatusClassification(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/forbidden", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "not yours"})
	})
	r.GET("/api/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "no such article"})
	})
	r.GET("/api/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "db down"})
	})

	client, _, _, _ := newTestClient(t, r)
	ctx := context.Background()

	_, err := client.Send(ctx, http.MethodGet, "/api/forbidden", nil)
	var pe *PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "not yours", pe.Message)

	_, err = client.Send(ctx, http.MethodGet, "/api/missing", nil)
	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)

	_, err = client.Send(ctx, http.MethodGet, "/api/boom", nil)
	var se *ServerError
	require.ErrorAs(t, err, &se)
}

func TestNetworkErrorWhenUnreachable(t *testing.T) {
	cfg := config.Config{BaseURL: "http://127.0.0.1:1", Mode: config.ModeBearer, Timeout: time.Second}
	client := New(cfg, &stubNotifier{}, &stubNavigator{})

	_, err := client.Send(context.Background(), http.MethodGet, "/api/anything", nil)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Error(t, errors.Unwrap(ne))
}

func TestConcurrent401RedirectsOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/private", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "session expired"})
	})

	client, sess, _, nav := newTestClient(t, r)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Send(context.Background(), http.MethodGet, "/api/private", nil)
			var ae *AuthError
			assert.ErrorAs(t, err, &ae)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), nav.redirects.Load(), "exactly one redirect for concurrent 401s")
	assert.Equal(t, int32(1), sess.cleared.Load())
}

func TestResetExpiryReArmsRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/private", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "session expired"})
	})

	client, _, _, nav := newTestClient(t, r)
	ctx := context.Background()

	_, _ = client.Send(ctx, http.MethodGet, "/api/private", nil)
	_, _ = client.Send(ctx, http.MethodGet, "/api/private", nil)
	assert.Equal(t, int32(1), nav.redirects.Load())

	client.ResetExpiry()
	_, _ = client.Send(ctx, http.MethodGet, "/api/private", nil)
	assert.Equal(t, int32(2), nav.redirects.Load())
}

func TestUploadSkipsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/user/avatar", func(c *gin.Context) {
		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		// raw response, no envelope
		c.JSON(http.StatusOK, gin.H{"avatar": file.Filename})
	})

	client, _, _, _ := newTestClient(t, r)

	body, err := client.Upload(context.Background(), "/api/user/avatar", "avatar", "me.png", strings.NewReader("png-bytes"), nil)
	require.NoError(t, err)

	var out struct {
		Avatar string `json:"avatar"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "me.png", out.Avatar)
}
