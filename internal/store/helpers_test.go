package store

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bloghub/internal/gateway"
	"bloghub/pkg/config"
)

type quietNotifier struct{}

func (quietNotifier) Success(string) {}
func (quietNotifier) Warn(string)    {}
func (quietNotifier) Error(string)   {}

type quietNavigator struct{}

func (quietNavigator) Redirect(string) {}

// fakeAPI is a gin server plus a request counter, so tests can assert that
// client-side validation short-circuits before any network traffic.
type fakeAPI struct {
	router   *gin.Engine
	requests atomic.Int32
}

func newFakeAPI() *fakeAPI {
	gin.SetMode(gin.TestMode)
	f := &fakeAPI{router: gin.New()}
	f.router.Use(func(c *gin.Context) {
		f.requests.Add(1)
		c.Next()
	})
	return f
}

func (f *fakeAPI) client(t *testing.T) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)
	return gateway.New(config.Config{
		BaseURL: srv.URL,
		Mode:    config.ModeBearer,
		Timeout: 5 * time.Second,
	}, quietNotifier{}, quietNavigator{})
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": data})
}

func fail(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, gin.H{"code": code, "message": msg})
}
