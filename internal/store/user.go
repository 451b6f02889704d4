package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"bloghub/internal/gateway"
	"bloghub/internal/transform"
	"bloghub/pkg/models"
)

// SessionSync is the slice of the session manager the user store needs to
// keep the authenticated user's mirror fresh after profile edits.
type SessionSync interface {
	CurrentUser() (models.User, bool)
	SyncUser(models.User)
}

// UserStore handles other-user profiles and the profile operations that go
// through /api/user/*. Session ownership stays with the session manager.
type UserStore struct {
	gw      *gateway.Client
	session SessionSync
	loading loadingSet

	mu      sync.Mutex
	current *models.User
	stats   models.UserStats
}

func NewUserStore(gw *gateway.Client, session SessionSync) *UserStore {
	return &UserStore{gw: gw, session: session}
}

func (s *UserStore) Loading(op string) bool { return s.loading.loading(op) }

func (s *UserStore) FetchInfo(ctx context.Context, id int64) (models.User, error) {
	defer s.loading.begin(OpInfo)()

	var raw transform.RawUser
	if err := s.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/api/user/info/%d", id), nil, &raw); err != nil {
		return models.User{}, err
	}
	user := transform.User(raw)

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()
	return user, nil
}

// UpdateInfo patches a user's base record. When the id is the session
// owner's, the session mirror is synced too.
func (s *UserStore) UpdateInfo(ctx context.Context, id int64, patch map[string]any) (models.User, error) {
	defer s.loading.begin(OpUpdate)()

	var raw transform.RawUser
	if err := s.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/api/user/info/%d", id), patch, &raw); err != nil {
		return models.User{}, err
	}
	user := transform.User(raw)

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		copied := user
		s.current = &copied
	}
	s.mu.Unlock()

	if s.session != nil {
		if me, ok := s.session.CurrentUser(); ok && me.ID == id {
			s.session.SyncUser(user)
		}
	}
	return user, nil
}

// UploadAvatar sends the image as multipart. Upload endpoints skip the
// envelope, so the raw response body is decoded directly.
func (s *UserStore) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	defer s.loading.begin(OpUpload)()

	body, err := s.gw.Upload(ctx, "/api/user/avatar", "avatar", filename, file, nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Avatar string `json:"avatar"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode avatar response: %w", err)
	}
	avatar := resp.Avatar
	if avatar != "" {
		avatar = "/uploads/" + avatar
	}

	if s.session != nil && avatar != "" {
		if me, ok := s.session.CurrentUser(); ok {
			me.Avatar = avatar
			s.session.SyncUser(me)
		}
	}
	return avatar, nil
}

func (s *UserStore) FetchArticles(ctx context.Context, userID int64, page, size int) (models.Page[models.Article], error) {
	defer s.loading.begin(OpList)()
	return s.fetchArticlePage(ctx, fmt.Sprintf("/api/user/articles/%d", userID), page, size)
}

func (s *UserStore) FetchLikedArticles(ctx context.Context, userID int64, page, size int) (models.Page[models.Article], error) {
	defer s.loading.begin(OpLiked)()
	return s.fetchArticlePage(ctx, fmt.Sprintf("/api/user/liked/%d", userID), page, size)
}

func (s *UserStore) FetchStats(ctx context.Context, userID int64) (models.UserStats, error) {
	defer s.loading.begin(OpStats)()

	var stats models.UserStats
	if err := s.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/api/user/stats/%d", userID), nil, &stats); err != nil {
		return models.UserStats{}, err
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return stats, nil
}

func (s *UserStore) FetchLoginHistory(ctx context.Context, userID int64, page, size int) (models.Page[models.LoginRecord], error) {
	defer s.loading.begin(OpHistory)()

	q := url.Values{}
	q.Set("page", fmt.Sprint(orDefault(page, 1)))
	q.Set("size", fmt.Sprint(orDefault(size, 10)))
	data, err := s.gw.Send(ctx, http.MethodGet, fmt.Sprintf("/api/user/history/%d", userID), nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.LoginRecord]{}, err
	}

	var pd struct {
		List  []models.LoginRecord `json:"list"`
		Total int                  `json:"total"`
	}
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.LoginRecord]{}, fmt.Errorf("decode login history: %w", err)
	}
	if pd.List == nil {
		pd.List = []models.LoginRecord{}
	}
	return models.Page[models.LoginRecord]{List: pd.List, Total: pd.Total}, nil
}

func (s *UserStore) Current() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

func (s *UserStore) Stats() models.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *UserStore) fetchArticlePage(ctx context.Context, path string, page, size int) (models.Page[models.Article], error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(orDefault(page, 1)))
	q.Set("size", fmt.Sprint(orDefault(size, 10)))
	data, err := s.gw.Send(ctx, http.MethodGet, path, nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.Article]{}, err
	}

	var pd pagedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.Article]{}, fmt.Errorf("decode %s page: %w", path, err)
	}
	return models.Page[models.Article]{List: transform.ArticlesJSON(pd.List), Total: pd.Total}, nil
}
