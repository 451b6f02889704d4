package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"bloghub/internal/gateway"
	"bloghub/internal/transform"
	"bloghub/pkg/models"
)

type CategoryStore struct {
	gw      *gateway.Client
	loading loadingSet

	mu         sync.Mutex
	categories []models.Category
	total      int
	current    *models.Category
}

func NewCategoryStore(gw *gateway.Client) *CategoryStore {
	return &CategoryStore{gw: gw}
}

func (s *CategoryStore) Loading(op string) bool { return s.loading.loading(op) }

func (s *CategoryStore) FetchList(ctx context.Context) ([]models.Category, error) {
	defer s.loading.begin(OpList)()

	data, err := s.gw.Send(ctx, http.MethodGet, "/api/categories", nil)
	if err != nil {
		return nil, err
	}
	list := transform.CategoriesJSON(data)

	s.mu.Lock()
	s.categories = list
	s.total = len(list)
	s.mu.Unlock()
	return list, nil
}

func (s *CategoryStore) FetchOne(ctx context.Context, id int64) (models.Category, error) {
	defer s.loading.begin(OpDetail)()

	var raw transform.RawCategory
	if err := s.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil, &raw); err != nil {
		return models.Category{}, err
	}
	cat := transform.Category(raw)

	s.mu.Lock()
	s.current = &cat
	s.mu.Unlock()
	return cat, nil
}

// FetchArticles lists the articles filed under a category. The result is
// returned, not cached here; the article store owns article collections.
func (s *CategoryStore) FetchArticles(ctx context.Context, id int64, page, size int) (models.Page[models.Article], error) {
	defer s.loading.begin(OpDetail)()

	q := url.Values{}
	q.Set("page", fmt.Sprint(orDefault(page, 1)))
	q.Set("size", fmt.Sprint(orDefault(size, 10)))
	data, err := s.gw.Send(ctx, http.MethodGet, fmt.Sprintf("/api/categories/%d/articles", id), nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.Article]{}, err
	}

	var pd pagedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.Article]{}, fmt.Errorf("decode category articles: %w", err)
	}
	return models.Page[models.Article]{List: transform.ArticlesJSON(pd.List), Total: pd.Total}, nil
}

func (s *CategoryStore) Create(ctx context.Context, payload map[string]any) (models.Category, error) {
	defer s.loading.begin(OpCreate)()

	var raw transform.RawCategory
	if err := s.gw.Do(ctx, http.MethodPost, "/api/categories", payload, &raw); err != nil {
		return models.Category{}, err
	}
	cat := transform.Category(raw)

	s.mu.Lock()
	s.categories = append([]models.Category{cat}, s.categories...)
	s.total++
	s.mu.Unlock()
	return cat, nil
}

func (s *CategoryStore) Update(ctx context.Context, id int64, payload map[string]any) (models.Category, error) {
	defer s.loading.begin(OpUpdate)()

	var raw transform.RawCategory
	if err := s.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/api/categories/%d", id), payload, &raw); err != nil {
		return models.Category{}, err
	}
	cat := transform.Category(raw)

	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i] = cat
		}
	}
	if s.current != nil && s.current.ID == id {
		copied := cat
		s.current = &copied
	}
	s.mu.Unlock()
	return cat, nil
}

func (s *CategoryStore) Remove(ctx context.Context, id int64) error {
	defer s.loading.begin(OpDelete)()

	if _, err := s.gw.Send(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) < len(s.categories) {
		s.total = floor0(s.total - 1)
	}
	s.categories = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *CategoryStore) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category(nil), s.categories...)
}

func (s *CategoryStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *CategoryStore) Current() (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Category{}, false
	}
	return *s.current, true
}
