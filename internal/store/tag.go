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

type TagStore struct {
	gw      *gateway.Client
	loading loadingSet

	mu      sync.Mutex
	tags    []models.Tag
	total   int
	current *models.Tag
}

func NewTagStore(gw *gateway.Client) *TagStore {
	return &TagStore{gw: gw}
}

func (s *TagStore) Loading(op string) bool { return s.loading.loading(op) }

func (s *TagStore) FetchList(ctx context.Context) ([]models.Tag, error) {
	defer s.loading.begin(OpList)()

	data, err := s.gw.Send(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	list := transform.TagsJSON(data)

	s.mu.Lock()
	s.tags = list
	s.total = len(list)
	s.mu.Unlock()
	return list, nil
}

// FetchCloud loads the tag list shaped for cloud rendering; the transform
// fills Count from articleCount.
func (s *TagStore) FetchCloud(ctx context.Context) ([]models.Tag, error) {
	defer s.loading.begin(OpCloud)()

	data, err := s.gw.Send(ctx, http.MethodGet, "/api/tags/cloud", nil)
	if err != nil {
		return nil, err
	}
	list := transform.TagsJSON(data)

	s.mu.Lock()
	s.tags = list
	s.total = len(list)
	s.mu.Unlock()
	return list, nil
}

func (s *TagStore) FetchOne(ctx context.Context, id int64) (models.Tag, error) {
	defer s.loading.begin(OpDetail)()

	var raw transform.RawTag
	if err := s.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/api/tags/%d", id), nil, &raw); err != nil {
		return models.Tag{}, err
	}
	tag := transform.Tag(raw)

	s.mu.Lock()
	s.current = &tag
	s.mu.Unlock()
	return tag, nil
}

func (s *TagStore) FetchArticles(ctx context.Context, id int64, page, size int) (models.Page[models.Article], error) {
	defer s.loading.begin(OpDetail)()

	q := url.Values{}
	q.Set("page", fmt.Sprint(orDefault(page, 1)))
	q.Set("size", fmt.Sprint(orDefault(size, 10)))
	data, err := s.gw.Send(ctx, http.MethodGet, fmt.Sprintf("/api/tags/%d/articles", id), nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.Article]{}, err
	}

	var pd pagedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.Article]{}, fmt.Errorf("decode tag articles: %w", err)
	}
	return models.Page[models.Article]{List: transform.ArticlesJSON(pd.List), Total: pd.Total}, nil
}

func (s *TagStore) SearchByName(ctx context.Context, name string) ([]models.Tag, error) {
	defer s.loading.begin(OpSearch)()

	q := url.Values{}
	q.Set("name", name)
	data, err := s.gw.Send(ctx, http.MethodGet, "/api/tags/search", nil, gateway.WithQuery(q))
	if err != nil {
		return nil, err
	}
	return transform.TagsJSON(data), nil
}

func (s *TagStore) Create(ctx context.Context, name string) (models.Tag, error) {
	defer s.loading.begin(OpCreate)()

	var raw transform.RawTag
	if err := s.gw.Do(ctx, http.MethodPost, "/api/tags", map[string]string{"name": name}, &raw); err != nil {
		return models.Tag{}, err
	}
	tag := transform.Tag(raw)

	s.mu.Lock()
	s.tags = append([]models.Tag{tag}, s.tags...)
	s.total++
	s.mu.Unlock()
	return tag, nil
}

func (s *TagStore) Update(ctx context.Context, id int64, name string) (models.Tag, error) {
	defer s.loading.begin(OpUpdate)()

	var raw transform.RawTag
	if err := s.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/api/tags/%d", id), map[string]string{"name": name}, &raw); err != nil {
		return models.Tag{}, err
	}
	tag := transform.Tag(raw)

	s.mu.Lock()
	for i := range s.tags {
		if s.tags[i].ID == id {
			s.tags[i] = tag
		}
	}
	if s.current != nil && s.current.ID == id {
		copied := tag
		s.current = &copied
	}
	s.mu.Unlock()
	return tag, nil
}

func (s *TagStore) Remove(ctx context.Context, id int64) error {
	defer s.loading.begin(OpDelete)()

	if _, err := s.gw.Send(ctx, http.MethodDelete, fmt.Sprintf("/api/tags/%d", id), nil); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.tags[:0]
	for _, t := range s.tags {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) < len(s.tags) {
		s.total = floor0(s.total - 1)
	}
	s.tags = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *TagStore) Tags() []models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Tag(nil), s.tags...)
}

func (s *TagStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *TagStore) Current() (models.Tag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Tag{}, false
	}
	return *s.current, true
}
