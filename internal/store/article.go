package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"bloghub/internal/gateway"
	"bloghub/internal/transform"
	"bloghub/pkg/models"
)

// ArticleFilter selects a page of the article list.
type ArticleFilter struct {
	Page       int
	Size       int
	Sort       string
	TagID      int64
	CategoryID int64
}

// ArticlePatch is a partial article update; nil fields stay untouched.
// Tags is the server-shaped comma-joined string.
type ArticlePatch struct {
	Title        *string `json:"title,omitempty"`
	Content      *string `json:"content,omitempty"`
	Summary      *string `json:"summary,omitempty"`
	CoverImage   *string `json:"coverImage,omitempty"`
	CategoryID   *int64  `json:"categoryId,omitempty"`
	CategoryName *string `json:"categoryName,omitempty"`
	Tags         *string `json:"tags,omitempty"`
	Status       *int    `json:"status,omitempty"`
	IsTop        *int    `json:"isTop,omitempty"`
	AllowComment *int    `json:"allowComment,omitempty"`
}

// ArticleStore mirrors the remote article collections. An article edited or
// deleted anywhere is synced across every collection holding its id so the
// views never diverge.
type ArticleStore struct {
	gw      *gateway.Client
	loading loadingSet

	mu          sync.Mutex
	articles    []models.Article
	total       int
	hot         []models.Article
	newest      []models.Article
	mine        []models.Article
	mineTotal   int
	drafts      []models.Article
	draftsTotal int
	results     []models.Article
	resultTotal int
	current     *models.Article
}

func NewArticleStore(gw *gateway.Client) *ArticleStore {
	return &ArticleStore{gw: gw}
}

func (s *ArticleStore) Loading(op string) bool { return s.loading.loading(op) }

// FetchList loads a page of the main listing. Page 1 replaces the
// collection, later pages append; total always tracks the server's count
// for the current filter.
func (s *ArticleStore) FetchList(ctx context.Context, f ArticleFilter) (models.Page[models.Article], error) {
	defer s.loading.begin(OpList)()

	q := url.Values{}
	q.Set("page", fmt.Sprint(orDefault(f.Page, 1)))
	q.Set("size", fmt.Sprint(orDefault(f.Size, 10)))
	sort := f.Sort
	if sort == "" {
		sort = "createTime"
	}
	q.Set("sort", sort)
	if f.TagID != 0 {
		q.Set("tagId", fmt.Sprint(f.TagID))
	}
	if f.CategoryID != 0 {
		q.Set("categoryId", fmt.Sprint(f.CategoryID))
	}

	data, err := s.gw.Send(ctx, http.MethodGet, "/api/articles", nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.Article]{}, err
	}

	var pd pagedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.Article]{}, fmt.Errorf("decode article page: %w", err)
	}
	list := transform.ArticlesJSON(pd.List)

	s.mu.Lock()
	if orDefault(f.Page, 1) <= 1 {
		s.articles = list
	} else {
		s.articles = append(s.articles, list...)
	}
	s.total = pd.Total
	s.mu.Unlock()

	return models.Page[models.Article]{List: list, Total: pd.Total}, nil
}

func (s *ArticleStore) FetchOne(ctx context.Context, id int64) (models.Article, error) {
	defer s.loading.begin(OpDetail)()

	var raw transform.RawArticle
	if err := s.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/api/articles/%d", id), nil, &raw); err != nil {
		return models.Article{}, err
	}
	article := transform.Article(raw)

	s.mu.Lock()
	s.current = &article
	s.mu.Unlock()
	return article, nil
}

// Create posts the payload and merges the server-assigned entity (id,
// timestamps) at the head of the listing. This is an optimistic local
// merge, not a re-fetch.
func (s *ArticleStore) Create(ctx context.Context, payload map[string]any) (models.Article, error) {
	defer s.loading.begin(OpCreate)()

	var raw transform.RawArticle
	if err := s.gw.Do(ctx, http.MethodPost, "/api/articles", payload, &raw); err != nil {
		return models.Article{}, err
	}
	article := transform.Article(raw)

	s.mu.Lock()
	s.articles = append([]models.Article{article}, s.articles...)
	s.total++
	s.mu.Unlock()
	return article, nil
}

// Update merges the patch and re-runs the transformer over the merged
// object so denormalized fields (the tag array) stay consistent, then syncs
// every collection holding the id.
func (s *ArticleStore) Update(ctx context.Context, id int64, patch ArticlePatch) (models.Article, error) {
	defer s.loading.begin(OpUpdate)()

	data, err := s.gw.Send(ctx, http.MethodPut, fmt.Sprintf("/api/articles/%d", id), patch)
	if err != nil {
		return models.Article{}, err
	}

	var raw transform.RawArticle
	if err := json.Unmarshal(data, &raw); err != nil || raw.ID == 0 {
		// server returned no entity: merge locally from the known state
		s.mu.Lock()
		existing, ok := s.findByID(id)
		s.mu.Unlock()
		if !ok {
			return models.Article{}, fmt.Errorf("article %d not loaded, cannot merge update", id)
		}
		raw = rawFromArticle(existing)
		applyArticlePatch(&raw, patch)
	}
	updated := transform.Article(raw)

	s.mu.Lock()
	s.replaceEverywhere(updated)
	s.mu.Unlock()
	return updated, nil
}

// Remove deletes the article everywhere it appears; every affected total
// drops by one, floored at zero.
func (s *ArticleStore) Remove(ctx context.Context, id int64) error {
	defer s.loading.begin(OpDelete)()

	if _, err := s.gw.Send(ctx, http.MethodDelete, fmt.Sprintf("/api/articles/%d", id), nil); err != nil {
		return err
	}

	s.mu.Lock()
	if removed := removeByID(&s.articles, id); removed {
		s.total = floor0(s.total - 1)
	}
	if removed := removeByID(&s.mine, id); removed {
		s.mineTotal = floor0(s.mineTotal - 1)
	}
	if removed := removeByID(&s.drafts, id); removed {
		s.draftsTotal = floor0(s.draftsTotal - 1)
	}
	if removed := removeByID(&s.results, id); removed {
		s.resultTotal = floor0(s.resultTotal - 1)
	}
	removeByID(&s.hot, id)
	removeByID(&s.newest, id)
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

// ToggleLike applies the like optimistically across every collection, then
// confirms with the server; a failure rolls the optimistic change back.
func (s *ArticleStore) ToggleLike(ctx context.Context, id int64, liked bool) error {
	defer s.loading.begin(OpLike)()

	s.mu.Lock()
	s.applyLike(id, liked)
	s.mu.Unlock()

	body := map[string]bool{"isLike": liked}
	if _, err := s.gw.Send(ctx, http.MethodPost, fmt.Sprintf("/api/articles/%d/like", id), body); err != nil {
		s.mu.Lock()
		s.applyLike(id, !liked)
		s.mu.Unlock()
		return err
	}
	return nil
}

// IncrementView reports a read and bumps the local counters on success.
func (s *ArticleStore) IncrementView(ctx context.Context, id int64) error {
	defer s.loading.begin(OpView)()

	if _, err := s.gw.Send(ctx, http.MethodPost, fmt.Sprintf("/api/articles/%d/view", id), nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.mutateEverywhere(id, func(a *models.Article) { a.ViewCount++ })
	s.mu.Unlock()
	return nil
}

func (s *ArticleStore) FetchHot(ctx context.Context, limit int) ([]models.Article, error) {
	defer s.loading.begin(OpHot)()

	q := url.Values{}
	q.Set("limit", fmt.Sprint(orDefault(limit, 10)))
	data, err := s.gw.Send(ctx, http.MethodGet, "/api/articles/hot", nil, gateway.WithQuery(q))
	if err != nil {
		return nil, err
	}
	list := transform.ArticlesJSON(data)

	s.mu.Lock()
	s.hot = list
	s.mu.Unlock()
	return list, nil
}

func (s *ArticleStore) FetchNewest(ctx context.Context, limit int) ([]models.Article, error) {
	defer s.loading.begin(OpNewest)()

	q := url.Values{}
	q.Set("limit", fmt.Sprint(orDefault(limit, 10)))
	data, err := s.gw.Send(ctx, http.MethodGet, "/api/articles/newest", nil, gateway.WithQuery(q))
	if err != nil {
		return nil, err
	}
	list := transform.ArticlesJSON(data)

	s.mu.Lock()
	s.newest = list
	s.mu.Unlock()
	return list, nil
}

// Search pages through matches for a keyword. Page 1 replaces the result
// collection, later pages append.
func (s *ArticleStore) Search(ctx context.Context, keyword string, page, size int) (models.Page[models.Article], error) {
	defer s.loading.begin(OpSearch)()

	q := url.Values{}
	q.Set("keyword", strings.TrimSpace(keyword))
	q.Set("page", fmt.Sprint(orDefault(page, 1)))
	q.Set("size", fmt.Sprint(orDefault(size, 10)))
	data, err := s.gw.Send(ctx, http.MethodGet, "/api/articles/search", nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.Article]{}, err
	}

	var pd pagedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.Article]{}, fmt.Errorf("decode search page: %w", err)
	}
	list := transform.ArticlesJSON(pd.List)

	s.mu.Lock()
	if orDefault(page, 1) <= 1 {
		s.results = list
	} else {
		s.results = append(s.results, list...)
	}
	s.resultTotal = pd.Total
	s.mu.Unlock()

	return models.Page[models.Article]{List: list, Total: pd.Total}, nil
}

func (s *ArticleStore) FetchMine(ctx context.Context, page, size int) (models.Page[models.Article], error) {
	defer s.loading.begin(OpMine)()
	return s.fetchOwned(ctx, "/api/articles/my", page, size, &s.mine, &s.mineTotal)
}

func (s *ArticleStore) FetchMyDrafts(ctx context.Context, page, size int) (models.Page[models.Article], error) {
	defer s.loading.begin(OpDrafts)()
	return s.fetchOwned(ctx, "/api/articles/my-drafts", page, size, &s.drafts, &s.draftsTotal)
}

// PublishDraft flips a draft to published and moves it out of the drafts
// collection.
func (s *ArticleStore) PublishDraft(ctx context.Context, id int64) (models.Article, error) {
	defer s.loading.begin(OpPublish)()

	data, err := s.gw.Send(ctx, http.MethodPost, fmt.Sprintf("/api/articles/%d/publish", id), nil)
	if err != nil {
		return models.Article{}, err
	}

	var raw transform.RawArticle
	published := models.Article{}
	if err := json.Unmarshal(data, &raw); err == nil && raw.ID != 0 {
		published = transform.Article(raw)
	}

	s.mu.Lock()
	if removed := removeByID(&s.drafts, id); removed {
		s.draftsTotal = floor0(s.draftsTotal - 1)
	}
	if published.ID != 0 {
		s.replaceEverywhere(published)
	} else {
		s.mutateEverywhere(id, func(a *models.Article) { a.Status = models.StatusPublished })
		if found, ok := s.findByID(id); ok {
			published = found
		}
	}
	s.mu.Unlock()
	return published, nil
}

func (s *ArticleStore) DeleteDraft(ctx context.Context, id int64) error {
	defer s.loading.begin(OpDelete)()

	if _, err := s.gw.Send(ctx, http.MethodDelete, fmt.Sprintf("/api/articles/draft/%d", id), nil); err != nil {
		return err
	}

	s.mu.Lock()
	if removed := removeByID(&s.drafts, id); removed {
		s.draftsTotal = floor0(s.draftsTotal - 1)
	}
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()
	return nil
}

// --- accessors ---

func (s *ArticleStore) Articles() []models.Article { return s.snapshot(&s.articles) }
func (s *ArticleStore) Hot() []models.Article      { return s.snapshot(&s.hot) }
func (s *ArticleStore) Newest() []models.Article   { return s.snapshot(&s.newest) }

func (s *ArticleStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *ArticleStore) Mine() ([]models.Article, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article(nil), s.mine...), s.mineTotal
}

func (s *ArticleStore) Drafts() ([]models.Article, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article(nil), s.drafts...), s.draftsTotal
}

func (s *ArticleStore) SearchResults() ([]models.Article, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article(nil), s.results...), s.resultTotal
}

func (s *ArticleStore) Current() (models.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Article{}, false
	}
	return *s.current, true
}

// ClearCurrent drops the current selection (leaving a detail view).
func (s *ArticleStore) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// --- internals ---

func (s *ArticleStore) fetchOwned(ctx context.Context, path string, page, size int, coll *[]models.Article, total *int) (models.Page[models.Article], error) {
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
	list := transform.ArticlesJSON(pd.List)

	s.mu.Lock()
	if orDefault(page, 1) <= 1 {
		*coll = list
	} else {
		*coll = append(*coll, list...)
	}
	*total = pd.Total
	s.mu.Unlock()

	return models.Page[models.Article]{List: list, Total: pd.Total}, nil
}

func (s *ArticleStore) snapshot(coll *[]models.Article) []models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article(nil), *coll...)
}

func (s *ArticleStore) collections() []*[]models.Article {
	return []*[]models.Article{&s.articles, &s.hot, &s.newest, &s.mine, &s.drafts, &s.results}
}

func (s *ArticleStore) replaceEverywhere(a models.Article) {
	for _, coll := range s.collections() {
		for i := range *coll {
			if (*coll)[i].ID == a.ID {
				(*coll)[i] = a
			}
		}
	}
	if s.current != nil && s.current.ID == a.ID {
		copied := a
		s.current = &copied
	}
}

func (s *ArticleStore) mutateEverywhere(id int64, fn func(*models.Article)) {
	for _, coll := range s.collections() {
		for i := range *coll {
			if (*coll)[i].ID == id {
				fn(&(*coll)[i])
			}
		}
	}
	if s.current != nil && s.current.ID == id {
		fn(s.current)
	}
}

func (s *ArticleStore) applyLike(id int64, liked bool) {
	s.mutateEverywhere(id, func(a *models.Article) {
		a.IsLiked = liked
		if liked {
			a.LikeCount++
		} else {
			a.LikeCount = floor0(a.LikeCount - 1)
		}
	})
}

func (s *ArticleStore) findByID(id int64) (models.Article, bool) {
	if s.current != nil && s.current.ID == id {
		return *s.current, true
	}
	for _, coll := range s.collections() {
		for i := range *coll {
			if (*coll)[i].ID == id {
				return (*coll)[i], true
			}
		}
	}
	return models.Article{}, false
}

// rawFromArticle reverses the transform far enough that a patch can be
// merged and the transformer re-run.
func rawFromArticle(a models.Article) transform.RawArticle {
	return transform.RawArticle{
		ID:           a.ID,
		Title:        a.Title,
		Content:      a.Content,
		Summary:      a.Summary,
		CoverImage:   strings.TrimPrefix(a.CoverImage, "/uploads/"),
		Status:       a.Status,
		ViewCount:    a.ViewCount,
		LikeCount:    a.LikeCount,
		CommentCount: a.CommentCount,
		CategoryID:   a.CategoryID,
		CategoryName: a.CategoryName,
		AuthorName:   a.AuthorName,
		AuthorAvatar: strings.TrimPrefix(a.AuthorAvatar, "/uploads/"),
		UserID:       a.AuthorID,
		Tags:         strings.Join(a.Tags, ","),
		IsTop:        boolFlag(a.IsTop),
		AllowComment: boolFlag(a.AllowComment),
		IsLiked:      boolFlag(a.IsLiked),
		CreateTime:   a.CreateTime,
		UpdateTime:   a.UpdateTime,
		PublishTime:  a.PublishTime,
	}
}

func applyArticlePatch(raw *transform.RawArticle, p ArticlePatch) {
	if p.Title != nil {
		raw.Title = *p.Title
	}
	if p.Content != nil {
		raw.Content = *p.Content
	}
	if p.Summary != nil {
		raw.Summary = *p.Summary
	}
	if p.CoverImage != nil {
		raw.CoverImage = *p.CoverImage
	}
	if p.CategoryID != nil {
		raw.CategoryID = *p.CategoryID
	}
	if p.CategoryName != nil {
		raw.CategoryName = *p.CategoryName
	}
	if p.Tags != nil {
		raw.Tags = *p.Tags
	}
	if p.Status != nil {
		raw.Status = *p.Status
	}
	if p.IsTop != nil {
		raw.IsTop = *p.IsTop
	}
	if p.AllowComment != nil {
		raw.AllowComment = *p.AllowComment
	}
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func removeByID(coll *[]models.Article, id int64) bool {
	for i := range *coll {
		if (*coll)[i].ID == id {
			*coll = append((*coll)[:i], (*coll)[i+1:]...)
			return true
		}
	}
	return false
}

func floor0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
