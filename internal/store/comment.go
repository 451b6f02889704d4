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

// CommentStore holds the comment tree for one article at a time. Switching
// article clears the collection and total before the new fetch.
type CommentStore struct {
	gw      *gateway.Client
	loading loadingSet

	mu        sync.Mutex
	articleID int64
	comments  []models.Comment
	total     int
}

func NewCommentStore(gw *gateway.Client) *CommentStore {
	return &CommentStore{gw: gw}
}

func (s *CommentStore) Loading(op string) bool { return s.loading.loading(op) }

// FetchForArticle loads a page of an article's comments. Page 1 replaces,
// later pages append; a different article resets the scope first.
func (s *CommentStore) FetchForArticle(ctx context.Context, articleID int64, page, size int) (models.Page[models.Comment], error) {
	defer s.loading.begin(OpList)()

	s.mu.Lock()
	if s.articleID != articleID {
		s.comments = nil
		s.total = 0
		s.articleID = articleID
	}
	s.mu.Unlock()

	q := url.Values{}
	q.Set("page", fmt.Sprint(orDefault(page, 1)))
	q.Set("size", fmt.Sprint(orDefault(size, 20)))
	data, err := s.gw.Send(ctx, http.MethodGet, fmt.Sprintf("/api/comments/article/%d", articleID), nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.Comment]{}, err
	}

	var pd pagedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.Comment]{}, fmt.Errorf("decode comment page: %w", err)
	}
	list := transform.CommentsJSON(pd.List)

	s.mu.Lock()
	if orDefault(page, 1) <= 1 {
		s.comments = list
	} else {
		s.comments = append(s.comments, list...)
	}
	s.total = pd.Total
	s.mu.Unlock()

	return models.Page[models.Comment]{List: list, Total: pd.Total}, nil
}

// Create posts a comment and prepends the server-assigned entity; newest
// comments render first.
func (s *CommentStore) Create(ctx context.Context, payload map[string]any) (models.Comment, error) {
	defer s.loading.begin(OpCreate)()

	var raw transform.RawComment
	if err := s.gw.Do(ctx, http.MethodPost, "/api/comments", payload, &raw); err != nil {
		return models.Comment{}, err
	}
	comment := transform.Comment(raw)

	s.mu.Lock()
	s.comments = append([]models.Comment{comment}, s.comments...)
	s.total++
	s.mu.Unlock()
	return comment, nil
}

func (s *CommentStore) Remove(ctx context.Context, id int64) error {
	defer s.loading.begin(OpDelete)()

	if _, err := s.gw.Send(ctx, http.MethodDelete, fmt.Sprintf("/api/comments/%d", id), nil); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) < len(s.comments) {
		s.total = floor0(s.total - 1)
	}
	s.comments = kept
	s.mu.Unlock()
	return nil
}

// ToggleLike mirrors the like optimistically (top-level and nested nodes
// alike) and rolls back if the server rejects it.
func (s *CommentStore) ToggleLike(ctx context.Context, id int64, liked bool) error {
	defer s.loading.begin(OpLike)()

	s.mu.Lock()
	s.applyLike(id, liked)
	s.mu.Unlock()

	body := map[string]bool{"isLike": liked}
	if _, err := s.gw.Send(ctx, http.MethodPost, fmt.Sprintf("/api/comments/%d/like", id), body); err != nil {
		s.mu.Lock()
		s.applyLike(id, !liked)
		s.mu.Unlock()
		return err
	}
	return nil
}

// Clear resets the scope; called when leaving an article.
func (s *CommentStore) Clear() {
	s.mu.Lock()
	s.articleID = 0
	s.comments = nil
	s.total = 0
	s.mu.Unlock()
}

func (s *CommentStore) Comments() []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Comment(nil), s.comments...)
}

func (s *CommentStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *CommentStore) ArticleID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.articleID
}

func (s *CommentStore) applyLike(id int64, liked bool) {
	var walk func(cs []models.Comment)
	walk = func(cs []models.Comment) {
		for i := range cs {
			if cs[i].ID == id {
				cs[i].IsLiked = liked
				if liked {
					cs[i].LikeCount++
				} else {
					cs[i].LikeCount = floor0(cs[i].LikeCount - 1)
				}
			}
			walk(cs[i].ChildComments)
		}
	}
	walk(s.comments)
}
