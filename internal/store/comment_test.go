package store

import (
	"context"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentTree() []gin.H {
	return []gin.H{
		{
			"id": 1, "content": "root", "articleId": 9, "likeCount": 1,
			"childComments": []gin.H{
				{"id": 2, "content": "nested", "articleId": 9, "parentId": 1, "likeCount": 0},
			},
		},
	}
}

func TestCommentPagination(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/comments/article/9", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		switch page {
		case 1:
			ok(c, gin.H{"list": []gin.H{{"id": 1, "content": "first", "articleId": 9}}, "total": 1})
		default:
			ok(c, gin.H{"list": []gin.H{{"id": 2, "content": "second", "articleId": 9}}, "total": 2})
		}
	})
	s := NewCommentStore(f.client(t))

	page, err := s.FetchForArticle(context.Background(), 9, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.List, 1)

	_, err = s.FetchForArticle(context.Background(), 9, 2, 20)
	require.NoError(t, err)

	got := s.Comments()
	require.Len(t, got, 2, "page 2 appends within the same article")
	assert.Equal(t, 2, s.Total(), "total tracks the latest response")
}

func TestCommentScopeSwitchClears(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/comments/article/:id", func(c *gin.Context) {
		id := c.Param("id")
		ok(c, gin.H{"list": []gin.H{{"id": 100, "content": "for " + id, "articleId": 1}}, "total": 1})
	})
	s := NewCommentStore(f.client(t))

	_, err := s.FetchForArticle(context.Background(), 1, 1, 20)
	require.NoError(t, err)
	_, err = s.FetchForArticle(context.Background(), 2, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(2), s.ArticleID())
	got := s.Comments()
	require.Len(t, got, 1, "old article's comments are gone")
	assert.Equal(t, "for 2", got[0].Content)
}

func TestCommentCreatePrepends(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/comments/article/9", func(c *gin.Context) {
		ok(c, gin.H{"list": []gin.H{{"id": 1, "content": "old", "articleId": 9}}, "total": 1})
	})
	f.router.POST("/api/comments", func(c *gin.Context) {
		ok(c, gin.H{"id": 2, "content": "fresh", "articleId": 9})
	})
	s := NewCommentStore(f.client(t))

	_, err := s.FetchForArticle(context.Background(), 9, 1, 20)
	require.NoError(t, err)

	created, err := s.Create(context.Background(), map[string]any{"articleId": 9, "content": "fresh"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)

	got := s.Comments()
	require.Len(t, got, 2)
	assert.Equal(t, "fresh", got[0].Content)
	assert.Equal(t, 2, s.Total())
}

func TestCommentRemove(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/comments/article/9", func(c *gin.Context) {
		ok(c, gin.H{"list": []gin.H{{"id": 1, "content": "a", "articleId": 9}, {"id": 2, "content": "b", "articleId": 9}}, "total": 2})
	})
	f.router.DELETE("/api/comments/1", func(c *gin.Context) {
		ok(c, nil)
	})
	s := NewCommentStore(f.client(t))

	_, err := s.FetchForArticle(context.Background(), 9, 1, 20)
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), 1))
	got := s.Comments()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, 1, s.Total())
}

func TestCommentToggleLikeReachesNestedNodes(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/comments/article/9", func(c *gin.Context) {
		ok(c, gin.H{"list": commentTree(), "total": 1})
	})
	f.router.POST("/api/comments/2/like", func(c *gin.Context) {
		ok(c, nil)
	})
	s := NewCommentStore(f.client(t))

	_, err := s.FetchForArticle(context.Background(), 9, 1, 20)
	require.NoError(t, err)

	require.NoError(t, s.ToggleLike(context.Background(), 2, true))
	nested := s.Comments()[0].ChildComments[0]
	assert.True(t, nested.IsLiked)
	assert.Equal(t, 1, nested.LikeCount)
}

func TestCommentToggleLikeRollsBack(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/comments/article/9", func(c *gin.Context) {
		ok(c, gin.H{"list": commentTree(), "total": 1})
	})
	f.router.POST("/api/comments/1/like", func(c *gin.Context) {
		fail(c, 500, "no")
	})
	s := NewCommentStore(f.client(t))

	_, err := s.FetchForArticle(context.Background(), 9, 1, 20)
	require.NoError(t, err)

	err = s.ToggleLike(context.Background(), 1, true)
	require.Error(t, err)
	top := s.Comments()[0]
	assert.False(t, top.IsLiked)
	assert.Equal(t, 1, top.LikeCount)
}

func TestCommentClear(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/comments/article/9", func(c *gin.Context) {
		ok(c, gin.H{"list": commentTree(), "total": 1})
	})
	s := NewCommentStore(f.client(t))

	_, err := s.FetchForArticle(context.Background(), 9, 1, 20)
	require.NoError(t, err)

	s.Clear()
	assert.Empty(t, s.Comments())
	assert.Zero(t, s.Total())
	assert.Zero(t, s.ArticleID())
}
