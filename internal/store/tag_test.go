package store

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCloudCounts(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/tags/cloud", func(c *gin.Context) {
		ok(c, []gin.H{{"id": 1, "name": "go", "articleCount": 9}})
	})
	s := NewTagStore(f.client(t))

	list, err := s.FetchCloud(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 9, list[0].Count)
	assert.Equal(t, 9, s.Tags()[0].ArticleCount)
}

func TestTagSearchByName(t *testing.T) {
	f := newFakeAPI()
	var gotName string
	f.router.GET("/api/tags/search", func(c *gin.Context) {
		gotName = c.Query("name")
		ok(c, []gin.H{{"id": 3, "name": "golang"}})
	})
	s := NewTagStore(f.client(t))

	list, err := s.SearchByName(context.Background(), "gol")
	require.NoError(t, err)
	assert.Equal(t, "gol", gotName)
	require.Len(t, list, 1)
	assert.Empty(t, s.Tags(), "search results are returned, not cached")
}

func TestTagCRUD(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/tags", func(c *gin.Context) {
		ok(c, []gin.H{{"id": 1, "name": "go"}})
	})
	f.router.POST("/api/tags", func(c *gin.Context) {
		ok(c, gin.H{"id": 2, "name": "web"})
	})
	f.router.PUT("/api/tags/2", func(c *gin.Context) {
		ok(c, gin.H{"id": 2, "name": "frontend"})
	})
	f.router.DELETE("/api/tags/2", func(c *gin.Context) {
		ok(c, nil)
	})
	s := NewTagStore(f.client(t))

	_, err := s.FetchList(context.Background())
	require.NoError(t, err)

	created, err := s.Create(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, 2, s.Total())

	updated, err := s.Update(context.Background(), 2, "frontend")
	require.NoError(t, err)
	assert.Equal(t, "frontend", updated.Name)
	assert.Equal(t, "frontend", s.Tags()[0].Name)

	require.NoError(t, s.Remove(context.Background(), 2))
	assert.Len(t, s.Tags(), 1)
	assert.Equal(t, 1, s.Total())
}

func TestTagArticlesPaged(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/tags/1/articles", func(c *gin.Context) {
		ok(c, gin.H{"list": []gin.H{articleJSON(4, "tagged")}, "total": 1})
	})
	s := NewTagStore(f.client(t))

	page, err := s.FetchArticles(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, 1, page.Total)
}
