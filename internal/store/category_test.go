package store

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryListDefaultsApply(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/categories", func(c *gin.Context) {
		ok(c, []gin.H{
			{"id": 1, "name": "tech"},
			{"id": 2, "name": "life", "icon": "sun", "color": "#fff"},
		})
	})
	s := NewCategoryStore(f.client(t))

	list, err := s.FetchList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "folder", list[0].Icon)
	assert.Equal(t, "#409eff", list[0].Color)
	assert.Equal(t, "sun", list[1].Icon)
	assert.Equal(t, 2, s.Total())
}

func TestCategoryCRUD(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/categories", func(c *gin.Context) {
		ok(c, []gin.H{{"id": 1, "name": "tech"}})
	})
	f.router.POST("/api/categories", func(c *gin.Context) {
		ok(c, gin.H{"id": 2, "name": "life"})
	})
	f.router.PUT("/api/categories/2", func(c *gin.Context) {
		ok(c, gin.H{"id": 2, "name": "daily life"})
	})
	f.router.DELETE("/api/categories/2", func(c *gin.Context) {
		ok(c, nil)
	})
	s := NewCategoryStore(f.client(t))

	_, err := s.FetchList(context.Background())
	require.NoError(t, err)

	created, err := s.Create(context.Background(), map[string]any{"name": "life"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, int64(2), s.Categories()[0].ID, "new category goes to the head")
	assert.Equal(t, 2, s.Total())

	updated, err := s.Update(context.Background(), 2, map[string]any{"name": "daily life"})
	require.NoError(t, err)
	assert.Equal(t, "daily life", updated.Name)
	assert.Equal(t, "daily life", s.Categories()[0].Name)

	require.NoError(t, s.Remove(context.Background(), 2))
	assert.Len(t, s.Categories(), 1)
	assert.Equal(t, 1, s.Total())
}

func TestCategoryArticlesNotCached(t *testing.T) {
	f := newFakeAPI()
	f.router.GET("/api/categories/1/articles", func(c *gin.Context) {
		ok(c, gin.H{"list": []gin.H{articleJSON(7, "filed")}, "total": 1})
	})
	s := NewCategoryStore(f.client(t))

	page, err := s.FetchArticles(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, int64(7), page.List[0].ID)
	assert.Empty(t, s.Categories(), "article pages never land in the category collection")
}
