package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleDefaults(t *testing.T) {
	raw := RawArticle{
		ID:         1,
		Title:      "hello",
		Username:   "alice",
		CreateTime: "2024-01-15T10:30:00",
	}

	a := Article(raw)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, "alice", a.AuthorName, "authorName falls back to username")
	assert.Equal(t, 0, a.ViewCount)
	assert.Equal(t, 0, a.LikeCount)
	assert.Equal(t, []string{}, a.Tags)
	assert.Empty(t, a.CoverImage)
	assert.False(t, a.IsTop)
	assert.Equal(t, "2024-01-15T10:30:00", a.UpdateTime, "updateTime falls back to createTime")
	assert.Equal(t, "2024-01-15T10:30:00", a.PublishTime)
}

func TestArticleFlagsAndURLs(t *testing.T) {
	raw := RawArticle{
		ID:           2,
		Title:        "flagged",
		AuthorName:   "bob",
		CoverImage:   "cover.png",
		AuthorAvatar: "bob.png",
		Tags:         "go, web ,  ",
		IsTop:        1,
		AllowComment: 1,
		IsLiked:      1,
	}

	a := Article(raw)
	assert.Equal(t, "/uploads/cover.png", a.CoverImage)
	assert.Equal(t, "/uploads/bob.png", a.AuthorAvatar)
	assert.Equal(t, []string{"go", "web"}, a.Tags)
	assert.True(t, a.IsTop)
	assert.True(t, a.AllowComment)
	assert.True(t, a.IsLiked)
}

func TestArticlesPreservesOrder(t *testing.T) {
	raws := []RawArticle{{ID: 10, Title: "a"}, {ID: 20, Title: "b"}}
	out := Articles(raws)
	require.Len(t, out, 2)
	assert.Equal(t, int64(10), out[0].ID)
	assert.Equal(t, int64(20), out[1].ID)
}

func TestArticlesJSONNonArray(t *testing.T) {
	for _, payload := range []string{`null`, `{}`, `"nope"`, `123`, ``} {
		out := ArticlesJSON(json.RawMessage(payload))
		assert.NotNil(t, out, "payload %q", payload)
		assert.Empty(t, out, "payload %q", payload)
	}
}

func TestCategoryDefaults(t *testing.T) {
	c := Category(RawCategory{ID: 1, Name: "tech"})
	assert.Equal(t, "folder", c.Icon)
	assert.Equal(t, "#409eff", c.Color)

	c = Category(RawCategory{ID: 2, Name: "life", Icon: "sun", Color: "#fff"})
	assert.Equal(t, "sun", c.Icon)
	assert.Equal(t, "#fff", c.Color)
}

func TestTagCount(t *testing.T) {
	tag := Tag(RawTag{ID: 1, Name: "go", ArticleCount: 7})
	assert.Equal(t, 7, tag.Count, "count mirrors articleCount for cloud rendering")
}

func TestCommentRecursion(t *testing.T) {
	status := 1
	raw := RawComment{
		ID:        1,
		Content:   "root",
		ArticleID: 5,
		Status:    &status,
		ChildComments: []RawComment{
			{
				ID:         2,
				Content:    "reply",
				ArticleID:  5,
				ParentID:   1,
				UserAvatar: "eve.png",
				ChildComments: []RawComment{
					{ID: 3, Content: "deep reply", ArticleID: 5, ParentID: 2},
				},
			},
		},
	}

	c := Comment(raw)
	require.Len(t, c.ChildComments, 1)
	reply := c.ChildComments[0]
	assert.Equal(t, "/uploads/eve.png", reply.UserAvatar)
	require.Len(t, reply.ChildComments, 1)
	assert.Equal(t, "deep reply", reply.ChildComments[0].Content)
	assert.Equal(t, 1, reply.ChildComments[0].Status, "status defaults to 1")
	assert.NotNil(t, reply.ChildComments[0].ChildComments)
}

func TestCommentsJSONNonArray(t *testing.T) {
	out := CommentsJSON(json.RawMessage(`{"not":"an array"}`))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestUserDefaults(t *testing.T) {
	u := User(RawUser{ID: 7, Username: "alice", Avatar: "a.png"})
	assert.Equal(t, 1, u.Status, "status defaults to active")
	assert.Equal(t, "/uploads/a.png", u.Avatar)

	zero := 0
	u = User(RawUser{ID: 8, Username: "banned", Status: &zero})
	assert.Equal(t, 0, u.Status, "explicit zero status survives")
}

func TestArchiveYearTransform(t *testing.T) {
	raw := RawArchiveYear{
		Year:      2024,
		Total:     12,
		ViewCount: 500,
		Months: []RawArchiveMonth{
			{Month: 1, Count: 2, Articles: []RawArticle{{ID: 1, Title: "jan"}}},
		},
	}

	y := ArchiveYear(raw)
	assert.Equal(t, 2024, y.Year)
	require.Len(t, y.Months, 1)
	require.Len(t, y.Months[0].Articles, 1)
	assert.Equal(t, "jan", y.Months[0].Articles[0].Title)
}
