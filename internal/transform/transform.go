// Package transform normalizes raw server records into the client-shaped
// models. Every optional field gets its default here, exactly once; call
// sites never re-apply defaulting.
package transform

import (
	"encoding/json"
	"strings"

	"bloghub/pkg/models"
)

// uploadBase prefixes server-relative upload names (avatars, covers).
const uploadBase = "/uploads/"

// RawArticle is the article record as the server sends it: counts may be
// missing, booleans are integer flags, tags are one comma-joined string.
type RawArticle struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Summary      string `json:"summary"`
	CoverImage   string `json:"coverImage"`
	Status       int    `json:"status"`
	ViewCount    int    `json:"viewCount"`
	LikeCount    int    `json:"likeCount"`
	CommentCount int    `json:"commentCount"`
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	AuthorName   string `json:"authorName"`
	Username     string `json:"username"`
	AuthorAvatar string `json:"authorAvatar"`
	UserID       int64  `json:"userId"`
	Tags         string `json:"tags"`
	IsTop        int    `json:"isTop"`
	AllowComment int    `json:"allowComment"`
	IsLiked      int    `json:"isLiked"`
	CreateTime   string `json:"createTime"`
	UpdateTime   string `json:"updateTime"`
	PublishTime  string `json:"publishTime"`
}

func Article(raw RawArticle) models.Article {
	a := models.Article{
		ID:           raw.ID,
		Title:        raw.Title,
		Content:      raw.Content,
		Summary:      raw.Summary,
		Status:       raw.Status,
		ViewCount:    raw.ViewCount,
		LikeCount:    raw.LikeCount,
		CommentCount: raw.CommentCount,
		CategoryID:   raw.CategoryID,
		CategoryName: raw.CategoryName,
		AuthorID:     raw.UserID,
		AuthorName:   raw.AuthorName,
		IsTop:        raw.IsTop == 1,
		AllowComment: raw.AllowComment == 1,
		IsLiked:      raw.IsLiked == 1,
		Tags:         splitTags(raw.Tags),
		CreateTime:   raw.CreateTime,
		UpdateTime:   raw.UpdateTime,
		PublishTime:  raw.PublishTime,
	}
	if a.AuthorName == "" {
		a.AuthorName = raw.Username
	}
	if raw.CoverImage != "" {
		a.CoverImage = uploadBase + raw.CoverImage
	}
	if raw.AuthorAvatar != "" {
		a.AuthorAvatar = uploadBase + raw.AuthorAvatar
	}
	if a.UpdateTime == "" {
		a.UpdateTime = raw.CreateTime
	}
	if a.PublishTime == "" {
		a.PublishTime = raw.CreateTime
	}
	return a
}

func Articles(raws []RawArticle) []models.Article {
	out := make([]models.Article, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Article(raw))
	}
	return out
}

// ArticlesJSON decodes and transforms a raw payload that should be an array.
// Malformed or non-array payloads yield an empty slice, never an error.
func ArticlesJSON(data json.RawMessage) []models.Article {
	var raws []RawArticle
	if err := json.Unmarshal(data, &raws); err != nil {
		return []models.Article{}
	}
	return Articles(raws)
}

type RawUser struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
	Role       int    `json:"role"`
	Status     *int   `json:"status"`
	Bio        string `json:"bio"`
	CreateTime string `json:"createTime"`
	UpdateTime string `json:"updateTime"`
}

func User(raw RawUser) models.User {
	u := models.User{
		ID:         raw.ID,
		Username:   raw.Username,
		Email:      raw.Email,
		Role:       raw.Role,
		Status:     1,
		Bio:        raw.Bio,
		CreateTime: raw.CreateTime,
		UpdateTime: raw.UpdateTime,
	}
	if raw.Status != nil {
		u.Status = *raw.Status
	}
	if raw.Avatar != "" {
		u.Avatar = uploadBase + raw.Avatar
	}
	if u.UpdateTime == "" {
		u.UpdateTime = raw.CreateTime
	}
	return u
}

type RawCategory struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	OrderNum     int    `json:"orderNum"`
	ArticleCount int    `json:"articleCount"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
}

func Category(raw RawCategory) models.Category {
	c := models.Category{
		ID:           raw.ID,
		Name:         raw.Name,
		Description:  raw.Description,
		OrderNum:     raw.OrderNum,
		ArticleCount: raw.ArticleCount,
		Icon:         raw.Icon,
		Color:        raw.Color,
	}
	if c.Icon == "" {
		c.Icon = "folder"
	}
	if c.Color == "" {
		c.Color = "#409eff"
	}
	return c
}

func Categories(raws []RawCategory) []models.Category {
	out := make([]models.Category, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Category(raw))
	}
	return out
}

func CategoriesJSON(data json.RawMessage) []models.Category {
	var raws []RawCategory
	if err := json.Unmarshal(data, &raws); err != nil {
		return []models.Category{}
	}
	return Categories(raws)
}

type RawTag struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ArticleCount int    `json:"articleCount"`
}

func Tag(raw RawTag) models.Tag {
	return models.Tag{
		ID:           raw.ID,
		Name:         raw.Name,
		ArticleCount: raw.ArticleCount,
		Count:        raw.ArticleCount,
	}
}

func Tags(raws []RawTag) []models.Tag {
	out := make([]models.Tag, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Tag(raw))
	}
	return out
}

func TagsJSON(data json.RawMessage) []models.Tag {
	var raws []RawTag
	if err := json.Unmarshal(data, &raws); err != nil {
		return []models.Tag{}
	}
	return Tags(raws)
}

// RawComment is tree-shaped by construction on the server side. The
// transform recurses depth-first; depth equals thread depth.
type RawComment struct {
	ID            int64        `json:"id"`
	Content       string       `json:"content"`
	ArticleID     int64        `json:"articleId"`
	UserID        int64        `json:"userId"`
	ParentID      int64        `json:"parentId"`
	ReplyUserID   int64        `json:"replyUserId"`
	LikeCount     int          `json:"likeCount"`
	IsLiked       int          `json:"isLiked"`
	Status        *int         `json:"status"`
	Username      string       `json:"username"`
	UserAvatar    string       `json:"userAvatar"`
	ReplyUsername string       `json:"replyUsername"`
	CreateTime    string       `json:"createTime"`
	UpdateTime    string       `json:"updateTime"`
	ChildComments []RawComment `json:"childComments"`
}

func Comment(raw RawComment) models.Comment {
	c := models.Comment{
		ID:            raw.ID,
		Content:       raw.Content,
		ArticleID:     raw.ArticleID,
		UserID:        raw.UserID,
		ParentID:      raw.ParentID,
		ReplyUserID:   raw.ReplyUserID,
		LikeCount:     raw.LikeCount,
		IsLiked:       raw.IsLiked == 1,
		Status:        1,
		UserName:      raw.Username,
		ReplyUserName: raw.ReplyUsername,
		CreateTime:    raw.CreateTime,
		UpdateTime:    raw.UpdateTime,
		ChildComments: Comments(raw.ChildComments),
	}
	if raw.Status != nil {
		c.Status = *raw.Status
	}
	if raw.UserAvatar != "" {
		c.UserAvatar = uploadBase + raw.UserAvatar
	}
	if c.UpdateTime == "" {
		c.UpdateTime = raw.CreateTime
	}
	return c
}

func Comments(raws []RawComment) []models.Comment {
	out := make([]models.Comment, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Comment(raw))
	}
	return out
}

func CommentsJSON(data json.RawMessage) []models.Comment {
	var raws []RawComment
	if err := json.Unmarshal(data, &raws); err != nil {
		return []models.Comment{}
	}
	return Comments(raws)
}

type RawArchiveMonth struct {
	Month    int          `json:"month"`
	Count    int          `json:"count"`
	Articles []RawArticle `json:"articles"`
}

type RawArchiveYear struct {
	Year      int               `json:"year"`
	Total     int               `json:"total"`
	ViewCount int               `json:"viewCount"`
	LikeCount int               `json:"likeCount"`
	Months    []RawArchiveMonth `json:"months"`
}

func ArchiveYear(raw RawArchiveYear) models.ArchiveYear {
	y := models.ArchiveYear{
		Year:      raw.Year,
		Total:     raw.Total,
		ViewCount: raw.ViewCount,
		LikeCount: raw.LikeCount,
		Months:    make([]models.ArchiveMonth, 0, len(raw.Months)),
	}
	for _, m := range raw.Months {
		y.Months = append(y.Months, models.ArchiveMonth{
			Month:    m.Month,
			Count:    m.Count,
			Articles: Articles(m.Articles),
		})
	}
	return y
}

func ArchiveYears(raws []RawArchiveYear) []models.ArchiveYear {
	out := make([]models.ArchiveYear, 0, len(raws))
	for _, raw := range raws {
		out = append(out, ArchiveYear(raw))
	}
	return out
}

func ArchiveYearsJSON(data json.RawMessage) []models.ArchiveYear {
	var raws []RawArchiveYear
	if err := json.Unmarshal(data, &raws); err != nil {
		return []models.ArchiveYear{}
	}
	return ArchiveYears(raws)
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
