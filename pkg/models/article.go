package models

// Article is the client-shaped article record. Raw server payloads are
// normalized into this form exactly once, in the transform package.
type Article struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	CoverImage   string   `json:"coverImage,omitempty"`
	AuthorID     int64    `json:"authorId"`
	AuthorName   string   `json:"authorName"`
	AuthorAvatar string   `json:"authorAvatar,omitempty"`
	CategoryID   int64    `json:"categoryId,omitempty"`
	CategoryName string   `json:"categoryName,omitempty"`
	Tags         []string `json:"tags"`
	ViewCount    int      `json:"viewCount"`
	LikeCount    int      `json:"likeCount"`
	CommentCount int      `json:"commentCount"`
	IsLiked      bool     `json:"isLiked"`
	IsTop        bool     `json:"isTop"`
	AllowComment bool     `json:"allowComment"`
	CreateTime   string   `json:"createTime"`
	UpdateTime   string   `json:"updateTime"`
	PublishTime  string   `json:"publishTime"`
	Status       int      `json:"status"` // 0 draft, 1 published, 2 under review
}

// Article status values used by the API.
const (
	StatusDraft       = 0
	StatusPublished   = 1
	StatusUnderReview = 2
)
