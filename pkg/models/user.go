package models

type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	Bio        string `json:"bio,omitempty"`
	Role       int    `json:"role"`
	Status     int    `json:"status"`
	CreateTime string `json:"createTime,omitempty"`
	UpdateTime string `json:"updateTime,omitempty"`
}

// UserStats is the per-user aggregate returned by /api/user/stats.
type UserStats struct {
	ArticleCount int `json:"articleCount"`
	ViewCount    int `json:"viewCount"`
	LikeCount    int `json:"likeCount"`
	CommentCount int `json:"commentCount"`
}

type LoginRecord struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	LoginTime string `json:"loginTime"`
}
