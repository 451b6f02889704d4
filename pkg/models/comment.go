package models

// Comment is a node in an article's comment tree. ParentID 0 means
// top-level; ChildComments owns the replies, recursively.
type Comment struct {
	ID            int64     `json:"id"`
	Content       string    `json:"content"`
	ArticleID     int64     `json:"articleId"`
	UserID        int64     `json:"userId"`
	ParentID      int64     `json:"parentId"`
	ReplyUserID   int64     `json:"replyUserId,omitempty"`
	LikeCount     int       `json:"likeCount"`
	IsLiked       bool      `json:"isLiked"`
	Status        int       `json:"status"`
	UserName      string    `json:"userName,omitempty"`
	UserAvatar    string    `json:"userAvatar,omitempty"`
	ReplyUserName string    `json:"replyUserName,omitempty"`
	CreateTime    string    `json:"createTime"`
	UpdateTime    string    `json:"updateTime"`
	ChildComments []Comment `json:"childComments"`
}
