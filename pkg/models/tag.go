package models

type Tag struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ArticleCount int    `json:"articleCount"`
	// Count mirrors ArticleCount for tag-cloud rendering.
	Count int `json:"count"`
}
