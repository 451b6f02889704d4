package models

type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	OrderNum     int    `json:"orderNum"`
	ArticleCount int    `json:"articleCount"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
}
