package models

// ArchiveYear is the read-mostly yearly projection served by /api/archives.
// The client only fetches and caches it, never creates it.
type ArchiveYear struct {
	Year      int            `json:"year"`
	Total     int            `json:"total"`
	ViewCount int            `json:"viewCount"`
	LikeCount int            `json:"likeCount"`
	Months    []ArchiveMonth `json:"months"`
}

type ArchiveMonth struct {
	Month    int       `json:"month"`
	Count    int       `json:"count"`
	Articles []Article `json:"articles"`
}

// ArchiveStats is the site-wide aggregate from /api/archives/stats.
type ArchiveStats struct {
	TotalArticles int `json:"totalArticles"`
	TotalViews    int `json:"totalViews"`
	TotalLikes    int `json:"totalLikes"`
	YearCount     int `json:"yearCount"`
}

// Page is a generic paged listing: the items plus the server-reported total.
type Page[T any] struct {
	List  []T `json:"list"`
	Total int `json:"total"`
}
