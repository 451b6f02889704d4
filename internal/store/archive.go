package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"bloghub/internal/gateway"
	"bloghub/internal/transform"
	"bloghub/pkg/models"
)

// ArchiveStore caches the read-mostly yearly projections. Nothing here is
// ever created by the client. Year/month parameters are validated before
// any network call; rejected input touches no loading flag.
type ArchiveStore struct {
	gw      *gateway.Client
	loading loadingSet

	mu            sync.Mutex
	archives      []models.ArchiveYear
	years         []int
	stats         models.ArchiveStats
	currentYear   []models.ArchiveYear
	monthArticles []models.Article
	results       []models.Article
	resultTotal   int
}

func NewArchiveStore(gw *gateway.Client) *ArchiveStore {
	return &ArchiveStore{gw: gw}
}

func (s *ArchiveStore) Loading(op string) bool { return s.loading.loading(op) }

func (s *ArchiveStore) FetchAll(ctx context.Context) ([]models.ArchiveYear, error) {
	defer s.loading.begin(OpAll)()

	data, err := s.gw.Send(ctx, http.MethodGet, "/api/archives", nil)
	if err != nil {
		return nil, err
	}
	list := transform.ArchiveYearsJSON(data)

	s.mu.Lock()
	s.archives = list
	s.mu.Unlock()
	return list, nil
}

func (s *ArchiveStore) FetchStats(ctx context.Context) (models.ArchiveStats, error) {
	defer s.loading.begin(OpStats)()

	var stats models.ArchiveStats
	if err := s.gw.Do(ctx, http.MethodGet, "/api/archives/stats", nil, &stats); err != nil {
		return models.ArchiveStats{}, err
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return stats, nil
}

func (s *ArchiveStore) FetchYears(ctx context.Context) ([]int, error) {
	defer s.loading.begin(OpYears)()

	data, err := s.gw.Send(ctx, http.MethodGet, "/api/archives/years", nil)
	if err != nil {
		return nil, err
	}
	var years []int
	if err := json.Unmarshal(data, &years); err != nil {
		years = []int{}
	}

	s.mu.Lock()
	s.years = years
	s.mu.Unlock()
	return years, nil
}

func (s *ArchiveStore) FetchByYear(ctx context.Context, year int) ([]models.ArchiveYear, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	defer s.loading.begin(OpByYear)()

	data, err := s.gw.Send(ctx, http.MethodGet, fmt.Sprintf("/api/archives/year/%d", year), nil)
	if err != nil {
		return nil, err
	}
	list := transform.ArchiveYearsJSON(data)

	s.mu.Lock()
	s.currentYear = list
	s.mu.Unlock()
	return list, nil
}

func (s *ArchiveStore) FetchMonth(ctx context.Context, year, month int) ([]models.Article, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, gateway.Validationf("invalid month %d: must be between 1 and 12", month)
	}
	defer s.loading.begin(OpByMonth)()

	data, err := s.gw.Send(ctx, http.MethodGet, fmt.Sprintf("/api/archives/%d/%d", year, month), nil)
	if err != nil {
		return nil, err
	}
	list := transform.ArticlesJSON(data)

	s.mu.Lock()
	s.monthArticles = list
	s.mu.Unlock()
	return list, nil
}

// Search pages through archived articles for a keyword. Out-of-range page
// and size are clamped, not rejected.
func (s *ArchiveStore) Search(ctx context.Context, keyword string, page, size int) (models.Page[models.Article], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	defer s.loading.begin(OpSearch)()

	q := url.Values{}
	q.Set("keyword", strings.TrimSpace(keyword))
	q.Set("page", fmt.Sprint(page))
	q.Set("size", fmt.Sprint(size))
	data, err := s.gw.Send(ctx, http.MethodGet, "/api/archives/search", nil, gateway.WithQuery(q))
	if err != nil {
		return models.Page[models.Article]{}, err
	}

	var pd pagedData
	if err := json.Unmarshal(data, &pd); err != nil {
		return models.Page[models.Article]{}, fmt.Errorf("decode archive search: %w", err)
	}
	list := transform.ArticlesJSON(pd.List)

	s.mu.Lock()
	if page <= 1 {
		s.results = list
	} else {
		s.results = append(s.results, list...)
	}
	s.resultTotal = pd.Total
	s.mu.Unlock()

	return models.Page[models.Article]{List: list, Total: pd.Total}, nil
}

func (s *ArchiveStore) Archives() []models.ArchiveYear {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ArchiveYear(nil), s.archives...)
}

func (s *ArchiveStore) Years() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.years...)
}

func (s *ArchiveStore) Stats() models.ArchiveStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *ArchiveStore) CurrentYear() []models.ArchiveYear {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ArchiveYear(nil), s.currentYear...)
}

func (s *ArchiveStore) MonthArticles() []models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article(nil), s.monthArticles...)
}

func (s *ArchiveStore) SearchResults() ([]models.Article, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Article(nil), s.results...), s.resultTotal
}

func validateYear(year int) error {
	max := time.Now().Year() + 1
	if year < 1970 || year > max {
		return gateway.Validationf("invalid year %d: must be between 1970 and %d", year, max)
	}
	return nil
}
