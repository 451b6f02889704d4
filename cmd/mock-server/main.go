// mock-server is a self-contained blog API for developing against the
// bloghub client without a real backend. All data lives in memory and is
// re-seeded on every start.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	secret := flag.String("secret", "mock-secret", "jwt signing secret")
	flag.Parse()

	srv := newMockServer([]byte(*secret))
	router := srv.router()

	httpSrv := &http.Server{
		Addr:    *addr,
		Handler: router,
	}

	go func() {
		log.Printf("mock blog API listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("shutdown signal received: %s", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// --- envelope helpers ---

func okData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "success", "data": data})
}

func failCode(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, gin.H{"code": code, "message": msg})
}

func httpFail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"code": status, "message": msg})
}

// --- token service, HS256 only ---

type tokenService struct {
	secret []byte
}

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (ts tokenService) sign(id int64, username string) (string, error) {
	claims := tokenClaims{
		UserID:   id,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bloghub-mock",
			Subject:   strconv.FormatInt(id, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}

func (ts tokenService) parse(tokenString string) (*tokenClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := tok.Claims.(*tokenClaims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// --- records (wire shape, matching what the client's transforms expect) ---

type userRec struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar"`
	Bio          string `json:"bio"`
	Role         int    `json:"role"`
	Status       int    `json:"status"`
	CreateTime   string `json:"createTime"`
	passwordHash string
}

type articleRec struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Summary      string `json:"summary"`
	CoverImage   string `json:"coverImage,omitempty"`
	Status       int    `json:"status"`
	ViewCount    int    `json:"viewCount"`
	LikeCount    int    `json:"likeCount"`
	CommentCount int    `json:"commentCount"`
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	UserID       int64  `json:"userId"`
	AuthorName   string `json:"authorName"`
	Tags         string `json:"tags"`
	IsTop        int    `json:"isTop"`
	AllowComment int    `json:"allowComment"`
	IsLiked      int    `json:"isLiked"`
	CreateTime   string `json:"createTime"`
	UpdateTime   string `json:"updateTime"`
	PublishTime  string `json:"publishTime,omitempty"`
}

type categoryRec struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	OrderNum     int    `json:"orderNum"`
	ArticleCount int    `json:"articleCount"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
}

type tagRec struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ArticleCount int    `json:"articleCount"`
}

type commentRec struct {
	ID            int64        `json:"id"`
	Content       string       `json:"content"`
	ArticleID     int64        `json:"articleId"`
	UserID        int64        `json:"userId"`
	ParentID      int64        `json:"parentId"`
	LikeCount     int          `json:"likeCount"`
	IsLiked       int          `json:"isLiked"`
	Username      string       `json:"username"`
	CreateTime    string       `json:"createTime"`
	ChildComments []commentRec `json:"childComments"`
}

// mockServer is the whole backend: flat slices under one mutex-free model
// (gin handlers run concurrently, so a single data guard would be needed for
// production use; the mock accepts last-writer-wins on its dev-only data).
type mockServer struct {
	tokens tokenService

	users      []userRec
	articles   []articleRec
	categories []categoryRec
	tags       []tagRec
	comments   []commentRec
	nextID     int64
}

func newMockServer(secret []byte) *mockServer {
	s := &mockServer{tokens: tokenService{secret: secret}, nextID: 100}
	s.seed()
	return s
}

func (s *mockServer) seed() {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	now := time.Now().Format("2006-01-02T15:04:05")

	s.users = []userRec{
		{ID: 1, Username: "admin", Email: "admin@example.com", Role: 1, Status: 1, CreateTime: now, passwordHash: string(hash)},
		{ID: 2, Username: "reader", Email: "reader@example.com", Status: 1, CreateTime: now, passwordHash: string(hash)},
	}
	s.categories = []categoryRec{
		{ID: 1, Name: "tech", Description: "technical notes", OrderNum: 1, ArticleCount: 2},
		{ID: 2, Name: "life", OrderNum: 2, ArticleCount: 1, Icon: "sun", Color: "#67c23a"},
	}
	s.tags = []tagRec{
		{ID: 1, Name: "go", ArticleCount: 2},
		{ID: 2, Name: "web", ArticleCount: 1},
	}
	s.articles = []articleRec{
		{ID: 1, Title: "Hello bloghub", Content: "first post", Summary: "first", Status: 1, ViewCount: 12, LikeCount: 3, CommentCount: 1, CategoryID: 1, CategoryName: "tech", UserID: 1, AuthorName: "admin", Tags: "go,web", IsTop: 1, AllowComment: 1, CreateTime: "2024-03-01T09:00:00"},
		{ID: 2, Title: "Archive internals", Content: "yearly projections", Status: 1, ViewCount: 7, CategoryID: 1, CategoryName: "tech", UserID: 1, AuthorName: "admin", Tags: "go", AllowComment: 1, CreateTime: "2024-05-20T12:00:00"},
		{ID: 3, Title: "Unfinished thoughts", Content: "wip", Status: 0, CategoryID: 2, CategoryName: "life", UserID: 1, AuthorName: "admin", AllowComment: 1, CreateTime: now},
	}
	s.comments = []commentRec{
		{ID: 1, Content: "nice one", ArticleID: 1, UserID: 2, Username: "reader", LikeCount: 1, CreateTime: "2024-03-02T10:00:00", ChildComments: []commentRec{
			{ID: 2, Content: "thanks", ArticleID: 1, UserID: 1, ParentID: 1, Username: "admin", CreateTime: "2024-03-02T11:00:00", ChildComments: []commentRec{}},
		}},
	}
}

func (s *mockServer) id() int64 {
	s.nextID++
	return s.nextID
}

// --- auth middleware ---

func (s *mockServer) authRequired(c *gin.Context) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		httpFail(c, http.StatusUnauthorized, "missing bearer token")
		c.Abort()
		return
	}
	claims, err := s.tokens.parse(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		httpFail(c, http.StatusUnauthorized, "invalid token")
		c.Abort()
		return
	}
	c.Set("userId", claims.UserID)
	c.Next()
}

func currentUserID(c *gin.Context) int64 {
	v, _ := c.Get("userId")
	id, _ := v.(int64)
	return id
}

// --- router ---

func (s *mockServer) router() *gin.Engine {
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	user := router.Group("/api/user")
	{
		user.POST("/register", s.register)
		user.POST("/login", s.login)
		user.POST("/logout", s.logout)
		user.GET("/info", s.authRequired, s.currentUserInfo)
		user.POST("/change-password", s.authRequired, s.changePassword)
		user.PUT("/profile", s.authRequired, s.updateProfile)
		user.POST("/avatar", s.authRequired, s.uploadAvatar)
		user.GET("/info/:id", s.userInfo)
		user.PUT("/info/:id", s.authRequired, s.updateUserInfo)
		user.GET("/articles/:id", s.userArticles)
		user.GET("/liked/:id", s.userLiked)
		user.GET("/stats/:id", s.userStats)
		user.GET("/history/:id", s.authRequired, s.userHistory)
	}

	articles := router.Group("/api/articles")
	{
		articles.GET("", s.listArticles)
		articles.GET("/hot", s.hotArticles)
		articles.GET("/newest", s.newestArticles)
		articles.GET("/search", s.searchArticles)
		articles.GET("/my", s.authRequired, s.myArticles)
		articles.GET("/my-drafts", s.authRequired, s.myDrafts)
		articles.GET("/:id", s.getArticle)
		articles.POST("", s.authRequired, s.createArticle)
		articles.PUT("/:id", s.authRequired, s.updateArticle)
		articles.DELETE("/:id", s.authRequired, s.deleteArticle)
		articles.DELETE("/draft/:id", s.authRequired, s.deleteArticle)
		articles.POST("/:id/like", s.authRequired, s.likeArticle)
		articles.POST("/:id/view", s.viewArticle)
		articles.POST("/:id/publish", s.authRequired, s.publishArticle)
	}

	categories := router.Group("/api/categories")
	{
		categories.GET("", s.listCategories)
		categories.GET("/:id", s.getCategory)
		categories.GET("/:id/articles", s.categoryArticles)
		categories.POST("", s.authRequired, s.createCategory)
		categories.PUT("/:id", s.authRequired, s.updateCategory)
		categories.DELETE("/:id", s.authRequired, s.deleteCategory)
	}

	tags := router.Group("/api/tags")
	{
		tags.GET("", s.listTags)
		tags.GET("/cloud", s.listTags)
		tags.GET("/search", s.searchTags)
		tags.GET("/:id", s.getTag)
		tags.GET("/:id/articles", s.tagArticles)
		tags.POST("", s.authRequired, s.createTag)
		tags.PUT("/:id", s.authRequired, s.updateTag)
		tags.DELETE("/:id", s.authRequired, s.deleteTag)
	}

	comments := router.Group("/api/comments")
	{
		comments.GET("/article/:id", s.articleComments)
		comments.POST("", s.authRequired, s.createComment)
		comments.DELETE("/:id", s.authRequired, s.deleteComment)
		comments.POST("/:id/like", s.authRequired, s.likeComment)
	}

	archives := router.Group("/api/archives")
	{
		archives.GET("", s.allArchives)
		archives.GET("/stats", s.archiveStats)
		archives.GET("/years", s.archiveYears)
		archives.GET("/year/:year", s.archivesByYear)
		archives.GET("/search", s.searchArchives)
		archives.GET("/:year/:month", s.archiveMonth)
	}

	return router
}

// --- auth handlers ---

type credentialsReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *mockServer) register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 {
		failCode(c, 400, "username too short")
		return
	}
	for _, u := range s.users {
		if u.Username == req.Username {
			failCode(c, 400, "username already exists")
			return
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpFail(c, http.StatusInternalServerError, "hash failed")
		return
	}
	u := userRec{
		ID:           s.id(),
		Username:     req.Username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Status:       1,
		CreateTime:   time.Now().Format("2006-01-02T15:04:05"),
		passwordHash: string(hash),
	}
	s.users = append(s.users, u)

	token, err := s.tokens.sign(u.ID, u.Username)
	if err != nil {
		httpFail(c, http.StatusInternalServerError, "token failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 201, "message": "registered", "data": gin.H{"token": token, "user": u}})
}

func (s *mockServer) login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	for _, u := range s.users {
		if u.Username == req.Username {
			if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(req.Password)) != nil {
				failCode(c, 400, "wrong password")
				return
			}
			token, err := s.tokens.sign(u.ID, u.Username)
			if err != nil {
				httpFail(c, http.StatusInternalServerError, "token failed")
				return
			}
			okData(c, gin.H{"token": token, "user": u})
			return
		}
	}
	failCode(c, 400, "user not found")
}

func (s *mockServer) logout(c *gin.Context) {
	okData(c, nil)
}

func (s *mockServer) currentUserInfo(c *gin.Context) {
	if u, ok := s.findUser(currentUserID(c)); ok {
		okData(c, u)
		return
	}
	httpFail(c, http.StatusNotFound, "user not found")
}

func (s *mockServer) changePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	id := currentUserID(c)
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(s.users[i].passwordHash), []byte(req.OldPassword)) != nil {
			failCode(c, 400, "wrong password")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			httpFail(c, http.StatusInternalServerError, "hash failed")
			return
		}
		s.users[i].passwordHash = string(hash)
		okData(c, nil)
		return
	}
	httpFail(c, http.StatusNotFound, "user not found")
}

func (s *mockServer) updateProfile(c *gin.Context) {
	s.patchUser(c, currentUserID(c))
}

func (s *mockServer) updateUserInfo(c *gin.Context) {
	s.patchUser(c, paramID(c, "id"))
}

func (s *mockServer) patchUser(c *gin.Context, id int64) {
	var patch struct {
		Email  *string `json:"email"`
		Bio    *string `json:"bio"`
		Avatar *string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&patch); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if patch.Email != nil {
			s.users[i].Email = *patch.Email
		}
		if patch.Bio != nil {
			s.users[i].Bio = *patch.Bio
		}
		if patch.Avatar != nil {
			s.users[i].Avatar = *patch.Avatar
		}
		okData(c, s.users[i])
		return
	}
	httpFail(c, http.StatusNotFound, "user not found")
}

// uploadAvatar answers with the bare body; upload endpoints carry no
// envelope.
func (s *mockServer) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing avatar file"})
		return
	}
	stored := fmt.Sprintf("avatar-%d-%s", currentUserID(c), file.Filename)
	for i := range s.users {
		if s.users[i].ID == currentUserID(c) {
			s.users[i].Avatar = stored
		}
	}
	c.JSON(http.StatusOK, gin.H{"avatar": stored})
}

func (s *mockServer) userInfo(c *gin.Context) {
	if u, ok := s.findUser(paramID(c, "id")); ok {
		okData(c, u)
		return
	}
	httpFail(c, http.StatusNotFound, "user not found")
}

func (s *mockServer) userArticles(c *gin.Context) {
	id := paramID(c, "id")
	s.pagedArticles(c, func(a articleRec) bool { return a.UserID == id && a.Status == 1 })
}

func (s *mockServer) userLiked(c *gin.Context) {
	s.pagedArticles(c, func(a articleRec) bool { return a.IsLiked == 1 })
}

func (s *mockServer) userStats(c *gin.Context) {
	id := paramID(c, "id")
	stats := gin.H{"articleCount": 0, "viewCount": 0, "likeCount": 0, "commentCount": 0}
	var articleCount, viewCount, likeCount int
	for _, a := range s.articles {
		if a.UserID == id && a.Status == 1 {
			articleCount++
			viewCount += a.ViewCount
			likeCount += a.LikeCount
		}
	}
	stats["articleCount"] = articleCount
	stats["viewCount"] = viewCount
	stats["likeCount"] = likeCount
	okData(c, stats)
}

func (s *mockServer) userHistory(c *gin.Context) {
	okData(c, gin.H{"list": []gin.H{
		{"id": 1, "userId": paramID(c, "id"), "ip": "127.0.0.1", "userAgent": "bloghub-cli", "loginTime": time.Now().Format("2006-01-02T15:04:05")},
	}, "total": 1})
}

// --- article handlers ---

func (s *mockServer) listArticles(c *gin.Context) {
	tagID := queryID(c, "tagId")
	categoryID := queryID(c, "categoryId")
	s.pagedArticles(c, func(a articleRec) bool {
		if a.Status != 1 {
			return false
		}
		if categoryID != 0 && a.CategoryID != categoryID {
			return false
		}
		if tagID != 0 && !s.articleHasTag(a, tagID) {
			return false
		}
		return true
	})
}

func (s *mockServer) hotArticles(c *gin.Context) {
	list := s.published()
	sort.SliceStable(list, func(i, j int) bool { return list[i].ViewCount > list[j].ViewCount })
	okData(c, limitList(list, queryInt(c, "limit", 10)))
}

func (s *mockServer) newestArticles(c *gin.Context) {
	list := s.published()
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreateTime > list[j].CreateTime })
	okData(c, limitList(list, queryInt(c, "limit", 10)))
}

func (s *mockServer) searchArticles(c *gin.Context) {
	keyword := strings.ToLower(c.Query("keyword"))
	s.pagedArticles(c, func(a articleRec) bool {
		if a.Status != 1 {
			return false
		}
		return strings.Contains(strings.ToLower(a.Title), keyword) ||
			strings.Contains(strings.ToLower(a.Content), keyword)
	})
}

func (s *mockServer) myArticles(c *gin.Context) {
	id := currentUserID(c)
	s.pagedArticles(c, func(a articleRec) bool { return a.UserID == id && a.Status == 1 })
}

func (s *mockServer) myDrafts(c *gin.Context) {
	id := currentUserID(c)
	s.pagedArticles(c, func(a articleRec) bool { return a.UserID == id && a.Status == 0 })
}

func (s *mockServer) getArticle(c *gin.Context) {
	id := paramID(c, "id")
	for _, a := range s.articles {
		if a.ID == id {
			okData(c, a)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "article not found")
}

func (s *mockServer) createArticle(c *gin.Context) {
	var a articleRec
	if err := c.ShouldBindJSON(&a); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	user, _ := s.findUser(currentUserID(c))
	a.ID = s.id()
	a.UserID = user.ID
	a.AuthorName = user.Username
	a.CreateTime = time.Now().Format("2006-01-02T15:04:05")
	a.UpdateTime = a.CreateTime
	if a.Status == 1 {
		a.PublishTime = a.CreateTime
	}
	s.articles = append(s.articles, a)
	okData(c, a)
}

func (s *mockServer) updateArticle(c *gin.Context) {
	id := paramID(c, "id")
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	for i := range s.articles {
		if s.articles[i].ID != id {
			continue
		}
		applyArticlePatch(&s.articles[i], patch)
		s.articles[i].UpdateTime = time.Now().Format("2006-01-02T15:04:05")
		okData(c, s.articles[i])
		return
	}
	httpFail(c, http.StatusNotFound, "article not found")
}

func applyArticlePatch(a *articleRec, patch map[string]any) {
	if v, ok := patch["title"].(string); ok {
		a.Title = v
	}
	if v, ok := patch["content"].(string); ok {
		a.Content = v
	}
	if v, ok := patch["summary"].(string); ok {
		a.Summary = v
	}
	if v, ok := patch["coverImage"].(string); ok {
		a.CoverImage = v
	}
	if v, ok := patch["tags"].(string); ok {
		a.Tags = v
	}
	if v, ok := patch["categoryId"].(float64); ok {
		a.CategoryID = int64(v)
	}
	if v, ok := patch["categoryName"].(string); ok {
		a.CategoryName = v
	}
	if v, ok := patch["status"].(float64); ok {
		a.Status = int(v)
	}
	if v, ok := patch["isTop"].(float64); ok {
		a.IsTop = int(v)
	}
	if v, ok := patch["allowComment"].(float64); ok {
		a.AllowComment = int(v)
	}
}

func (s *mockServer) deleteArticle(c *gin.Context) {
	id := paramID(c, "id")
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			okData(c, nil)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "article not found")
}

func (s *mockServer) likeArticle(c *gin.Context) {
	id := paramID(c, "id")
	var req struct {
		IsLike bool `json:"isLike"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	for i := range s.articles {
		if s.articles[i].ID != id {
			continue
		}
		if req.IsLike {
			s.articles[i].LikeCount++
			s.articles[i].IsLiked = 1
		} else if s.articles[i].LikeCount > 0 {
			s.articles[i].LikeCount--
			s.articles[i].IsLiked = 0
		}
		okData(c, nil)
		return
	}
	httpFail(c, http.StatusNotFound, "article not found")
}

func (s *mockServer) viewArticle(c *gin.Context) {
	id := paramID(c, "id")
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles[i].ViewCount++
			okData(c, nil)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "article not found")
}

func (s *mockServer) publishArticle(c *gin.Context) {
	id := paramID(c, "id")
	for i := range s.articles {
		if s.articles[i].ID != id {
			continue
		}
		s.articles[i].Status = 1
		s.articles[i].PublishTime = time.Now().Format("2006-01-02T15:04:05")
		okData(c, s.articles[i])
		return
	}
	httpFail(c, http.StatusNotFound, "article not found")
}

// --- category handlers ---

func (s *mockServer) listCategories(c *gin.Context) {
	okData(c, s.categories)
}

func (s *mockServer) getCategory(c *gin.Context) {
	id := paramID(c, "id")
	for _, cat := range s.categories {
		if cat.ID == id {
			okData(c, cat)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "category not found")
}

func (s *mockServer) categoryArticles(c *gin.Context) {
	id := paramID(c, "id")
	s.pagedArticles(c, func(a articleRec) bool { return a.Status == 1 && a.CategoryID == id })
}

func (s *mockServer) createCategory(c *gin.Context) {
	var cat categoryRec
	if err := c.ShouldBindJSON(&cat); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	cat.ID = s.id()
	s.categories = append(s.categories, cat)
	okData(c, cat)
}

func (s *mockServer) updateCategory(c *gin.Context) {
	id := paramID(c, "id")
	var patch categoryRec
	if err := c.ShouldBindJSON(&patch); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	for i := range s.categories {
		if s.categories[i].ID != id {
			continue
		}
		if patch.Name != "" {
			s.categories[i].Name = patch.Name
		}
		if patch.Description != "" {
			s.categories[i].Description = patch.Description
		}
		if patch.Icon != "" {
			s.categories[i].Icon = patch.Icon
		}
		if patch.Color != "" {
			s.categories[i].Color = patch.Color
		}
		okData(c, s.categories[i])
		return
	}
	httpFail(c, http.StatusNotFound, "category not found")
}

func (s *mockServer) deleteCategory(c *gin.Context) {
	id := paramID(c, "id")
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			okData(c, nil)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "category not found")
}

// --- tag handlers ---

func (s *mockServer) listTags(c *gin.Context) {
	okData(c, s.tags)
}

func (s *mockServer) searchTags(c *gin.Context) {
	name := strings.ToLower(c.Query("name"))
	matches := []tagRec{}
	for _, t := range s.tags {
		if strings.Contains(strings.ToLower(t.Name), name) {
			matches = append(matches, t)
		}
	}
	okData(c, matches)
}

func (s *mockServer) getTag(c *gin.Context) {
	id := paramID(c, "id")
	for _, t := range s.tags {
		if t.ID == id {
			okData(c, t)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "tag not found")
}

func (s *mockServer) tagArticles(c *gin.Context) {
	id := paramID(c, "id")
	s.pagedArticles(c, func(a articleRec) bool { return a.Status == 1 && s.articleHasTag(a, id) })
}

func (s *mockServer) createTag(c *gin.Context) {
	var t tagRec
	if err := c.ShouldBindJSON(&t); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	t.ID = s.id()
	s.tags = append(s.tags, t)
	okData(c, t)
}

func (s *mockServer) updateTag(c *gin.Context) {
	id := paramID(c, "id")
	var patch tagRec
	if err := c.ShouldBindJSON(&patch); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	for i := range s.tags {
		if s.tags[i].ID == id {
			s.tags[i].Name = patch.Name
			okData(c, s.tags[i])
			return
		}
	}
	httpFail(c, http.StatusNotFound, "tag not found")
}

func (s *mockServer) deleteTag(c *gin.Context) {
	id := paramID(c, "id")
	for i := range s.tags {
		if s.tags[i].ID == id {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			okData(c, nil)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "tag not found")
}

// --- comment handlers ---

func (s *mockServer) articleComments(c *gin.Context) {
	id := paramID(c, "id")
	matches := []commentRec{}
	for _, cm := range s.comments {
		if cm.ArticleID == id {
			matches = append(matches, cm)
		}
	}
	page, size := queryInt(c, "page", 1), queryInt(c, "size", 20)
	okData(c, gin.H{"list": pageSlice(matches, page, size), "total": len(matches)})
}

func (s *mockServer) createComment(c *gin.Context) {
	var cm commentRec
	if err := c.ShouldBindJSON(&cm); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	user, _ := s.findUser(currentUserID(c))
	cm.ID = s.id()
	cm.UserID = user.ID
	cm.Username = user.Username
	cm.CreateTime = time.Now().Format("2006-01-02T15:04:05")
	cm.ChildComments = []commentRec{}
	s.comments = append([]commentRec{cm}, s.comments...)
	okData(c, cm)
}

func (s *mockServer) deleteComment(c *gin.Context) {
	id := paramID(c, "id")
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			okData(c, nil)
			return
		}
	}
	httpFail(c, http.StatusNotFound, "comment not found")
}

func (s *mockServer) likeComment(c *gin.Context) {
	id := paramID(c, "id")
	var req struct {
		IsLike bool `json:"isLike"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		failCode(c, 400, "invalid json")
		return
	}
	var walk func(cs []commentRec) bool
	walk = func(cs []commentRec) bool {
		for i := range cs {
			if cs[i].ID == id {
				if req.IsLike {
					cs[i].LikeCount++
					cs[i].IsLiked = 1
				} else if cs[i].LikeCount > 0 {
					cs[i].LikeCount--
					cs[i].IsLiked = 0
				}
				return true
			}
			if walk(cs[i].ChildComments) {
				return true
			}
		}
		return false
	}
	if walk(s.comments) {
		okData(c, nil)
		return
	}
	httpFail(c, http.StatusNotFound, "comment not found")
}

// --- archive handlers ---

func (s *mockServer) allArchives(c *gin.Context) {
	okData(c, s.buildArchives(0))
}

func (s *mockServer) archivesByYear(c *gin.Context) {
	year, _ := strconv.Atoi(c.Param("year"))
	okData(c, s.buildArchives(year))
}

func (s *mockServer) archiveMonth(c *gin.Context) {
	year, _ := strconv.Atoi(c.Param("year"))
	month, _ := strconv.Atoi(c.Param("month"))
	matches := []articleRec{}
	for _, a := range s.published() {
		t, err := time.Parse("2006-01-02T15:04:05", a.CreateTime)
		if err == nil && t.Year() == year && int(t.Month()) == month {
			matches = append(matches, a)
		}
	}
	okData(c, matches)
}

func (s *mockServer) archiveYears(c *gin.Context) {
	seen := map[int]bool{}
	years := []int{}
	for _, a := range s.published() {
		if t, err := time.Parse("2006-01-02T15:04:05", a.CreateTime); err == nil && !seen[t.Year()] {
			seen[t.Year()] = true
			years = append(years, t.Year())
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	okData(c, years)
}

func (s *mockServer) archiveStats(c *gin.Context) {
	var views, likes int
	published := s.published()
	for _, a := range published {
		views += a.ViewCount
		likes += a.LikeCount
	}
	years := map[int]bool{}
	for _, a := range published {
		if t, err := time.Parse("2006-01-02T15:04:05", a.CreateTime); err == nil {
			years[t.Year()] = true
		}
	}
	okData(c, gin.H{
		"totalArticles": len(published),
		"totalViews":    views,
		"totalLikes":    likes,
		"yearCount":     len(years),
	})
}

func (s *mockServer) searchArchives(c *gin.Context) {
	s.searchArticles(c)
}

func (s *mockServer) buildArchives(onlyYear int) []gin.H {
	type bucket struct {
		months map[int][]articleRec
		views  int
		likes  int
	}
	byYear := map[int]*bucket{}
	for _, a := range s.published() {
		t, err := time.Parse("2006-01-02T15:04:05", a.CreateTime)
		if err != nil {
			continue
		}
		if onlyYear != 0 && t.Year() != onlyYear {
			continue
		}
		b := byYear[t.Year()]
		if b == nil {
			b = &bucket{months: map[int][]articleRec{}}
			byYear[t.Year()] = b
		}
		b.months[int(t.Month())] = append(b.months[int(t.Month())], a)
		b.views += a.ViewCount
		b.likes += a.LikeCount
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	out := []gin.H{}
	for _, y := range years {
		b := byYear[y]
		months := []gin.H{}
		total := 0
		for m := 12; m >= 1; m-- {
			if list, ok := b.months[m]; ok {
				months = append(months, gin.H{"month": m, "count": len(list), "articles": list})
				total += len(list)
			}
		}
		out = append(out, gin.H{
			"year":      y,
			"total":     total,
			"viewCount": b.views,
			"likeCount": b.likes,
			"months":    months,
		})
	}
	return out
}

// --- shared helpers ---

func (s *mockServer) findUser(id int64) (userRec, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return userRec{}, false
}

func (s *mockServer) published() []articleRec {
	out := []articleRec{}
	for _, a := range s.articles {
		if a.Status == 1 {
			out = append(out, a)
		}
	}
	return out
}

func (s *mockServer) articleHasTag(a articleRec, tagID int64) bool {
	var name string
	for _, t := range s.tags {
		if t.ID == tagID {
			name = t.Name
		}
	}
	if name == "" {
		return false
	}
	for _, part := range strings.Split(a.Tags, ",") {
		if strings.TrimSpace(part) == name {
			return true
		}
	}
	return false
}

func (s *mockServer) pagedArticles(c *gin.Context, keep func(articleRec) bool) {
	matches := []articleRec{}
	for _, a := range s.articles {
		if keep(a) {
			matches = append(matches, a)
		}
	}
	page, size := queryInt(c, "page", 1), queryInt(c, "size", 10)
	okData(c, gin.H{"list": pageSlice(matches, page, size), "total": len(matches)})
}

func pageSlice[T any](list []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	start := (page - 1) * size
	if start >= len(list) {
		return []T{}
	}
	end := start + size
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

func limitList(list []articleRec, n int) []articleRec {
	if n < 1 || n > len(list) {
		n = len(list)
	}
	return list[:n]
}

func paramID(c *gin.Context, name string) int64 {
	id, _ := strconv.ParseInt(c.Param(name), 10, 64)
	return id
}

func queryID(c *gin.Context, name string) int64 {
	id, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return id
}

func queryInt(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}
