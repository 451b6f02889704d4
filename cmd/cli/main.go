// bloghub is the command-line front end over the client state layer: it
// wires config, durable storage, the request gateway, the session manager
// and the entity stores, then maps subcommands onto store operations.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"bloghub/internal/gateway"
	"bloghub/internal/guard"
	"bloghub/internal/session"
	"bloghub/internal/store"
	"bloghub/pkg/config"
	"bloghub/pkg/storage"
)

type app struct {
	session    *session.Manager
	guard      *guard.Guard
	articles   *store.ArticleStore
	categories *store.CategoryStore
	tags       *store.TagStore
	comments   *store.CommentStore
	archives   *store.ArchiveStore
	users      *store.UserStore
}

func main() {
	global := flag.NewFlagSet("bloghub", flag.ExitOnError)
	api := global.String("api", "", "API base URL (overrides BLOGHUB_API_BASE)")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	if *api != "" {
		cfg.BaseURL = *api
	}

	a := buildApp(cfg)

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	switch cmd {
	case "auth":
		a.handleAuth(ctx, sub, args[2:])
	case "articles":
		a.handleArticles(ctx, sub, args[2:])
	case "categories":
		a.handleCategories(ctx, sub, args[2:])
	case "tags":
		a.handleTags(ctx, sub, args[2:])
	case "comments":
		a.handleComments(ctx, sub, args[2:])
	case "archives":
		a.handleArchives(ctx, sub, args[2:])
	case "profile":
		a.handleProfile(ctx, sub, args[2:])
	case "routes":
		a.handleRoutes(sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func buildApp(cfg config.Config) *app {
	var (
		st  storage.Store
		err error
	)
	switch cfg.StorageBackend {
	case "sqlite":
		st, err = storage.OpenSQLite(cfg.StoragePath)
	default:
		st, err = storage.OpenFile(cfg.StoragePath)
	}
	if err != nil {
		log.Fatalf("open session storage: %v", err)
	}

	gw := gateway.New(cfg, gateway.LogNotifier{}, gateway.LogNavigator{})
	sess := session.New(gw, st, cfg)
	sess.Restore()

	g := guard.New(sess, gw.Notifier())
	g.Register(
		guard.Route{Path: "/", Name: "home"},
		guard.Route{Path: "/article/:id", Name: "article-detail"},
		guard.Route{Path: "/archives", Name: "archives"},
		guard.Route{Path: "/write", Name: "write", RequiresAuth: true},
		guard.Route{Path: "/article/edit/:id", Name: "article-edit", RequiresAuth: true},
		guard.Route{Path: "/drafts", Name: "drafts", RequiresAuth: true},
		guard.Route{Path: "/profile", Name: "profile", RequiresAuth: true},
	)

	return &app{
		session:    sess,
		guard:      g,
		articles:   store.NewArticleStore(gw),
		categories: store.NewCategoryStore(gw),
		tags:       store.NewTagStore(gw),
		comments:   store.NewCommentStore(gw),
		archives:   store.NewArchiveStore(gw),
		users:      store.NewUserStore(gw, sess),
	}
}

// --- auth ---

func (a *app) handleAuth(ctx context.Context, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *username == "" || *password == "" {
			log.Fatal("username and password are required")
		}
		user, err := a.session.Login(ctx, *username, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		fmt.Printf("✅ logged in as %s\n", user.Username)
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)
		if *username == "" || *password == "" {
			log.Fatal("username and password are required")
		}
		user, err := a.session.Register(ctx, *username, *email, *password)
		if err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if a.session.IsLoggedIn() {
			fmt.Printf("✅ registered and logged in as %s\n", user.Username)
		} else {
			fmt.Printf("✅ registered %s, log in to continue\n", user.Username)
		}
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("✅ logged out")
	case "whoami":
		if user, ok := a.session.CurrentUser(); ok {
			printJSON(user)
			return
		}
		fmt.Println("not logged in")
	case "refresh":
		user, err := a.session.FetchCurrentUser(ctx)
		if err != nil {
			log.Fatalf("refresh failed: %v", err)
		}
		printJSON(user)
	case "change-password":
		fs := flag.NewFlagSet("auth change-password", flag.ExitOnError)
		oldPw := fs.String("old", "", "current password")
		newPw := fs.String("new", "", "new password")
		_ = fs.Parse(args)
		if *oldPw == "" || *newPw == "" {
			log.Fatal("old and new passwords are required")
		}
		if err := a.session.ChangePassword(ctx, *oldPw, *newPw); err != nil {
			log.Fatalf("change password failed: %v", err)
		}
		fmt.Println("✅ password changed")
	default:
		log.Fatal("usage: bloghub auth <login|register|logout|whoami|refresh|change-password>")
	}
}

// --- articles ---

func (a *app) handleArticles(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("articles list", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 10, "page size")
		sortBy := fs.String("sort", "createTime", "sort field")
		tagID := fs.Int64("tag", 0, "filter by tag id")
		categoryID := fs.Int64("category", 0, "filter by category id")
		_ = fs.Parse(args)
		pageData, err := a.articles.FetchList(ctx, store.ArticleFilter{
			Page: *page, Size: *size, Sort: *sortBy, TagID: *tagID, CategoryID: *categoryID,
		})
		if err != nil {
			log.Fatalf("list articles failed: %v", err)
		}
		printJSON(pageData)
	case "get":
		id := mustID(args, "articles get")
		article, err := a.articles.FetchOne(ctx, id)
		if err != nil {
			log.Fatalf("get article failed: %v", err)
		}
		printJSON(article)
	case "create":
		fs := flag.NewFlagSet("articles create", flag.ExitOnError)
		title := fs.String("title", "", "title")
		content := fs.String("content", "", "content")
		summary := fs.String("summary", "", "summary")
		tags := fs.String("tags", "", "comma-separated tags")
		categoryID := fs.Int64("category", 0, "category id")
		draft := fs.Bool("draft", false, "save as draft")
		_ = fs.Parse(args)
		if *title == "" {
			log.Fatal("title is required")
		}
		status := 1
		if *draft {
			status = 0
		}
		article, err := a.articles.Create(ctx, map[string]any{
			"title":      *title,
			"content":    *content,
			"summary":    *summary,
			"tags":       *tags,
			"categoryId": *categoryID,
			"status":     status,
		})
		if err != nil {
			log.Fatalf("create article failed: %v", err)
		}
		fmt.Printf("✅ created article %d\n", article.ID)
	case "update":
		fs := flag.NewFlagSet("articles update", flag.ExitOnError)
		id := fs.Int64("id", 0, "article id")
		title := fs.String("title", "", "new title")
		content := fs.String("content", "", "new content")
		tags := fs.String("tags", "", "new comma-separated tags")
		_ = fs.Parse(args)
		if *id == 0 {
			log.Fatal("-id is required")
		}
		var patch store.ArticlePatch
		if *title != "" {
			patch.Title = title
		}
		if *content != "" {
			patch.Content = content
		}
		if *tags != "" {
			patch.Tags = tags
		}
		article, err := a.articles.Update(ctx, *id, patch)
		if err != nil {
			log.Fatalf("update article failed: %v", err)
		}
		printJSON(article)
	case "delete":
		id := mustID(args, "articles delete")
		if err := a.articles.Remove(ctx, id); err != nil {
			log.Fatalf("delete article failed: %v", err)
		}
		fmt.Println("✅ deleted")
	case "like", "unlike":
		id := mustID(args, "articles "+sub)
		if err := a.articles.ToggleLike(ctx, id, sub == "like"); err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		fmt.Println("✅ done")
	case "view":
		id := mustID(args, "articles view")
		if err := a.articles.IncrementView(ctx, id); err != nil {
			log.Fatalf("view failed: %v", err)
		}
		fmt.Println("✅ view recorded")
	case "hot", "newest":
		fs := flag.NewFlagSet("articles "+sub, flag.ExitOnError)
		limit := fs.Int("limit", 10, "max articles")
		_ = fs.Parse(args)
		fetch := a.articles.FetchHot
		if sub == "newest" {
			fetch = a.articles.FetchNewest
		}
		list, err := fetch(ctx, *limit)
		if err != nil {
			log.Fatalf("%s articles failed: %v", sub, err)
		}
		printJSON(list)
	case "search":
		fs := flag.NewFlagSet("articles search", flag.ExitOnError)
		q := fs.String("q", "", "keyword")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 10, "page size")
		_ = fs.Parse(args)
		if *q == "" {
			log.Fatal("-q is required")
		}
		pageData, err := a.articles.Search(ctx, *q, *page, *size)
		if err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(pageData)
	case "mine", "drafts":
		fs := flag.NewFlagSet("articles "+sub, flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 10, "page size")
		_ = fs.Parse(args)
		fetch := a.articles.FetchMine
		if sub == "drafts" {
			fetch = a.articles.FetchMyDrafts
		}
		pageData, err := fetch(ctx, *page, *size)
		if err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		printJSON(pageData)
	case "publish":
		id := mustID(args, "articles publish")
		article, err := a.articles.PublishDraft(ctx, id)
		if err != nil {
			log.Fatalf("publish failed: %v", err)
		}
		fmt.Printf("✅ published article %d\n", article.ID)
	case "delete-draft":
		id := mustID(args, "articles delete-draft")
		if err := a.articles.DeleteDraft(ctx, id); err != nil {
			log.Fatalf("delete draft failed: %v", err)
		}
		fmt.Println("✅ draft deleted")
	default:
		log.Fatal("usage: bloghub articles <list|get|create|update|delete|like|unlike|view|hot|newest|search|mine|drafts|publish|delete-draft>")
	}
}

// --- categories ---

func (a *app) handleCategories(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		list, err := a.categories.FetchList(ctx)
		if err != nil {
			log.Fatalf("list categories failed: %v", err)
		}
		printJSON(list)
	case "get":
		id := mustID(args, "categories get")
		cat, err := a.categories.FetchOne(ctx, id)
		if err != nil {
			log.Fatalf("get category failed: %v", err)
		}
		printJSON(cat)
	case "articles":
		fs := flag.NewFlagSet("categories articles", flag.ExitOnError)
		id := fs.Int64("id", 0, "category id")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 10, "page size")
		_ = fs.Parse(args)
		if *id == 0 {
			log.Fatal("-id is required")
		}
		pageData, err := a.categories.FetchArticles(ctx, *id, *page, *size)
		if err != nil {
			log.Fatalf("category articles failed: %v", err)
		}
		printJSON(pageData)
	case "create":
		fs := flag.NewFlagSet("categories create", flag.ExitOnError)
		name := fs.String("name", "", "category name")
		desc := fs.String("desc", "", "description")
		_ = fs.Parse(args)
		if *name == "" {
			log.Fatal("-name is required")
		}
		cat, err := a.categories.Create(ctx, map[string]any{"name": *name, "description": *desc})
		if err != nil {
			log.Fatalf("create category failed: %v", err)
		}
		fmt.Printf("✅ created category %d\n", cat.ID)
	case "update":
		fs := flag.NewFlagSet("categories update", flag.ExitOnError)
		id := fs.Int64("id", 0, "category id")
		name := fs.String("name", "", "new name")
		_ = fs.Parse(args)
		if *id == 0 || *name == "" {
			log.Fatal("-id and -name are required")
		}
		cat, err := a.categories.Update(ctx, *id, map[string]any{"name": *name})
		if err != nil {
			log.Fatalf("update category failed: %v", err)
		}
		printJSON(cat)
	case "delete":
		id := mustID(args, "categories delete")
		if err := a.categories.Remove(ctx, id); err != nil {
			log.Fatalf("delete category failed: %v", err)
		}
		fmt.Println("✅ deleted")
	default:
		log.Fatal("usage: bloghub categories <list|get|articles|create|update|delete>")
	}
}

// --- tags ---

func (a *app) handleTags(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		list, err := a.tags.FetchList(ctx)
		if err != nil {
			log.Fatalf("list tags failed: %v", err)
		}
		printJSON(list)
	case "cloud":
		list, err := a.tags.FetchCloud(ctx)
		if err != nil {
			log.Fatalf("tag cloud failed: %v", err)
		}
		printJSON(list)
	case "get":
		id := mustID(args, "tags get")
		tag, err := a.tags.FetchOne(ctx, id)
		if err != nil {
			log.Fatalf("get tag failed: %v", err)
		}
		printJSON(tag)
	case "search":
		fs := flag.NewFlagSet("tags search", flag.ExitOnError)
		name := fs.String("name", "", "name fragment")
		_ = fs.Parse(args)
		list, err := a.tags.SearchByName(ctx, *name)
		if err != nil {
			log.Fatalf("search tags failed: %v", err)
		}
		printJSON(list)
	case "articles":
		fs := flag.NewFlagSet("tags articles", flag.ExitOnError)
		id := fs.Int64("id", 0, "tag id")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 10, "page size")
		_ = fs.Parse(args)
		if *id == 0 {
			log.Fatal("-id is required")
		}
		pageData, err := a.tags.FetchArticles(ctx, *id, *page, *size)
		if err != nil {
			log.Fatalf("tag articles failed: %v", err)
		}
		printJSON(pageData)
	case "create":
		fs := flag.NewFlagSet("tags create", flag.ExitOnError)
		name := fs.String("name", "", "tag name")
		_ = fs.Parse(args)
		if *name == "" {
			log.Fatal("-name is required")
		}
		tag, err := a.tags.Create(ctx, *name)
		if err != nil {
			log.Fatalf("create tag failed: %v", err)
		}
		fmt.Printf("✅ created tag %d\n", tag.ID)
	case "update":
		fs := flag.NewFlagSet("tags update", flag.ExitOnError)
		id := fs.Int64("id", 0, "tag id")
		name := fs.String("name", "", "new name")
		_ = fs.Parse(args)
		if *id == 0 || *name == "" {
			log.Fatal("-id and -name are required")
		}
		tag, err := a.tags.Update(ctx, *id, *name)
		if err != nil {
			log.Fatalf("update tag failed: %v", err)
		}
		printJSON(tag)
	case "delete":
		id := mustID(args, "tags delete")
		if err := a.tags.Remove(ctx, id); err != nil {
			log.Fatalf("delete tag failed: %v", err)
		}
		fmt.Println("✅ deleted")
	default:
		log.Fatal("usage: bloghub tags <list|cloud|get|search|articles|create|update|delete>")
	}
}

// --- comments ---

func (a *app) handleComments(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		fs := flag.NewFlagSet("comments list", flag.ExitOnError)
		articleID := fs.Int64("article", 0, "article id")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 20, "page size")
		_ = fs.Parse(args)
		if *articleID == 0 {
			log.Fatal("-article is required")
		}
		pageData, err := a.comments.FetchForArticle(ctx, *articleID, *page, *size)
		if err != nil {
			log.Fatalf("list comments failed: %v", err)
		}
		printJSON(pageData)
	case "create":
		fs := flag.NewFlagSet("comments create", flag.ExitOnError)
		articleID := fs.Int64("article", 0, "article id")
		content := fs.String("content", "", "comment text")
		parentID := fs.Int64("parent", 0, "parent comment id for replies")
		_ = fs.Parse(args)
		if *articleID == 0 || *content == "" {
			log.Fatal("-article and -content are required")
		}
		payload := map[string]any{"articleId": *articleID, "content": *content}
		if *parentID != 0 {
			payload["parentId"] = *parentID
		}
		comment, err := a.comments.Create(ctx, payload)
		if err != nil {
			log.Fatalf("create comment failed: %v", err)
		}
		fmt.Printf("✅ commented (%d)\n", comment.ID)
	case "delete":
		id := mustID(args, "comments delete")
		if err := a.comments.Remove(ctx, id); err != nil {
			log.Fatalf("delete comment failed: %v", err)
		}
		fmt.Println("✅ deleted")
	case "like", "unlike":
		id := mustID(args, "comments "+sub)
		if err := a.comments.ToggleLike(ctx, id, sub == "like"); err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		fmt.Println("✅ done")
	default:
		log.Fatal("usage: bloghub comments <list|create|delete|like|unlike>")
	}
}

// --- archives ---

func (a *app) handleArchives(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		list, err := a.archives.FetchAll(ctx)
		if err != nil {
			log.Fatalf("archives failed: %v", err)
		}
		printJSON(list)
	case "stats":
		stats, err := a.archives.FetchStats(ctx)
		if err != nil {
			log.Fatalf("archive stats failed: %v", err)
		}
		printJSON(stats)
	case "years":
		years, err := a.archives.FetchYears(ctx)
		if err != nil {
			log.Fatalf("archive years failed: %v", err)
		}
		printJSON(years)
	case "year":
		fs := flag.NewFlagSet("archives year", flag.ExitOnError)
		year := fs.Int("year", 0, "year")
		_ = fs.Parse(args)
		list, err := a.archives.FetchByYear(ctx, *year)
		if err != nil {
			log.Fatalf("archives by year failed: %v", err)
		}
		printJSON(list)
	case "month":
		fs := flag.NewFlagSet("archives month", flag.ExitOnError)
		year := fs.Int("year", 0, "year")
		month := fs.Int("month", 0, "month 1-12")
		_ = fs.Parse(args)
		list, err := a.archives.FetchMonth(ctx, *year, *month)
		if err != nil {
			log.Fatalf("archive month failed: %v", err)
		}
		printJSON(list)
	case "search":
		fs := flag.NewFlagSet("archives search", flag.ExitOnError)
		q := fs.String("q", "", "keyword")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 20, "page size")
		_ = fs.Parse(args)
		pageData, err := a.archives.Search(ctx, *q, *page, *size)
		if err != nil {
			log.Fatalf("archive search failed: %v", err)
		}
		printJSON(pageData)
	default:
		log.Fatal("usage: bloghub archives <list|stats|years|year|month|search>")
	}
}

// --- profile ---

func (a *app) handleProfile(ctx context.Context, sub string, args []string) {
	switch sub {
	case "show":
		id := mustID(args, "profile show")
		user, err := a.users.FetchInfo(ctx, id)
		if err != nil {
			log.Fatalf("fetch profile failed: %v", err)
		}
		printJSON(user)
	case "update":
		fs := flag.NewFlagSet("profile update", flag.ExitOnError)
		email := fs.String("email", "", "new email")
		bio := fs.String("bio", "", "new bio")
		_ = fs.Parse(args)
		patch := map[string]any{}
		if *email != "" {
			patch["email"] = *email
		}
		if *bio != "" {
			patch["bio"] = *bio
		}
		if len(patch) == 0 {
			log.Fatal("nothing to update")
		}
		user, err := a.session.UpdateProfile(ctx, patch)
		if err != nil {
			log.Fatalf("update profile failed: %v", err)
		}
		printJSON(user)
	case "avatar":
		fs := flag.NewFlagSet("profile avatar", flag.ExitOnError)
		path := fs.String("file", "", "image file path")
		_ = fs.Parse(args)
		if *path == "" {
			log.Fatal("-file is required")
		}
		f, err := os.Open(*path)
		if err != nil {
			log.Fatalf("open avatar file: %v", err)
		}
		defer f.Close()
		avatar, err := a.users.UploadAvatar(ctx, f.Name(), f)
		if err != nil {
			log.Fatalf("upload avatar failed: %v", err)
		}
		fmt.Printf("✅ avatar updated: %s\n", avatar)
	case "stats":
		id := mustID(args, "profile stats")
		stats, err := a.users.FetchStats(ctx, id)
		if err != nil {
			log.Fatalf("fetch stats failed: %v", err)
		}
		printJSON(stats)
	case "articles", "liked":
		fs := flag.NewFlagSet("profile "+sub, flag.ExitOnError)
		id := fs.Int64("id", 0, "user id")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 10, "page size")
		_ = fs.Parse(args)
		if *id == 0 {
			log.Fatal("-id is required")
		}
		fetch := a.users.FetchArticles
		if sub == "liked" {
			fetch = a.users.FetchLikedArticles
		}
		pageData, err := fetch(ctx, *id, *page, *size)
		if err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		printJSON(pageData)
	case "history":
		fs := flag.NewFlagSet("profile history", flag.ExitOnError)
		id := fs.Int64("id", 0, "user id")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 10, "page size")
		_ = fs.Parse(args)
		if *id == 0 {
			log.Fatal("-id is required")
		}
		pageData, err := a.users.FetchLoginHistory(ctx, *id, *page, *size)
		if err != nil {
			log.Fatalf("login history failed: %v", err)
		}
		printJSON(pageData)
	default:
		log.Fatal("usage: bloghub profile <show|update|avatar|stats|articles|liked|history>")
	}
}

// --- routes ---

func (a *app) handleRoutes(sub string, args []string) {
	switch sub {
	case "check":
		fs := flag.NewFlagSet("routes check", flag.ExitOnError)
		path := fs.String("path", "/", "navigation target")
		_ = fs.Parse(args)
		printJSON(a.guard.Resolve(*path))
	default:
		log.Fatal("usage: bloghub routes check -path </some/path>")
	}
}

// --- helpers ---

func mustID(args []string, usage string) int64 {
	fs := flag.NewFlagSet(usage, flag.ExitOnError)
	id := fs.Int64("id", 0, "entity id")
	_ = fs.Parse(args)
	if *id == 0 {
		log.Fatalf("usage: bloghub %s -id <n>", usage)
	}
	return *id
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(data))
}

func printUsage() {
	fmt.Println(`bloghub - blog API client

usage: bloghub [-api URL] <command> <subcommand> [flags]

commands:
  auth        login, register, logout, whoami, refresh, change-password
  articles    list, get, create, update, delete, like, unlike, view,
              hot, newest, search, mine, drafts, publish, delete-draft
  categories  list, get, articles, create, update, delete
  tags        list, cloud, get, search, articles, create, update, delete
  comments    list, create, delete, like, unlike
  archives    list, stats, years, year, month, search
  profile     show, update, avatar, stats, articles, liked, history
  routes      check

environment:
  BLOGHUB_API_BASE           API base URL (default http://localhost:8080)
  BLOGHUB_CREDENTIAL_MODE    bearer or cookie (default bearer)
  BLOGHUB_STORAGE            file or sqlite (default file)
  BLOGHUB_STORAGE_PATH       session storage location (~/.bloghub/session.json)`)
}
