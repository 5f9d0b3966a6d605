// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/community-board/internal/auth"
	"github.com/yourusername/community-board/internal/config"
	"github.com/yourusername/community-board/internal/post"
	"github.com/yourusername/community-board/internal/ratelimit"
	"github.com/yourusername/community-board/internal/store"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	// セッションクッキーを送らせるため資格情報付きリクエストを許可
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	router.Use(cors.New(corsConfig))

	// ストアの初期化。各ストアは1インスタンスをここで生成し、
	// コンポーネントへ注入する（グローバル状態は持たない）
	users := store.NewUserStore()
	posts := store.NewPostStore()
	comments := store.NewCommentStore()
	likes := store.NewLikeStore()

	if cfg.SeedDemoUsers {
		seedDemoUsers(users, cfg)
	}

	limiter, err := setupLimiter(cfg)
	if err != nil {
		log.Fatalf("Failed to set up rate limiter: %v", err)
	}

	// ルーティングの設定
	setupRoutes(router, cfg, limiter, users, posts, comments, likes)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "community-board-api",
		"version": "0.1.0",
	})
}

// setupLimiter はレート制限カウンタを用意します。
// Redis URL が設定されていればプロセス間で共有できる Redis カウンタを、
// 未設定ならプロセス内メモリのカウンタを使います。
func setupLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.RateLimitRedisURL == "" {
		return ratelimit.NewMemoryLimiter(), nil
	}
	opt, err := redis.ParseURL(cfg.RateLimitRedisURL)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewRedisLimiter(redis.NewClient(opt)), nil
}

// seedDemoUsers は動作確認用のユーザーを投入します（開発環境のみ）。
func seedDemoUsers(users *store.UserStore, cfg *config.Config) {
	users.Seed(
		store.User{
			Email:        "test@startupcode.kr",
			Password:     "password",
			Nickname:     "startup",
			ProfileImage: cfg.DefaultProfileImage,
			Status:       store.StatusActive,
		},
		store.User{
			Email:    "bad@user.com",
			Password: "password",
			Nickname: "badguy",
			Status:   store.StatusSuspended,
		},
	)
	log.Printf("Seeded demo users (active + suspended)")
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	limiter ratelimit.Limiter,
	users *store.UserStore,
	posts *store.PostStore,
	comments *store.CommentStore,
	likes *store.LikeStore,
) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	authManager := auth.NewManager(cfg, users)
	postHandler := post.NewHandler(cfg, users, posts, comments, likes)

	api := router.Group("/api/v1")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup",
				ratelimit.PerMinute(limiter, "signup", cfg.SignupPerMinute),
				authManager.Signup,
			)
			authRoutes.POST("/login",
				ratelimit.PerMinute(limiter, "login", cfg.LoginPerMinute),
				authManager.Login,
			)
			authRoutes.GET("/me",
				ratelimit.PerMinute(limiter, "me", cfg.MeCheckPerMinute),
				authManager.RequireLogin(),
				authManager.Me,
			)
		}

		postRoutes := api.Group("/posts")
		{
			// 閲覧系はログイン不要
			postRoutes.GET("", postHandler.List)
			postRoutes.GET("/:id", postHandler.Detail)

			// 変更系はセッション必須。所有権チェックはハンドラー内で行う
			postRoutes.POST("", authManager.RequireLogin(), postHandler.Create)
			postRoutes.PUT("/:id", authManager.RequireLogin(), postHandler.Update)
			postRoutes.DELETE("/:id", authManager.RequireLogin(), postHandler.Delete)

			postRoutes.POST("/:id/comments", authManager.RequireLogin(), postHandler.CreateComment)
			postRoutes.PUT("/:id/comments/:commentId", authManager.RequireLogin(), postHandler.UpdateComment)
			postRoutes.DELETE("/:id/comments/:commentId", authManager.RequireLogin(), postHandler.DeleteComment)

			postRoutes.POST("/:id/like", authManager.RequireLogin(), postHandler.Like)
			postRoutes.DELETE("/:id/like", authManager.RequireLogin(), postHandler.Unlike)
		}
	}
}
