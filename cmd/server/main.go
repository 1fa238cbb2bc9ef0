// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inkwell-blog/go-inkwell/internal/config"
	"github.com/inkwell-blog/go-inkwell/internal/domain"
	"github.com/inkwell-blog/go-inkwell/internal/handlers"
	"github.com/inkwell-blog/go-inkwell/internal/middleware"
	"github.com/inkwell-blog/go-inkwell/internal/ratelimit"
	chatrepo "github.com/inkwell-blog/go-inkwell/internal/repository/chat"
	messagerepo "github.com/inkwell-blog/go-inkwell/internal/repository/message"
	postrepo "github.com/inkwell-blog/go-inkwell/internal/repository/post"
	userrepo "github.com/inkwell-blog/go-inkwell/internal/repository/user"
	"github.com/inkwell-blog/go-inkwell/internal/services"
	"github.com/inkwell-blog/go-inkwell/internal/services/ai"
	"github.com/inkwell-blog/go-inkwell/internal/services/blog"
	chatservice "github.com/inkwell-blog/go-inkwell/internal/services/chat"
	"github.com/inkwell-blog/go-inkwell/internal/services/storage"
	"github.com/inkwell-blog/go-inkwell/internal/services/user_services"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "postgres" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
}

func main() {
	cfg := config.Load()

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Chat{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewUserRepository(db)
	postRepo := postrepo.NewPostRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.OpenAIAPIKey
	aiConfig.BaseURL = cfg.OpenAIBaseURL
	aiProvider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize AI provider: %v", err)
	}

	userService := user_services.NewUserService(userRepo, cfg.JWTSecretKey, services.NewLogger("auth"))

	blogConfig := blog.DefaultConfig()
	blogConfig.FeaturedCount = cfg.FeaturedPostCount
	blogService, err := blog.NewService(blogConfig, postRepo, services.NewLogger("blog"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Blog Service: %v", err)
	}

	chatConfig := chatservice.DefaultChatConfig()
	chatConfig.DefaultModel = cfg.DefaultChatModel
	chatService, err := chatservice.NewService(chatConfig, chatRepo, messageRepo, aiProvider, services.NewLogger("chat"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	// Uploads are optional; the rest of the app works without a bucket.
	var bucketService storage.BucketService
	if cfg.GCSBucket != "" {
		bucketService, err = storage.NewBucketService(
			context.Background(),
			storage.DefaultConfig(cfg.GCSBucket, cfg.GCSCredentialsFile),
			services.NewLogger("storage"),
		)
		if err != nil {
			log.Printf("WARN: Could not init bucket service, uploads disabled: %v", err)
			bucketService = nil
		}
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService)
	blogHandler := handlers.NewBlogHandler(blogService)
	chatHandler := handlers.NewChatHandler(chatService)
	uploadHandler := handlers.NewUploadHandler(bucketService)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(userService.AuthService)

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	loginLimit := middleware.RateLimitMiddleware(authLimiter, "login")
	loginReset := middleware.AuthSuccessMiddleware(authLimiter, "login")

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/api/auth/register", loginLimit(http.HandlerFunc(authHandler.Register))).Methods("POST")
	r.Handle("/api/auth/login", loginLimit(loginReset(http.HandlerFunc(authHandler.Login)))).Methods("POST")
	r.HandleFunc("/api/auth/logout", authHandler.Logout).Methods("POST")
	r.HandleFunc("/api/posts", blogHandler.ListPublicPosts).Methods("GET")
	r.HandleFunc("/api/posts/featured", blogHandler.FeaturedPosts).Methods("GET")
	r.HandleFunc("/api/posts/{slug:[a-z0-9-]+}", blogHandler.GetPublicPost).Methods("GET")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/dashboard/posts", blogHandler.ListMyPosts).Methods("GET")
	api.HandleFunc("/dashboard/posts", blogHandler.CreatePost).Methods("POST")
	api.HandleFunc("/dashboard/posts/{id:[0-9]+}", blogHandler.GetPost).Methods("GET")
	api.HandleFunc("/dashboard/posts/{id:[0-9]+}", blogHandler.UpdatePost).Methods("PUT")
	api.HandleFunc("/dashboard/posts/{id:[0-9]+}", blogHandler.DeletePost).Methods("DELETE")
	api.HandleFunc("/uploads", uploadHandler.UploadImage).Methods("POST")
	api.HandleFunc("/chats", chatHandler.GetUserChats).Methods("GET")
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.RenameChat).Methods("PATCH")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")
	api.HandleFunc("/chats/{id:[0-9]+}/messages", chatHandler.GetChatMessages).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}/stream", chatHandler.StreamChatMessage).Methods("POST")

	// --- Server Configuration ---
	port := ":8081"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Inkwell server starting on port %s (driver=%s, env=%s)", port, cfg.DBDriver, cfg.Environment)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if bucketService != nil {
		_ = bucketService.Close()
	}
	log.Println("Server stopped.")
}
