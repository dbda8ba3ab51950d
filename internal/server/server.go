package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sngm3741/store-finder/api/internal/catalog/application"
	"github.com/sngm3741/store-finder/api/internal/config"
	"github.com/sngm3741/store-finder/api/internal/infrastructure/filesystem"
	mongodoc "github.com/sngm3741/store-finder/api/internal/infrastructure/mongo"
	"github.com/sngm3741/store-finder/api/internal/infrastructure/objectstore"
	commonhttp "github.com/sngm3741/store-finder/api/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/store-finder/api/internal/interfaces/http/public"
)

// Server は HTTP サーバーのライフサイクルを管理し、ハンドラへ依存注入するコンポジションルート。
type Server struct {
	logger         *zap.SugaredLogger
	client         *mongo.Client
	storeQueries   application.StoreQueryService
	storeCommands  application.StoreCommandService
	favorites      application.FavoriteService
	photos         publichttp.PhotoSource
	jwtConfigs     []config.JWTConfig
	jwtAudience    string
	allowedOrigins []string
	uploadMaxBytes int64
	addr           string
}

// photoBackend は写真の保存と配信の両方を担うストレージ。
type photoBackend interface {
	application.PhotoStorage
	publichttp.PhotoSource
}

// Run はHTTPサーバーを起動し、シグナルを受けるまでブロックする。
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP サーバー起動", "addr", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:         s.logger,
		StoreQueries:   s.storeQueries,
		StoreCommands:  s.storeCommands,
		Favorites:      s.favorites,
		Photos:         s.photos,
		UploadMaxBytes: s.uploadMaxBytes,
	})
	publicHandler.Register(router, s.authMiddleware)
	return router
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Location")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB への疎通確認だけを返す。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			s.logger.Warnw("MongoDB への ping に失敗", "error", err)
			commonhttp.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		commonhttp.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、認証済みユーザーをコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			s.unauthorized(w, "Authorization ヘッダーがありません")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			s.unauthorized(w, "Bearer トークンを指定してください")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			s.unauthorized(w, "アクセストークンが空です")
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			s.unauthorized(w, err.Error())
			return
		}

		user := commonhttp.AuthenticatedUser{
			ID:       claims.Subject,
			Name:     claims.Name,
			Username: claims.PreferredUsername,
			Email:    claims.Email,
			Picture:  claims.Picture,
		}

		ctx := commonhttp.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) unauthorized(w http.ResponseWriter, message string) {
	commonhttp.WriteJSON(s.logger, w, http.StatusUnauthorized, commonhttp.ErrorResponse{
		Error: message,
		Code:  "UNAUTHORIZED",
	})
}

// parseAuthToken は複数の JWT 設定を順番に試し、署名検証と Issuer/Audience の整合性を確認する。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, errors.New("認証設定が構成されていません")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second))

		if err != nil || !token.Valid {
			continue
		}
		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !lo.Contains(claims.Audience, s.jwtAudience) {
			continue
		}

		return claims, nil
	}

	return nil, errors.New("アクセストークンが無効です")
}

type authClaims struct {
	jwt.RegisteredClaims
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Picture           string `json:"picture,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

// shutdown は MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Warnw("MongoDB 切断時にエラー", "error", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("サーバーが異常終了: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Infow("シグナルを受信。サーバー停止処理を開始します", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Warnw("サーバー停止時にエラー", "error", err)
		}
	}

	srv.shutdown(context.Background())
	return runErr
}

// New は Config と Mongo クライアントからリポジトリ、写真ストレージ、サービスを組み立てた Server を返す。
// インデックスの作成もここで行う。
func New(ctx context.Context, cfg config.Config, log *zap.SugaredLogger, client *mongo.Client) (*Server, error) {
	db := client.Database(cfg.MongoDatabase)
	if err := mongodoc.EnsureIndexes(ctx, db, cfg.StoreCollection, cfg.UserCollection); err != nil {
		return nil, fmt.Errorf("インデックス作成に失敗: %w", err)
	}

	photos, err := newPhotoBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Infow("写真ストレージを初期化", "backend", cfg.PhotoBackend)

	storeRepo := mongodoc.NewStoreRepository(db, cfg.StoreCollection)
	userRepo := mongodoc.NewUserRepository(db, cfg.UserCollection)
	ingestor := application.NewMediaIngestor(photos)

	return &Server{
		logger:         log,
		client:         client,
		storeQueries:   application.NewStoreQueryService(storeRepo),
		storeCommands:  application.NewStoreCommandService(storeRepo, ingestor, mongodoc.IsDuplicateSlug),
		favorites:      application.NewFavoriteService(storeRepo, userRepo),
		photos:         photos,
		jwtConfigs:     append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:    cfg.JWTAudience,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		uploadMaxBytes: cfg.UploadMaxBytes,
		addr:           cfg.Addr,
	}, nil
}

func newPhotoBackend(ctx context.Context, cfg config.Config) (photoBackend, error) {
	switch cfg.PhotoBackend {
	case config.PhotoBackendMinio:
		storage, err := objectstore.New(objectstore.Config(cfg.Minio))
		if err != nil {
			return nil, fmt.Errorf("MinIO クライアント作成に失敗: %w", err)
		}
		if err := storage.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("バケット %s の準備に失敗: %w", cfg.Minio.Bucket, err)
		}
		return storage, nil
	case config.PhotoBackendLocal, "":
		storage, err := filesystem.NewPhotoStorage(afero.NewOsFs(), cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("アップロードディレクトリ %s の準備に失敗: %w", cfg.UploadDir, err)
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("未知の PHOTO_BACKEND: %s", cfg.PhotoBackend)
	}
}
