package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"taskhub/internal/api/auth"
	"taskhub/internal/api/middleware"
	"taskhub/internal/config"
	"taskhub/internal/model"
	"taskhub/internal/pkg/adminlog"
	"taskhub/internal/pkg/manifest"
	"taskhub/internal/pkg/metrics"
	"taskhub/internal/pkg/notify"
	"taskhub/internal/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端、令牌服务以及 Gin 路由引擎。
// 核心组件本身无状态，共享可变数据只存在于数据库中。
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *gorm.DB
	rdb      *redis.Client
	router   *gin.Engine
	auth     *auth.Handler
	tokens   *token.Service
	accounts AccountStore
	tasks    TaskStore
	comments CommentStore
	notifier notify.Notifier
	recorder *adminlog.Recorder
	manifest *manifest.Reader
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 MySQL 数据库并执行自动迁移
// 2. 连接 Redis
// 3. 初始化令牌服务与 Gin 路由引擎
//
// 参数:
//
//	ctx: 上下文
//	cfg: 配置对象
//	logger: 日志记录器
//
// 返回值:
//
//	*Server: 初始化完成的服务器实例
//	error: 初始化失败返回错误
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.Comment{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	metrics.InitMetrics()

	store := newGormStore(db)
	tokens := token.NewService(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		rdb:      rdb,
		router:   r,
		auth:     auth.NewHandler(store, tokens, logger),
		tokens:   tokens,
		accounts: store,
		tasks:    store,
		comments: store,
		notifier: notify.NewEmailNotifier(&cfg.Email, logger),
		recorder: adminlog.NewRecorder(rdb),
		manifest: manifest.NewReader(cfg.App.AdminManifestPath),
	}
	s.registerRoutes()
	return s, nil
}

// Run 启动 HTTP 服务器并开始监听请求。
func (s *Server) Run() error {
	s.logger.Info("api server listening", slog.String("addr", s.cfg.App.HTTPAddr))
	return s.router.Run(s.cfg.App.HTTPAddr)
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			if closeErr := sqlDB.Close(); closeErr != nil {
				if firstErr == nil {
					firstErr = closeErr
				}
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	s.router.POST("/api/auth/login", s.auth.Login)
	s.router.POST("/api/users/register", s.auth.Register)

	authed := s.router.Group("/api")
	authed.Use(middleware.AuthRequired(s.tokens, s.accounts))

	authed.POST("/auth/register-admins", s.handleRegisterAdmins)

	// :id 在用户查询接口中是用户名，在其余用户接口中是数字 ID
	authed.GET("/users/:id", s.handleGetUser)
	authed.PATCH("/users/:id/role", s.handleAssignRole)
	authed.GET("/users/:id/tasks", s.handleUserTasks)
	authed.GET("/users/:id/comments", s.handleUserComments)

	authed.POST("/tasks", s.handleCreateTask)
	authed.PUT("/tasks/:taskId", s.handleUpdateTask)
	authed.DELETE("/tasks/:taskId", s.handleDeleteTask)
	authed.PATCH("/tasks/:taskId/status", s.handleUpdateTaskStatus)
	authed.POST("/tasks/:taskId/comments", s.handleAddComment)
	authed.GET("/tasks/:taskId/comments", s.handleTaskComments)
	authed.DELETE("/tasks/:taskId/comments/:commentId", s.handleDeleteComment)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getUserID(c *gin.Context) uint {
	v, ok := c.Get("userID")
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

func getUserRole(c *gin.Context) model.Role {
	v, ok := c.Get("role")
	if !ok {
		return model.RoleUser
	}
	if role, ok := v.(model.Role); ok {
		return role
	}
	return model.RoleUser
}
