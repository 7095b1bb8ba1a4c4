package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nao1215/hotelops/pkg/middleware"
)

// dateLayout は日付パラメータの書式。
const dateLayout = "2006-01-02"

// Options はサーバーの設定。
type Options struct {
	// JWTSecret はトークン署名用の秘密鍵。
	JWTSecret string
	// FrontendURL はCORSで許可するオリジン。カンマ区切りで複数指定でき、"*"はすべてを許可する。
	// 空の場合はCORSヘッダーを付けない。
	FrontendURL string
	// DSN はSQLiteのデータソース名。空の場合はインメモリ。
	DSN string
	// Seed がtrueの場合、空のデータベースに初期データを投入する。
	Seed bool
	// PasswordCost はbcryptのコスト。0の場合はbcrypt.DefaultCost。
	PasswordCost int
	// Now は現在時刻を返す関数。nilの場合はtime.Now。
	Now func() time.Time
	// Registry はメトリクスの登録先。nilの場合はサーバーごとに新しいレジストリを作る。
	Registry *prometheus.Registry
}

// Server はサンドボックスバックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// store はデータの保存先。
	store *Store
	// logger はアプリケーションログの出力先。
	logger *zap.Logger
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// passwordCost はbcryptのコスト。
	passwordCost int
	// now は現在時刻を返す関数。
	now func() time.Time
	// registry はメトリクスのレジストリ。
	registry *prometheus.Registry
	// requests はリクエスト数のカウンター。
	requests *prometheus.CounterVec
	// duration はリクエスト処理時間のヒストグラム。
	duration *prometheus.HistogramVec
}

// NewServer は新しいサンドボックスサーバーを生成する。
// データベースを開いてマイグレーションを適用し、必要であれば初期データを投入する。
func NewServer(ctx context.Context, opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.JWTSecret == "" {
		return nil, errors.New("JWTシークレットが設定されていません")
	}
	if opts.DSN == "" {
		opts.DSN = ":memory:"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	store, err := OpenStore(ctx, opts.DSN, logger)
	if err != nil {
		return nil, err
	}
	if opts.Seed {
		if err := store.seed(ctx, opts.Now().Format(dateLayout), opts.PasswordCost); err != nil {
			store.Close()
			return nil, fmt.Errorf("初期データの投入に失敗: %w", err)
		}
	}

	s := &Server{
		store:        store,
		logger:       logger,
		jwtSecret:    opts.JWTSecret,
		passwordCost: opts.PasswordCost,
		now:          opts.Now,
		registry:     opts.Registry,
	}
	if err := s.registerMetrics(); err != nil {
		store.Close()
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(s.instrument())
	if opts.FrontendURL != "" {
		router.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: strings.Split(opts.FrontendURL, ","),
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         24 * time.Hour,
		}))
	}
	s.router = router
	s.setupRoutes()

	return s, nil
}

// Handler はHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store はサーバーのデータストアを返す。
func (s *Server) Store() *Store {
	return s.store
}

// Run はaddrでHTTPサーバーを起動し、ctxがキャンセルされるまで待つ。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("サンドボックスを起動しました", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	managers := middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin)
	admins := middleware.RequireRole(middleware.RoleAdmin)

	api := s.router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.handleLogin())
		auth.POST("/register", s.handleRegister())

		authed := auth.Group("", middleware.JWTAuth(s.jwtSecret))
		authed.POST("/verify-token", s.handleVerifyToken())
		authed.GET("/profile", s.handleProfile())
		authed.POST("/logout", s.handleLogout())
	}

	secured := api.Group("", middleware.JWTAuth(s.jwtSecret))

	sales := secured.Group("/sales")
	{
		sales.POST("/record", s.handleRecordSale())
		sales.GET("/daily/:employee_id/:date", s.handleDailySales())
		sales.GET("/monthly/:year/:month", managers, s.handleMonthlySales())
		sales.GET("/daily-summary/:date", s.handleDailySummary())
		sales.GET("/employee-performance/:employee_id", s.handleEmployeePerformance())
		sales.GET("/categories", s.handleSaleCategories())
		sales.GET("/payment-methods", s.handlePaymentMethods())
	}

	employees := secured.Group("/employees")
	{
		employees.GET("/", managers, s.handleListEmployees())
		employees.POST("/", admins, s.handleCreateEmployee())
		employees.GET("/by-department/:department", managers, s.handleEmployeesByDepartment())
		employees.GET("/:id", s.handleGetEmployee())
		employees.PUT("/:id", managers, s.handleUpdateEmployee())
		employees.PUT("/:id/deactivate", admins, s.handleDeactivateEmployee())
	}

	rooms := secured.Group("/rooms")
	{
		rooms.GET("/", s.handleListRooms(false))
		rooms.GET("/available", s.handleListRooms(true))
		rooms.POST("/", admins, s.handleCreateRoom())
		rooms.POST("/:id/check-in", s.handleCheckIn())
		rooms.POST("/:id/check-out", s.handleCheckOut())
		rooms.GET("/active-check-ins", s.handleActiveCheckIns())
		rooms.GET("/occupancy-report", managers, s.handleOccupancyReport())
	}

	dashboard := secured.Group("/dashboard")
	{
		dashboard.GET("/overview", s.handleOverview())
		dashboard.GET("/sales-trend/:days", managers, s.handleSalesTrend())
		dashboard.GET("/employee-leaderboard", managers, s.handleLeaderboard())
		dashboard.GET("/category-breakdown/:date", s.handleCategoryBreakdown())
		dashboard.GET("/payment-method-breakdown/:date", managers, s.handlePaymentBreakdown())
	}

	reports := secured.Group("/reports")
	{
		reports.GET("/daily/:date", managers, s.handleDailyReport())
		reports.GET("/monthly/:year/:month", managers, s.handleMonthlyReport())
		reports.GET("/yearly/:year", managers, s.handleYearlyReport())
		reports.GET("/employee-performance/:employee_id/:period", s.handleEmployeeReport())
		reports.GET("/export/daily/:date", managers, s.handleExportDaily())
		reports.GET("/export/monthly/:year/:month", managers, s.handleExportMonthly())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		version, err := s.store.SchemaVersion(c.Request.Context())
		if err != nil {
			s.internalError(c, "Database unavailable", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "sandbox", "schema_version": version})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// today は現在の日付を返す。
func (s *Server) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// internalError は500を返してエラーをログに記録する。
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	middleware.Fail(c, http.StatusInternalServerError, msg)
}

// intParam はパスパラメータを整数として取得する。不正な値の場合は400を返してfalseを返す。
func intParam(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		middleware.Fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return v, true
}

// yearMonthParams はyearとmonthのパスパラメータを取得する。
func yearMonthParams(c *gin.Context) (int, int, bool) {
	year, ok := intParam(c, "year")
	if !ok {
		return 0, 0, false
	}
	month, ok := intParam(c, "month")
	if !ok {
		return 0, 0, false
	}
	if month < 1 || month > 12 {
		middleware.Fail(c, http.StatusBadRequest, "Invalid month")
		return 0, 0, false
	}
	return int(year), int(month), true
}

// bindJSON はリクエストボディをoutにデコードする。失敗した場合は400を返してfalseを返す。
func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		middleware.Fail(c, http.StatusBadRequest, "Missing required fields")
		return false
	}
	return true
}
