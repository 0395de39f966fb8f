package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/deadpan/internal/config"
	"github.com/user/deadpan/internal/handler"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/repository"
	"github.com/user/deadpan/internal/router"
	"github.com/user/deadpan/internal/service"
	"github.com/user/deadpan/internal/utils"
	"gorm.io/gorm"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "deadpan",
		Short:         "Deadpan 电影点评站",
		SilenceUsage:  true,
		SilenceErrors: true,
		// 不带子命令时直接启动服务
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "同步数据库表结构",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "创建管理员账号并导入精选电影",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	})

	return cmd
}

// bootstrap 加载配置、初始化日志并连接数据库
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	format := cfg.Log.Format
	if cfg.IsProduction() {
		format = "json"
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: format})

	if cfg.IsProduction() && cfg.UsesDefaultSecret() {
		logging.Warn().Msg("生产环境仍在使用默认 APP_SECRET，请尽快修改")
	}

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func runMigrate() error {
	_, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := repository.Migrate(db); err != nil {
		return err
	}
	logging.Info().Msg("数据库表结构已同步")
	return nil
}

func runSeed(ctx context.Context) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := repository.Migrate(db); err != nil {
		return err
	}

	result, err := service.Seed(ctx, repository.NewRepositories(db), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	logging.Info().
		Bool("admin_created", result.AdminCreated).
		Int("movies_created", result.MoviesCreated).
		Int("movies_updated", result.MoviesUpdated).
		Msg("种子数据已导入")
	return nil
}

func runServe(ctx context.Context) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := repository.Migrate(db); err != nil {
		return err
	}

	// 初始化仓库与外部服务
	repos := repository.NewRepositories(db)
	tmdbHTTP := utils.NewHTTPClient(utils.HTTPClientConfig{
		Name:    "tmdb",
		Timeout: cfg.TMDB.Timeout,
	})
	metadata := service.NewTMDBClient(cfg.TMDB, tmdbHTTP)
	identity := service.NewLocalIdentity(repos, cfg.Identity, nil)

	h := handler.NewHandler(cfg, repos, metadata, identity, service.NewTimeSampler())
	r := router.New(h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.SiteUrl).Str("port", cfg.Port).Msg("服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logging.Info().Msg("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.Info().Msg("服务器已退出")
	return nil
}
