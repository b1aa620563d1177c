/*
 * @author: sun977
 * @date: 2025.09.05
 * @description: 主程序入口
 * @func: 加载 .env、初始化应用、启动服务器、等待中断信号后优雅退出
 */

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neomonitor/internal/app/master"
	"neomonitor/internal/config"
	"neomonitor/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "配置文件目录 (默认 configs 或 NEOMONITOR_CONFIG_PATH)")
	env := flag.String("env", "", "运行环境: development, test, production")
	flag.Parse()

	// .env 中的变量只补充，不覆盖已有环境变量
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	app, err := master.NewApp(*configPath, *env)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	cfg := app.GetConfig()
	server := &http.Server{
		Addr:           cfg.Server.GetAddress(),
		Handler:        app.GetRouter().GetEngine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.LogSystemEvent("server", "start", "Starting server on "+server.Addr, logrus.InfoLevel, nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.LogSystemEvent("server", "shutdown", "Shutting down server...", logrus.InfoLevel, nil)

	// 给服务器5秒钟的时间来完成现有请求
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogSystemEvent("server", "shutdown", "Server forced to shutdown: "+err.Error(), logrus.ErrorLevel, nil)
	}
	if err := app.Close(); err != nil {
		logger.LogSystemEvent("app", "close", err.Error(), logrus.ErrorLevel, nil)
	}
	logger.LogSystemEvent("server", "exit", "Server exiting", logrus.InfoLevel, nil)
}
