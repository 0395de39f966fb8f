package main

import (
	"context"
	"os"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/joho/godotenv"
	"github.com/user/deadpan/internal/logging"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("未找到 .env 文件，使用系统环境变量")
	}

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		logging.Error().Err(err).Msg("命令执行失败")
		os.Exit(1)
	}
}
