package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/snuggli/internal/config"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/logger"
)

// 演示数据生成器
func main() {
	adminOnly := flag.Bool("admin-only", false, "only create the bootstrap admin account")
	flag.Parse()

	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{ServiceName: "snuggli-seed", Level: logger.ParseLevel(cfg.LogLevel), Format: "console"})

	// 初始化数据库
	if err := db.Init(cfg.DB); err != nil {
		log.Error(ctx, "db.init", err)
		os.Exit(1)
	}
	defer db.Close(db.DB)

	s := newSeeder(db.DB, log)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := s.ensureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Error(ctx, "seed.admin", err)
			os.Exit(1)
		}
	}
	if *adminOnly {
		return
	}

	summary, err := s.run(ctx)
	if err != nil {
		log.Error(ctx, "seed.demo", err)
		os.Exit(1)
	}

	fmt.Println("演示数据生成完成！")
	fmt.Printf("患者: %s (密码: %s)\n", demoPatientEmail, demoPassword)
	fmt.Printf("专业人员: %s (密码: %s)\n", demoProfessionalEmail, demoPassword)
	fmt.Printf("心情记录: %d 条，活动: %d 条\n", summary.Moods, summary.Activities)
}
