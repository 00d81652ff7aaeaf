package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"training-portal/internal/config"
	"training-portal/internal/handler"
	"training-portal/internal/model"
	"training-portal/internal/service"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	initAdmin := flag.Bool("init-admin", false, "create the initial admin account and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := model.InitDB(&cfg.Database); err != nil {
		log.Fatalf("connect database: %v", err)
	}
	log.Println("database connected")

	if err := model.AutoMigrate(); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	if *migrate {
		log.Println("migration complete")
		os.Exit(0)
	}

	if *initAdmin {
		initAdminAccount()
		os.Exit(0)
	}

	os.MkdirAll(cfg.Storage.UploadsDir, 0755)
	os.MkdirAll("logs", 0755)

	// Background maintenance: expired invite/token purge and session
	// reminders.
	service.NewSchedulerService().Start()

	r := gin.New()
	handler.SetupRouter(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func initAdminAccount() {
	adminEmail := "admin@example.com"
	adminPassword := "admin123"

	var existing model.User
	if err := model.DB.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.Println("admin account already exists")
		return
	}

	now := time.Now()
	admin := model.User{
		Email:           adminEmail,
		Name:            "Administrator",
		Role:            model.UserRoleAdmin,
		EmailVerifiedAt: &now,
	}
	if err := admin.SetPassword(adminPassword); err != nil {
		log.Fatalf("hash password: %v", err)
	}

	if err := model.DB.Create(&admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}

	log.Println("admin account created")
	log.Printf("email: %s", adminEmail)
	log.Printf("password: %s", adminPassword)
	log.Println("change the default password after the first login")
}
