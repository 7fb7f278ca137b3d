package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"student-records/common"
	"student-records/imports"
	"student-records/students"
)

func Migrate(db *gorm.DB) error {
	if err := students.AutoMigrate(db); err != nil {
		return err
	}
	// Job tracking tables
	return common.AutoMigrateJobs(db)
}

func main() {
	cfg := common.LoadConfig()

	db, err := common.Init(cfg)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Ensure database connection is closed on exit
	sqlDB, err := db.DB()
	if err != nil {
		log.Println("Failed to get sql.DB:", err)
	} else {
		defer sqlDB.Close()
	}

	store := students.NewStore(db)
	ingestor := imports.NewIngestor(store, cfg.KeepUnmapped)

	r := gin.Default()
	r.RedirectTrailingSlash = false
	r.Use(common.MetricsMiddleware(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	students.NewHandler(store).RegisterRoutes(api)
	imports.NewHandler(db, ingestor, cfg.UploadsDir, cfg.MaxUploadMB).RegisterRoutes(api)

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
