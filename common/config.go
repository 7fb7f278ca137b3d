package common

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds runtime settings read from the environment
type Config struct {
	Port         string
	DBDriver     string // sqlite or postgres
	DatabaseURL  string
	UploadsDir   string
	KeepUnmapped bool // store unclassified import columns in students.extra
	MaxUploadMB  int64
}

func get(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// LoadConfig reads an optional .env file, then the process environment
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	keepUnmapped, _ := strconv.ParseBool(get("IMPORT_KEEP_UNMAPPED", "false"))
	maxUpload, err := strconv.ParseInt(get("MAX_UPLOAD_MB", "20"), 10, 64)
	if err != nil || maxUpload <= 0 {
		maxUpload = 20
	}

	return &Config{
		Port:         get("PORT", "8080"),
		DBDriver:     strings.ToLower(get("DB_DRIVER", "sqlite")),
		DatabaseURL:  get("DATABASE_URL", "./data/students.db"),
		UploadsDir:   get("UPLOADS_DIR", "./uploads"),
		KeepUnmapped: keepUnmapped,
		MaxUploadMB:  maxUpload,
	}
}
