package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Upload     UploadConfig
	Minio      MinioConfig
	GCS        GCSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// UploadConfig selects where uploaded files are kept. Backend is one of
// "local", "minio", or "gcs"; Dir is only used by the local backend.
type UploadConfig struct {
	Backend string
	Dir     string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "tutoradmin"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "tutoradmin_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	uploadConfig := UploadConfig{
		Backend: getEnv("UPLOAD_BACKEND", "local"),
		Dir:     getEnv("UPLOAD_DIR", "uploads"),
	}

	minioConfig := MinioConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", ""),
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", "tutoradmin-uploads"),
		UseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}

	gcsConfig := GCSConfig{
		Bucket:          getEnv("GCS_BUCKET", ""),
		ProjectID:       getEnv("GCS_PROJECT_ID", ""),
		CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Upload:     uploadConfig,
		Minio:      minioConfig,
		GCS:        gcsConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "1" || valueStr == "true"
	}
	return defaultValue
}
