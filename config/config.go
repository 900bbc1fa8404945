package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	// Proxies whose X-Forwarded-For / X-Real-IP headers are honored. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Profile, generation and catalog persistence: firestore, mongo or memory.
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Firebase project.
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseStorageBucket   string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseAPIKey          string `mapstructure:"FIREBASE_API_KEY"`

	// Phone verification.
	OTPChannel        string        `mapstructure:"OTP_CHANNEL"`
	OTPStubCode       string        `mapstructure:"OTP_STUB_CODE"`
	OTPNumberCooldown time.Duration `mapstructure:"OTP_NUMBER_COOLDOWN"`
	OTPGlobalCooldown time.Duration `mapstructure:"OTP_GLOBAL_COOLDOWN"`
	OTPMachineIdleTTL time.Duration `mapstructure:"OTP_MACHINE_IDLE_TTL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`

	// Blob storage: firebase, cloudinary or memory.
	BlobBackend         string `mapstructure:"BLOB_BACKEND"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	MaxUploadBytes      int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	// Image generation.
	VertexProjectID         string        `mapstructure:"VERTEX_PROJECT_ID"`
	VertexLocation          string        `mapstructure:"VERTEX_LOCATION"`
	VertexModel             string        `mapstructure:"VERTEX_MODEL"`
	GeminiAPIKey            string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel             string        `mapstructure:"GEMINI_MODEL"`
	DefaultGenerationMethod string        `mapstructure:"DEFAULT_GENERATION_METHOD"`
	GenerationTimeout       time.Duration `mapstructure:"GENERATION_TIMEOUT"`

	// Credits granted when a profile is first created.
	StartingCredits int64 `mapstructure:"STARTING_CREDITS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("TRUSTED_PROXIES", []string{})

	v.SetDefault("STORE_BACKEND", "firestore")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "fashionstudio")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_STORAGE_BUCKET", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "service-account-key.json")
	v.SetDefault("FIREBASE_API_KEY", "")

	v.SetDefault("OTP_CHANNEL", "firebase")
	v.SetDefault("OTP_STUB_CODE", "123456")
	v.SetDefault("OTP_NUMBER_COOLDOWN", 5*time.Minute)
	v.SetDefault("OTP_GLOBAL_COOLDOWN", 15*time.Minute)
	v.SetDefault("OTP_MACHINE_IDLE_TTL", 10*time.Minute)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_OTP_DB", 2)

	v.SetDefault("BLOB_BACKEND", "firebase")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)

	v.SetDefault("VERTEX_PROJECT_ID", "")
	v.SetDefault("VERTEX_LOCATION", "us-central1")
	v.SetDefault("VERTEX_MODEL", "gemini-2.5-flash-image-preview")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash-image-preview")
	v.SetDefault("DEFAULT_GENERATION_METHOD", "vertex-ai")
	v.SetDefault("GENERATION_TIMEOUT", 2*time.Minute)

	v.SetDefault("STARTING_CREDITS", 2)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// ValidateProduction reports settings that must never reach a production deployment.
func ValidateProduction(cfg Config) error {
	if cfg.Env != "production" {
		return nil
	}
	var errs []error
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if cfg.OTPChannel == "stub" {
		errs = append(errs, errors.New("OTP_CHANNEL=stub is not allowed in production"))
	}
	return errors.Join(errs...)
}
