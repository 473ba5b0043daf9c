package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backend selectors
const (
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
)

type Config struct {
	Env                     string
	FirebaseCredentialsPath string
	FirebaseAPIKey          string
	StorageBucket           string
	StoreBackend            string
	MongoURI                string
	MongoDatabase           string
	IPLookupEndpoints       []string
	FeedPageSize            int
}

func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		FirebaseAPIKey:          getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		StoreBackend:            getEnv("STORE_BACKEND", BackendFirestore),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "pizzaria"),
		IPLookupEndpoints:       getEnvList("IP_LOOKUP_ENDPOINTS", "https://api64.ipify.org?format=json,https://api.ipify.org?format=json"),
		FeedPageSize:            getEnvInt("FEED_PAGE_SIZE", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
