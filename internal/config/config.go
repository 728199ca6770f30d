// Package config resolves all runtime settings once at process start.
// Components receive the resulting Settings by reference instead of reading
// the environment themselves, so there is no hidden global state beyond the
// process environment itself.
package config

import (
	"os"
	"strconv"
	"time"
)

// Settings holds every externally configurable value used by the service.
type Settings struct {
	// AWS / S3 inventory source
	AWSRegion string
	S3Bucket  string
	S3Prefix  string

	// DynamoDB persistence
	LedgerTable   string
	EventLogTable string

	// Gemini analysis
	GeminiAPIKey  string
	GeminiModel   string
	VisionEnabled bool

	// Sampling
	FrameIntervalSec int

	// Employee directory
	EmployeeMapPath string

	// HTTP client bounds for external calls
	S3ConnectTimeout time.Duration
	S3ReadTimeout    time.Duration
}

// Load reads Settings from the environment, applying defaults for everything
// except credentials. Credentials are validated at client construction, not
// here; Load itself never fails.
func Load() *Settings {
	return &Settings{
		AWSRegion: envOrDefault("AWS_REGION", "us-east-1"),
		S3Bucket:  envOrDefault("S3_BUCKET", "aidiscovery"),
		S3Prefix:  envOrDefault("S3_PREFIX", "activitytrackercontainer"),

		LedgerTable:   envOrDefault("LEDGER_TABLE", "worklens-processed"),
		EventLogTable: envOrDefault("EVENT_LOG_TABLE", "worklens-event-logs"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),
		VisionEnabled: envBool("VISION_ENABLED", false),

		FrameIntervalSec: envInt("FRAME_INTERVAL_SEC", 30),

		EmployeeMapPath: envOrDefault("EMPLOYEE_MAP_PATH", "employee_map.json"),

		S3ConnectTimeout: envDuration("S3_CONNECT_TIMEOUT", 10*time.Second),
		S3ReadTimeout:    envDuration("S3_READ_TIMEOUT", 60*time.Second),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
