package config

import (
	"os"
	"strconv"
	"time"
)

// TierConfig is the pricing rule for a single ticket tier. StepCutoff of 0
// means flat pricing; otherwise sold counts at or above the cutoff are
// charged StepPrice instead of BasePrice.
type TierConfig struct {
	Capacity   int
	BasePrice  int
	StepCutoff int
	StepPrice  int
}

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (verification/confirmation channels stay silent
	// when the keys are empty)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUUID         string
	VerifyChannel      string
	ConfirmChannel     string

	// Tier pricing table
	TicketA TierConfig
	TicketB TierConfig
	TicketC TierConfig

	// UPI payee details embedded in the payment QR
	UPIPayeeVPA  string
	UPIPayeeName string
	UPICurrency  string
	UPINote      string
	QRSize       int

	// Behavior flags
	StrictCapacity       bool
	ConfirmOnSubmit      bool
	RequirePaymentExists bool

	// Admin
	AdminKeyHash string

	// Rate limiting
	RateLimitPerWindow int64
	RateLimitWindow    time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUUID:         getEnv("PUBNUB_UUID", "ticket-backend"),
		VerifyChannel:      getEnv("PUBNUB_VERIFY_CHANNEL", "payment-verifications"),
		ConfirmChannel:     getEnv("PUBNUB_CONFIRM_CHANNEL", "payment-confirmations"),

		// Tiers (defaults match the original deployment)
		TicketA: TierConfig{
			Capacity:   getEnvAsInt("TICKET_A_CAPACITY", 150),
			BasePrice:  getEnvAsInt("TICKET_A_PRICE", 500),
			StepCutoff: getEnvAsInt("TICKET_A_STEP_CUTOFF", 50),
			StepPrice:  getEnvAsInt("TICKET_A_STEP_PRICE", 600),
		},
		TicketB: TierConfig{
			Capacity:  getEnvAsInt("TICKET_B_CAPACITY", 300),
			BasePrice: getEnvAsInt("TICKET_B_PRICE", 400),
		},
		TicketC: TierConfig{
			Capacity:  getEnvAsInt("TICKET_C_CAPACITY", 150),
			BasePrice: getEnvAsInt("TICKET_C_PRICE", 300),
		},

		// UPI
		UPIPayeeVPA:  getEnv("UPI_PAYEE_VPA", "msram.8274@okicici"),
		UPIPayeeName: getEnv("UPI_PAYEE_NAME", "TEDxSairam"),
		UPICurrency:  getEnv("UPI_CURRENCY", "INR"),
		UPINote:      getEnv("UPI_NOTE", "TEDx Ticket"),
		QRSize:       getEnvAsInt("QR_SIZE", 256),

		// Behavior flags
		StrictCapacity:       getEnvAsBool("STRICT_CAPACITY", false),
		ConfirmOnSubmit:      getEnvAsBool("CONFIRM_ON_SUBMIT", false),
		RequirePaymentExists: getEnvAsBool("REQUIRE_PAYMENT_EXISTS", false),

		// Admin
		AdminKeyHash: getEnv("ADMIN_KEY_HASH", ""),

		// Rate limiting
		RateLimitPerWindow: int64(getEnvAsInt("RATE_LIMIT_PER_WINDOW", 30)),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

// Tier returns the pricing rule for a tier name ("A", "B" or "C").
func (c *Config) Tier(name string) (TierConfig, bool) {
	switch name {
	case "A":
		return c.TicketA, true
	case "B":
		return c.TicketB, true
	case "C":
		return c.TicketC, true
	}
	return TierConfig{}, false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
