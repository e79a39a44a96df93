package test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"petstore-service/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := config.LoadConfig()

	assert.Equal(t, "5001", cfg.ServerPort)
	assert.Equal(t, "1", cfg.StoreID)
	assert.Equal(t, "LovesPetsL2M3n4", cfg.OwnerSecret)
	assert.Equal(t, "purchases.completed", cfg.KafkaPurchasesTopic)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []int{1, 2}, cfg.StoreIDs())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "8000")
	t.Setenv("STORE_ID", "2")
	t.Setenv("OWNER_SECRET", "hush")
	t.Setenv("PET_STORE_1_URL", "http://localhost:5001")
	t.Setenv("PET_STORE_2_URL", "http://localhost:5002")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "2s")
	t.Setenv("ENVIRONMENT", "production")

	cfg := config.LoadConfig()

	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, "2", cfg.StoreID)
	assert.Equal(t, "hush", cfg.OwnerSecret)
	assert.Equal(t, "http://localhost:5001", cfg.StoreURLs[1])
	assert.Equal(t, "http://localhost:5002", cfg.StoreURLs[2])
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.DatabaseMaxConns)
}

func TestConfig_StoreIDsSorted(t *testing.T) {
	cfg := &config.Config{StoreURLs: map[int]string{
		3: "http://store3:5003",
		1: "http://store1:5001",
		2: "http://store2:5002",
	}}

	assert.Equal(t, []int{1, 2, 3}, cfg.StoreIDs())
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "not-a-number")
	t.Setenv("OUTBOX_BATCH_SIZE", "")

	cfg := config.LoadConfig()

	assert.Equal(t, 10, cfg.DatabaseMaxConns)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
}
