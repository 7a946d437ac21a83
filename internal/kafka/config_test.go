package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig("a:9092, b:9092,", "")
	require.NoError(t, err)

	assert.Equal(t, "frame-reports", cfg.ReportsTopic)
	assert.True(t, cfg.EnableIdempotence)
	assert.Equal(t, "all", cfg.Acks)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.GetBrokersList())
}

func TestNewConfig_NoBrokers(t *testing.T) {
	_, err := NewConfig(" ", "reports")
	assert.ErrorIs(t, err, ErrNoBrokers)
}
