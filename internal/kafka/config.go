package kafka

import (
	"errors"
	"strings"
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

// Config holds Kafka producer configuration
type Config struct {
	Brokers           string
	ReportsTopic      string
	EnableIdempotence bool
	Acks              string
}

// NewConfig builds a producer configuration with idempotent, fully
// acknowledged delivery.
func NewConfig(brokers, reportsTopic string) (*Config, error) {
	if strings.TrimSpace(brokers) == "" {
		return nil, ErrNoBrokers
	}
	if reportsTopic == "" {
		reportsTopic = "frame-reports"
	}

	return &Config{
		Brokers:           brokers,
		ReportsTopic:      reportsTopic,
		EnableIdempotence: true,
		Acks:              "all",
	}, nil
}

// GetBrokersList returns brokers as a slice
func (c *Config) GetBrokersList() []string {
	parts := strings.Split(c.Brokers, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
