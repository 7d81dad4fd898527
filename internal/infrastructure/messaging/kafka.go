package messaging

import (
	"time"

	"repairdesk/config"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// NewKafkaWriter returns nil when no brokers are configured.
// The writer has no default topic; each message carries its own.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	if len(cfg.Brokers) == 0 {
		return nil
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}

	logrus.Infof("Kafka writer configured for brokers %v", cfg.Brokers)

	return writer
}
