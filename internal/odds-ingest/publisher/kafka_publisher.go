package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/live-betting-platform/internal/shared/kafka"
	"github.com/radieske/live-betting-platform/pkg/contracts/events"
)

// KafkaPublisher encapsula o writer Kafka e o logger.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaPublisher cria um publisher para o tópico de odds.
// Em ambiente local/dev garante a existência do tópico antes de criar o writer.
func NewKafkaPublisher(brokers, topic, env string, log *zap.Logger) *KafkaPublisher {
	if env == "local" || env == "dev" {
		ensureTopic(strings.Split(brokers, ","), topic, log)
	}
	return &KafkaPublisher{
		writer: sharedkafka.NewWriter(brokers, topic),
		log:    log,
	}
}

// ensureTopic emite o CreateTopics pelo controller do cluster; tópico existente não é erro
func ensureTopic(brokers []string, topic string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		log.Warn("failed to connect to kafka", zap.Error(err))
		return
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		log.Warn("failed to get kafka controller", zap.Error(err))
		return
	}

	cconn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		log.Warn("failed to dial controller", zap.Error(err))
		return
	}
	defer cconn.Close()

	// single-broker: 1 partição, fator de replicação 1
	err = cconn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	switch {
	case err == nil:
		log.Info("kafka topic created", zap.String("topic", topic))
	case !strings.Contains(err.Error(), "already exists"):
		log.Warn("failed to create kafka topic", zap.String("topic", topic), zap.Error(err))
	}
}

// Publish serializa o evento em JSON. A chave é o id da partida: as atualizações
// de uma partida ficam na mesma partição e chegam em ordem ao processor.
func (p *KafkaPublisher) Publish(ctx context.Context, e events.OddsUpdate) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := sharedkafka.WriteJSON(ctx, p.writer, e.Match.ID, value); err != nil {
		p.log.Error("failed to publish odds update", zap.String("match_id", e.Match.ID), zap.Error(err))
		return err
	}
	p.log.Debug("published odds update", zap.String("match_id", e.Match.ID), zap.String("source", e.Source))
	return nil
}

// Close finaliza o writer e libera recursos associados.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
