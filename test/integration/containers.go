package integration

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Env holds throwaway Postgres and Kafka containers for integration tests.
type Env struct {
	PG    *postgres.PostgresContainer
	Kafka *kafka.KafkaContainer
	PGURL string
	KAddr []string
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("orderflow"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("orderflow-test"),
	)
	if err != nil {
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		_ = kafkaC.Terminate(ctx)
		_ = pgC.Terminate(ctx)
		return nil, err
	}

	return &Env{PG: pgC, Kafka: kafkaC, PGURL: pgURL, KAddr: brokers}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	_ = e.Kafka.Terminate(ctx)
	_ = e.PG.Terminate(ctx)
}
