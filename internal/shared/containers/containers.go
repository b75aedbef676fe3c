package containers

import (
	"context"
	"log"
	"path/filepath"
	"runtime"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16.3-alpine"
	redisImage    = "redis:7.2-alpine"
	dbName        = "bet_core"
	dbUser        = "bet"
	dbPassword    = "secret"
)

// SchemaPath devolve o caminho absoluto de schema/schema.sql a partir deste arquivo
func SchemaPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "schema", "schema.sql")
}

type DBContainer struct {
	container *postgres.PostgresContainer
}

// NewDBContainer sobe um Postgres já com o schema aplicado
func NewDBContainer() *DBContainer {
	ctx := context.Background()

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.WithInitScripts(SchemaPath()),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	return &DBContainer{container: container}
}

func (c *DBContainer) Shutdown() {
	if err := c.container.Terminate(context.Background()); err != nil {
		log.Fatalf("error terminating postgres container: %v", err)
	}
}

func (c *DBContainer) ConnectionString() string {
	// o container não tem TLS configurado
	connStr, err := c.container.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		log.Fatalf("error getting connection string: %v", err)
	}
	return connStr
}

type RedisContainer struct {
	container testcontainers.Container
}

// NewRedisContainer sobe um Redis descartável
func NewRedisContainer() *RedisContainer {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("error starting redis container: %v", err)
	}

	return &RedisContainer{container: container}
}

func (c *RedisContainer) Shutdown() {
	if err := c.container.Terminate(context.Background()); err != nil {
		log.Fatalf("error terminating redis container: %v", err)
	}
}

// Addr devolve host:porta mapeados para o 6379 do container
func (c *RedisContainer) Addr() string {
	ctx := context.Background()
	host, err := c.container.Host(ctx)
	if err != nil {
		log.Fatalf("error getting redis host: %v", err)
	}
	port, err := c.container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		log.Fatalf("error getting redis port: %v", err)
	}
	return host + ":" + port.Port()
}
