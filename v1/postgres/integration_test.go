package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/Aleph-Alpha/pbseries/v1/flatten"
	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/series"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

type postgresContainer struct {
	testcontainers.Container
	Config Config
}

func setupPostgresContainer(ctx context.Context) (*postgresContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portStr := fmt.Sprintf("%d", port)
	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = nat.PortMap{
				"5432/tcp": []nat.PortBinding{{HostPort: portStr}},
			}
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	mappedPort, err := c.MappedPort(ctx, "5432")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}
	portStr = mappedPort.Port()

	if err := waitForPostgresReady(host, portStr, 30*time.Second); err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("postgres container not ready: %w", err)
	}

	return &postgresContainer{
		Container: c,
		Config: Config{
			Connection: Connection{
				Host:     host,
				Port:     portStr,
				User:     "testuser",
				Password: "testpass",
				DbName:   "testdb",
				SSLMode:  "disable",
			},
			AutoMigrate: true,
		},
	}, nil
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// waitForPostgresReady polls with lib/pq until the server accepts queries.
// The "ready" log line is printed once before the init scripts restart it.
func waitForPostgresReady(host, port string, timeout time.Duration) error {
	dsn := fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=testdb sslmode=disable", host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("timed out after %s", timeout)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgc, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := pgc.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	var store *Postgres
	app := fxtest.New(t,
		fx.Provide(
			func() Config { return pgc.Config },
			func() *logger.Logger { return logger.NewFromZap(zap.NewNop(), false) },
		),
		FXModule,
		fx.Populate(&store),
	)
	app.RequireStart()
	defer app.RequireStop()

	t.Run("AppendThroughSink", func(t *testing.T) {
		sink := series.NewSink(store)
		require.NoError(t, sink.Append(ctx, "imu", "ax", 1.0, flatten.NumericValue(0.5)))
		require.NoError(t, sink.Append(ctx, "imu", "ax", 2.0, flatten.NumericValue(-1.5)))
		require.NoError(t, sink.Append(ctx, "imu", "label", 1.0, flatten.TextValue("idle")))

		numeric, err := store.NumericSamples(ctx, "imu/ax")
		require.NoError(t, err)
		require.Len(t, numeric, 2)
		assert.Equal(t, 1.0, numeric[0].Timestamp)
		assert.Equal(t, 0.5, numeric[0].Value)
		assert.Equal(t, -1.5, numeric[1].Value)

		text, err := store.TextSamples(ctx, "imu/label")
		require.NoError(t, err)
		require.Len(t, text, 1)
		assert.Equal(t, "idle", text[0].Value)
	})

	t.Run("UnknownSeriesIsEmpty", func(t *testing.T) {
		samples, err := store.NumericSamples(ctx, "nope/x")
		require.NoError(t, err)
		assert.Empty(t, samples)
	})

	t.Run("MissingTableIsTranslated", func(t *testing.T) {
		require.NoError(t, store.DB().Migrator().DropTable(&TextSample{}))
		err := store.AppendText(ctx, "imu/label", 3, "moving")
		assert.ErrorIs(t, err, ErrUndefinedTable)
		require.NoError(t, store.Migrate(ctx))
	})
}
