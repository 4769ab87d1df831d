package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"exam-simulator/internal/app"
	"exam-simulator/internal/domain"
	pgstore "exam-simulator/internal/infra/postgres"
	pgmigrations "exam-simulator/internal/infra/postgres/migrations"
	infraredis "exam-simulator/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedTests(t, ctx, pgURL, sampleTest())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewTestLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	questions := infraredis.NewQuestionBank(redisClient, loader, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	results := infraredis.NewResultStore(redisClient, 5*time.Minute)
	service := app.NewExamService(questions, sessions, results, app.ExamConfig{})

	user, err := service.Login(ctx, "Alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := service.StartTest(ctx, user.ID, "day-9"); err == nil {
		t.Fatalf("expected unknown test to fail")
	}

	session, err := service.StartTest(ctx, user.ID, "day-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, answer := range []int{1, 0} {
		if _, err := service.SelectAnswer(ctx, user.ID, session.ID(), answer); err != nil {
			t.Fatalf("select: %v", err)
		}
		if _, err := service.Advance(ctx, user.ID, session.ID()); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	result, err := service.Result(ctx, user.ID, "day-1")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Score != 2 || result.Percentage != 100 || !result.Passed {
		t.Fatalf("expected full marks, got %+v", result)
	}

	summary, err := service.Summary(ctx, user.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Completed != 1 || len(summary.DailyTests) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if n, err := redisClient.Exists(ctx, "bank:test:day-1").Result(); err != nil || n != 1 {
		t.Fatalf("expected test cached in redis, n=%d err=%v", n, err)
	}
	if n, err := redisClient.HLen(ctx, "exam:results:"+user.ID).Result(); err != nil || n != 1 {
		t.Fatalf("expected one stored result, n=%d err=%v", n, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	addr, cleanup := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "exam", "POSTGRES_PASSWORD": "exampass", "POSTGRES_DB": "examdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	})
	return fmt.Sprintf("postgres://exam:exampass@%s/examdb?sslmode=disable", addr), cleanup
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	addr, cleanup := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	})
	return "redis://" + addr, cleanup
}

// startContainer runs req and returns host:port of its first exposed port.
func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest) (string, func()) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	cleanup := func() { _ = container.Terminate(ctx) }

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		cleanup()
		t.Fatalf("%s endpoint: %v", req.Image, err)
	}
	return addr, cleanup
}

func seedTests(t *testing.T, ctx context.Context, dsn string, tests ...domain.Test) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	writer := pgstore.NewTestWriter(db)
	if err := writer.SaveTests(ctx, tests); err != nil {
		t.Fatalf("save tests: %v", err)
	}
	// saving twice upserts in place
	if err := writer.SaveTests(ctx, tests); err != nil {
		t.Fatalf("resave tests: %v", err)
	}
	if n, err := writer.Count(ctx); err != nil || n != len(tests) {
		t.Fatalf("expected %d stored tests, got %d (%v)", len(tests), n, err)
	}
}

func sampleTest() domain.Test {
	return domain.Test{
		ID: "day-1",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Answer: 1},
			{Prompt: "What is 3 + 3?", Options: []string{"6", "7", "8"}, Answer: 0},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
