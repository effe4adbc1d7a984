package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MegatronPika/question-bank-system/internal/app"
	"github.com/MegatronPika/question-bank-system/internal/domain"
	pgloader "github.com/MegatronPika/question-bank-system/internal/infra/postgres"
	pgmigrations "github.com/MegatronPika/question-bank-system/internal/infra/postgres/migrations"
	infraredis "github.com/MegatronPika/question-bank-system/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestExamFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, examSizedBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewBankLoader(pool, "default")

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	bankRepo := infraredis.NewBankRepository(redisClient, loader, "default", 5*time.Minute)
	progress := infraredis.NewProgressStore(redisClient)
	service := app.NewTrainerService(bankRepo, progress)

	sheet, err := service.StartExam(ctx, "u1")
	if err != nil {
		t.Fatalf("start exam: %v", err)
	}
	if len(sheet.Questions) != 150 {
		t.Fatalf("expected 150 questions, got %d", len(sheet.Questions))
	}

	// Answer everything correctly.
	answers := make(map[string]domain.Answer, len(sheet.Questions))
	for _, q := range sheet.Questions {
		if q.Type == domain.MultiChoice {
			answers[strconv.Itoa(q.ID)] = domain.MultipleAnswer(strings.Split(q.CorrectAnswer, ",")...)
			continue
		}
		answers[strconv.Itoa(q.ID)] = domain.SingleAnswer(q.CorrectAnswer)
	}

	result, err := service.SubmitExam(ctx, "u1", sheet.ExamID, answers)
	if err != nil {
		t.Fatalf("submit exam: %v", err)
	}
	wantScore := 0
	for _, q := range sheet.Questions {
		wantScore += q.Score
	}
	if result.TotalScore != wantScore || len(result.WrongAnswers) != 0 {
		t.Fatalf("expected full marks %d, got %d with %d misses",
			wantScore, result.TotalScore, len(result.WrongAnswers))
	}

	// Progress survives in redis and the exam record is closed.
	state, err := progress.LoadUser(ctx, "u1")
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(state.ExamRecords) != 1 || state.ExamRecords[0].Status != domain.ExamCompleted {
		t.Fatalf("expected one completed record, got %+v", state.ExamRecords)
	}

	// Practicing a miss lands in the wrong-question ledger.
	missed := sheet.Questions[0]
	if _, err := service.SubmitPracticeAnswer(ctx, "u1", missed.ID, domain.SingleAnswer("definitely wrong")); err != nil {
		t.Fatalf("practice miss: %v", err)
	}
	report, err := service.ListWrongQuestions(ctx, "u1", domain.SortByTimestamp)
	if err != nil {
		t.Fatalf("list wrong: %v", err)
	}
	total := len(report.SingleChoice) + len(report.MultiChoice) + len(report.TrueFalse)
	if total != 1 {
		t.Fatalf("expected one ledger entry, got %d", total)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trainer", "POSTGRES_PASSWORD": "trainerpass", "POSTGRES_DB": "trainerdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trainer:trainerpass@%s:%s/trainerdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn string, bank domain.Bank) {
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

	data, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_banks (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, "default", string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

// examSizedBank builds the minimum catalog for exam assembly: 50 questions
// of each type.
func examSizedBank() domain.Bank {
	var questions []domain.Question
	for i := 0; i < 50; i++ {
		questions = append(questions, domain.Question{
			ID:            1 + i,
			Content:       fmt.Sprintf("single choice %d", i),
			Options:       []domain.Option{{Label: "A", Text: "yes"}, {Label: "B", Text: "no"}},
			Type:          domain.SingleChoice,
			CorrectAnswer: "A",
			Score:         2,
			Analysis:      "pick A",
		})
		questions = append(questions, domain.Question{
			ID:            1001 + i,
			Content:       fmt.Sprintf("multi choice %d", i),
			Options:       []domain.Option{{Label: "A", Text: "one"}, {Label: "B", Text: "two"}, {Label: "C", Text: "three"}},
			Type:          domain.MultiChoice,
			CorrectAnswer: "A,C",
			Score:         4,
			Analysis:      "pick A and C",
		})
		questions = append(questions, domain.Question{
			ID:            2001 + i,
			Content:       fmt.Sprintf("statement %d", i),
			Type:          domain.TrueFalse,
			CorrectAnswer: "true",
			Score:         1,
			Analysis:      "it holds",
		})
	}
	return domain.Bank{Questions: questions}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
