package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/audit"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/notify"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/resultlog"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/retry"
)

// RunStats представляет статистику запуска конвейера
type RunStats struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	Attempts      int
	RowsExtracted int
	Artifact      string

	// StageDurations - длительность каждого шага последней попытки
	StageDurations map[string]time.Duration
}

// Runner выполняет конвейер: все шаги последовательно, с retry вокруг
// запуска целиком, аудитом каждого шага и уведомлениями по итогу
type Runner struct {
	config     *Config
	auditor    audit.Logger
	dispatcher *notify.Dispatcher
	retryer    *retry.Retryer
	publisher  *resultlog.RedisPublisher
	stats      RunStats
}

// NewRunner создает Runner со всей сконфигурированной обвязкой
func NewRunner(config *Config) (*Runner, error) {
	if config == nil {
		return nil, fmt.Errorf("config is nil")
	}

	auditor, err := newAuditLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit logger: %w", err)
	}

	dispatcher, err := notify.NewDispatcher(config.Notify, func(channel string, err error) {
		// Сбой канала уведомлений не валит запуск, но попадает в аудит
		auditor.Log(context.Background(),
			audit.NewEntry(audit.OpRun, audit.StatusFailure).
				WithPipeline(config.Name).
				WithResource(channel).
				WithError(fmt.Errorf("notification delivery failed: %w", err)))
	})
	if err != nil {
		auditor.Close()
		return nil, fmt.Errorf("failed to create notify dispatcher: %w", err)
	}

	runner := &Runner{
		config:     config,
		auditor:    auditor,
		dispatcher: dispatcher,
	}

	retryConfig := config.Retry.ToRetry()
	retryConfig.OnRetry = func(attempt int, err error, delay time.Duration) {
		dispatcher.Dispatch(context.Background(), notify.Event{
			Pipeline: config.Name,
			Owner:    config.Owner,
			Kind:     notify.KindRetry,
			Attempt:  attempt,
			Error:    err.Error(),
		})
	}

	retryer, err := retry.NewRetryer(retryConfig)
	if err != nil {
		auditor.Close()
		return nil, fmt.Errorf("failed to create retryer: %w", err)
	}
	runner.retryer = retryer

	if config.ResultLog.Enabled {
		runner.publisher = resultlog.NewRedisPublisher(config.ResultLog)
	}

	return runner, nil
}

// Execute выполняет конвейер целиком: все шаги по порядку, с повторами
// при провале. По завершении рассылает уведомления и публикует итог.
func (r *Runner) Execute(ctx context.Context) error {
	r.stats = RunStats{StartTime: time.Now()}

	if err := os.MkdirAll(r.config.Workdir, 0755); err != nil {
		return fmt.Errorf("failed to create workdir: %w", err)
	}

	runErr := r.retryer.DoNamed(ctx, r.config.Name, func(ctx context.Context) error {
		r.stats.Attempts++
		return r.runOnce(ctx)
	})

	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)

	r.finishRun(ctx, runErr)
	return runErr
}

// runOnce выполняет все шаги конвейера один раз
func (r *Runner) runOnce(ctx context.Context) error {
	state := &State{Config: r.config}

	for _, stage := range Stages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runStage(ctx, stage, state); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	r.stats.RowsExtracted = state.RowsExtracted
	r.stats.Artifact = state.ArtifactPath
	return nil
}

// runStage выполняет один шаг с записью в аудит
func (r *Runner) runStage(ctx context.Context, stage Stage, state *State) error {
	started := time.Now()
	err := stage.Run(ctx, state)
	duration := time.Since(started)

	if r.stats.StageDurations == nil {
		r.stats.StageDurations = make(map[string]time.Duration)
	}
	r.stats.StageDurations[stage.Name()] = duration

	entry := audit.NewEntry(stage.Operation(), audit.StatusSuccess).
		WithPipeline(r.config.Name).
		WithDuration(duration)
	if state.ArtifactPath != "" {
		entry = entry.WithResource(state.ArtifactPath)
	} else if state.ArchivePath != "" {
		entry = entry.WithResource(state.ArchivePath)
	}
	if state.RowsExtracted > 0 {
		entry = entry.WithRecords(int64(state.RowsExtracted))
	}
	entry = entry.WithError(err)

	if logErr := r.auditor.Log(ctx, entry); logErr != nil {
		// Ошибка аудита не должна скрыть ошибку шага
		fmt.Fprintf(os.Stderr, "audit write failed: %v\n", logErr)
	}

	return err
}

// RunStage выполняет один шаг по имени, без retry и уведомлений.
// Используется из CLI для ручного перезапуска отдельного шага.
func (r *Runner) RunStage(ctx context.Context, name string) error {
	stage, err := StageByName(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.config.Workdir, 0755); err != nil {
		return fmt.Errorf("failed to create workdir: %w", err)
	}

	state := &State{Config: r.config}
	return r.runStage(ctx, stage, state)
}

// finishRun записывает итог запуска: аудит, уведомления, result log
func (r *Runner) finishRun(ctx context.Context, runErr error) {
	entry := audit.NewEntry(audit.OpRun, audit.StatusSuccess).
		WithPipeline(r.config.Name).
		WithDuration(r.stats.Duration).
		WithRecords(int64(r.stats.RowsExtracted)).
		WithMetadata("attempts", r.stats.Attempts).
		WithError(runErr)
	if r.stats.Artifact != "" {
		entry = entry.WithResource(r.stats.Artifact)
	}
	r.auditor.Log(ctx, entry)

	event := notify.Event{
		Pipeline: r.config.Name,
		Owner:    r.config.Owner,
		Attempt:  r.stats.Attempts,
		Duration: r.stats.Duration,
	}
	if runErr != nil {
		event.Kind = notify.KindFailure
		event.Error = runErr.Error()
	} else {
		event.Kind = notify.KindSuccess
	}
	r.dispatcher.Dispatch(ctx, event)

	if r.publisher != nil {
		result := resultlog.RunResult{
			Pipeline:      r.config.Name,
			StartedAt:     r.stats.StartTime,
			FinishedAt:    r.stats.EndTime,
			DurationMs:    r.stats.Duration.Milliseconds(),
			RowsExtracted: r.stats.RowsExtracted,
			Attempts:      r.stats.Attempts,
			Artifact:      r.stats.Artifact,
		}
		if err := r.publisher.Publish(ctx, result, runErr); err != nil {
			r.auditor.Log(ctx,
				audit.NewEntry(audit.OpRun, audit.StatusFailure).
					WithPipeline(r.config.Name).
					WithError(fmt.Errorf("result log publish failed: %w", err)))
		}
	}
}

// GetStats возвращает статистику последнего запуска
func (r *Runner) GetStats() RunStats {
	return r.stats
}

// Close закрывает обвязку: журнал retry, аудит, соединение с Redis
func (r *Runner) Close() error {
	var firstErr error

	if err := r.retryer.Close(); err != nil {
		firstErr = err
	}
	if err := r.auditor.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if r.publisher != nil {
		if err := r.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// newAuditLogger собирает audit logger из конфигурации
func newAuditLogger(config *Config) (audit.Logger, error) {
	if !config.Audit.Enabled {
		return audit.NewNullLogger(), nil
	}

	level, err := audit.ParseLevel(config.Audit.Level)
	if err != nil {
		return nil, err
	}

	var appenders []audit.Appender

	if config.Audit.Output != "" {
		fileAppender, err := audit.NewFileAppender(audit.FileAppenderConfig{
			FilePath:   config.Audit.Output,
			Level:      level,
			FormatJSON: config.Audit.Format != "text",
		})
		if err != nil {
			return nil, err
		}
		appenders = append(appenders, fileAppender)
	}

	if config.Audit.SQLite != "" {
		sqliteAppender, err := audit.NewSQLiteAppender(audit.SQLiteAppenderConfig{
			Path:  config.Audit.SQLite,
			Level: level,
		})
		if err != nil {
			return nil, err
		}
		appenders = append(appenders, sqliteAppender)
	}

	if config.Audit.Console || len(appenders) == 0 {
		appenders = append(appenders, audit.NewConsoleAppender(level, false))
	}

	return audit.NewLogger(audit.LoggerConfig{
		DefaultPipeline: config.Name,
	}, appenders...), nil
}
