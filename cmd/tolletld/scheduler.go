package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/pipeline"
)

// Scheduler запускает конвейер по расписанию: первый запуск в момент
// nextRun, дальше с фиксированным периодом. Ошибка запуска не
// останавливает расписание - следующий запуск произойдет по плану
// (повторы внутри запуска делает сам Runner).
type Scheduler struct {
	config   *pipeline.Config
	interval time.Duration
	at       string
	now      func() time.Time
}

// NewScheduler создает планировщик из конфигурации конвейера
func NewScheduler(config *pipeline.Config) (*Scheduler, error) {
	interval, err := config.Schedule.IntervalDuration()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		config:   config,
		interval: interval,
		at:       config.Schedule.At,
		now:      time.Now,
	}, nil
}

// nextRun возвращает момент первого запуска: ближайшее время "at"
// (сегодня или завтра), либо немедленно если "at" не задано
func (s *Scheduler) nextRun() time.Time {
	now := s.now()
	if s.at == "" {
		return now
	}

	at, err := time.Parse("15:04", s.at)
	if err != nil {
		// Конфигурация валидируется при загрузке, сюда не попадаем
		return now
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// Run выполняет цикл расписания до отмены контекста
func (s *Scheduler) Run(ctx context.Context) error {
	first := s.nextRun()
	if wait := time.Until(first); wait > 0 {
		logf("First run scheduled at %s (in %v)", first.Format(time.RFC3339), wait.Round(time.Second))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runOnce(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runOnce выполняет один запуск конвейера
func (s *Scheduler) runOnce(ctx context.Context) {
	runner, err := pipeline.NewRunner(s.config)
	if err != nil {
		logf("Failed to initialize pipeline: %v", err)
		return
	}
	defer runner.Close()

	logf("Starting pipeline %s", s.config.Name)
	if err := runner.Execute(ctx); err != nil {
		logf("Pipeline %s failed: %v", s.config.Name, err)
		return
	}

	stats := runner.GetStats()
	logf("Pipeline %s completed: %d rows in %v (attempts: %d)",
		s.config.Name, stats.RowsExtracted, stats.Duration.Round(time.Millisecond), stats.Attempts)
}

// logf пишет сообщение планировщика с отметкой времени
func logf(format string, args ...interface{}) {
	fmt.Printf("[%s] %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}
