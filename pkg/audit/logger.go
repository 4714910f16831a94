package audit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger - интерфейс аудита запусков конвейера
type Logger interface {
	Log(ctx context.Context, entry *Entry) error
	LogSuccess(ctx context.Context, operation Operation) *Entry
	LogFailure(ctx context.Context, operation Operation, err error) *Entry
	Flush() error
	Close() error
}

// AuditLogger - основной логгер аудита с поддержкой
// синхронной и асинхронной записи в несколько appenders
type AuditLogger struct {
	appenders    []Appender
	asyncMode    bool
	entryChannel chan *Entry
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	config       LoggerConfig
}

// LoggerConfig - конфигурация логгера
type LoggerConfig struct {
	// AsyncMode - асинхронная запись в appenders
	AsyncMode bool

	// BufferSize - размер буфера для асинхронного режима
	BufferSize int

	// DefaultPipeline - имя конвейера, проставляемое в записи без него
	DefaultPipeline string

	// OnError - callback при ошибке записи
	OnError func(error)
}

// NewLogger - создать новый audit logger
func NewLogger(config LoggerConfig, appenders ...Appender) *AuditLogger {
	ctx, cancel := context.WithCancel(context.Background())

	logger := &AuditLogger{
		appenders: appenders,
		asyncMode: config.AsyncMode,
		ctx:       ctx,
		cancel:    cancel,
		config:    config,
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	if logger.asyncMode {
		logger.entryChannel = make(chan *Entry, bufferSize)
		logger.wg.Add(1)
		go logger.processEntries()
	}

	return logger
}

// Log - записать audit entry
func (l *AuditLogger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.ID == "" {
		entry.ID = generateID()
	}
	if entry.Pipeline == "" && l.config.DefaultPipeline != "" {
		entry.Pipeline = l.config.DefaultPipeline
	}

	if l.asyncMode {
		select {
		case l.entryChannel <- entry:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-l.ctx.Done():
			return fmt.Errorf("logger is closed")
		default:
			// Буфер переполнен - записываем синхронно
			return l.writeEntry(ctx, entry)
		}
	}

	return l.writeEntry(ctx, entry)
}

// LogSuccess - записать успешную операцию
func (l *AuditLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	entry := NewEntry(operation, StatusSuccess)
	if err := l.Log(ctx, entry); err != nil {
		l.handleError(err)
	}
	return entry
}

// LogFailure - записать неудачную операцию
func (l *AuditLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	entry := NewEntry(operation, StatusFailure).WithError(err)
	if logErr := l.Log(ctx, entry); logErr != nil {
		l.handleError(logErr)
	}
	return entry
}

// writeEntry - записать entry во все appenders
func (l *AuditLogger) writeEntry(ctx context.Context, entry *Entry) error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error
	for _, appender := range appenders {
		if err := appender.Append(ctx, entry); err != nil {
			if firstError == nil {
				firstError = err
			}
			l.handleError(fmt.Errorf("appender failed: %w", err))
		}
	}

	return firstError
}

// processEntries - обработка entries в асинхронном режиме
func (l *AuditLogger) processEntries() {
	defer l.wg.Done()

	for {
		select {
		case entry := <-l.entryChannel:
			if err := l.writeEntry(context.Background(), entry); err != nil {
				l.handleError(err)
			}

		case <-l.ctx.Done():
			l.drainChannel()
			return
		}
	}
}

// drainChannel - дописать оставшиеся entries перед закрытием
func (l *AuditLogger) drainChannel() {
	for {
		select {
		case entry := <-l.entryChannel:
			l.writeEntry(context.Background(), entry)
		default:
			return
		}
	}
}

// Flush - сбросить буферы всех appenders
func (l *AuditLogger) Flush() error {
	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error
	for _, appender := range appenders {
		if flusher, ok := appender.(interface{ Flush() error }); ok {
			if err := flusher.Flush(); err != nil {
				if firstError == nil {
					firstError = err
				}
				l.handleError(fmt.Errorf("flush failed: %w", err))
			}
		}
	}

	return firstError
}

// Close - закрыть logger и все appenders
func (l *AuditLogger) Close() error {
	l.cancel()
	l.wg.Wait()
	l.Flush()

	l.mu.RLock()
	appenders := l.appenders
	l.mu.RUnlock()

	var firstError error
	for _, appender := range appenders {
		if err := appender.Close(); err != nil {
			if firstError == nil {
				firstError = err
			}
		}
	}

	return firstError
}

// handleError - обработка ошибки записи
func (l *AuditLogger) handleError(err error) {
	if l.config.OnError != nil {
		l.config.OnError(err)
	}
}

// NullLogger - пустой logger (аудит отключен, тесты)
type NullLogger struct{}

// NewNullLogger - создать null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (nl *NullLogger) Log(ctx context.Context, entry *Entry) error {
	return nil
}

func (nl *NullLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	return NewEntry(operation, StatusSuccess)
}

func (nl *NullLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	return NewEntry(operation, StatusFailure).WithError(err)
}

func (nl *NullLogger) Flush() error {
	return nil
}

func (nl *NullLogger) Close() error {
	return nil
}
