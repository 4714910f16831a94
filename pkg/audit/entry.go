package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Level - уровень детализации аудита
type Level int

const (
	// LevelMinimal - только операция, статус и время
	LevelMinimal Level = iota

	// LevelStandard - плюс ресурс, количество строк, метаданные
	LevelStandard

	// LevelFull - вся информация
	LevelFull
)

// String - строковое представление уровня
func (l Level) String() string {
	switch l {
	case LevelMinimal:
		return "minimal"
	case LevelStandard:
		return "standard"
	case LevelFull:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// ParseLevel - разбор уровня из конфигурации
func ParseLevel(s string) (Level, error) {
	switch s {
	case "", "standard":
		return LevelStandard, nil
	case "minimal":
		return LevelMinimal, nil
	case "full":
		return LevelFull, nil
	default:
		return LevelStandard, fmt.Errorf("unknown audit level '%s', must be minimal, standard or full", s)
	}
}

// Operation - шаг конвейера или запуск целиком
type Operation string

const (
	OpFetch       Operation = "fetch"
	OpUnpack      Operation = "unpack"
	OpExtract     Operation = "extract"
	OpConsolidate Operation = "consolidate"
	OpTransform   Operation = "transform"
	OpOutput      Operation = "output"
	OpRun         Operation = "run"
)

// Status - статус выполнения операции
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Entry - запись в audit логе
type Entry struct {
	// ID - уникальный идентификатор записи
	ID string `json:"id"`

	// Timestamp - время операции
	Timestamp time.Time `json:"timestamp"`

	// Operation - шаг конвейера
	Operation Operation `json:"operation"`

	// Status - статус выполнения
	Status Status `json:"status"`

	// Pipeline - имя конвейера
	Pipeline string `json:"pipeline,omitempty"`

	// Resource - артефакт шага (файл, URL)
	Resource string `json:"resource,omitempty"`

	// Records - количество обработанных строк
	Records int64 `json:"records,omitempty"`

	// Duration - длительность операции
	Duration time.Duration `json:"duration,omitempty"`

	// ErrorMessage - сообщение об ошибке
	ErrorMessage string `json:"error_message,omitempty"`

	// Metadata - дополнительные метаданные
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEntry - создать новую audit запись
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

// WithPipeline - установить имя конвейера
func (e *Entry) WithPipeline(name string) *Entry {
	e.Pipeline = name
	return e
}

// WithResource - установить артефакт
func (e *Entry) WithResource(resource string) *Entry {
	e.Resource = resource
	return e
}

// WithRecords - установить количество строк
func (e *Entry) WithRecords(count int64) *Entry {
	e.Records = count
	return e
}

// WithDuration - установить длительность
func (e *Entry) WithDuration(duration time.Duration) *Entry {
	e.Duration = duration
	return e
}

// WithError - установить ошибку (переводит статус в failure)
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithMetadata - добавить метаданные
func (e *Entry) WithMetadata(key string, value any) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// ToJSON - преобразовать в JSON
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление для text-формата
func (e *Entry) String() string {
	return fmt.Sprintf("[%s] %s %s pipeline=%s resource=%s records=%d duration=%v%s",
		e.Timestamp.Format(time.RFC3339),
		e.Operation,
		e.Status,
		e.Pipeline,
		e.Resource,
		e.Records,
		e.Duration,
		formatError(e.ErrorMessage),
	)
}

func formatError(msg string) string {
	if msg == "" {
		return ""
	}
	return " error=" + msg
}

// FilterByLevel - копия записи, отфильтрованная по уровню детализации
func (e *Entry) FilterByLevel(level Level) *Entry {
	filtered := *e

	switch level {
	case LevelMinimal:
		filtered.Resource = ""
		filtered.Records = 0
		filtered.Metadata = nil

	case LevelStandard:
		filtered.Metadata = nil

	case LevelFull:
		if e.Metadata != nil {
			filtered.Metadata = make(map[string]any, len(e.Metadata))
			for k, v := range e.Metadata {
				filtered.Metadata[k] = v
			}
		}
	}

	return &filtered
}

// generateID - уникальный ID записи
func generateID() string {
	return fmt.Sprintf("audit-%d", time.Now().UnixNano())
}
