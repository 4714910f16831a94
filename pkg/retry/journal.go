package retry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry - запись о запуске, провалившем все попытки
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"` // Имя конвейера или шага
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
}

// JournalConfig - конфигурация журнала проваленных запусков
type JournalConfig struct {
	// Enabled - включить журнал
	Enabled bool

	// FilePath - путь к JSON файлу журнала
	FilePath string

	// MaxSize - максимальное число записей; при превышении
	// старые записи вытесняются
	MaxSize int
}

// Journal - file-based журнал запусков, исчерпавших retry лимит.
// Дает оператору список провалов для ручного повторного запуска
// (`tolletl -run` перезаписывает артефакты, так что повтор безопасен).
type Journal struct {
	mu      sync.Mutex
	config  JournalConfig
	entries []Entry
}

// NewJournal создает журнал, загружая существующие записи если файл есть
func NewJournal(config JournalConfig) (*Journal, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("journal file path is required")
	}
	if config.MaxSize <= 0 {
		config.MaxSize = 1000
	}

	j := &Journal{config: config}

	data, err := os.ReadFile(config.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return j, nil
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &j.entries); err != nil {
			return nil, fmt.Errorf("failed to parse journal: %w", err)
		}
	}

	return j, nil
}

// Add добавляет запись, вытесняя старые при переполнении
func (j *Journal) Add(entry Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, entry)
	if len(j.entries) > j.config.MaxSize {
		j.entries = j.entries[len(j.entries)-j.config.MaxSize:]
	}
}

// Entries возвращает копию всех записей
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len возвращает число записей
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Save сохраняет журнал на диск
func (j *Journal) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.config.FilePath), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	data, err := json.MarshalIndent(j.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	if err := os.WriteFile(j.config.FilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}

	return nil
}
