package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/notify"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/resultlog"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/retry"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/tabular"
)

// Config содержит полную конфигурацию конвейера обработки трафика
type Config struct {
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Description string            `yaml:"description"`
	Owner       string            `yaml:"owner"`
	Workdir     string            `yaml:"workdir"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Source      SourceConfig      `yaml:"source"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Extract     ExtractConfig     `yaml:"extract"`
	Consolidate ConsolidateConfig `yaml:"consolidate"`
	Transform   TransformConfig   `yaml:"transform"`
	Output      OutputConfig      `yaml:"output"`
	Retry       RetryConfig       `yaml:"retry"`
	Notify      notify.Config     `yaml:"notify"`
	Audit       AuditConfig       `yaml:"audit"`
	ResultLog   resultlog.Config  `yaml:"result_log"`
}

// ScheduleConfig определяет расписание для daemon режима
type ScheduleConfig struct {
	// Interval - период между запусками ("24h", "30m"); пустое = 24h
	Interval string `yaml:"interval"`
	// At - время суток первого запуска "HH:MM" (опционально)
	At string `yaml:"at"`
}

// SourceConfig определяет источник архива с данными
type SourceConfig struct {
	URL      string `yaml:"url"`      // http(s):// или s3:// адрес архива
	Checksum string `yaml:"checksum"` // Ожидаемый xxh3 хеш (hex), пустое = без проверки
	Timeout  int    `yaml:"timeout"`  // Таймаут скачивания в секундах (0 = 60)
	Region   string `yaml:"region"`   // AWS регион, только для s3://
	Filename string `yaml:"filename"` // Локальное имя архива в workdir
}

// ArchiveConfig определяет параметры распаковки
type ArchiveConfig struct {
	// ExpectedMembers - файлы, которые обязаны присутствовать после
	// распаковки; пустой список = проверка отключена
	ExpectedMembers []string `yaml:"expected_members"`
}

// ExtractConfig объединяет три извлечения из распакованных файлов
type ExtractConfig struct {
	CSV        DelimitedExtract  `yaml:"csv"`
	TSV        DelimitedExtract  `yaml:"tsv"`
	FixedWidth FixedWidthExtract `yaml:"fixed_width"`
}

// DelimitedExtract определяет извлечение колонок из delimited файла
type DelimitedExtract struct {
	File    string `yaml:"file"`    // Имя файла в workdir
	Columns []int  `yaml:"columns"` // Индексы колонок (0-based), порядок сохраняется
	Output  string `yaml:"output"`  // Имя выходного CSV в workdir
	// Lenient - не считать ошибкой строку короче максимального индекса
	// (недостающие поля заполняются пустой строкой)
	Lenient bool `yaml:"lenient"`
}

// FixedWidthExtract определяет извлечение символьных диапазонов
type FixedWidthExtract struct {
	File   string              `yaml:"file"`   // Имя файла в workdir
	Ranges []tabular.CharRange `yaml:"ranges"` // 1-based inclusive диапазоны
	Output string              `yaml:"output"` // Имя выходного CSV в workdir
}

// ConsolidateConfig определяет горизонтальное объединение извлечений
type ConsolidateConfig struct {
	Output string `yaml:"output"` // Имя консолидированного CSV в workdir
	// AllowRagged - разрешить расхождение числа строк между извлечениями
	// (недостающие ячейки заполняются пустыми). По умолчанию расхождение
	// считается ошибкой данных.
	AllowRagged bool `yaml:"allow_ragged"`
}

// TransformConfig определяет финальную трансформацию
type TransformConfig struct {
	// UppercaseColumn - индекс колонки (0-based) для перевода в верхний регистр
	UppercaseColumn int    `yaml:"uppercase_column"`
	Output          string `yaml:"output"` // Имя трансформированного CSV в workdir
}

// OutputConfig определяет финальный артефакт конвейера
type OutputConfig struct {
	Type        string   `yaml:"type"`        // Формат: csv, xlsx
	Destination string   `yaml:"destination"` // Путь к выходному файлу
	Sheet       string   `yaml:"sheet"`       // Имя листа, только для xlsx
	Headers     []string `yaml:"headers"`     // Строка заголовков (опционально)
}

// RetryConfig определяет политику повторов запуска
type RetryConfig struct {
	Disabled     bool   `yaml:"disabled"`
	MaxAttempts  int    `yaml:"max_attempts"`  // Включая первую попытку
	DelaySeconds int    `yaml:"delay_seconds"` // Задержка перед повтором
	Backoff      string `yaml:"backoff"`       // constant, linear, exponential
	JournalPath  string `yaml:"journal_path"`  // Журнал проваленных запусков
}

// AuditConfig определяет параметры аудита запусков
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`   // minimal, standard, full
	Output  string `yaml:"output"`  // Путь к файлу лога
	Format  string `yaml:"format"`  // json, text
	SQLite  string `yaml:"sqlite"`  // Путь к SQLite истории запусков (опционально)
	Console bool   `yaml:"console"` // Дублировать в stderr
}

// LoadConfig загружает конфигурацию из YAML файла
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("pipeline name is required")
	}

	if _, err := c.Schedule.IntervalDuration(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if c.Schedule.At != "" {
		if _, err := time.Parse("15:04", c.Schedule.At); err != nil {
			return fmt.Errorf("schedule: 'at' must be HH:MM, got %q", c.Schedule.At)
		}
	}

	if c.Source.URL == "" {
		return fmt.Errorf("source: url is required")
	}

	if err := c.Extract.CSV.Validate("csv"); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := c.Extract.TSV.Validate("tsv"); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := c.Extract.FixedWidth.Validate(); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	if c.Transform.UppercaseColumn < 0 {
		return fmt.Errorf("transform: uppercase_column must be non-negative")
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}

	if err := c.Notify.Validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if err := c.ResultLog.Validate(); err != nil {
		return fmt.Errorf("result_log: %w", err)
	}

	return nil
}

// Validate проверяет корректность DelimitedExtract
func (d *DelimitedExtract) Validate(kind string) error {
	if d.File == "" {
		return fmt.Errorf("%s: file is required", kind)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("%s: at least one column index is required", kind)
	}
	for _, col := range d.Columns {
		if col < 0 {
			return fmt.Errorf("%s: column index must be non-negative, got %d", kind, col)
		}
	}
	return nil
}

// Validate проверяет корректность FixedWidthExtract
func (f *FixedWidthExtract) Validate() error {
	if f.File == "" {
		return fmt.Errorf("fixed_width: file is required")
	}
	if len(f.Ranges) == 0 {
		return fmt.Errorf("fixed_width: at least one character range is required")
	}
	for i, r := range f.Ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("fixed_width: range[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate проверяет корректность OutputConfig
func (o *OutputConfig) Validate() error {
	o.Type = strings.ToLower(o.Type)
	switch o.Type {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("unsupported type '%s', must be 'csv' or 'xlsx'", o.Type)
	}
	if o.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	return nil
}

// Validate проверяет корректность RetryConfig
func (r *RetryConfig) Validate() error {
	if r.Disabled {
		return nil
	}
	if r.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", r.MaxAttempts)
	}
	if r.DelaySeconds < 0 {
		return fmt.Errorf("delay_seconds must be non-negative")
	}
	switch retry.BackoffStrategy(r.Backoff) {
	case retry.BackoffConstant, retry.BackoffLinear, retry.BackoffExponential:
	default:
		return fmt.Errorf("backoff must be constant, linear or exponential, got %q", r.Backoff)
	}
	return nil
}

// ToRetry преобразует в конфигурацию retry механизма
func (r *RetryConfig) ToRetry() retry.Config {
	if r.Disabled {
		return retry.Config{Enabled: false}
	}
	config := retry.EnableRetry(r.MaxAttempts, time.Duration(r.DelaySeconds)*time.Second)
	config.BackoffStrategy = retry.BackoffStrategy(r.Backoff)
	if r.JournalPath != "" {
		config.Journal = retry.JournalConfig{
			Enabled:  true,
			FilePath: r.JournalPath,
		}
	}
	return config
}

// IntervalDuration возвращает период расписания
func (s *ScheduleConfig) IntervalDuration() (time.Duration, error) {
	if s.Interval == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %v", d)
	}
	return d, nil
}

// SetDefaults устанавливает значения по умолчанию для необязательных полей.
// Дефолты повторяют политику оригинального конвейера: ежедневный запуск,
// один повтор через 5 минут.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
	if c.Workdir == "" {
		c.Workdir = "staging"
	}

	if c.Source.Timeout == 0 {
		c.Source.Timeout = 60
	}
	if c.Source.Filename == "" {
		c.Source.Filename = "tolldata.tgz"
	}

	if c.Extract.CSV.Output == "" {
		c.Extract.CSV.Output = "csv_data.csv"
	}
	if c.Extract.TSV.Output == "" {
		c.Extract.TSV.Output = "tsv_data.csv"
	}
	if c.Extract.FixedWidth.Output == "" {
		c.Extract.FixedWidth.Output = "fixed_width_data.csv"
	}

	if c.Consolidate.Output == "" {
		c.Consolidate.Output = "extracted_data.csv"
	}

	if c.Transform.Output == "" {
		c.Transform.Output = "transformed_data.csv"
	}

	if c.Output.Type == "" {
		c.Output.Type = "csv"
	}
	if c.Output.Type == "xlsx" && c.Output.Sheet == "" {
		c.Output.Sheet = c.Name
	}

	if !c.Retry.Disabled {
		if c.Retry.MaxAttempts == 0 {
			c.Retry.MaxAttempts = 2 // Первая попытка + один повтор
		}
		if c.Retry.DelaySeconds == 0 {
			c.Retry.DelaySeconds = 300 // 5 минут
		}
		if c.Retry.Backoff == "" {
			c.Retry.Backoff = string(retry.BackoffConstant)
		}
	}

	if c.Audit.Enabled {
		if c.Audit.Level == "" {
			c.Audit.Level = "standard"
		}
		if c.Audit.Format == "" {
			c.Audit.Format = "json"
		}
	}

	if c.ResultLog.Enabled && c.ResultLog.TTL == 0 {
		c.ResultLog.TTL = 3600 // 1 час
	}
}

// SourceTimeout возвращает таймаут скачивания
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.Timeout) * time.Second
}
