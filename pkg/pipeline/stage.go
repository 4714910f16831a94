package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/archive"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/audit"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/fetch"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/tabular"
	"github.com/ArmiaRomel/ETL-Pipeline-for-National-Highways-Traffic-Data-Analysis/pkg/xlsx"
)

// Stage - один шаг конвейера. Шаги выполняются строго последовательно,
// каждый читает артефакты предыдущих из workdir и пишет свои туда же.
// Артефакты перезаписываются целиком, поэтому повторный запуск любого
// шага дает тот же результат.
type Stage interface {
	// Name - имя шага для логов и CLI
	Name() string

	// Operation - операция для audit записей
	Operation() audit.Operation

	// Run выполняет шаг
	Run(ctx context.Context, state *State) error
}

// State - состояние запуска, передаваемое между шагами
type State struct {
	Config *Config

	// ArchivePath - путь к скачанному архиву
	ArchivePath string

	// UnpackedFiles - файлы, распакованные из архива
	UnpackedFiles []string

	// RowsExtracted - число строк в консолидированной таблице
	RowsExtracted int

	// ArtifactPath - путь к финальному артефакту
	ArtifactPath string
}

// path возвращает абсолютный путь файла внутри workdir
func (s *State) path(name string) string {
	return filepath.Join(s.Config.Workdir, name)
}

// Stages возвращает полный упорядоченный список шагов конвейера
func Stages() []Stage {
	return []Stage{
		&fetchStage{},
		&unpackStage{},
		&extractStage{},
		&consolidateStage{},
		&transformStage{},
		&outputStage{},
	}
}

// StageByName возвращает шаг по имени (для запуска одиночного шага из CLI)
func StageByName(name string) (Stage, error) {
	for _, stage := range Stages() {
		if stage.Name() == name {
			return stage, nil
		}
	}
	return nil, fmt.Errorf("unknown stage %q, must be one of: fetch, unpack, extract, consolidate, transform, output", name)
}

// fetchStage скачивает архив с данными в workdir
type fetchStage struct{}

func (s *fetchStage) Name() string               { return "fetch" }
func (s *fetchStage) Operation() audit.Operation { return audit.OpFetch }

func (s *fetchStage) Run(ctx context.Context, state *State) error {
	state.ArchivePath = state.path(state.Config.Source.Filename)

	_, err := fetch.Download(ctx, fetch.Config{
		URL:      state.Config.Source.URL,
		Checksum: state.Config.Source.Checksum,
		Timeout:  state.Config.SourceTimeout(),
		Region:   state.Config.Source.Region,
	}, state.ArchivePath)
	return err
}

// unpackStage распаковывает архив в workdir
type unpackStage struct{}

func (s *unpackStage) Name() string               { return "unpack" }
func (s *unpackStage) Operation() audit.Operation { return audit.OpUnpack }

func (s *unpackStage) Run(ctx context.Context, state *State) error {
	if state.ArchivePath == "" {
		state.ArchivePath = state.path(state.Config.Source.Filename)
	}

	result, err := archive.ExtractTarGz(state.ArchivePath, state.Config.Workdir)
	if err != nil {
		return err
	}
	state.UnpackedFiles = result.Files

	return archive.VerifyMembers(state.Config.Workdir, state.Config.Archive.ExpectedMembers)
}

// extractStage выполняет три извлечения: колонки из CSV, колонки из TSV
// и символьные диапазоны из fixed-width файла. Каждое извлечение пишет
// свой промежуточный CSV в workdir.
type extractStage struct{}

func (s *extractStage) Name() string               { return "extract" }
func (s *extractStage) Operation() audit.Operation { return audit.OpExtract }

func (s *extractStage) Run(ctx context.Context, state *State) error {
	cfg := state.Config

	if err := extractDelimited(state, cfg.Extract.CSV, ','); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	if err := extractDelimited(state, cfg.Extract.TSV, '\t'); err != nil {
		return fmt.Errorf("tsv: %w", err)
	}

	table, err := tabular.ReadFixedWidth(state.path(cfg.Extract.FixedWidth.File), cfg.Extract.FixedWidth.Ranges)
	if err != nil {
		return fmt.Errorf("fixed_width: %w", err)
	}
	if err := table.WriteCSV(state.path(cfg.Extract.FixedWidth.Output)); err != nil {
		return fmt.Errorf("fixed_width: %w", err)
	}

	return nil
}

// extractDelimited читает delimited файл и выделяет заданные колонки
func extractDelimited(state *State, cfg DelimitedExtract, sep rune) error {
	table, err := tabular.ReadDelimited(state.path(cfg.File), sep)
	if err != nil {
		return err
	}

	selected, err := tabular.SelectColumns(table, cfg.Columns, !cfg.Lenient)
	if err != nil {
		return err
	}

	return selected.WriteCSV(state.path(cfg.Output))
}

// consolidateStage объединяет три извлечения в одну таблицу column-wise.
// Порядок колонок: сначала CSV извлечение, затем TSV, затем fixed-width.
type consolidateStage struct{}

func (s *consolidateStage) Name() string               { return "consolidate" }
func (s *consolidateStage) Operation() audit.Operation { return audit.OpConsolidate }

func (s *consolidateStage) Run(ctx context.Context, state *State) error {
	cfg := state.Config

	inputs := []string{
		cfg.Extract.CSV.Output,
		cfg.Extract.TSV.Output,
		cfg.Extract.FixedWidth.Output,
	}

	tables := make([]*tabular.Table, 0, len(inputs))
	for _, name := range inputs {
		table, err := tabular.ReadCSV(state.path(name))
		if err != nil {
			return err
		}
		tables = append(tables, table)
	}

	consolidated, err := tabular.Consolidate(tables, cfg.Consolidate.AllowRagged)
	if err != nil {
		return err
	}
	state.RowsExtracted = consolidated.RowCount()

	return consolidated.WriteCSV(state.path(cfg.Consolidate.Output))
}

// transformStage переводит заданную колонку в верхний регистр
type transformStage struct{}

func (s *transformStage) Name() string               { return "transform" }
func (s *transformStage) Operation() audit.Operation { return audit.OpTransform }

func (s *transformStage) Run(ctx context.Context, state *State) error {
	cfg := state.Config

	table, err := tabular.ReadCSV(state.path(cfg.Consolidate.Output))
	if err != nil {
		return err
	}
	if state.RowsExtracted == 0 {
		state.RowsExtracted = table.RowCount()
	}

	transformed, err := tabular.UppercaseColumn(table, cfg.Transform.UppercaseColumn)
	if err != nil {
		return err
	}

	return transformed.WriteCSV(state.path(cfg.Transform.Output))
}

// outputStage записывает финальный артефакт в требуемом формате
type outputStage struct{}

func (s *outputStage) Name() string               { return "output" }
func (s *outputStage) Operation() audit.Operation { return audit.OpOutput }

func (s *outputStage) Run(ctx context.Context, state *State) error {
	cfg := state.Config
	source := state.path(cfg.Transform.Output)
	state.ArtifactPath = cfg.Output.Destination

	if err := os.MkdirAll(filepath.Dir(cfg.Output.Destination), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	switch cfg.Output.Type {
	case "xlsx":
		table, err := tabular.ReadCSV(source)
		if err != nil {
			return err
		}
		if state.RowsExtracted == 0 {
			state.RowsExtracted = table.RowCount()
		}
		return xlsx.WriteTable(table, cfg.Output.Destination, cfg.Output.Sheet, cfg.Output.Headers)

	case "csv":
		if len(cfg.Output.Headers) > 0 {
			table, err := tabular.ReadCSV(source)
			if err != nil {
				return err
			}
			if state.RowsExtracted == 0 {
				state.RowsExtracted = table.RowCount()
			}
			withHeader := tabular.NewTable()
			withHeader.Append(cfg.Output.Headers)
			for _, row := range table.Rows {
				withHeader.Append(row)
			}
			return withHeader.WriteCSV(cfg.Output.Destination)
		}
		return copyFile(source, cfg.Output.Destination)

	default:
		return fmt.Errorf("unsupported output type %q", cfg.Output.Type)
	}
}

// copyFile копирует файл с перезаписью назначения
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Sync()
}
