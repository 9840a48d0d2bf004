package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"cohere/internal/diag"
	"cohere/internal/source"
	"cohere/internal/trace"
)

// SourceExt is the extension of checked files.
const SourceExt = ".decl"

// CheckFile loads and checks a single file.
func CheckFile(ctx context.Context, path string, opts Options) (*source.FileSet, *UnitResult, error) {
	fileSet := source.NewFileSet()
	stop := opts.Timer.Measure(string(StageLoad), "")
	fileID, err := fileSet.Load(path)
	stop()
	if err != nil {
		return fileSet, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return fileSet, checkOne(ctx, fileSet, fileID, &opts), nil
}

// CheckSource checks in-memory content registered under name.
func CheckSource(ctx context.Context, name string, content []byte, opts Options) (*source.FileSet, *UnitResult) {
	fileSet := source.NewFileSet()
	fileID := fileSet.AddVirtual(name, content)
	return fileSet, checkOne(ctx, fileSet, fileID, &opts)
}

func checkOne(ctx context.Context, fileSet *source.FileSet, fileID source.FileID, opts *Options) *UnitResult {
	span, ctx := trace.Begin(ctx, trace.ScopeDriver, "check")
	defer span.End()
	file := fileSet.Get(fileID)
	emit(opts.Progress, Event{File: file.Path, Status: StatusQueued})
	return checkUnit(ctx, file, file.Path, opts, opts.Sink)
}

// listDeclFiles возвращает отсортированный список всех *.decl файлов в директории.
// Скрытые каталоги (.git, .cohere) пропускаются.
func listDeclFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ListFiles returns the files CheckDir would check, sorted.
func ListFiles(dir string) ([]string, error) {
	return listDeclFiles(dir)
}

// CheckDir checks every *.decl file under dir in parallel, each file being
// its own compilation unit. Results follow the sorted file order.
func CheckDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []UnitResult, error) {
	files, err := listDeclFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	span, ctx := trace.Begin(ctx, trace.ScopeDriver, "check-dir")
	defer span.End(trace.Int("files", len(files)))

	// FileSet не потокобезопасен: загружаем всё до запуска горутин
	stop := opts.Timer.Measure(string(StageLoad), "")
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		fileID, loadErr := fileSet.Load(path)
		if loadErr != nil {
			// пустой виртуальный файл, чтобы диагностике было куда указывать
			fileID = fileSet.AddVirtual(path, nil)
			loadErrors[path] = loadErr
		}
		fileIDs[path] = fileID
	}
	stop()

	opts.catalog()
	var sink diag.Reporter
	if opts.Sink != nil {
		sink = diag.NewLockedReporter(opts.Sink)
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]UnitResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, hadError := loadErrors[path]; hadError {
				bag := diag.NewBag(opts.MaxDiagnostics)
				msg := "failed to load file: " + loadErr.Error()
				at := source.Span{File: fileIDs[path]}
				d := diag.NewError(diag.IOLoadFileError, at, msg)
				bag.Add(d)
				diag.Emit(sink, d)
				results[i] = UnitResult{Path: path, FileID: fileIDs[path], Bag: bag}
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr, Diagnostics: 1})
				return nil
			}

			res := checkUnit(gctx, fileSet.Get(fileIDs[path]), path, &opts, sink)
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
