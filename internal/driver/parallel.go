package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"meel/internal/braces"
	"meel/internal/config"
	"meel/internal/diag"
	"meel/internal/observ"
	"meel/internal/source"
	"meel/internal/trace"
)

// CheckOptions tunes a check run.
type CheckOptions struct {
	MaxDiagnostics int
	Jobs           int
	// Extension selects files when checking a directory; defaults to ".meel".
	Extension string
	Cache     *DiskCache
	Timings   bool
	// Events, when set, receives progress for every file. The caller must
	// keep draining it until the check returns.
	Events chan<- Event
}

// CheckResult содержит результат проверки одного файла.
type CheckResult struct {
	Path    string
	FileID  source.FileID
	Loaded  bool
	Cached  bool
	Markers []braces.Marker
	Result  braces.Result
	Bag     *diag.Bag
	Timing  *observ.Report
}

// HasErrors reports whether the file produced error diagnostics.
func (r *CheckResult) HasErrors() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// ListTemplates возвращает отсортированный список файлов с расширением ext.
func ListTemplates(dir, ext string) ([]string, error) {
	if ext == "" {
		ext = config.DefaultTemplateExt
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ext) {
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

// CheckPath checks a single file or every template under a directory.
func CheckPath(ctx context.Context, path string, opts CheckOptions) (*source.FileSet, []CheckResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return CheckDir(ctx, path, opts)
	}
	fileSet := source.NewFileSetWithBase(filepath.Dir(path))
	results, err := CheckFiles(ctx, fileSet, []string{path}, opts)
	return fileSet, results, err
}

// CheckDir проверяет все шаблоны в директории параллельно.
func CheckDir(ctx context.Context, dir string, opts CheckOptions) (*source.FileSet, []CheckResult, error) {
	files, err := ListTemplates(dir, opts.Extension)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}
	results, err := CheckFiles(ctx, fileSet, files, opts)
	return fileSet, results, err
}

// CheckFiles loads files into fileSet and checks them with at most
// opts.Jobs workers. Results keep the order of files. A file that cannot be
// read yields an IOLoadFileError diagnostic instead of failing the run.
func CheckFiles(ctx context.Context, fileSet *source.FileSet, files []string, opts CheckOptions) ([]CheckResult, error) {
	ctx, runSpan := trace.Start(ctx, trace.ScopeDriver, "check")
	runSpan.WithExtra("files", strconv.Itoa(len(files)))

	// FileSet is not thread-safe: load everything up front
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make([]error, len(files))
	for i, path := range files {
		emit(opts.Events, Event{Path: path, Stage: StageLoad, Status: StatusWorking})
		fileIDs[i], loadErrors[i] = fileSet.Load(path)
		if loadErrors[i] != nil {
			// пустой виртуальный файл, чтобы диагностике было куда указывать
			fileIDs[i] = fileSet.AddVirtual(path, nil)
		}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]CheckResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(opts.MaxDiagnostics)
			if loadErr := loadErrors[i]; loadErr != nil {
				trace.Point(trace.FromContext(gctx), trace.ScopeDocument, "load", trace.ParentID(gctx), path+": "+loadErr.Error())
				results[i] = CheckResult{Path: path, FileID: fileIDs[i], Bag: bag}
				diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Span{File: fileIDs[i]},
					"failed to load file: "+loadErr.Error()).Emit()
				emit(opts.Events, Event{Path: path, Stage: StageDone, Status: StatusFailed, Errors: 1})
				return nil
			}

			file := fileSet.Get(fileIDs[i])
			res, err := checkFile(gctx, file, bag, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res.Path = path
			results[i] = *res

			status := StatusOK
			switch {
			case res.HasErrors():
				status = StatusErrors
			case res.Cached:
				status = StatusCached
			}
			emit(opts.Events, Event{Path: path, Stage: StageDone, Status: status, Errors: bag.Len()})
			return nil
		})
	}

	err := g.Wait()
	runSpan.EndErr(err)
	return results, err
}

func checkFile(ctx context.Context, file *source.File, bag *diag.Bag, opts CheckOptions) (*CheckResult, error) {
	ctx, docSpan := trace.Start(ctx, trace.ScopeDocument, "document")
	docSpan.WithExtra("path", file.Path)
	defer docSpan.End("")

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}

	res := &CheckResult{FileID: file.ID, Loaded: true, Bag: bag}

	var payload DiskPayload
	hit := false
	if opts.Cache != nil {
		done := timer.Track("cache")
		ok, err := opts.Cache.Get(file.Hash, &payload)
		if err != nil {
			// битый кеш не должен ломать проверку
			bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, source.Span{File: file.ID}, "cache read failed: "+err.Error()))
		}
		hit = ok
		done(strconv.FormatBool(hit))
	}

	if hit {
		res.Cached = true
		res.Markers = payload.Markers
		res.Result = payload.Result
	} else {
		emit(opts.Events, Event{Path: file.Path, Stage: StageScan, Status: StatusWorking})
		done := timer.Track("scan")
		_, sp := trace.Start(ctx, trace.ScopePass, "scan")
		res.Markers = braces.Scan(file.Content)
		sp.WithExtra("markers", strconv.Itoa(len(res.Markers))).End("")
		done(fmt.Sprintf("%d markers", len(res.Markers)))

		emit(opts.Events, Event{Path: file.Path, Stage: StageMatch, Status: StatusWorking})
		done = timer.Track("match")
		_, sp = trace.Start(ctx, trace.ScopePass, "match")
		res.Result = braces.Pair(res.Markers)
		sp.End("")
		done(fmt.Sprintf("%d matches", len(res.Result.Matches)))

		if opts.Cache != nil {
			err := opts.Cache.Put(file.Hash, &DiskPayload{
				Path:    file.Path,
				Hash:    file.Hash,
				Markers: res.Markers,
				Result:  res.Result,
			})
			if err != nil {
				bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, source.Span{File: file.ID}, "cache write failed: "+err.Error()))
			}
		}
	}

	done := timer.Track("diagnose")
	braces.Diagnose(res.Result, file.ID, diag.BagReporter{Bag: bag})
	done("")

	if timer != nil {
		report := timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(bag, file.ID, timingPayload{Kind: "check", Path: file.Path, Report: report})
	}
	return res, nil
}
