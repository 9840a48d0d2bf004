package driver

import (
	"context"
	"time"

	"cohere/internal/ast"
	"cohere/internal/coherence"
	"cohere/internal/diag"
	"cohere/internal/lexer"
	"cohere/internal/parser"
	"cohere/internal/project"
	"cohere/internal/source"
	"cohere/internal/symbols"
	"cohere/internal/trace"
)

// UnitResult is the outcome of checking one compilation unit (one file).
type UnitResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	// Builder, ASTFile и Table пусты, если результат взят из кеша или файл не загрузился.
	Builder *ast.Builder
	ASTFile ast.FileID
	Table   *symbols.Table
	Stats   coherence.Stats
	Cached  bool
}

// HasErrors reports whether the unit produced any error diagnostic.
func (r *UnitResult) HasErrors() bool {
	return r != nil && r.Bag != nil && r.Bag.HasErrors()
}

// unitRun — состояние проверки одной единицы.
type unitRun struct {
	opts   *Options
	file   *source.File
	path   string
	bag    *diag.Bag
	rep    diag.Reporter
	result *UnitResult
}

// checkUnit runs lex/parse → resolve → coherence over file.
// The disk cache, when configured, is consulted first and filled afterwards.
func checkUnit(ctx context.Context, file *source.File, path string, opts *Options, sink diag.Reporter) *UnitResult {
	span, ctx := trace.BeginUnit(ctx, path)
	started := time.Now()

	cat := opts.catalog()
	bag := diag.NewBag(opts.MaxDiagnostics)
	key := unitKey(project.Digest(file.Hash), project.Digest(cat.Digest()), bag.Cap())

	if res, ok := loadCached(opts, key, file, path); ok {
		replay(res.Bag, sink)
		emit(opts.Progress, Event{
			File: path, Stage: StageCoherence, Status: StatusCached, Elapsed: time.Since(started),
			Diagnostics: res.Bag.Len(), Violations: res.Stats.Violations,
		})
		span.End(trace.Bool("cached", true), trace.Int("diagnostics", res.Bag.Len()))
		return res
	}

	u := &unitRun{
		opts: opts,
		file: file,
		path: path,
		bag:  bag,
		rep:  &diag.BagReporter{Bag: bag},
		result: &UnitResult{
			Path:   path,
			FileID: file.ID,
			Bag:    bag,
		},
	}
	if sink != nil {
		u.rep = diag.MultiReporter{u.rep, sink}
	}

	u.phase(ctx, StageParse, u.parse)
	u.phase(ctx, StageResolve, u.resolve)
	u.phase(ctx, StageCoherence, u.coherence)
	bag.Sort()

	if opts.Cache != nil {
		payload := bagToDiskPayload(path, project.Digest(file.Hash), project.Digest(cat.Digest()), bag, u.result.Stats)
		if err := opts.Cache.Put(key, payload); err != nil {
			// ошибка записи в кеш не влияет на результат
			trace.Point(ctx, trace.ScopeUnit, "cache-put-failed", trace.Str("error", err.Error()))
		}
	}

	status := StatusDone
	if bag.HasErrors() {
		status = StatusError
	}
	emit(opts.Progress, Event{
		File: path, Stage: StageCoherence, Status: status, Elapsed: time.Since(started),
		Diagnostics: bag.Len(), Violations: u.result.Stats.Violations,
	})
	span.End(trace.Int("diagnostics", bag.Len()), trace.Int("violations", u.result.Stats.Violations))
	return u.result
}

// phase runs one pass of the unit under its own trace span and timer entry.
func (u *unitRun) phase(ctx context.Context, stage Stage, fn func(context.Context) []trace.Attr) {
	emit(u.opts.Progress, Event{File: u.path, Stage: stage, Status: StatusWorking})
	stop := u.opts.Timer.Measure(string(stage), u.path)
	span, pctx := trace.BeginPass(ctx, string(stage))
	span.End(fn(pctx)...)
	stop()
}

func (u *unitRun) parse(context.Context) []trace.Attr {
	builder := ast.NewBuilder(ast.Hints{}, nil)
	lx := lexer.New(u.file, lexer.Options{Reporter: u.rep})
	res := parser.ParseFile(lx, builder, parser.Options{
		MaxErrors: uint(u.bag.Cap()),
		Reporter:  u.rep,
	})
	u.result.Builder = builder
	u.result.ASTFile = res.File
	return []trace.Attr{trace.Int("items", int(builder.Items.Arena.Len()))}
}

func (u *unitRun) resolve(context.Context) []trace.Attr {
	u.result.Table = symbols.ResolveFile(u.result.Builder, u.result.ASTFile, symbols.ResolveOptions{
		Reporter: u.rep,
		Catalog:  u.opts.catalog(),
	})
	return []trace.Attr{trace.Int("traits", len(u.result.Table.Traits()))}
}

func (u *unitRun) coherence(ctx context.Context) []trace.Attr {
	u.result.Stats = coherence.Check(ctx, coherence.Input{
		Builder: u.result.Builder,
		File:    u.result.ASTFile,
		Table:   u.result.Table,
	}, u.rep)
	return u.result.Stats.Attrs()
}

func loadCached(opts *Options, key project.Digest, file *source.File, path string) (*UnitResult, bool) {
	if opts.Cache == nil {
		return nil, false
	}
	stop := opts.Timer.Measure("cache", path)
	defer stop()
	var payload DiskPayload
	ok, err := opts.Cache.Get(key, &payload)
	if err != nil || !ok {
		return nil, false
	}
	return &UnitResult{
		Path:   path,
		FileID: file.ID,
		Bag:    diskPayloadToBag(&payload, file.ID, opts.MaxDiagnostics),
		Stats:  payload.Stats,
		Cached: true,
	}, true
}

func replay(bag *diag.Bag, sink diag.Reporter) {
	if sink == nil {
		return
	}
	for _, d := range bag.Items() {
		sink.Report(d)
	}
}
