// Package compiler runs one compilation: it discovers the source tables,
// encodes them into a single store, generates the Go bindings and the
// facade, collects localization strings and writes every artifact.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"csvpack/internal/codegen"
	"csvpack/internal/config"
	"csvpack/internal/domain"
	"csvpack/internal/encoding"
	"csvpack/internal/fsio"
	"csvpack/internal/localize"
	"csvpack/internal/schema"
	"csvpack/pkg/bytebuffer"
)

var sourceExts = []string{".csv", ".tsv"}

// Options locate the inputs and outputs of a run.
type Options struct {
	TablesDir    string
	MatricesDir  string
	StringsDir   string
	CodeDir      string
	DataFile     string
	StringsFile  string
	ManifestFile string
	Codegen      codegen.Options
	Aliases      map[string]string
}

// OptionsFromConfig maps the loaded configuration onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TablesDir:    cfg.Sources.Tables,
		MatricesDir:  cfg.Sources.Matrices,
		StringsDir:   cfg.Sources.Strings,
		CodeDir:      cfg.Output.CodeDir,
		DataFile:     cfg.Output.DataFile,
		StringsFile:  cfg.Output.StringsFile,
		ManifestFile: cfg.Output.ManifestFile,
		Codegen: codegen.Options{
			Package:        cfg.Codegen.Package,
			RuntimeImport:  cfg.Codegen.RuntimeImport,
			L10nImport:     cfg.Codegen.L10nImport,
			Facade:         cfg.Codegen.Facade,
			SharedInstance: cfg.Codegen.SharedInstance,
		},
		Aliases: cfg.Types.Aliases,
	}
}

// Compiler compiles a source tree. It is safe to call Run repeatedly; each
// run starts from scratch.
type Compiler struct {
	opts   Options
	fs     fsio.FS
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Compiler. A nil logger discards output.
func New(opts Options, fs fsio.FS, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{opts: opts, fs: fs, logger: logger, now: time.Now}
}

// Result holds every artifact of a successful run, in memory.
type Result struct {
	RunID    string
	Data     []byte
	Strings  []byte
	Manifest *Manifest
	Code     []codegen.Output

	Localization *localize.Store
}

// Artifact is one output file.
type Artifact struct {
	Path string
	Data []byte
}

// run is the state of one compilation.
type run struct {
	id      string
	lattice *schema.Lattice
	w       *bytebuffer.Writer
	store   *localize.Store
	agg     *codegen.Aggregator
	files   []*codegen.File
	entries []TableEntry
}

// Run compiles the sources into memory. Nothing is written; any error
// aborts the whole run.
func (c *Compiler) Run(ctx context.Context) (*Result, error) {
	r := &run{
		id:      domain.NewID(),
		lattice: schema.NewLattice(c.opts.Aliases),
		w:       bytebuffer.NewWriter(),
		store:   localize.NewStore(),
		agg:     codegen.NewAggregator(c.opts.Codegen),
	}
	logger := c.logger.With("run_id", r.id)
	started := c.now()

	tables, err := c.fs.List(c.opts.TablesDir, sourceExts...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	for _, path := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.compileTable(r, path); err != nil {
			return nil, err
		}
		last := r.entries[len(r.entries)-1]
		logger.Debug("table compiled", "table", last.Name, "rows", last.Rows, "bytes", last.Length)
	}

	if c.opts.MatricesDir != "" {
		matrices, err := c.fs.List(c.opts.MatricesDir, sourceExts...)
		if err != nil {
			return nil, fmt.Errorf("list matrices: %w", err)
		}
		for _, path := range matrices {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := c.compileMatrix(r, path); err != nil {
				return nil, err
			}
			last := r.entries[len(r.entries)-1]
			logger.Debug("matrix compiled", "table", last.Name, "rows", last.Rows, "bytes", last.Length)
		}
	}

	if c.opts.StringsDir != "" {
		overrides, err := c.fs.List(c.opts.StringsDir, ".txt")
		if err != nil {
			return nil, fmt.Errorf("list strings: %w", err)
		}
		for _, path := range overrides {
			data, err := c.fs.ReadFile(path)
			if err != nil {
				return nil, err
			}
			if err := r.store.Merge(path, data); err != nil {
				return nil, err
			}
		}
	}

	facade, err := r.agg.File()
	if err != nil {
		return nil, err
	}
	code, err := c.render(append(r.files, facade))
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:   r.id,
		Data:    r.w.Bytes(),
		Strings: r.store.Bytes(),
		Manifest: &Manifest{
			RunID:       r.id,
			GeneratedAt: started.UTC(),
			Package:     c.opts.Codegen.Package,
			Facade:      c.opts.Codegen.Facade,
			Size:        r.w.Len(),
			Strings:     r.store.Len(),
			Tables:      r.entries,
		},
		Code:         code,
		Localization: r.store,
	}
	logger.Info("compile finished",
		"tables", len(r.entries),
		"bytes", len(res.Data),
		"strings", r.store.Len(),
		"files", len(code),
		"duration", c.now().Sub(started).String(),
	)
	return res, nil
}

func (c *Compiler) compileTable(r *run, path string) error {
	data, err := c.fs.ReadFile(path)
	if err != nil {
		return err
	}
	t, err := schema.ReadTable(path, data, r.lattice)
	if err != nil {
		return err
	}
	sec, err := encoding.EncodeTable(r.w, t, r.store)
	if err != nil {
		return err
	}
	f, err := codegen.BuildRowTable(t.Schema, c.opts.Codegen)
	if err != nil {
		return err
	}
	if err := r.agg.Register(f); err != nil {
		return err
	}
	r.files = append(r.files, f)
	r.entries = append(r.entries, rowEntry(t.Schema, sec))
	return nil
}

func (c *Compiler) compileMatrix(r *run, path string) error {
	data, err := c.fs.ReadFile(path)
	if err != nil {
		return err
	}
	m, err := schema.ReadMatrix(path, data, r.lattice)
	if err != nil {
		return err
	}
	sec, err := encoding.EncodeMatrix(r.w, m)
	if err != nil {
		return err
	}
	f, err := codegen.BuildMatrix(m, c.opts.Codegen)
	if err != nil {
		return err
	}
	if err := r.agg.Register(f); err != nil {
		return err
	}
	r.files = append(r.files, f)
	r.entries = append(r.entries, matrixEntry(m, sec))
	return nil
}

func (c *Compiler) render(files []*codegen.File) ([]codegen.Output, error) {
	renderer, err := codegen.NewRenderer()
	if err != nil {
		return nil, err
	}
	var out []codegen.Output
	for _, f := range files {
		rendered, err := renderer.Render(f)
		if err != nil {
			c.dumpUnformatted(err)
			return nil, fmt.Errorf("render %s: %w", f.Name, err)
		}
		out = append(out, rendered...)
	}
	return out, nil
}

// dumpUnformatted writes the source goimports rejected next to the code
// output as <file>.unformatted, for debugging the templates. It is the only
// file a failed run leaves behind.
func (c *Compiler) dumpUnformatted(err error) {
	var fe *codegen.FormatError
	if !errors.As(err, &fe) || c.opts.CodeDir == "" {
		return
	}
	path := filepath.Join(c.opts.CodeDir, fe.File+".unformatted")
	if werr := c.fs.WriteFile(path, fe.Source); werr != nil {
		c.logger.Warn("could not write unformatted source", "path", path, "error", werr)
		return
	}
	c.logger.Warn("unformatted source written", "path", path, "error", fe.Err)
}

// Artifacts lists the files a result produces under the configured paths.
func (c *Compiler) Artifacts(res *Result) ([]Artifact, error) {
	manifest, err := res.Manifest.Marshal()
	if err != nil {
		return nil, err
	}
	arts := []Artifact{
		{Path: c.opts.DataFile, Data: res.Data},
		{Path: c.opts.StringsFile, Data: res.Strings},
		{Path: c.opts.ManifestFile, Data: manifest},
	}
	for _, out := range res.Code {
		arts = append(arts, Artifact{Path: filepath.Join(c.opts.CodeDir, out.Name), Data: out.Content})
	}

	kept := arts[:0]
	for _, a := range arts {
		if a.Path != "" {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

// Write persists every artifact of res.
func (c *Compiler) Write(ctx context.Context, res *Result) ([]Artifact, error) {
	arts, err := c.Artifacts(res)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, a := range arts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return c.fs.WriteFile(a.Path, a.Data)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}
	c.logger.Info("artifacts written", "run_id", res.RunID, "files", len(arts))
	return arts, nil
}

// Compile runs and, on success, writes the artifacts.
func (c *Compiler) Compile(ctx context.Context) (*Result, []Artifact, error) {
	res, err := c.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	arts, err := c.Write(ctx, res)
	if err != nil {
		return nil, nil, err
	}
	return res, arts, nil
}
