// Package parseradapter is the engine's Parser Adapter: the external
// collaborator spec.md §1 places out of scope for the core ("the concrete
// AST parser/symbol solver"), implemented here as a concrete Java front end
// so the pipeline has something to run end to end. It walks a source root,
// parses every .java compilation unit with tree-sitter, and emits the raw
// entity/call facts the Source Model Builder (model/modelbuilder) and Call
// Graph builder (internal/callgraph) consume.
//
// Grounded on the teacher's graph.Initialize worker-pool file walk
// (bounded goroutines over a file channel, one *sitter.Parser per worker)
// and graph/parser_java.go's per-node-type extraction idiom (manual
// ChildCount loops with a type switch, ChildByFieldName for named fields),
// generalized from the teacher's own ad-hoc CodeGraph node shape to this
// engine's Type/Method/Field/CallEdge facts. Symbol resolution here is
// best-effort only (local-variable and import-table lookups, no full type
// inference) per spec §1's "may leave resolution partial" contract --
// the engine's sink matching is literal-FQN-prefix based precisely so a
// partially resolved callee type is still usable (spec §4.2).
package parseradapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/schollz/progressbar/v3"

	"github.com/shivasurya/code-pathfinder/archrules/model"
	"github.com/shivasurya/code-pathfinder/archrules/model/modelbuilder"
)

// Options configures a parse run, mirroring spec §6's parser adapter
// contract: parse(sourceRoot, {includeTests, resolveSymbols,
// excludePatterns[]}).
type Options struct {
	IncludeTests bool
	// ResolveSymbols toggles best-effort local-variable/import-table
	// receiver resolution for call sites. When false, every call edge's
	// callee is left as the literal source text of the call site, never
	// resolved to a model method.
	ResolveSymbols bool
	// ExcludePatterns exclude files by substring match on the file path.
	ExcludePatterns []string
	// ShowProgress enables a per-file progress bar, drawn on stderr. Writer
	// is not read by Parse.
	ShowProgress bool
	Writer       *os.File
}

// Stats summarizes one parse run.
type Stats struct {
	FilesParsed int
	FilesFailed int
}

// Result is the parser adapter's output: a frozen Source Model, the raw
// call-edge facts (for the Call Graph builder), and run statistics.
type Result struct {
	SourceModel *model.SourceModel
	CallEdges   []model.CallEdge
	Stats       Stats
}

// Parse walks sourceRoot for .java files and extracts entity/call facts
// from each. Per-file parse failures are recorded as diagnostics and do not
// abort the run (spec §7).
func Parse(ctx context.Context, sourceRoot string, opts Options) (*Result, error) {
	files, err := discoverFiles(sourceRoot, opts)
	if err != nil {
		return nil, fmt.Errorf("discovering source files under %s: %w", sourceRoot, err)
	}

	results := parseFiles(ctx, files, opts)

	b := modelbuilder.NewBuilder()
	var callEdges []model.CallEdge
	stats := Stats{}
	for _, r := range results {
		if r.err != nil {
			b.AddParseError(r.file, r.err.Error())
			stats.FilesFailed++
			continue
		}
		stats.FilesParsed++
		for _, t := range r.types {
			b.AddType(t)
		}
		for _, m := range r.methods {
			b.AddMethod(m)
		}
		for _, f := range r.fields {
			b.AddField(f)
		}
		for _, e := range r.edges {
			b.AddCallRelationship(e.CallerFqn, e.EffectiveCallee())
			callEdges = append(callEdges, e)
		}
	}

	return &Result{SourceModel: b.Freeze(), CallEdges: callEdges, Stats: stats}, nil
}

func discoverFiles(sourceRoot string, opts Options) ([]string, error) {
	var files []string
	err := filepath.WalkDir(sourceRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".java" {
			return nil
		}
		for _, pat := range opts.ExcludePatterns {
			if pat != "" && strings.Contains(path, pat) {
				return nil
			}
		}
		if !opts.IncludeTests && looksLikeTestFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func looksLikeTestFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "Test.java") || strings.HasSuffix(base, "Tests.java") ||
		strings.Contains(path, string(filepath.Separator)+"test"+string(filepath.Separator))
}

type fileResult struct {
	file    string
	err     error
	types   []model.Type
	methods []model.Method
	fields  []model.Field
	edges   []model.CallEdge
}

// parseFiles parses every file with a bounded worker pool, grounded on the
// teacher's graph.Initialize worker/file-channel shape (one *sitter.Parser
// per worker, reused across files assigned to it).
func parseFiles(ctx context.Context, files []string, opts Options) []fileResult {
	numWorkers := workerCount(len(files))
	fileChan := make(chan string, len(files))
	resultChan := make(chan fileResult, len(files))

	var bar *progressbar.ProgressBar
	if opts.ShowProgress && len(files) > 0 {
		bar = progressbar.Default(int64(len(files)), "parsing sources")
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			parser := sitter.NewParser()
			parser.SetLanguage(java.GetLanguage())
			defer parser.Close()
			for file := range fileChan {
				resultChan <- parseOneFile(ctx, parser, file, opts.ResolveSymbols)
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	for _, f := range files {
		fileChan <- f
	}
	close(fileChan)
	wg.Wait()
	close(resultChan)

	results := make([]fileResult, 0, len(files))
	for r := range resultChan {
		results = append(results, r)
	}
	return results
}

// workerCount bounds parallelism to available CPUs, mirroring the spirit of
// the teacher's fixed worker pool but scaled to the machine instead of a
// hardcoded constant.
func workerCount(fileCount int) int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > fileCount && fileCount > 0 {
		n = fileCount
	}
	if n < 1 {
		n = 1
	}
	return n
}

func parseOneFile(ctx context.Context, parser *sitter.Parser, file string, resolveSymbols bool) fileResult {
	src, err := os.ReadFile(file)
	if err != nil {
		return fileResult{file: file, err: fmt.Errorf("reading %s: %w", file, err)}
	}
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fileResult{file: file, err: fmt.Errorf("parsing %s: %w", file, err)}
	}
	cu := newCompilationUnit(file, src, resolveSymbols)
	cu.walkRoot(tree.RootNode())
	return fileResult{file: file, types: cu.types, methods: cu.methods, fields: cu.fields, edges: cu.edges}
}
