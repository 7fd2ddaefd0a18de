package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/abcd-project/abcd/cfgbuild"
	"github.com/abcd-project/abcd/container"
	"github.com/abcd-project/abcd/decode"
	"github.com/abcd-project/abcd/emit"
	"github.com/abcd-project/abcd/ir"
	"github.com/abcd-project/abcd/recover"
	"github.com/abcd-project/abcd/structure"
)

func newDecompileCmd() *cobra.Command {
	var outDir string
	var jobs int
	var verify bool

	cmd := &cobra.Command{
		Use:   "decompile <file.abc>",
		Short: "Decompile every method in a container to JavaScript source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := container.Open(args[0])
			if err != nil {
				return err
			}
			defer cf.Close()

			if jobs <= 0 {
				jobs = runtime.NumCPU()
			}
			return decompileAll(cf, outDir, jobs, verify)
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory (default: stdout)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of concurrent workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&verify, "verify", false, "run CFG well-formedness checks on each method before structuring")
	return cmd
}

type methodJob struct {
	className  string
	sourceFile string // from debug info, empty when absent
	method     container.MethodData
	codeOff    uint32
}

type methodResult struct {
	job    methodJob
	source []byte
	err    error
}

// decompileAll fans a container's methods out across a bounded worker pool:
// each worker owns a distinct goroutine but all workers share the same
// read-only File and resolver, since container parsing never mutates the
// underlying mapping.
func decompileAll(cf *container.File, outDir string, jobs int, verify bool) error {
	classes, err := cf.Classes()
	if err != nil {
		return err
	}

	var work []methodJob
	for _, c := range classes {
		for _, methodOff := range c.MethodOffsets {
			m, err := cf.Method(methodOff)
			if err != nil {
				warnf("%v", err)
				continue
			}
			if !m.HasCode {
				continue
			}
			job := methodJob{className: c.Name, method: m, codeOff: m.Offset}
			if c.HasSourceFile {
				job.sourceFile = c.SourceFile
			}
			work = append(work, job)
		}
	}

	jobCh := make(chan methodJob)
	resultCh := make(chan methodResult)
	var wg sync.WaitGroup

	resolver := cf.Resolver()
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				src, err := decompileOne(cf, resolver, job, verify)
				resultCh <- methodResult{job: job, source: src, err: err}
			}
		}()
	}

	go func() {
		for _, j := range work {
			jobCh <- j
		}
		close(jobCh)
	}()
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var outErr error
	for res := range resultCh {
		if res.err != nil {
			warnf("%s.%s: %v", res.job.className, res.job.method.Name, res.err)
			continue
		}
		if err := writeResult(outDir, res); err != nil {
			outErr = err
		}
	}
	return outErr
}

func decompileOne(cf *container.File, resolver recover.Resolver, job methodJob, verify bool) ([]byte, error) {
	m := job.method
	code, err := cf.Code(m.CodeOff)
	if err != nil {
		return nil, container.MethodError{Offset: job.codeOff, Err: err}
	}

	res := decode.Decode(code.Instructions)
	for _, w := range res.Warnings {
		warnf("%s.%s+%#x: %s", job.className, m.Name, w.Offset, w.Message)
	}

	if verify {
		verifyCFG(job.className, m.Name, res.Instructions, code.TryBlocks)
	}

	tries := make([]ir.TryRegion, 0, len(code.TryBlocks))
	for _, tr := range code.TryBlocks {
		catches := make([]ir.CatchInfo, 0, len(tr.CatchBlocks))
		for _, c := range tr.CatchBlocks {
			catches = append(catches, ir.CatchInfo{TypeIdx: c.TypeIdx, HandlerPC: c.HandlerPC, CodeSize: c.CodeSize})
		}
		tries = append(tries, ir.TryRegion{StartPC: tr.StartPC, Length: tr.Length, Catches: catches})
	}

	g := cfgbuild.Build(res.Instructions, tries)
	stmts := structure.Structure(g, resolver, job.codeOff, code.NumVregs)

	var buf bytes.Buffer
	name := recover.CleanABCName(m.Name)
	userParamCount := structure.UserParamCount(code.NumArgs)
	if err := emit.WriteFunction(&buf, name, userParamCount, stmts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeResult(outDir string, res methodResult) error {
	if outDir == "" {
		fmt.Printf("// %s.%s\n%s\n", res.job.className, res.job.method.Name, res.source)
		return nil
	}
	path := outputPath(outDir, res.job)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, res.source, 0o644)
}

// outputPath mirrors the class's original source path when debug info
// recorded one, falling back to a flat className.methodName.js layout
// when it didn't. Each method gets its own file; methods from the same
// source file land side by side in that file's mirrored directory, named
// sourceBase.methodName.js.
func outputPath(outDir string, job methodJob) string {
	if job.sourceFile != "" {
		rel := filepath.FromSlash(job.sourceFile)
		if filepath.IsAbs(rel) || strings.Contains(rel, "..") {
			rel = sanitizeFileComponent(job.sourceFile)
		}
		dir := filepath.Join(outDir, filepath.Dir(rel))
		name := fmt.Sprintf("%s.%s.js", sanitizeFileComponent(filepath.Base(rel)), sanitizeFileComponent(job.method.Name))
		return filepath.Join(dir, name)
	}
	name := fmt.Sprintf("%s.%s.js", sanitizeFileComponent(job.className), sanitizeFileComponent(job.method.Name))
	return filepath.Join(outDir, name)
}

func sanitizeFileComponent(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "_"
	}
	return string(out)
}
