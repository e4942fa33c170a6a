package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/cwbudde/go-jack/internal/compiler"
	"github.com/cwbudde/go-jack/internal/errors"
	"github.com/cwbudde/go-jack/internal/lexer"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var compileJobs int

var compileCmd = &cobra.Command{
	Use:   "compile [path]",
	Short: "Compile a Jack file or directory of Jack files to VM code",
	Long: `Compile Jack source to VM code.

The path is either a single .jack file or a directory; in the
directory case every .jack file directly inside it is compiled
(subdirectories are not recursed). For each X.jack the compiler
writes X.vm next to it, overwriting any existing file.

Files are compiled independently: an error in one file does not stop
the others, but any failure makes the command exit non-zero.

Examples:
  # Compile a single class
  jackc compile Main.jack

  # Compile every class of a program
  jackc compile ./Pong

  # Limit the number of parallel workers
  jackc compile ./Pong --jobs 2`,
	Args: cobra.ExactArgs(1),
	RunE: compileJack,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().IntVarP(&compileJobs, "jobs", "j", runtime.NumCPU(), "number of files compiled in parallel")
}

func compileJack(cmd *cobra.Command, args []string) error {
	files, err := collectJackFiles(args[0])
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	// One worker per file; every worker owns its own tokenizer, symbol
	// table, and writer, so nothing is shared across compilations.
	var g errgroup.Group
	if compileJobs > 0 {
		g.SetLimit(compileJobs)
	}
	var stderrMu sync.Mutex

	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := compileFile(file, verbose); err != nil {
				stderrMu.Lock()
				fmt.Fprintln(os.Stderr, err)
				stderrMu.Unlock()
				return fmt.Errorf("compilation of %s failed", file)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Compiled %d file(s)\n", len(files))
	}
	return nil
}

// collectJackFiles resolves the input path to the list of files to
// compile: the file itself, or every .jack file directly inside the
// directory.
func collectJackFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input path does not exist: %s", path)
	}

	if !info.IsDir() {
		if !strings.HasSuffix(path, ".jack") {
			return nil, fmt.Errorf("input file must have .jack extension: %s", path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".jack") {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .jack files found in directory: %s", path)
	}
	return files, nil
}

// compileFile compiles one .jack file to the .vm file next to it. On a
// lexical or parse error any stale output file from a previous run is
// removed so it cannot be mistaken for current.
func compileFile(filename string, verbose bool) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	input := string(content)

	if verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	outFile := strings.TrimSuffix(filename, ".jack") + ".vm"

	output, err := compiler.CompileSource(input)
	if err != nil {
		os.Remove(outFile)
		return formatCompileError(err, input, filename)
	}

	if err := os.WriteFile(outFile, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}
	return nil
}

// formatCompileError renders positioned lexical and parse errors with
// their source line and caret; other errors pass through unchanged.
func formatCompileError(err error, input, filename string) error {
	switch e := err.(type) {
	case *compiler.ParseError:
		return errors.NewCompilerError(e.Pos, e.Message, input, filename)
	case *lexer.LexError:
		return errors.NewCompilerError(e.Pos, e.Message, input, filename)
	}
	return err
}
