package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jackc",
	Short: "Jack compiler targeting the stack VM",
	Long: `go-jack is a Go implementation of a compiler for the Jack
programming language from the Nand2Tetris project.

It translates .jack source files into textual VM code for the
course's stack machine, one .vm file per class. The translator is a
single-pass recursive-descent parser fused with symbol-table
maintenance and code generation; there is no intermediate tree.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
