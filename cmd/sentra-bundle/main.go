// cmd/sentra-bundle/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sentra-bundle/internal/bundler/emit"
	"sentra-bundle/internal/bundler/orchestrator"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.SetFlags(0)
		log.Fatalf("sentra-bundle: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "sentra-bundle",
		Short:   "Bundle a Sentra program and its first-party dependencies into a single file",
		Version: version,
	}
	root.AddCommand(newBundleCmd())
	return root
}

func newBundleCmd() *cobra.Command {
	var (
		outputPath      string
		emitRequirements bool
		configPath      string
		traceImports    bool
		timeout         time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bundle <entry>",
		Short: "Resolve, order, and merge an entry module's first-party imports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := orchestrator.Bundle(ctx, orchestrator.Options{
				EntryPath:        args[0],
				ConfigPath:       configPath,
				EmitRequirements: emitRequirements,
				TraceImports:     traceImports,
			})
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			for _, t := range result.Trace {
				fmt.Fprintln(cmd.ErrOrStderr(), "trace:", t)
			}

			if outputPath == "" || outputPath == "-" {
				fmt.Fprint(cmd.OutOrStdout(), result.Source)
			} else if err := os.WriteFile(outputPath, []byte(result.Source), 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			if emitRequirements {
				reqPath := requirementsPath(outputPath)
				if err := os.WriteFile(reqPath, []byte(emit.WriteManifest(result.Manifest)), 0o644); err != nil {
					return fmt.Errorf("writing requirements manifest: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&emitRequirements, "emit-requirements", false, "Also write a third-party requirements manifest")
	cmd.Flags().StringVar(&configPath, "config", "", "Explicit config file, overriding every other precedence tier")
	cmd.Flags().BoolVar(&traceImports, "trace-imports", false, "Print a discovery trace of every module's imports to stderr")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Wall-clock deadline for the bundling run")

	return cmd
}

func requirementsPath(outputPath string) string {
	if outputPath == "" || outputPath == "-" {
		return "requirements.txt"
	}
	return outputPath + ".requirements.txt"
}

