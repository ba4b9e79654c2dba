package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/obc/format"
	"github.com/dhamidi/obc/oberon"
	"github.com/dhamidi/obc/parse"
	"github.com/dhamidi/obc/project"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var configPath string
	var jobs int
	var maxDepth int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "check [file or pattern...]",
		Short: "Parse and check Oberon sources",
		Long: `Parse every source of the project, or the given files and glob patterns,
and report syntax errors and the results of the semantic checks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject(configPath)
			if err != nil {
				return err
			}
			if jobs > 0 {
				proj.Config.Jobs = jobs
			}
			if maxDepth > 0 {
				proj.Config.MaxDepth = maxDepth
			}

			files, err := sourceFiles(proj, args)
			if err != nil {
				return err
			}
			fe, err := proj.Frontend()
			if err != nil {
				return err
			}

			results, err := checkFiles(cmd.Context(), fe, proj.Config.Entry, files, proj.Config.Jobs)
			if err != nil {
				return err
			}

			var report func(src *format.Source, err *parse.Error) error
			switch outputFormat {
			case "text":
				report = format.NewDiagnosticPrinter(cmd.OutOrStdout(), opts.colored()).Print
			case "json":
				report = format.NewDiagnosticJSONEncoder(cmd.OutOrStdout()).Encode
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			var failed int
			var size uint64
			for _, res := range results {
				size += uint64(len(res.src.Text))
				if len(res.errs) > 0 {
					failed++
				}
				for _, e := range res.errs {
					if err := report(res.src, e); err != nil {
						return err
					}
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "checked %d %s (%s), %d with errors\n",
				len(results), plural(len(results), "file", "files"), humanize.Bytes(size), failed)
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "project config file (default: obc.yaml or obc.toml in the current directory)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of files checked in parallel (default from config)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "limit rule nesting (default from config)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "diagnostic format (text, json)")

	return cmd
}

func openProject(configPath string) (*project.Project, error) {
	if configPath == "" {
		return project.Load()
	}
	cfg, err := project.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return project.Open(filepath.Dir(configPath), cfg)
}

// sourceFiles returns the files named on the command line, expanding glob
// patterns, or all project sources when there are no arguments.
func sourceFiles(proj *project.Project, args []string) ([]string, error) {
	if len(args) == 0 {
		files := make([]string, len(proj.Files))
		for i, f := range proj.Files {
			files[i] = proj.Abs(f)
		}
		return files, nil
	}

	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

type checkResult struct {
	src    *format.Source
	module *oberon.Module
	errs   []*parse.Error
}

// checkFiles parses files concurrently, at most jobs at a time. All files
// share fe's ruleset. Results are in the order of files.
func checkFiles(ctx context.Context, fe *oberon.Frontend, entry string, files []string, jobs int) ([]checkResult, error) {
	results := make([]checkResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			src := format.NewSource(file, string(data))
			mod, errs, err := checkSource(fe, entry, src.Text)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			log.Debugf("%s: %d errors", file, len(errs))
			results[i] = checkResult{src: src, module: mod, errs: errs}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkSource parses text as entry. Syntax and literal errors are reported
// in errs; when entry yields a module, the semantic checks run as well.
func checkSource(fe *oberon.Frontend, entry, text string) (*oberon.Module, []*parse.Error, error) {
	n, err := fe.ParseRule(entry, text)
	var perr *parse.Error
	if errors.As(err, &perr) {
		return nil, []*parse.Error{perr}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	mod, ok := n.(*oberon.Module)
	if !ok {
		return nil, nil, nil
	}
	return mod, oberon.Check(mod), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
