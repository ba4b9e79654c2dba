package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/obc/format"
	"github.com/dhamidi/obc/oberon"
	"github.com/dhamidi/obc/parse"
)

func newParseCmd(opts *globalOptions) *cobra.Command {
	var outputFormat string
	var rule string
	var raw bool
	var terminals bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an Oberon source file and dump its syntax tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			src := format.NewSource(filename, string(data))

			fe := oberon.Default()
			if maxDepth > 0 {
				if fe, err = oberon.New(oberon.Options{MaxDepth: maxDepth}); err != nil {
					return err
				}
			}

			var node parse.Node
			if raw {
				node, err = fe.Rules().ParseRule(rule, src.Text)
			} else {
				node, err = fe.ParseRule(rule, src.Text)
			}
			var perr *parse.Error
			if errors.As(err, &perr) {
				if err := format.NewDiagnosticPrinter(cmd.OutOrStdout(), opts.colored()).Print(src, perr); err != nil {
					return err
				}
				return errReported
			}
			if err != nil {
				return fmt.Errorf("parse %s: %w", filename, err)
			}

			var encoder format.Encoder
			switch outputFormat {
			case "json":
				encoder = format.NewASTJSONEncoder(cmd.OutOrStdout(), src)
			case "tree":
				enc := format.NewLineEncoder(cmd.OutOrStdout(), src)
				enc.Terminals = terminals
				encoder = enc
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			if err := encoder.Encode(node); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (json, tree)")
	cmd.Flags().StringVar(&rule, "rule", oberon.EntryRule, "grammar rule the file is parsed as")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the tree before typed nodes are substituted")
	cmd.Flags().BoolVar(&terminals, "terminals", false, "include keywords and punctuation in tree output")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "limit rule nesting (0 for the default)")

	return cmd
}
