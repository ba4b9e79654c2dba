package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/obc/grammar"
	"github.com/dhamidi/obc/oberon"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "EBNF grammar tools",
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarShowCmd())

	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Parse, verify and compile an EBNF grammar (default: the built-in Oberon-2 grammar)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "oberon2.ebnf"
			var r io.Reader = strings.NewReader(oberon.GrammarText())
			start := oberon.EntryRule
			var opts []grammar.Option

			if len(args) == 1 {
				filename = args[0]
				f, err := os.Open(filename)
				if err != nil {
					return fmt.Errorf("open file: %w", err)
				}
				defer f.Close()
				r = f
				start = startProduction
			} else {
				opts = append(opts, grammar.ReserveKeywords("ident"), grammar.Comments("(*", "*)"))
			}
			if start == "" {
				return errors.New("--start is required for grammar files")
			}

			rules, err := grammar.Load(filename, r, start, opts...)
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return errReported
			}

			var lexical int
			for _, name := range rules.Rules() {
				if rules.IsLexical(name) {
					lexical++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d productions (%d lexical), start %s\n",
				filename, len(rules.Rules()), lexical, start)
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production")

	return cmd
}

func newGrammarShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the built-in Oberon-2 grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), oberon.GrammarText())
			return err
		},
	}
}

// printErrors prints each error of an error list on its own line.
func printErrors(w io.Writer, err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if v := reflect.ValueOf(e); v.Kind() == reflect.Slice {
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
			return
		}
	}
	fmt.Fprintln(w, err)
}
