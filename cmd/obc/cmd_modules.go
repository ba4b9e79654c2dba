package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/obc/project"
)

func newModulesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Show the project's modules in dependency order",
		Long: `Display the detected project structure: the config in use and every
module that parses, imports first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject(configPath)
			if err != nil {
				return err
			}
			fe, err := proj.Frontend()
			if err != nil {
				return err
			}
			files, err := sourceFiles(proj, nil)
			if err != nil {
				return err
			}
			results, err := checkFiles(cmd.Context(), fe, proj.Config.Entry, files, proj.Config.Jobs)
			if err != nil {
				return err
			}

			var modules []*project.Module
			var broken []string
			for _, res := range results {
				if res.module == nil {
					broken = append(broken, res.src.Name)
					continue
				}
				modules = append(modules, project.NewModule(res.src.Name, res.module))
			}

			out := cmd.OutOrStdout()
			config := configPath
			if config == "" {
				config = project.FindConfig(proj.RootDir)
			}
			if config == "" {
				config = "(defaults)"
			}
			fmt.Fprintf(out, "Root:    %s\n", proj.RootDir)
			fmt.Fprintf(out, "Config:  %s\n", config)
			fmt.Fprintf(out, "Sources: %s\n", strings.Join(proj.Config.Sources, ", "))
			fmt.Fprintf(out, "\nModules:\n")
			for _, m := range project.InOrder(modules) {
				fmt.Fprintf(out, "  %s\n", m.Name)
				fmt.Fprintf(out, "    file: %s\n", m.Path)
				if len(m.Imports) > 0 {
					fmt.Fprintf(out, "    imports: %s\n", strings.Join(m.Imports, ", "))
				}
			}
			if len(broken) > 0 {
				fmt.Fprintf(out, "\nNot parsed:\n")
				for _, name := range broken {
					fmt.Fprintf(out, "  %s\n", name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "project config file")

	return cmd
}
