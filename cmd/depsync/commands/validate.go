package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depsync/depsync/pkg/manifest"
)

func newValidateCommand() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a manifest and print its contents",
		Long: `Parse and normalize a manifest file without fetching anything.

Useful for checking a manifest edit before a sync: reports parse and
shape errors, and prints the dependency paths and hooks the manifest
declares.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			fmt.Printf("Manifest %s: %d deps, %d hooks, %d vars\n\n",
				manifestPath, len(m.Deps), len(m.Hooks), len(m.Vars))

			for _, path := range m.Paths {
				dep := m.Deps[path]
				switch dep.Kind {
				case manifest.DepPackage:
					names := make([]string, len(dep.Packages))
					for i, pkg := range dep.Packages {
						names[i] = pkg.Name
					}
					fmt.Printf("  %-40s packages: %s\n", path, strings.Join(names, ", "))
				default:
					fmt.Printf("  %-40s %s@%s\n", path, dep.URL, dep.Ref)
				}
				if dep.Condition != "" {
					fmt.Printf("  %-40s   condition: %s\n", "", dep.Condition)
				}
			}

			if len(m.Hooks) > 0 {
				fmt.Println("\nHooks:")
				for _, hook := range m.Hooks {
					fmt.Printf("  %-20s %s\n", hook.Name, strings.Join(hook.Action, " "))
					if hook.Condition != "" {
						fmt.Printf("  %-20s   condition: %s\n", "", hook.Condition)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "i", "", "manifest (DEPS) file path")
	cmd.MarkFlagRequired("manifest")

	return cmd
}
