// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

//go:generate go run gen-docs.go gen-docs --path ../../docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	pathscopecmd "github.com/telekom/pathscope/cmd"
)

func main() {
	execute()
}

func execute() {
	rootCmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generates the cli reference of pathscope",
	}
	rootCmd.AddCommand(NewCmdGenDocs())

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewCmdGenDocs creates a new gen-docs command
func NewCmdGenDocs() *cobra.Command {
	var (
		docPath string
		title   bool
	)

	cmd := &cobra.Command{
		Use:   "gen-docs",
		Short: "Generate markdown documentation",
		Long:  `Generate the markdown reference of all pathscope commands and their flags`,
		RunE:  runGenDocs(&docPath, &title),
	}

	cmd.PersistentFlags().StringVar(&docPath, "path", "docs", "directory path where the markdown files will be created")
	cmd.PersistentFlags().BoolVar(&title, "front-matter", false, "prepend a front matter block with the command title to every file")

	return cmd
}

// runGenDocs generates one markdown file per command
func runGenDocs(path *string, frontMatter *bool) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		c := pathscopecmd.BuildCmd("")
		c.DisableAutoGenTag = true

		if err := os.MkdirAll(*path, 0o755); err != nil {
			return fmt.Errorf("failed to create doc directory: %w", err)
		}

		prepend := func(string) string { return "" }
		if *frontMatter {
			prepend = frontMatterFor
		}
		if err := doc.GenMarkdownTreeCustom(c, *path, prepend, func(s string) string { return s }); err != nil {
			return fmt.Errorf("failed to generate docs: %w", err)
		}
		return nil
	}
}

// frontMatterFor derives the page title from the generated file name,
// e.g. pathscope_trace.md becomes "pathscope trace".
func frontMatterFor(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return fmt.Sprintf("---\ntitle: %q\n---\n\n", strings.ReplaceAll(name, "_", " "))
}
