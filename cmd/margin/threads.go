/*
 * Copyright 2026 The Margin Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/margin-team/margin/pkg/comment"
	"github.com/margin-team/margin/pkg/thread"
)

var (
	hideResolved bool
	output       string
)

func newThreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threads [comment log file]",
		Short: "Render the thread tree of a comment log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("comment log file is required")
			}

			bytes, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read comment log %s: %w", args[0], err)
			}

			var comments []*comment.Comment
			if err := yaml.Unmarshal(bytes, &comments); err != nil {
				return fmt.Errorf("unmarshal comment log %s: %w", args[0], err)
			}

			store := comment.NewStore()
			for _, c := range comments {
				if err := store.Add(c); err != nil {
					return err
				}
			}

			threads := thread.Build(store.List(comment.ListFilter{
				ExcludeResolved: hideResolved,
			}))
			return printThreads(cmd, output, threads)
		},
	}
}

func printThreads(cmd *cobra.Command, output string, threads []thread.Thread) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateFooter = false
		tw.Style().Options.SeparateHeader = false
		tw.Style().Options.SeparateRows = false
		tw.AppendHeader(table.Row{
			"AUTHOR",
			"COMMENT",
			"QUOTED",
			"REPLIES",
			"RESOLVED",
		})
		for _, t := range threads {
			tw.AppendRow(table.Row{
				t.Root.Author,
				t.Root.Content,
				t.Root.DisplayText,
				t.TotalDescendants,
				t.Root.Resolved,
			})
			for _, node := range t.Replies {
				tw.AppendRow(table.Row{
					node.Comment.Author,
					strings.Repeat("  ", node.Depth) + node.Comment.Content,
					"",
					"",
					"",
				})
			}
		}
		cmd.Printf("%s\n", tw.Render())
	case "json":
		jsonOutput, err := json.MarshalIndent(threads, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(threads)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func init() {
	cmd := newThreadsCmd()
	cmd.Flags().BoolVar(
		&hideResolved,
		"hide-resolved",
		false,
		"Exclude resolved threads from the output",
	)
	cmd.Flags().StringVarP(
		&output,
		"output",
		"o",
		"",
		"One of 'yaml' or 'json'",
	)
	rootCmd.AddCommand(cmd)
}
