/*
 * Copyright 2026 The BlitzBoard Authors. All rights reserved.
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

package document

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/blitzboard/blitzboard/client"
	"github.com/blitzboard/blitzboard/cmd/blitzboard/config"
)

// Row is a document as printed by the ls command.
type Row struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Owner     string    `json:"owner" yaml:"owner"`
	Preview   string    `json:"preview" yaml:"preview"`
	Shared    int       `json:"shared" yaml:"shared"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Short:   "List the documents you own or that are shared with you",
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cli, closeStore, err := config.NewClient(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := cli.ListDocuments(ctx)
			if err != nil {
				return err
			}

			return printDocuments(cmd.OutOrStdout(), viper.GetString("output"), time.Now(), entries)
		},
	}
}

func toRows(entries []*client.DocumentEntry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, Row{
			ID:        entry.ID,
			Title:     entry.Title(),
			Owner:     entry.OwnerName,
			Preview:   entry.Preview(),
			Shared:    len(entry.SharedWith),
			UpdatedAt: entry.UpdatedAt,
		})
	}
	return rows
}

func printDocuments(w io.Writer, output string, now time.Time, entries []*client.DocumentEntry) error {
	switch output {
	case "":
		tw := table.NewWriter()
		tw.Style().Options.DrawBorder = false
		tw.Style().Options.SeparateColumns = false
		tw.Style().Options.SeparateFooter = false
		tw.Style().Options.SeparateHeader = false
		tw.Style().Options.SeparateRows = false
		tw.AppendHeader(table.Row{
			"ID",
			"TITLE",
			"OWNER",
			"SHARED",
			"UPDATED",
			"PREVIEW",
		})
		for _, entry := range entries {
			preview := entry.Preview()
			if preview == "" {
				preview = client.EmptyPreview
			}
			tw.AppendRow(table.Row{
				entry.ID,
				entry.Title(),
				entry.OwnerName,
				len(entry.SharedWith),
				client.TimeAgo(now, entry.UpdatedAt),
				preview,
			})
		}
		if _, err := fmt.Fprintf(w, "%s\n", tw.Render()); err != nil {
			return err
		}
	case "json":
		jsonOutput, err := json.MarshalIndent(toRows(entries), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(jsonOutput)); err != nil {
			return err
		}
	case "yaml":
		yamlOutput, err := yaml.Marshal(toRows(entries))
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(yamlOutput)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func init() {
	SubCmd.AddCommand(newListCommand())
}
