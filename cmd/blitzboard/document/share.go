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
	"github.com/spf13/cobra"

	"github.com/blitzboard/blitzboard/cmd/blitzboard/config"
)

func newShareCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "share [document id] [email]",
		Short:   "Share a document you own with another user",
		Args:    cobra.ExactArgs(2),
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cli, closeStore, err := config.NewClient(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := cli.ShareDocument(ctx, args[0], args[1]); err != nil {
				return err
			}

			cmd.Printf("shared %s with %s\n", args[0], args[1])
			return nil
		},
	}
}

func newRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rename [document id] [title]",
		Short:   "Rename a document you own",
		Args:    cobra.ExactArgs(2),
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cli, closeStore, err := config.NewClient(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			return cli.RenameDocument(ctx, args[0], args[1])
		},
	}
}

func init() {
	SubCmd.AddCommand(newShareCommand())
	SubCmd.AddCommand(newRenameCommand())
}
