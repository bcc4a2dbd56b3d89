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

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blitzboard/blitzboard/client"
	"github.com/blitzboard/blitzboard/cmd/blitzboard/config"
	"github.com/blitzboard/blitzboard/server/logging"
)

var flagEditFile string

const editHelp = `commands:
  rename <title>   rename the document (owner only)
  share <email>    share the document (owner only)
  shared           list the users the document is shared with
  who              list the members editing the document
  cursor <n>       move your cursor to offset n
  status           print the connection status
  quit             close the document`

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [document id]",
		Short: "Edit a document through a local file",
		Long: "Mirror a document into a local file. Saving the file sends the edit to the\n" +
			"other participants, and their edits are written to the file. Commands are\n" +
			"read from stdin.\n\n" + editHelp,
		Args:    cobra.ExactArgs(1),
		PreRunE: config.Preload,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logging.SetOutput(cmd.ErrOrStderr())
			logger := logging.New("edit")

			views := make(chan client.View, 1)
			cli, closeStore, err := config.NewClient(ctx,
				client.WithLogger(logger),
				client.WithChangeHandler(func(v client.View) { offer(views, v) }),
			)
			if err != nil {
				return err
			}
			defer closeStore()

			s, err := cli.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() {
				if err := s.Close(); err != nil {
					logger.Warnf("close: %v", err)
				}
			}()

			path := flagEditFile
			if path == "" {
				path = args[0] + ".txt"
			}
			mirror, err := newFileMirror(path, logger)
			if err != nil {
				return err
			}
			defer func() { _ = mirror.Close() }()

			view := s.View()
			if err := mirror.Write(view.Content); err != nil {
				return err
			}
			go func() {
				if err := mirror.Watch(ctx, s.Type); err != nil {
					logger.Warnf("watch: %v", err)
				}
			}()

			e := &editor{session: s, out: cmd.OutOrStdout()}
			e.printf("editing %q (%s) in %s\n", view.Title, view.Role, mirror.path)
			e.report(view)

			lines := scanLines(cmd.InOrStdin())
			for {
				select {
				case <-ctx.Done():
					return nil
				case v := <-views:
					if err := mirror.Write(v.Content); err != nil {
						logger.Warnf("mirror: %v", err)
					}
					e.report(v)
				case line, ok := <-lines:
					if !ok || e.exec(ctx, line) {
						return nil
					}
				}
			}
		},
	}
}

// offer replaces the view waiting in ch with v without blocking.
func offer(ch chan client.View, v client.View) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func scanLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// editor runs the commands of the edit command and reports what changed in
// the session.
type editor struct {
	session *client.Session
	out     io.Writer

	status  string
	title   string
	members []string
}

func (e *editor) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}

// report prints the status, title and members when they changed since the
// last report.
func (e *editor) report(v client.View) {
	if v.Status != e.status {
		e.status = v.Status
		e.printf("[%s]\n", v.Status)
	}
	if v.Title != e.title {
		e.title = v.Title
		e.printf("title: %s\n", v.Title)
	}

	names := make([]string, 0, len(v.Members))
	for _, m := range v.Members {
		names = append(names, m.DisplayName)
	}
	if !slices.Equal(names, e.members) {
		e.members = names
		e.printf("editing now: %s\n", strings.Join(names, ", "))
	}
}

// exec runs one command line. It returns true when the user quits.
func (e *editor) exec(ctx context.Context, line string) bool {
	name, arg := parseCommand(line)
	switch name {
	case "":
	case "quit", "exit", "q":
		return true
	case "help", "?":
		e.printf("%s\n", editHelp)
	case "status":
		v := e.session.View()
		e.printf("%s, %s, %d members\n", v.Status, v.Role, len(v.Members))
	case "who":
		for _, m := range e.session.View().Members {
			e.printf("%s\t%s\n", m.UserID, m.DisplayName)
		}
	case "rename":
		if err := e.session.Rename(ctx, arg); err != nil {
			e.printf("rename: %v\n", err)
		}
	case "share":
		if err := e.session.Share(ctx, arg); err != nil {
			e.printf("share: %v\n", err)
			break
		}
		e.printf("shared with %s\n", arg)
	case "shared":
		users, err := e.session.SharedUsers(ctx)
		if err != nil {
			e.printf("shared: %v\n", err)
			break
		}
		for _, u := range users {
			e.printf("%s\n", u.Label())
		}
	case "cursor":
		position, err := strconv.Atoi(arg)
		if err != nil {
			e.printf("cursor: %q is not an offset\n", arg)
			break
		}
		e.session.MoveCursor(position)
	default:
		e.printf("unknown command %q, try help\n", name)
	}
	return false
}

func parseCommand(line string) (string, string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func init() {
	cmd := newEditCmd()
	cmd.Flags().StringVarP(
		&flagEditFile,
		"file",
		"f",
		"",
		"Path of the local file; <document id>.txt when empty",
	)
	rootCmd.AddCommand(cmd)
}
