package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gitrdm/judged/pkg/syntax"
	"github.com/spf13/cobra"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMode(flagMode)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			s, err := newSession(m, cfg, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runRepl(s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runRepl reads one line at a time and either executes it as a
// meta-command (a leading ':') or parses and runs it as a single
// judged statement, mirroring original_source/judged/__main__.go's
// interactive()/interactive_command() split, with ':' in place of the
// original's '.' to stay clear of the surface syntax's own '.'
// statement terminator.
func runRepl(s *session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "judged REPL - type :help for meta-commands, :quit to exit")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			quit, err := s.metaCommand(line[1:], out)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}
		entries, err := syntax.Parse(line, s.ctx.NS(), s.ext.Resolve)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		for _, e := range entries {
			if err := s.runEntry(context.Background(), e, false); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				break
			}
		}
	}
}

// metaCommand dispatches a single ':'-prefixed line, returning quit =
// true when the REPL should exit.
func (s *session) metaCommand(line string, out io.Writer) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, fmt.Errorf("empty meta-command, type :help")
	}
	switch fields[0] {
	case "quit", "exit":
		return true, nil

	case "help":
		fmt.Fprintln(out, "% :load <file>        load and execute a program file")
		fmt.Fprintln(out, "% :mode det|exact|mc  switch evaluation mode (starts a fresh context)")
		fmt.Fprintln(out, "% :choose p=x         select part x for partitioning p (deterministic mode)")
		fmt.Fprintln(out, "% :kb                 list stored facts, rules and primitives")
		fmt.Fprintln(out, "% :quit               leave the REPL")
		return false, nil

	case "kb":
		s.printKB()
		return false, nil

	case "load":
		if len(fields) != 2 {
			return false, fmt.Errorf(":load requires exactly one file path")
		}
		src, err := os.ReadFile(fields[1])
		if err != nil {
			return false, err
		}
		return false, s.loadFile(context.Background(), fields[1], string(src), false)

	case "mode":
		if len(fields) != 2 {
			return false, fmt.Errorf(":mode requires det, exact or mc")
		}
		m, err := parseMode(fields[1])
		if err != nil {
			return false, err
		}
		s.switchMode(m)
		fmt.Fprintf(out, "%% switched to %s mode, knowledge base reset\n", m)
		return false, nil

	case "choose":
		if len(fields) != 2 {
			return false, fmt.Errorf(":choose requires partitioning=part")
		}
		sel, ok := s.ctx.(selector)
		if !ok {
			return false, fmt.Errorf(":choose only applies in deterministic mode")
		}
		partitioning, part, err := parseChoice(s.ctx.NS(), fields[1])
		if err != nil {
			return false, err
		}
		sel.SelectWorld(partitioning, part)
		return false, nil

	default:
		return false, fmt.Errorf("unknown meta-command %q, type :help", fields[0])
	}
}
