// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command vtdump spawns a shell on a pty, mirrors its output to the
// invoking terminal, and feeds the same bytes through a vtparse.Parser
// so every recognized Dispatch Target call can be logged and, with
// -record, captured to a file cmd/vtreplay can play back later.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/ericwq/vtparse"
	"github.com/ericwq/vtparse/internal/record"
	"github.com/ericwq/vtparse/internal/vtlog"
	"github.com/ericwq/vtparse/vtparsetest"
)

const (
	commandName = "vtdump"
	usage       = `Usage:
  ` + commandName + ` [--shell PATH] [--record FILE] [--verbose]
Options:
  -h, --help     print this message
  -shell         program to run on the pty (default $SHELL, or /bin/sh)
  -record        capture the decoded action stream to FILE for vtreplay
  -verbose       enable debug-level logging
`
)

// Config holds vtdump's command-line configuration, parsed with the
// standard flag package in the teacher's cmd/ style.
type Config struct {
	shell      string
	recordPath string
	verbose    bool
}

func parseConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet(commandName, flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	cfg := &Config{}
	fs.StringVar(&cfg.shell, "shell", defaultShell(), "program to run on the pty")
	fs.StringVar(&cfg.recordPath, "record", "", "capture the decoded action stream to FILE")
	fs.BoolVar(&cfg.verbose, "verbose", false, "enable debug-level logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.verbose {
		vtlog.Logger.SetLevel(vtlog.LevelTrace)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, commandName+":", err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	var rec *record.Writer
	if cfg.recordPath != "" {
		f, err := os.Create(cfg.recordPath)
		if err != nil {
			return err
		}
		defer f.Close()
		rec = record.NewWriter(f)
	}

	cmd := exec.Command(cfg.shell)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer ptmx.Close()

	if err := inheritSize(ptmx); err != nil {
		vtlog.Logger.Warn("initial pty resize failed", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	stdinFd := int(os.Stdin.Fd())
	savedState, err := term.MakeRaw(stdinFd)
	if err != nil {
		return fmt.Errorf("put stdin in raw mode: %w", err)
	}
	defer term.Restore(stdinFd, savedState)

	target := vtparsetest.NewRecorder()
	parser := vtparse.NewParser(target, nil)

	// Stdin forwarding blocks on an interactive Read for the session's
	// whole lifetime, so it runs outside the errgroup: waiting for it in
	// eg.Wait() below would hang past the child's exit.
	go copyBuf(ptmx, os.Stdin)

	eg := errgroup.Group{}
	eg.Go(func() error {
		for range sigCh {
			if err := inheritSize(ptmx); err != nil {
				vtlog.Logger.Warn("pty resize failed", "error", err)
			}
		}
		return nil
	})
	eg.Go(func() error {
		return dumpLoop(ptmx, parser, target, rec)
	})

	err = cmd.Wait()
	ptmx.Close()
	signal.Stop(sigCh)
	close(sigCh)
	if waitErr := eg.Wait(); err == nil {
		err = waitErr
	}
	return err
}

// dumpLoop reads the child's pty output, mirrors it to the real
// terminal so the session stays usable, and replays the same bytes
// through parser so every Dispatch Target call target records gets
// logged and, if rec is non-nil, persisted for later replay.
func dumpLoop(ptmx *os.File, parser *vtparse.Parser, target *vtparsetest.Recorder, rec *record.Writer) error {
	buf := make([]byte, vtparse.AdapterReadSize)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, werr := os.Stdout.Write(chunk); werr != nil {
				return werr
			}
			if perr := parser.ProcessString(chunk); perr != nil {
				return perr
			}
			if rerr := drain(target, rec); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			return nil // child exited or pty closed; not a dumpLoop failure
		}
	}
}

// drain logs and optionally records every call target has accumulated
// since the last drain, then resets it for the next chunk.
func drain(target *vtparsetest.Recorder, rec *record.Writer) error {
	for _, call := range target.Calls {
		vtlog.Logger.Debug("dispatch", "name", call.Name, "args", call.Args)
		if rec == nil {
			continue
		}
		if err := rec.Write(toAction(call)); err != nil {
			return fmt.Errorf("record %s: %w", call.Name, err)
		}
	}
	target.Reset()
	return nil
}

func toAction(call vtparsetest.Call) record.Action {
	a := record.Action{Name: call.Name}
	for _, arg := range call.Args {
		switch v := arg.(type) {
		case int:
			a.Ints = append(a.Ints, v)
		case bool:
			if v {
				a.Ints = append(a.Ints, 1)
			} else {
				a.Ints = append(a.Ints, 0)
			}
		case rune:
			a.Ints = append(a.Ints, int(v))
		case string:
			a.String = v
		}
	}
	return a
}

func copyBuf(dst *os.File, src *os.File) (int64, error) {
	buf := make([]byte, vtparse.AdapterReadSize)
	var total int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err != nil {
			return total, nil
		}
	}
}

// inheritSize copies the invoking terminal's window size onto ptmx,
// mirroring util.ConvertWinsize+pty.Setsize from the teacher's pty
// setup in frontend/server/server.go.
func inheritSize(ptmx *os.File) error {
	ws, err := unix.IoctlGetWinsize(int(os.Stdin.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return err
	}
	return pty.Setsize(ptmx, &pty.Winsize{
		Rows: ws.Row,
		Cols: ws.Col,
		X:    ws.Xpixel,
		Y:    ws.Ypixel,
	})
}
