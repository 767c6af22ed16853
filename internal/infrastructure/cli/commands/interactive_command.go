package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/pteroai-go/internal/app"
	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cli/helpers"
)

const interactiveHelp = `Commands:
  analyze   rescan the installation and forget analyzed files
  status    show installation, cache and oracle status
  history   show the last decisions of this session
  config    show the active configuration
  exit      leave
Anything else is treated as a change request.`

// NewInteractiveCommand creates the interactive command
func NewInteractiveCommand(container *app.Container) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start a request loop with confirmation prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if metricsAddr != "" {
				stop, err := serveMetrics(container, metricsAddr)
				if err != nil {
					return err
				}
				defer stop()
				fmt.Fprintf(out, "Metrics on http://%s/metrics\n", metricsAddr)
			}
			session := &interactiveSession{
				container: container,
				in:        bufio.NewReader(cmd.InOrStdin()),
				out:       out,
			}
			return session.run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", DefaultMetricsAddr, "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	return cmd
}

type interactiveSession struct {
	container *app.Container
	in        *bufio.Reader
	out       io.Writer
}

func (s *interactiveSession) run(ctx context.Context) error {
	fmt.Fprintln(s.out, interactiveHelp)
	prompter := helpers.NewPrompter(s.in, s.out)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := helpers.PromptLine(s.out, s.in, "\npteroai> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(s.out, interactiveHelp)
		case "analyze":
			s.analyze(ctx)
		case "status":
			s.status(ctx)
		case "history":
			s.history()
		case "config":
			if err := printJSON(s.out, s.container.Decisions.Config()); err != nil {
				return err
			}
		default:
			if err := runDecision(ctx, s.out, s.container, line, prompter, decideOptions{}); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if !errors.Is(err, domain.ErrPlanBlocked) {
					fmt.Fprintf(s.out, "error: %v\n", err)
				}
			}
		}
	}
}

func (s *interactiveSession) analyze(ctx context.Context) {
	system, err := s.container.Collector.Refresh(ctx, s.container.Config)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	s.container.Decisions.ClearKnowledge()
	files, dirs := system.CountNodes()
	fmt.Fprintf(s.out, "Scanned %s: %d files, %d directories\n", system.InstallRoot, files, dirs)
}

func (s *interactiveSession) status(ctx context.Context) {
	system, err := s.container.Collector.Collect(ctx, s.container.Config)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	installed := "not installed"
	if system.Installed {
		installed = "installed"
	}
	fmt.Fprintf(s.out, "Installation: %s (%s)\n", system.InstallRoot, installed)
	if len(system.Services) > 0 {
		fmt.Fprintf(s.out, "Services: %s\n", strings.Join(system.Services, ", "))
	}
	fmt.Fprintf(s.out, "Cache entries: %d\n", len(s.container.Cache.Entries()))
	fmt.Fprintf(s.out, "Files analyzed: %d\n", len(s.container.Decisions.Knowledge()))
	fmt.Fprintf(s.out, "Decisions this session: %d\n", len(s.container.Decisions.GetHistory(0)))
	cfg := s.container.Decisions.Config()
	fmt.Fprintf(s.out, "Oracle: %s\n", cfg.GetOracleProvider())
	if s.container.OracleErr != nil {
		fmt.Fprintf(s.out, "Oracle offline: %v\n", s.container.OracleErr)
	}
}

func (s *interactiveSession) history() {
	entries := s.container.Decisions.GetHistory(domain.InteractiveHistoryLimit)
	if len(entries) == 0 {
		fmt.Fprintln(s.out, MsgNoHistoryRecorded)
		return
	}
	now := time.Now()
	for _, entry := range entries {
		helpers.RenderHistoryLine(s.out, entry, now)
	}
}

// serveMetrics exposes the Prometheus registry until the returned stop is called.
func serveMetrics(container *app.Container, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", container.Metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Error("metrics server stopped", err, map[string]interface{}{"addr": addr})
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
