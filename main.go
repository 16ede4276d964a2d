// iachat TUI - a terminal chat client for the IAToolkit backend.
//
// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/iatoolkit/iachat-tui/internal/api"
	"github.com/iatoolkit/iachat-tui/internal/config"
	"github.com/iatoolkit/iachat-tui/internal/lifecycle"
	"github.com/iatoolkit/iachat-tui/internal/session"
	"github.com/iatoolkit/iachat-tui/internal/transcript"
	"github.com/iatoolkit/iachat-tui/internal/ui/chat"
	"github.com/iatoolkit/iachat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Printf("iachat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "iachat:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sess, err := session.New(cfg.Server.BaseURL, cfg.Server.Company,
		cfg.User.ExternalID, cfg.User.SessionToken)
	if err != nil {
		return err
	}
	logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("company", sess.Company),
		zap.Bool("authenticated", sess.Authenticated()))

	client := api.NewClient(sess, cfg.Server.TokenHeader, logger)
	tr := transcript.New(logger)
	theme := styles.New()

	// The controller's notify hook needs the program, but the program is
	// built from the chat model, which needs the controller. Bind through
	// an atomic pointer: request goroutines read it while main writes it.
	var program atomic.Pointer[tea.Program]

	ctrl := lifecycle.NewController(lifecycle.Options{
		Client:         client,
		ExternalUserID: sess.ExternalUserID,
		Field:          cfg.Field,
		Timeout:        time.Duration(cfg.Server.QueryTimeoutSecs) * time.Second,
		MaxAttachBytes: cfg.Server.MaxAttachmentBytes,
		Logger:         logger,
		Notify: func(ev lifecycle.Event) {
			if p := program.Load(); p != nil {
				p.Send(chat.LifecycleEventMsg{Event: ev})
			}
		},
	})

	m := chat.New(chat.Options{
		Controller: ctrl,
		Transcript: tr,
		Config:     cfg,
		Theme:      theme,
		Logger:     logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	program.Store(p)

	// Hot reload: new settings apply to subsequent requests only.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if path, err := config.Path(); err == nil {
		go func() {
			err := config.Watch(watchCtx, path, logger,
				func(next *config.Config) {
					ctrl.Reconfigure(next.Field,
						time.Duration(next.Server.QueryTimeoutSecs)*time.Second,
						next.Server.MaxAttachmentBytes)
					p.Send(chat.ConfigReloadedMsg{Config: next})
				},
				func(reloadErr error) {
					p.Send(chat.ConfigReloadFailedMsg{Err: reloadErr})
				})
			if err != nil && watchCtx.Err() == nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	logger.Info("session ended", zap.String("session_id", sess.ID))
	return nil
}

// newLogger builds the file logger under the config directory. The TUI owns
// the terminal, so nothing may log to stderr while it runs.
func newLogger() (*zap.Logger, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{filepath.Join(dir, "iachat.log")}
	logCfg.ErrorOutputPaths = []string{filepath.Join(dir, "iachat.log")}
	return logCfg.Build()
}
