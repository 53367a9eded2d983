package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/asmb/a64browse/internal/browse"
	"github.com/asmb/a64browse/internal/catalog"
	"github.com/asmb/a64browse/internal/config"
	"github.com/asmb/a64browse/internal/uci"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer closeLog()

	keys, err := browse.LoadBindings(filepath.Join(os.Getenv("HOME"), ".config", "a64browse"))
	if err != nil {
		log.Fatalf("keybindings: %v", err)
	}

	port, err := uci.OpenFilePort(cfg.Driver.Device, cfg.Driver.RegisterBase)
	if err != nil {
		log.Fatalf("command interface: %v", err)
	}
	defer port.Close()

	driver := uci.NewDriver(port,
		uci.WithPollTimeout(time.Duration(cfg.Driver.PollTimeoutMS)*time.Millisecond),
		uci.WithRetries(cfg.Driver.Retries, time.Duration(cfg.Driver.RetryBackoffMS)*time.Millisecond),
	)
	network := uci.NewNetwork(driver)

	ident, err := network.Identify()
	if err != nil {
		log.Fatalf("controller not responding: %v", err)
	}
	logger.Info("controller identified", "ident", ident)
	if addr, err := network.IPAddress(); err == nil {
		logger.Info("controller address", "ip", addr)
	}

	client := catalog.NewClient(network, logger)
	if err := client.Connect(cfg.Server.Host, uint16(cfg.Server.Port)); err != nil {
		log.Fatalf("connect %s:%d: %v", cfg.Server.Host, cfg.Server.Port, err)
	}
	defer client.Quit()
	logger.Info("connected", "host", cfg.Server.Host, "port", cfg.Server.Port, "greeting", client.Greeting())

	p := tea.NewProgram(browse.New(client, keys, cfg, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// openLogger writes structured logs to the configured file; stdout belongs
// to the TUI. Every run gets a session id so interleaved runs stay
// distinguishable.
func openLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	logger := slog.New(h).With("session", uuid.NewString())
	return logger, func() { f.Close() }, nil
}
