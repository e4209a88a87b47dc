package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/leo/tmuxcc/internal/config"
	"github.com/leo/tmuxcc/internal/dispatch"
	"github.com/leo/tmuxcc/internal/logging"
	"github.com/leo/tmuxcc/internal/monitor"
	"github.com/leo/tmuxcc/internal/mux"
	"github.com/leo/tmuxcc/internal/rules"
	"github.com/leo/tmuxcc/internal/tui"
)

var (
	flagPollInterval uint64
	flagCaptureLines uint32
	flagConfigPath   string
	flagDebug        bool
	flagShowConfig   bool
	flagInitConfig   bool
	flagSet          []string
)

func main() {
	root := &cobra.Command{
		Use:           "tmuxcc",
		Short:         "Monitor and drive AI coding agents running in tmux panes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDashboard,
	}
	root.Flags().Uint64Var(&flagPollInterval, "poll-interval", 0, "poll interval in milliseconds (0 = use config)")
	root.Flags().Uint32Var(&flagCaptureLines, "capture-lines", 0, "pane capture line count (0 = use config)")
	root.Flags().StringVar(&flagConfigPath, "config", "", "path to a config file (default: OS user config dir)")
	root.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	root.Flags().BoolVar(&flagShowConfig, "show-config-path", false, "print the resolved config path and exit")
	root.Flags().BoolVar(&flagInitConfig, "init-config", false, "write the packaged defaults to the config path and exit")
	root.Flags().StringArrayVar(&flagSet, "set", nil, "override a config key, e.g. --set poll_interval_ms=250")

	root.AddCommand(learnCmd(), testCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error
	if flagConfigPath != "" {
		cfg, err = config.LoadFrom(flagConfigPath)
	} else {
		cfg, err = config.LoadMerged()
	}
	if err != nil {
		return config.Config{}, err
	}
	if flagPollInterval > 0 {
		cfg.PollIntervalMs = flagPollInterval
	}
	if flagCaptureLines > 0 {
		cfg.CaptureLines = flagCaptureLines
	}
	if flagDebug {
		cfg.DebugMode = true
	}
	for _, kv := range flagSet {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return config.Config{}, fmt.Errorf("--set %q: expected KEY=VALUE", kv)
		}
		if err := cfg.ApplyOverride(k, v); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if flagShowConfig {
		fmt.Println(effectiveConfigPath())
		return nil
	}
	if flagInitConfig {
		path := flagConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		if path == "" {
			return fmt.Errorf("could not determine a config path for this OS")
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Println("wrote defaults to", path)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath := ""
	if cfg.DebugMode {
		if dir, dirErr := os.UserConfigDir(); dirErr == nil {
			logPath = filepath.Join(dir, "tmuxcc", "debug.log")
		}
	}
	if err := logging.Init(cfg.DebugMode, logPath); err != nil {
		return err
	}

	gw := mux.NewTmux()
	if _, inside := gw.CurrentSession(); !inside {
		return fmt.Errorf("tmuxcc must be run inside tmux")
	}

	registry := rules.NewRegistry(cfg.Agents)
	mon := monitor.New(gw, registry, cfg)
	disp := dispatch.New(gw, registry)

	watcher, err := config.WatchFile(effectiveConfigPath())
	if err != nil {
		logging.L().Warn().Err(err).Msg("config watcher disabled")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mon.Run(ctx)
	if watcher != nil {
		go func() {
			for newCfg := range watcher.Updates() {
				mon.SetConfig(newCfg, rules.NewRegistry(newCfg.Agents))
			}
		}()
		defer watcher.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	p := tea.NewProgram(tui.NewModel(gw, mon, disp), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func effectiveConfigPath() string {
	if flagConfigPath != "" {
		return flagConfigPath
	}
	return config.DefaultPath()
}

func learnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn",
		Short: "Interactively derive agent rules from a live pane (not implemented)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "learn: the interactive rule wizard is not part of this build; edit your config's [[agents]] rules directly.")
			return nil
		},
	}
}

func testCmd() *cobra.Command {
	var dir string
	c := &cobra.Command{
		Use:   "test",
		Short: "Run the rule engine against fixture captures and report mismatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixtures(cmd, dir)
		},
	}
	c.Flags().StringVar(&dir, "dir", "tests/fixtures", "root directory of case_<status>_<desc>.txt fixtures")
	return c
}

// fixtureStatusLabel maps a classified Status to the §6 fixture vocabulary.
// awaiting_input is distinguished from awaiting_approval by the UserQuestion
// approval-kind tag; every other approval kind is awaiting_approval.
func fixtureStatusLabel(s agent.Status) string {
	switch s.Kind {
	case agent.StatusIdle:
		return "idle"
	case agent.StatusProcessing:
		return "processing"
	case agent.StatusError:
		return "error"
	case agent.StatusAwaitingApproval:
		if s.Kind2.Tag == agent.ApprovalUserQuestion {
			return "awaiting_input"
		}
		return "awaiting_approval"
	default:
		return "unknown"
	}
}

func runFixtures(cmd *cobra.Command, root string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry := rules.NewRegistry(cfg.Agents)

	var total, failed int
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil || info.IsDir() || !strings.HasSuffix(path, ".txt") {
			return nil
		}
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "case_") {
			return nil
		}
		rest := strings.TrimSuffix(strings.TrimPrefix(base, "case_"), ".txt")
		want := ""
		for _, status := range []string{"awaiting_approval", "awaiting_input", "processing", "idle", "error"} {
			if rest == status || strings.HasPrefix(rest, status+"_") {
				want = status
				break
			}
		}
		if want == "" {
			return nil
		}
		agentID := filepath.Base(filepath.Dir(path))

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}

		var parser *rules.Parser
		for _, p := range registry.All() {
			if p.AgentType().ID == agentID {
				parser = p
				break
			}
		}
		total++
		if parser == nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: no parser registered for agent %q\n", path, agentID)
			return nil
		}
		got := fixtureStatusLabel(parser.ParseStatus(string(content)))
		if got != want {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: want %s, got %s\n", path, want, got)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d cases, %d failed\n", total, failed)
	if failed > 0 {
		return fmt.Errorf("%d fixture case(s) failed", failed)
	}
	return nil
}
