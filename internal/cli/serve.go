package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/IstiaqueAhmd/fitness-agent/internal/agent"
	"github.com/IstiaqueAhmd/fitness-agent/internal/config"
	"github.com/IstiaqueAhmd/fitness-agent/internal/llm"
	"github.com/IstiaqueAhmd/fitness-agent/internal/logging"
	"github.com/IstiaqueAhmd/fitness-agent/internal/server"
	"github.com/IstiaqueAhmd/fitness-agent/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the fitness agent API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			// Rebuild the logger with the configured level and style unless
			// --log-level was given.
			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			log = logging.New(nil, level, cfg.Logging.ConsoleStyle)

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			// Initialize plan and session stores (SQLite or in-memory)
			var (
				plans    agent.PlanStore
				sessions server.SessionStore
			)
			if cfg.Store.Backend == "sqlite" {
				dbPath := cfg.Store.Path
				if dbPath == "" {
					dbPath = filepath.Join(paths.Data, "fitness.db")
				}
				db, err := store.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				plans = store.NewPlanStore(db)
				sessions = store.NewSessionStore(db)
				log.Info().Str("path", dbPath).Msg("using SQLite store")
			} else {
				plans = store.NewMemoryPlanStore()
				sessions = store.NewMemorySessionStore()
				log.Info().Msg("using in-memory store")
			}

			// Initialize LLM provider registry
			registry := llm.NewRegistryFromConfig(cfg.Model, log)
			providers := registry.List()

			// Register fitness tools
			toolReg := agent.NewToolRegistry()
			toolReg.Register(&agent.WorkoutTool{})
			toolReg.Register(&agent.NutritionTool{})
			toolReg.Register(&agent.SavePlanTool{Store: plans})
			toolReg.Register(&agent.ListPlansTool{Store: plans})

			opts := []server.ServerOption{
				server.WithPlans(plans),
			}

			if len(providers) > 0 {
				log.Info().Strs("providers", providers).Msg("LLM providers available")

				dispatcher := agent.NewDispatcher(toolReg, log)
				orchestrator := agent.NewOrchestrator(
					agent.OrchestratorConfig{
						AgentName:   cfg.Agent.Name,
						Model:       cfg.Model.Model,
						Fallbacks:   cfg.Model.Fallbacks,
						MaxTokens:   cfg.Model.MaxTokens,
						Temperature: cfg.Model.Temperature,
						ExtraPrompt: cfg.Agent.ExtraPrompt,
					},
					registry,
					toolReg,
					dispatcher,
					log,
				)
				opts = append(opts, server.WithOrchestrator(orchestrator))
			} else {
				log.Warn().Msg("no LLM providers found, chat will be unavailable")
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg.Server, sessions, log, opts...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
