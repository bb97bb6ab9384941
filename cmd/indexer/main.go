package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"news-engine/internal/di"
	"news-engine/internal/infra"
	"news-engine/internal/infra/config"
	"news-engine/internal/infra/logger"
)

func main() {
	log := logger.New()
	slog.SetDefault(log)

	root := &cobra.Command{
		Use:           "indexer",
		Short:         "Offline tooling for the news engine: bulk indexing, profile rebuilds, recommendation checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIndexCmd(log))
	root.AddCommand(newProfilesCmd(log))
	root.AddCommand(newRecommendCmd(log))

	if err := root.Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// withComponents loads config, connects to the database and hands the wired
// components to fn, closing the pool afterwards.
func withComponents(ctx context.Context, log *slog.Logger, fn func(*di.ApplicationComponents) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := infra.NewPostgresDB(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer pool.Close()

	return fn(di.NewApplicationComponents(cfg, pool, log))
}

func newIndexCmd(log *slog.Logger) *cobra.Command {
	var all bool
	var ids []string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Mirror articles into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(ids) == 0 {
				return fmt.Errorf("either --all or --ids is required")
			}
			return withComponents(cmd.Context(), log, func(c *di.ApplicationComponents) error {
				var indexed int
				var err error
				if all {
					indexed, err = c.IndexUsecase.IndexAll(cmd.Context())
				} else {
					indexed, err = c.IndexUsecase.IndexByIDs(cmd.Context(), ids)
				}
				if err != nil {
					return err
				}
				log.Info("indexing_completed", "indexed", indexed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "index every article in the store")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "comma-separated article ids to index")
	return cmd
}

func newProfilesCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "Rebuild preference profiles for all active users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(cmd.Context(), log, func(c *di.ApplicationComponents) error {
				rebuilt, err := c.ProfileUsecase.RebuildActive(cmd.Context())
				if err != nil {
					return err
				}
				log.Info("profiles_rebuilt", "count", rebuilt)
				return nil
			})
		},
	}
}

func newRecommendCmd(log *slog.Logger) *cobra.Command {
	var userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the recommendation set for one user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return withComponents(cmd.Context(), log, func(c *di.ApplicationComponents) error {
				out := c.RecommendUsecase.Recommend(cmd.Context(), userID, limit)
				fmt.Printf("engine=%s count=%d\n", out.Engine, len(out.Articles))
				for i, a := range out.Articles {
					topics := make([]string, len(a.Topics))
					for j, t := range a.Topics {
						topics[j] = string(t)
					}
					fmt.Printf("%2d. [%s] %s (%s) topics=%s\n",
						i+1, a.Category, a.Title, a.Source, strings.Join(topics, ","))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to recommend for")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of recommendations")
	return cmd
}
