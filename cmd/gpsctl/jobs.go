package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/gps-gamemodel/internal/app"
	"github.com/riskibarqy/gps-gamemodel/internal/config"
	"github.com/riskibarqy/gps-gamemodel/internal/domain/canonical"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gps-gamemodel/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/gps-gamemodel/internal/platform/logging"
	"github.com/spf13/cobra"
)

func seedRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roster",
		Short: "Insert the demo club roster into postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithContainer(func(ctx context.Context, cfg config.Config, c *app.Container, logger *logging.Logger) error {
				if c.DB() == nil {
					return fmt.Errorf("seed-roster needs STORAGE_DRIVER=%s", config.StoragePostgres)
				}
				inserted, err := postgres.SeedRoster(ctx, c.DB(), memory.SeedRoster())
				if err != nil {
					return err
				}
				logger.Info("roster seeded", "club_id", memory.DemoClubID, "inserted", inserted)
				return nil
			})
		},
	}
}

func recomputeCmd() *cobra.Command {
	var clubID, playerID, teamID string
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute the game model of a player or of every player of a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (playerID == "") == (teamID == "") {
				return fmt.Errorf("exactly one of --player or --team is required")
			}
			return runWithContainer(func(ctx context.Context, cfg config.Config, c *app.Container, logger *logging.Logger) error {
				if teamID != "" {
					result, err := c.GameModels.RecomputeTeam(ctx, clubID, teamID)
					if err != nil {
						return err
					}
					logger.Info("team recompute finished",
						"club_id", clubID,
						"team_id", teamID,
						"players", result.Players,
						"recomputed", result.Recomputed,
						"deleted", result.Deleted,
						"failed", result.Failed,
					)
					return printJSON(cmd, result)
				}

				result, err := c.GameModels.RecomputeGameModel(ctx, clubID, playerID)
				if err != nil {
					return err
				}
				for _, s := range result.Skipped {
					logger.Info("match skipped", "player_id", playerID, "match_id", s.MatchID, "reason", s.Reason, "detail", s.Detail)
				}
				if result.Deleted {
					logger.Info("no qualifying matches; game model removed", "club_id", clubID, "player_id", playerID)
					return nil
				}
				return printJSON(cmd, result.Model)
			})
		},
	}
	cmd.Flags().StringVar(&clubID, "club", "", "Club id")
	cmd.Flags().StringVar(&playerID, "player", "", "Player id")
	cmd.Flags().StringVar(&teamID, "team", "", "Team id")
	_ = cmd.MarkFlagRequired("club")
	return cmd
}

func cleanupCmd() *cobra.Command {
	var clubID string
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Recompute or delete game models that reference matches which no longer qualify",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithContainer(func(ctx context.Context, cfg config.Config, c *app.Container, logger *logging.Logger) error {
				result, err := c.GameModels.CleanupInvalidModels(ctx, clubID)
				if err != nil {
					return err
				}
				logger.Info("cleanup finished",
					"club_id", clubID,
					"scanned", result.Scanned,
					"recomputed", result.Recomputed,
					"deleted", result.Deleted,
					"failed", result.Failed,
				)
				return printJSON(cmd, result)
			})
		},
	}
	cmd.Flags().StringVar(&clubID, "club", "", "Club id")
	_ = cmd.MarkFlagRequired("club")
	return cmd
}

func registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the canonical metric registry",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [file]",
		Short: "Validate the embedded registry, or a registry document on disk",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry %s: %d metrics, averageable: %s\n",
				reg.Version(), len(reg.Metrics()), strings.Join(reg.AverageableKeys(), ", "))
			return nil
		},
	})
	return cmd
}

func loadRegistry(args []string) (*canonical.Registry, error) {
	if len(args) == 0 {
		return canonical.LoadDefault()
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	return canonical.Parse(raw)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
