package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/sangathan/internal/app/policy/directorypolicy"
	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/system/auditlog"
	"github.com/dalemusser/sangathan/internal/app/system/csvutil"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/seed"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample members, meeting and notice",
		Long:  "Insert the sample members, meeting and notice. Does nothing when the sample super admin already exists.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger()
			defer logger.Sync()

			deps, closeFn, err := opts.connect(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := seed.Load(cmd.Context(), deps.Stores.Users, deps.Stores.Posts, deps.Stores.Meetings, logger)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "sample data already present")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d meetings, %d posts\n", res.Users, res.Meetings, res.Posts)
			return nil
		},
	}
}

func newSweepCmd(opts *options) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete regular posts older than the retention window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger()
			defer logger.Sync()

			deps, closeFn, err := opts.connect(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeFn()

			svc := bulletin.New(deps.Stores.Posts, deps.Stores.Meetings,
				media.NewService(&media.DataURLStore{}, nil, logger), nil,
				auditlog.New(deps.Stores.Audit, logger, auditlog.Config{Auth: "off", Admin: "all"}),
				nil, logger, bulletin.Config{RetentionDays: days})

			ctx, cancel := timeouts.WithTimeout(cmd.Context(), timeouts.Long(), logger, "retention sweep")
			defer cancel()
			removed, err := svc.Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d posts\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", bulletin.DefaultRetentionDays, "Keep regular posts newer than this many days")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		out      string
		district string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the member directory as CSV, unmasked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger()
			defer logger.Sync()

			deps, closeFn, err := opts.connect(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeFn()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			svc := membership.New(deps.Stores.Users, nil, nil, nil, logger, membership.Config{})
			operator := &models.User{Role: models.RoleSuperAdmin, Status: models.StatusApproved}
			n, err := svc.ExportCSV(cmd.Context(), operator, directorypolicy.ScopeRequest{District: district}, w)
			if err != nil {
				return err
			}
			logger.Info("directory exported", zap.Int("rows", n), zap.String("district", district))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", csvutil.DirectoryFilename, "Output file, or - for stdout")
	cmd.Flags().StringVar(&district, "district", "", "Limit the export to one district")
	return cmd
}
