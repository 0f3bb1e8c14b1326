// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/sangathan/internal/app/services/membership"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/seed"
	"github.com/dalemusser/sangathan/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It makes sure the configured super admin exists and, when enabled, loads
// the sample membership.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SeedSampleData {
		res, err := seed.Load(ctx, deps.Stores.Users, deps.Stores.Posts, deps.Stores.Meetings, logger)
		if err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
		if !res.Skipped {
			logger.Info("sample data loaded",
				zap.Int("users", res.Users),
				zap.Int("meetings", res.Meetings),
				zap.Int("posts", res.Posts))
		}
	}

	if appCfg.SuperAdminMobile != "" {
		if err := ensureSuperAdmin(ctx, deps.Stores.Users, appCfg.SuperAdminMobile, logger); err != nil {
			return fmt.Errorf("ensure super admin: %w", err)
		}
	}
	return nil
}

// ensureSuperAdmin promotes the member with mobile to an approved super
// admin, or creates a placeholder record when no one holds that mobile.
func ensureSuperAdmin(ctx context.Context, users membership.UserRepo, mobile string, logger *zap.Logger) error {
	u, err := users.GetByMobile(ctx, mobile)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		created, err := users.Create(ctx, models.User{
			Name:         "Super Admin",
			FatherName:   "System",
			Mobile:       mobile,
			District:     "Patna",
			Designation:  "State President",
			Jurisdiction: "State Head",
			Role:         models.RoleSuperAdmin,
			Status:       models.StatusApproved,
			Badge:        models.BadgeBlue,
		})
		if err != nil {
			return err
		}
		logger.Info("created super admin", zap.String("user_id", created.ID.Hex()))
		return nil
	case err != nil:
		return err
	}

	if u.Role == models.RoleSuperAdmin && u.Status == models.StatusApproved {
		return nil
	}
	u.Role = models.RoleSuperAdmin
	u.Status = models.StatusApproved
	if _, err := users.Update(ctx, *u); err != nil {
		return err
	}
	logger.Info("promoted user to super admin", zap.String("user_id", u.ID.Hex()))
	return nil
}
