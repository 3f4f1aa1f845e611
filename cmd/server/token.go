package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"budgetledger/pkg/rbac"
	"budgetledger/pkg/util"
)

// tokenCmd 用配置中的 jwt.secret 签发令牌，供本地开发和运维脚本调用 /api
func tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the configured jwt.secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			token, err := issueToken(cfg.JWT.Secret, cfg.JWT.Issuer, subject, role, ttl)
			if err != nil {
				return err
			}
			logger.Info("Token issued",
				zap.String("subject", subject),
				zap.String("role", role),
				zap.Duration("ttl", ttl),
			)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, recorded as the actor of ledger events")
	cmd.Flags().StringVar(&role, "role", rbac.RoleUser, "Role: Admin, Manager or User")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func issueToken(secret, issuer, subject, role string, ttl time.Duration) (string, error) {
	switch {
	case secret == "":
		return "", errors.New("jwt.secret is not configured; authentication is disabled")
	case subject == "":
		return "", errors.New("subject is required")
	case !rbac.ValidRole(role):
		return "", fmt.Errorf("unknown role %q", role)
	case ttl <= 0:
		return "", errors.New("ttl must be positive")
	}
	return util.GenerateJWT(subject, role, issuer, secret, ttl)
}
