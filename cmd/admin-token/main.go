// Command admin-token mints a bearer token for the admin API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/MuratKus/burbarshop/internal/infrastructure/auth"
	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/MuratKus/burbarshop/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		subject string
		email   string
		role    string
		ttl     time.Duration
	)
	flag.StringVar(&subject, "subject", "", "Token subject, usually the admin user id (required)")
	flag.StringVar(&email, "email", "", "Admin email recorded in the token")
	flag.StringVar(&role, "role", auth.RoleAdmin, "Role claim")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	flag.Parse()

	log, err := logger.New(logger.ToolServerConfig("info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if subject == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	token, err := auth.NewJWTService(cfg.JWT).GenerateToken(auth.GenerateTokenInput{
		Subject: subject,
		Email:   email,
		Role:    role,
		TTL:     ttl,
	})
	if err != nil {
		log.Fatal("Failed to generate token", zap.Error(err))
	}

	log.Info("Generated admin token",
		zap.String("subject", subject),
		zap.String("role", role),
		zap.Time("expires_at", token.ExpiresAt))
	fmt.Println(token.AccessToken)
}
