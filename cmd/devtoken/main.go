// Command devtoken prints a signed access token for a user id, for local
// testing against a running server with the same JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yigit/internflow/internal/config"
	"github.com/yigit/internflow/internal/pkg/auth"
	"github.com/yigit/internflow/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the YAML configuration")
	userID := flag.Int64("user", 0, "user id to issue the token for")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to the configured expiration)")
	flag.Parse()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: devtoken -user <id> [-config path] [-ttl 1h]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	exp := cfg.AccessTokenTTL()
	if *ttl > 0 {
		exp = *ttl
	}

	token, expiresAt, err := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: exp,
		TokenIssuer:    cfg.JWT.Issuer,
	}).GenerateAccessToken(*userID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to sign token")
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}
