package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/crypto"
	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an App Store Connect API token",
	Long: `Mint a signed JWT for calling the App Store Connect API.

The token is signed with the developer's API private key (the .p8 download
from App Store Connect) and is valid for at most 20 minutes - the API
rejects longer lifetimes.

Example:
  storesignal token --key ./AuthKey_ABC123DEFG.p8 --kid ABC123DEFG \
    --issuer 57246542-96fe-1a63-e053-0824d011072a --bundle-id com.example.app`,
	RunE: runToken,
}

var (
	tokenKeyPath  string
	tokenKeyID    string
	tokenIssuerID string
	tokenBundleID string
	tokenTTL      time.Duration
)

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenKeyPath, "key", "", "path to the API private key PEM file (required)")
	tokenCmd.Flags().StringVar(&tokenKeyID, "kid", "", "App Store Connect key identifier (required)")
	tokenCmd.Flags().StringVar(&tokenIssuerID, "issuer", "", "App Store Connect issuer identifier (required)")
	tokenCmd.Flags().StringVar(&tokenBundleID, "bundle-id", "", "bundle identifier the token is scoped to (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 20*time.Minute, "token lifetime (capped at 20m)")
	_ = tokenCmd.MarkFlagRequired("key")
	_ = tokenCmd.MarkFlagRequired("kid")
	_ = tokenCmd.MarkFlagRequired("issuer")
	_ = tokenCmd.MarkFlagRequired("bundle-id")
}

func runToken(cmd *cobra.Command, args []string) error {
	signingKey, err := crypto.LoadECPrivateKeyFromFile(tokenKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	appLogger.Debug("minting API token",
		slog.String("kid", tokenKeyID),
		slog.String("bundle_id", tokenBundleID),
		slog.Duration("ttl", tokenTTL),
	)

	token, err := appstore.NewAPIToken(appstore.APITokenConfig{
		SigningKey: signingKey,
		KeyID:      tokenKeyID,
		IssuerID:   tokenIssuerID,
		BundleID:   tokenBundleID,
	}, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
