package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/crypto"
	"github.com/spf13/cobra"
)

// offerCmd represents the offer command
var offerCmd = &cobra.Command{
	Use:   "offer",
	Short: "Sign a promotional offer",
	Long: `Produce a promotional offer signature for StoreKit.

The signature covers the bundle id, key id, product id, offer id, the
obfuscated application username, a fresh nonce and the signing timestamp.
The client must present the signature, nonce and timestamp to StoreKit
unchanged.

Example:
  storesignal offer --key ./SubscriptionKey_ABC123DEFG.p8 --kid ABC123DEFG \
    --bundle-id com.example.app --product-id com.example.app.monthly \
    --offer-id INTRO50 --username 1f6e2e2349dd4e78ab1c9f7d8a3e5b21`,
	RunE: runOffer,
}

var (
	offerKeyPath   string
	offerKeyID     string
	offerBundleID  string
	offerProductID string
	offerID        string
	offerUsername  string
)

func init() {
	rootCmd.AddCommand(offerCmd)

	offerCmd.Flags().StringVar(&offerKeyPath, "key", "", "path to the subscription offer key PEM file (required)")
	offerCmd.Flags().StringVar(&offerKeyID, "kid", "", "identifier of the signing key (required)")
	offerCmd.Flags().StringVar(&offerBundleID, "bundle-id", "", "bundle identifier of the app (required)")
	offerCmd.Flags().StringVar(&offerProductID, "product-id", "", "product identifier of the subscription (required)")
	offerCmd.Flags().StringVar(&offerID, "offer-id", "", "promotional offer identifier (required)")
	offerCmd.Flags().StringVar(&offerUsername, "username", "", "obfuscated application username (optional)")
	_ = offerCmd.MarkFlagRequired("key")
	_ = offerCmd.MarkFlagRequired("kid")
	_ = offerCmd.MarkFlagRequired("bundle-id")
	_ = offerCmd.MarkFlagRequired("product-id")
	_ = offerCmd.MarkFlagRequired("offer-id")
}

func runOffer(cmd *cobra.Command, args []string) error {
	signingKey, err := crypto.LoadECPrivateKeyFromFile(offerKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	appLogger.Debug("signing promotional offer",
		slog.String("kid", offerKeyID),
		slog.String("product_id", offerProductID),
		slog.String("offer_id", offerID),
	)

	signature, err := appstore.SignOffer(appstore.OfferSignatureConfig{
		SigningKey: signingKey,
		KeyID:      offerKeyID,
		BundleID:   offerBundleID,
	}, offerProductID, offerID, offerUsername, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to sign offer: %w", err)
	}

	output, err := json.MarshalIndent(signature, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode offer signature: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}
