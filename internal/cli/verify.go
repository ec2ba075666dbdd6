package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/storesignal-io/storesignal/internal/appstore"
	"github.com/storesignal-io/storesignal/internal/services"
	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <signed-payload>",
	Short: "Verify an App Store signed payload",
	Long: `Verify an App Store signed payload (transaction, notification or renewal
info) against pinned root certificates and print the decoded claims.

The payload is verified end to end: the x5c certificate chain must validate
against the pinned roots, the ES256 signature must verify with the leaf key,
and the decoded claims must match the given bundle id and environment.

Pass "-" as the payload to read it from stdin.

Example:
  storesignal verify --roots ./certs --bundle-id com.example.app \
    --environment Sandbox --type transaction "eyJhbGciOiJFUzI1NiI..."`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var (
	verifyPayloadType string
	verifyRootsDir    string
	verifyBundleID    string
	verifyAppAppleID  int64
	verifyEnvironment string
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyPayloadType, "type", "notification", "payload type: transaction, notification or renewal")
	verifyCmd.Flags().StringVar(&verifyRootsDir, "roots", "", "directory containing the pinned root CA certificates (required)")
	verifyCmd.Flags().StringVar(&verifyBundleID, "bundle-id", "", "expected bundle identifier (required)")
	verifyCmd.Flags().Int64Var(&verifyAppAppleID, "app-apple-id", 0, "expected app Apple id (required for Production)")
	verifyCmd.Flags().StringVar(&verifyEnvironment, "environment", "Sandbox", "expected App Store environment (Sandbox or Production)")
	_ = verifyCmd.MarkFlagRequired("roots")
	_ = verifyCmd.MarkFlagRequired("bundle-id")
}

func runVerify(cmd *cobra.Command, args []string) error {
	signedPayload := args[0]
	if signedPayload == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		signedPayload = strings.TrimSpace(string(data))
	}

	roots, err := services.LoadRootCertificates(verifyRootsDir)
	if err != nil {
		return fmt.Errorf("failed to load root certificates: %w", err)
	}

	environment, err := appstore.ParseEnvironment(verifyEnvironment)
	if err != nil {
		return err
	}

	var appAppleID *int64
	if verifyAppAppleID != 0 {
		appAppleID = &verifyAppAppleID
	}

	verifier, err := appstore.NewSignedDataVerifier(roots, environment, verifyBundleID, appAppleID)
	if err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}

	appLogger.Debug("verifying signed payload",
		slog.String("type", verifyPayloadType),
		slog.String("bundle_id", verifyBundleID),
		slog.String("environment", string(environment)),
	)

	var decoded any
	switch verifyPayloadType {
	case "transaction":
		decoded, err = verifier.VerifyAndDecodeTransaction(signedPayload)
	case "notification":
		decoded, err = verifier.VerifyAndDecodeNotification(signedPayload)
	case "renewal":
		decoded, err = verifier.VerifyAndDecodeRenewalInfo(signedPayload)
	default:
		return fmt.Errorf("unknown payload type %q (expected transaction, notification or renewal)", verifyPayloadType)
	}
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	output, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode decoded claims: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return nil
}
