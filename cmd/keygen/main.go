// keygen is a CLI tool for generating EC P-256 signing key pairs for testing
// and local development.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/storesignal-io/storesignal/internal/crypto"
	"github.com/storesignal-io/storesignal/internal/version"
	"github.com/spf13/cobra"
)

// file naming convention - name.public.jwk and name.private.pem
const (
	publicKeyFileNameFormat  = "%s.public.jwk"
	privateKeyFileNameFormat = "%s.private.pem"
)

var (
	name      string
	outputDir string
	kid       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "keygen",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "EC key generator for App Store signing",
		Long:              "Generate EC P-256 key pairs for App Store Connect API token signing and promotional offer signing (the same curve Apple issues .p8 keys on)",
	}

	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair",
		Long:  "Generate a new EC P-256 key pair: the private key as PEM, the public key in JWK format",
		RunE:  runGenerate,
	}

	generateCmd.Flags().StringVarP(&name, "name", "n", "", "Key name used in the output file names (e.g. com.example.app) [required]")
	generateCmd.Flags().StringVarP(&outputDir, "outputdir", "o", "", "Output directory for generated keys [required]")
	generateCmd.Flags().StringVarP(&kid, "kid", "k", "", "Key ID (default: auto-generated from thumbprint)")
	generateCmd.MarkFlagRequired("name")
	generateCmd.MarkFlagRequired("outputdir")

	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// make the directory if it doesn't exist
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	fmt.Printf("Generating EC P-256 key pair: %s\n", name)

	privateKey, err := crypto.GenerateECKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate EC key: %w", err)
	}

	// Generate key ID from thumbprint if not provided
	keyID := kid
	if keyID == "" {
		keyID, err = crypto.GenerateKeyIDFromECKey(&privateKey.PublicKey)
		if err != nil {
			return fmt.Errorf("failed to generate key ID: %w", err)
		}
	}

	// Save public key
	publicPath := filepath.Join(outputDir, fmt.Sprintf(publicKeyFileNameFormat, name))
	if err := crypto.SaveECPublicKeyToFile(&privateKey.PublicKey, keyID, publicPath); err != nil {
		return fmt.Errorf("failed to save public key: %w", err)
	}
	fmt.Printf("✓ Public JWK:  %s (kid: %s)\n", publicPath, keyID)

	// Save private key
	privatePath := filepath.Join(outputDir, fmt.Sprintf(privateKeyFileNameFormat, name))
	if err := crypto.SaveECPrivateKeyToFile(privateKey, privatePath); err != nil {
		return fmt.Errorf("failed to save private key: %w", err)
	}
	fmt.Printf("✓ Private key: %s (kid: %s)\n", privatePath, keyID)

	return nil
}
