package services

// roots.go loads the pinned App Store root CA certificates from disk.
//
// Apple distributes its root CAs as DER (.cer) downloads, but operators
// often convert them to PEM, so both encodings are accepted. The files are
// read once at startup; nothing is ever fetched over the network.

import (
	"bytes"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
)

// rootFileExtensions are the file types considered certificate material.
// Anything else in the directory (READMEs, checksums) is ignored.
var rootFileExtensions = map[string]bool{
	".cer": true,
	".crt": true,
	".der": true,
	".pem": true,
}

// LoadRootCertificates reads every certificate file in dir and returns the
// certificates as raw DER, one entry per certificate.
//
// A file that looks like PEM is split into its CERTIFICATE blocks; any
// other file is taken to be a single DER certificate. An empty result is
// an error - a receiver with no trust anchors would reject everything.
func LoadRootCertificates(dir string) ([][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read root CA directory: %w", err)
	}

	var roots [][]byte
	for _, entry := range entries {
		if entry.IsDir() || !rootFileExtensions[filepath.Ext(entry.Name())] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path) // #nosec G304 -- root CA dir is operator-supplied configuration
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if bytes.Contains(data, []byte("-----BEGIN")) {
			blocks := pemCertificates(data)
			if len(blocks) == 0 {
				return nil, fmt.Errorf("%s contains no CERTIFICATE blocks", path)
			}
			roots = append(roots, blocks...)
			continue
		}

		roots = append(roots, data)
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("no certificates found in %s", dir)
	}

	return roots, nil
}

// pemCertificates extracts the DER bytes of every CERTIFICATE block.
func pemCertificates(data []byte) [][]byte {
	var certs [][]byte
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			return certs
		}
		if block.Type == "CERTIFICATE" {
			certs = append(certs, block.Bytes)
		}
		data = rest
	}
}
