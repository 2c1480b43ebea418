package config

import (
	"fmt"
	"os"
)

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := &c.Server.TLS

	switch tls.Mode {
	case "disabled":
		return nil
	case "server", "mutual":
		// validated below
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	if tls.CertFile == "" || tls.KeyFile == "" {
		return fmt.Errorf("TLS mode '%s' requires certFile and keyFile", tls.Mode)
	}

	if err := checkFileReadable(tls.CertFile, "certificate"); err != nil {
		return err
	}
	if err := checkFileReadable(tls.KeyFile, "private key"); err != nil {
		return err
	}

	if tls.Mode == "mutual" {
		if tls.CAFile == "" {
			return fmt.Errorf("mutual TLS mode requires caFile for client certificate verification")
		}
		if err := checkFileReadable(tls.CAFile, "CA certificate"); err != nil {
			return err
		}

		switch tls.ClientAuthPolicy {
		case "require", "request", "verify":
		default:
			return fmt.Errorf("invalid client auth policy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
		}
	}

	switch tls.MinVersion {
	case "", "1.2", "1.3":
	default:
		return fmt.Errorf("invalid TLS minimum version: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}

	return nil
}

func checkFileReadable(path, kind string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("TLS %s file not accessible: %s: %w", kind, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("TLS %s path is a directory: %s", kind, path)
	}
	return nil
}
