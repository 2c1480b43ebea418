package cli

import (
	"testing"

	"jobsniper/internal/config"

	"github.com/spf13/cobra"
)

func TestApplyServeFlagsOverridesConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	addServeFlags(cmd)
	if err := cmd.Flags().Parse([]string{
		"--port", "9443",
		"--tls-mode", "server",
		"--cert-file", "/etc/certs/server.pem",
		"--key-file", "/etc/certs/server-key.pem",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Host = "localhost"
	cfg.Server.TLS.Mode = "disabled"

	applyServeFlags(cmd, cfg)

	if cfg.Server.Port != "9443" {
		t.Errorf("Port = %q, want %q", cfg.Server.Port, "9443")
	}
	if cfg.Server.TLS.Mode != "server" {
		t.Errorf("TLS.Mode = %q, want %q", cfg.Server.TLS.Mode, "server")
	}
	if cfg.Server.TLS.CertFile != "/etc/certs/server.pem" {
		t.Errorf("TLS.CertFile = %q, want %q", cfg.Server.TLS.CertFile, "/etc/certs/server.pem")
	}
	if cfg.Server.TLS.KeyFile != "/etc/certs/server-key.pem" {
		t.Errorf("TLS.KeyFile = %q, want %q", cfg.Server.TLS.KeyFile, "/etc/certs/server-key.pem")
	}
	// Flags left unset keep the configured values
	if cfg.Server.Host != "localhost" {
		t.Errorf("Host = %q, want untouched %q", cfg.Server.Host, "localhost")
	}
}

func TestApplyServeFlagsNoFlagsSetKeepsConfig(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	addServeFlags(cmd)
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Server.TLS.Mode = "mutual"
	cfg.Server.TLS.CAFile = "/etc/certs/ca.pem"

	applyServeFlags(cmd, cfg)

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Server.TLS.Mode != "mutual" {
		t.Errorf("TLS.Mode = %q, want %q", cfg.Server.TLS.Mode, "mutual")
	}
	if cfg.Server.TLS.CAFile != "/etc/certs/ca.pem" {
		t.Errorf("TLS.CAFile = %q, want %q", cfg.Server.TLS.CAFile, "/etc/certs/ca.pem")
	}
}
