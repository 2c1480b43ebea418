package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("test-pem-content"), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestValidateTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile := writeTempFile(t, dir, "server.crt")
	keyFile := writeTempFile(t, dir, "server.key")
	caFile := writeTempFile(t, dir, "ca.crt")

	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr bool
	}{
		{
			name:    "disabled mode",
			tls:     TLSConfig{Mode: "disabled"},
			wantErr: false,
		},
		{
			name: "server mode with files",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: certFile,
				KeyFile:  keyFile,
			},
			wantErr: false,
		},
		{
			name:    "server mode missing files",
			tls:     TLSConfig{Mode: "server"},
			wantErr: true,
		},
		{
			name: "server mode nonexistent cert",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: filepath.Join(dir, "missing.crt"),
				KeyFile:  keyFile,
			},
			wantErr: true,
		},
		{
			name: "mutual mode with CA",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         certFile,
				KeyFile:          keyFile,
				CAFile:           caFile,
				ClientAuthPolicy: "require",
			},
			wantErr: false,
		},
		{
			name: "mutual mode missing CA",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         certFile,
				KeyFile:          keyFile,
				ClientAuthPolicy: "require",
			},
			wantErr: true,
		},
		{
			name: "mutual mode bad auth policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         certFile,
				KeyFile:          keyFile,
				CAFile:           caFile,
				ClientAuthPolicy: "maybe",
			},
			wantErr: true,
		},
		{
			name:    "invalid mode",
			tls:     TLSConfig{Mode: "sideways"},
			wantErr: true,
		},
		{
			name: "invalid min version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   certFile,
				KeyFile:    keyFile,
				MinVersion: "1.1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.TLS = tt.tls
			err := cfg.ValidateTLSConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTLSConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
