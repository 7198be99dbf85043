package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/vango-dev/popular/internal/assets"
	"github.com/vango-dev/popular/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressPrintsStepVerbatim(t *testing.T) {
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	tests := []string{
		"Building client (GOOS=js GOARCH=wasm)...",
		"Copying 100% of assets...",
		"Writing %s%d.wasm",
	}
	for _, step := range tests {
		buf.Reset()
		progress(step)
		if got, want := buf.String(), "  "+step+"\n"; got != want {
			t.Errorf("progress(%q) printed %q, want %q", step, got, want)
		}
	}
}

func TestVersionShort(t *testing.T) {
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version --short = %q, want %q", got, version)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	v := viper.New()
	cmd := newRootCmd(v)
	serve, _, err := cmd.Find([]string{"serve"})
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("POPULAR_SERVER_PORT", "4000")
	if err := config.Init(v, ""); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("env port = %d, want 4000", cfg.Server.Port)
	}

	if err := serve.Flags().Set("port", "5000"); err != nil {
		t.Fatal(err)
	}
	if err := serve.Flags().Set("dev", "true"); err != nil {
		t.Fatal(err)
	}
	cfg, err = config.Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("flag port = %d, want 5000", cfg.Server.Port)
	}
	if !cfg.Dev.Enabled {
		t.Error("--dev not applied")
	}
}

func TestAssembleServesPage(t *testing.T) {
	dir := t.TempDir()
	m := assets.NewManifest()
	m.Set("bundle.js", "bundle.0123abcd.js")
	if err := m.WriteFile(filepath.Join(dir, assets.ManifestName)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bundle.0123abcd.js"), []byte("// loader"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.Static.Dir = dir

	st, err := assemble(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer st.close()
	if st.watcher != nil || st.reload != nil {
		t.Fatal("dev components wired outside dev mode")
	}

	srv := httptest.NewServer(st.server.Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d", res.StatusCode)
	}
	if !strings.Contains(string(body), `src="/static/bundle.0123abcd.js"`) {
		t.Errorf("page does not reference the fingerprinted bundle:\n%s", body)
	}
	if !strings.Contains(string(body), "Select a Language") {
		t.Error("home view not rendered")
	}

	res, err = http.Get(srv.URL + "/static/bundle.0123abcd.js")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("bundle status = %d", res.StatusCode)
	}

	res, err = http.Get(srv.URL + cfg.Metrics.Path)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", res.StatusCode)
	}
}

func TestStaticOrigin(t *testing.T) {
	cfg := config.New()
	if _, ok := staticOrigin(cfg).(*assets.FSOrigin); !ok {
		t.Error("default origin is not the local directory")
	}

	cfg.Static.S3.Bucket = "bundles"
	cfg.Static.S3.Region = "us-east-1"
	if _, ok := staticOrigin(cfg).(*assets.S3Origin); !ok {
		t.Error("bucket configured but origin is not S3")
	}

	cfg.Dev.Enabled = true
	if _, ok := staticOrigin(cfg).(*assets.FSOrigin); !ok {
		t.Error("dev mode should serve the local build")
	}
}
