package build

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/popular/internal/assets"
	"github.com/vango-dev/popular/internal/config"
	"github.com/vango-dev/popular/internal/errors"
)

// Asset names in the manifest.
const (
	WasmName     = "app.wasm"
	WasmExecName = "wasm_exec.js"
	LoaderName   = "bundle.js"
)

// Package paths built from the project directory.
const (
	clientPackage = "./cmd/client"
	serverPackage = "./cmd/popular"
)

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Public is the bundle directory.
	Public string

	// Binary is the server binary, empty when the server was skipped.
	Binary string

	// Manifest maps asset names to the files written.
	Manifest map[string]string

	// WasmSize and WasmGzipSize are the sizes of the WebAssembly bundle.
	WasmSize     int64
	WasmGzipSize int64

	// BinarySize is the size of the server binary.
	BinarySize int64
}

// Command runs args[0] with args[1:] in dir and returns its standard
// output. A failure should be a *CommandError carrying standard error.
type Command func(ctx context.Context, dir string, env []string, args ...string) ([]byte, error)

// CommandError is a failed external command.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return strings.Join(e.Args, " ") + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Options configures the builder.
type Options struct {
	// ProjectDir is where go build runs. Defaults to ".".
	ProjectDir string

	// SkipServer builds only the client bundle.
	SkipServer bool

	// NoFingerprint keeps plain asset names, for dev rebuilds.
	NoFingerprint bool

	// Version is stamped into the server binary.
	Version string

	// Command overrides how go is invoked.
	Command Command

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder produces the client bundle and the server binary.
type Builder struct {
	config  *config.Config
	options Options
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.ProjectDir == "" {
		options.ProjectDir = "."
	}
	if options.Command == nil {
		options.Command = execCommand
	}
	return &Builder{
		config:  cfg,
		options: options,
	}
}

// Build builds the client bundle and, unless skipped, the server binary.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	result, err := b.buildClient(ctx)
	if err != nil {
		return nil, err
	}

	if !b.options.SkipServer {
		b.progress("Compiling server...")
		binary := b.path(b.config.Build.ServerOutput)
		if err := b.buildServer(ctx, binary); err != nil {
			return nil, err
		}
		result.Binary = binary
		if info, err := os.Stat(binary); err == nil {
			result.BinarySize = info.Size()
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// BuildClient builds only the client bundle.
func (b *Builder) BuildClient(ctx context.Context) (*Result, error) {
	start := time.Now()
	result, err := b.buildClient(ctx)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (b *Builder) buildClient(ctx context.Context) (*Result, error) {
	publicDir := b.path(b.config.Build.Output)
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return nil, errors.New(errors.BuildClientFailed).Wrap(err)
	}

	previous, _ := assets.LoadManifest(ctx, assets.NewDirOrigin(publicDir))
	manifest := assets.NewManifest()
	result := &Result{Public: publicDir}

	b.progress("Compiling client (GOOS=js GOARCH=wasm)...")
	wasmPath := filepath.Join(publicDir, WasmName)
	if err := b.compileWasm(ctx, wasmPath); err != nil {
		return nil, err
	}
	if info, err := os.Stat(wasmPath); err == nil {
		result.WasmSize = info.Size()
	}
	result.WasmGzipSize, _ = gzipSize(wasmPath)

	wasmName, err := b.fingerprint(publicDir, WasmName)
	if err != nil {
		return nil, errors.New(errors.BuildClientFailed).Wrap(err)
	}
	manifest.Set(WasmName, wasmName)

	b.progress("Copying wasm_exec.js...")
	if err := b.copyWasmExec(ctx, filepath.Join(publicDir, WasmExecName)); err != nil {
		return nil, err
	}
	execName, err := b.fingerprint(publicDir, WasmExecName)
	if err != nil {
		return nil, errors.New(errors.BuildClientFailed).Wrap(err)
	}
	manifest.Set(WasmExecName, execName)

	b.progress("Writing loader...")
	prefix := b.config.Static.Prefix
	loader := LoaderScript(prefix+execName, prefix+wasmName)
	if err := os.WriteFile(filepath.Join(publicDir, LoaderName), []byte(loader), 0o644); err != nil {
		return nil, errors.New(errors.BuildClientFailed).Wrap(err)
	}
	loaderName, err := b.fingerprint(publicDir, LoaderName)
	if err != nil {
		return nil, errors.New(errors.BuildClientFailed).Wrap(err)
	}
	manifest.Set(LoaderName, loaderName)

	b.progress("Writing manifest...")
	if err := manifest.WriteFile(filepath.Join(publicDir, assets.ManifestName)); err != nil {
		return nil, errors.New(errors.BuildClientFailed).Wrap(err)
	}
	if previous != nil {
		removeStale(publicDir, previous, manifest)
	}

	result.Manifest = manifest.All()
	return result, nil
}

// compileWasm builds the browser entry point. The page settings the
// client needs are linked in with -X.
func (b *Builder) compileWasm(ctx context.Context, output string) error {
	ldflags := strings.Join([]string{
		"-s", "-w",
		"-X", "main.mountID=" + b.config.Page.MountID,
		"-X", "main.dataGlobal=" + b.config.Page.DataGlobal,
		"-X", "main.apiBase=" + b.config.GitHub.BaseURL,
	}, " ")

	env := append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	_, err := b.options.Command(ctx, b.options.ProjectDir, env,
		"go", "build", "-trimpath", "-ldflags", ldflags, "-o", output, clientPackage)
	if err != nil {
		return errors.New(errors.BuildClientFailed).WithDetail(stderrOf(err)).Wrap(err)
	}
	return nil
}

func (b *Builder) buildServer(ctx context.Context, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return errors.New(errors.BuildServerFailed).Wrap(err)
	}

	ldflags := "-s -w"
	if b.options.Version != "" {
		ldflags += " -X main.version=" + b.options.Version
	}

	env := append(os.Environ(), "CGO_ENABLED=0")
	_, err := b.options.Command(ctx, b.options.ProjectDir, env,
		"go", "build", "-trimpath", "-ldflags", ldflags, "-o", output, serverPackage)
	if err != nil {
		return errors.New(errors.BuildServerFailed).WithDetail(stderrOf(err)).Wrap(err)
	}
	return nil
}

// copyWasmExec copies the JavaScript support file that matches the Go
// toolchain. Go 1.24 moved it from misc/wasm to lib/wasm.
func (b *Builder) copyWasmExec(ctx context.Context, dst string) error {
	out, err := b.options.Command(ctx, b.options.ProjectDir, os.Environ(), "go", "env", "GOROOT")
	if err != nil {
		return errors.New(errors.BuildWasmExecMissing).WithDetail(stderrOf(err)).Wrap(err)
	}
	goroot := strings.TrimSpace(string(out))

	candidates := []string{
		filepath.Join(goroot, "lib", "wasm", WasmExecName),
		filepath.Join(goroot, "misc", "wasm", WasmExecName),
	}
	for _, src := range candidates {
		if _, err := os.Stat(src); err == nil {
			if err := copyFile(src, dst); err != nil {
				return errors.New(errors.BuildClientFailed).Wrap(err)
			}
			return nil
		}
	}
	return errors.New(errors.BuildWasmExecMissing).
		WithDetailf("looked in %s", strings.Join(candidates, ", "))
}

// fingerprint renames dir/name to include the first 8 hex digits of its
// SHA-256 and returns the new name.
func (b *Builder) fingerprint(dir, name string) (string, error) {
	if b.options.NoFingerprint {
		return name, nil
	}

	src := filepath.Join(dir, name)
	hash, err := hashFile(src)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(name)
	hashed := fmt.Sprintf("%s.%s%s", strings.TrimSuffix(name, ext), hash[:8], ext)
	if err := os.Rename(src, filepath.Join(dir, hashed)); err != nil {
		return "", err
	}
	return hashed, nil
}

// removeStale deletes fingerprinted files from the previous build that
// the new manifest no longer references.
func removeStale(dir string, previous, current *assets.Manifest) {
	keep := make(map[string]bool)
	for _, name := range current.All() {
		keep[name] = true
	}
	for _, name := range previous.All() {
		if !keep[name] && assets.IsFingerprinted(name) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}

func (b *Builder) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.options.ProjectDir, p)
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// LoaderScript is the page's entry script: it loads the Go runtime
// support file, then fetches and runs the WebAssembly bundle.
func LoaderScript(wasmExecURL, wasmURL string) string {
	return `(function () {
  "use strict";
  var s = document.createElement("script");
  s.src = ` + strconv.Quote(wasmExecURL) + `;
  s.onload = function () {
    var go = new Go();
    var url = ` + strconv.Quote(wasmURL) + `;
    var load = WebAssembly.instantiateStreaming
      ? WebAssembly.instantiateStreaming(fetch(url), go.importObject)
      : fetch(url)
          .then(function (r) { return r.arrayBuffer(); })
          .then(function (b) { return WebAssembly.instantiate(b, go.importObject); });
    load
      .then(function (result) { go.run(result.instance); })
      .catch(function (err) { console.error("popular: client failed to start", err); });
  };
  document.head.appendChild(s);
})();
`
}

func execCommand(ctx context.Context, dir string, env []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

func stderrOf(err error) string {
	var ce *CommandError
	if stderrors.As(err, &ce) {
		return strings.TrimSpace(ce.Stderr)
	}
	return ""
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// gzipSize returns the gzip-compressed size of a file.
func gzipSize(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var counter countWriter
	zw, err := gzip.NewWriterLevel(&counter, gzip.BestCompression)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(zw, f); err != nil {
		return 0, err
	}
	if err := zw.Close(); err != nil {
		return 0, err
	}
	return counter.n, nil
}

type countWriter struct{ n int64 }

func (w *countWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// copyFile copies a file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// Clean removes the client bundle directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.path(b.config.Build.Output))
}
