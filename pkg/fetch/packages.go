package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/depsync/depsync/pkg/manifest"
	"github.com/depsync/depsync/pkg/platform"
	"github.com/depsync/depsync/pkg/telemetry"
)

// PackageFetcher retrieves the packages of a package dependency into a
// destination directory.
type PackageFetcher interface {
	Fetch(ctx context.Context, dep *manifest.Dep, dest string) error
}

// braceUnescaper resolves the {{ and }} escapes package names use for
// literal braces. It runs before placeholder substitution so an escaped
// name is never substituted again.
var braceUnescaper = strings.NewReplacer("{{", "{", "}}", "}")

// ExpandPackageName resolves brace escapes and the ${os}, ${arch} and
// ${platform} placeholders of a package name, exactly once each.
func ExpandPackageName(name string, p platform.Platform) string {
	name = braceUnescaper.Replace(name)
	return strings.NewReplacer(
		"${os}", p.PackageOS(),
		"${arch}", p.PackageArch(),
		"${platform}", p.PackagePlatform(),
	).Replace(name)
}

// ZipFetcher is the built-in package strategy: it downloads each package
// as a zip archive from the package host and extracts it in place.
type ZipFetcher struct {
	// Host is the package repository base URL, without trailing slash.
	Host string

	// Platform supplies the placeholder values for package names.
	Platform platform.Platform

	// Client is the HTTP client; http.DefaultClient when nil.
	Client *http.Client

	// Retries is how many times a failed download is retried. Zero means
	// a single attempt; the core contract has no retries.
	Retries int

	// RetryWait is the initial delay before a retry, doubled each time.
	RetryWait time.Duration

	Log     zerolog.Logger
	Metrics *telemetry.Metrics
}

// Fetch retrieves every package of dep into dest, in manifest order so
// layered archives extract deterministically. The destination marker
// records the stamp of the whole dependency; when it matches, nothing
// is downloaded. The marker is written only after every package
// extracted, so a partial run repeats in full.
func (f *ZipFetcher) Fetch(ctx context.Context, dep *manifest.Dep, dest string) error {
	stamp := depStamp(dep, f.Platform)
	if readMarker(dest, PackageMarker) == stamp {
		f.Log.Info().
			Str("dest", dest).
			Msg("Packages already on version")
		f.Metrics.RecordFetch("package", telemetry.ResultCached)
		return nil
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		f.Metrics.RecordFetch("package", telemetry.ResultError)
		return &FetchError{Dest: dest, ExitCode: -1, Err: err}
	}

	for _, pkg := range dep.Packages {
		name := ExpandPackageName(pkg.Name, f.Platform)

		url := fmt.Sprintf("%s/dl/%s/+/%s", f.Host, name, pkg.Version)
		f.Log.Info().
			Str("package", name).
			Str("version", pkg.Version).
			Str("url", url).
			Msg("Downloading package")

		data, err := f.download(ctx, url)
		if err != nil {
			f.Metrics.RecordFetch("package", telemetry.ResultError)
			return err
		}

		if err := extractZip(data, dest); err != nil {
			f.Metrics.RecordFetch("package", telemetry.ResultError)
			return &ArchiveError{Package: name, Err: err}
		}
	}

	if err := writeMarker(dest, PackageMarker, stamp); err != nil {
		f.Metrics.RecordFetch("package", telemetry.ResultError)
		return &FetchError{Dest: dest, ExitCode: -1, Err: err}
	}
	f.Metrics.RecordFetch("package", telemetry.ResultDone)
	return nil
}

// depStamp is the idempotency key of a package dependency: every
// expanded package at its version, one per line.
func depStamp(dep *manifest.Dep, p platform.Platform) string {
	lines := make([]string, 0, len(dep.Packages))
	for _, pkg := range dep.Packages {
		lines = append(lines, ExpandPackageName(pkg.Name, p)+"@"+pkg.Version)
	}
	return strings.Join(lines, "\n")
}

// download retrieves url fully into memory, retrying with a doubling
// delay when retries are configured.
func (f *ZipFetcher) download(ctx context.Context, url string) ([]byte, error) {
	wait := f.RetryWait
	if wait <= 0 {
		wait = 5 * time.Second
	}

	for attempt := 0; ; attempt++ {
		data, err := f.downloadOnce(ctx, url)
		if err == nil {
			f.Metrics.RecordDownload(telemetry.ResultDone)
			return data, nil
		}
		f.Metrics.RecordDownload(telemetry.ResultError)

		if attempt >= f.Retries {
			return nil, err
		}

		f.Log.Warn().
			Err(err).
			Str("url", url).
			Dur("wait", wait).
			Int("attempt", attempt+1).
			Msg("Download failed, retrying")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, &DownloadError{URL: url, Err: ctx.Err()}
		}
		wait *= 2
	}
}

// downloadOnce performs a single GET. Non-2xx responses and empty bodies
// are download failures.
func (f *ZipFetcher) downloadOnce(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &DownloadError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	if len(data) == 0 {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("empty response body")}
	}
	return data, nil
}
