package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jlaffaye/ftp"
)

const defaultTimeout = 60 * time.Second

// Fetcher provisions the data directory from an example-data archive. It is
// idempotent: a populated data directory short-circuits, and a failed
// download or unpack never leaves a partial data directory behind.
type Fetcher struct {
	ArchiveURL string
	DataDir    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// EnsureData downloads and unpacks the archive unless the data directory
// already holds files. With no archive URL configured it only verifies the
// directory exists.
func (f *Fetcher) EnsureData(ctx context.Context) error {
	if f.DataDir == "" {
		return errors.New("data directory not configured")
	}

	if entries, err := os.ReadDir(f.DataDir); err == nil && len(entries) > 0 {
		return nil
	}

	if f.ArchiveURL == "" {
		return fmt.Errorf("data directory %s is not populated and no archive URL is configured", f.DataDir)
	}

	archive, err := f.download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(archive)

	staging := f.DataDir + ".partial-" + uuid.NewString()
	if err := unpack(archive, f.ArchiveURL, staging); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}

	// The empty directory may exist from a previous run.
	_ = os.Remove(f.DataDir)
	if err := os.Rename(staging, f.DataDir); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	return nil
}

func (f *Fetcher) download(ctx context.Context) (string, error) {
	u, err := url.Parse(f.ArchiveURL)
	if err != nil {
		return "", fmt.Errorf("archive url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.downloadHTTP(ctx)
	case "ftp":
		return f.downloadFTP(u)
	default:
		return "", fmt.Errorf("archive url: unsupported scheme %q", u.Scheme)
	}
}

func (f *Fetcher) downloadHTTP(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.effectiveTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ArchiveURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.effectiveClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", f.ArchiveURL, resp.StatusCode)
	}

	return writeTemp(resp.Body)
}

func (f *Fetcher) downloadFTP(u *url.URL) (string, error) {
	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(f.effectiveTimeout()))
	if err != nil {
		return "", fmt.Errorf("ftp dial %s: %w", addr, err)
	}
	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return "", fmt.Errorf("ftp login %s: %w", addr, err)
	}

	resp, err := conn.Retr(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("ftp retrieve %s: %w", u.Path, err)
	}
	defer resp.Close()

	return writeTemp(resp)
}

func writeTemp(r io.Reader) (string, error) {
	tmp := filepath.Join(os.TempDir(), "datadesc-"+uuid.NewString())
	file, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

func unpack(archive, sourceURL, dest string) error {
	name := path.Base(sourceURL)
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}

	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return untarGz(archive, dest)
	case strings.HasSuffix(name, ".zip"):
		return unzip(archive, dest)
	default:
		return fmt.Errorf("unsupported archive format: %s", name)
	}
}

func (f *Fetcher) effectiveClient() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return http.DefaultClient
}

func (f *Fetcher) effectiveTimeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return defaultTimeout
}
