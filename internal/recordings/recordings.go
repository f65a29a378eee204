// Package recordings exports captured answers to a local directory, one
// folder per caller.
package recordings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roboyoz/hotline/internal/assets"
	"github.com/roboyoz/hotline/internal/interview"
)

// DefaultConcurrency bounds parallel downloads.
const DefaultConcurrency = 4

// ErrRecordingGone means the provider no longer has the audio.
var ErrRecordingGone = errors.New("recording not found")

var (
	clientName  = regexp.MustCompile(`^client\W`)
	notAlnum    = regexp.MustCompile(`[^A-Za-z0-9]+`)
	edgeNonWord = regexp.MustCompile(`^\W+|\W+$`)
)

// AssetSource serves recordings that were copied into the asset store.
// URIs under BaseURL are read from Store by their remaining path.
type AssetSource struct {
	Store   assets.Store
	BaseURL string
}

// File is one downloaded (or already present) recording.
type File struct {
	Path    string
	Size    int64
	Skipped bool
}

// Report summarizes a download run.
type Report struct {
	Files      []File
	Downloaded int
	Skipped    int
	Bytes      int64
}

// Downloader copies every stored recording to disk.
type Downloader struct {
	Store  interview.Store
	Assets *AssetSource
	HTTP   *http.Client
	// AccountSid and AuthToken authenticate provider downloads.
	AccountSid  string
	AuthToken   string
	Concurrency int
	Logger      *slog.Logger
	// Progress, if set, is called after each recording with the number
	// finished so far.
	Progress func(done, total int)
}

func (d *Downloader) client() *http.Client {
	if d.HTTP != nil {
		return d.HTTP
	}
	return &http.Client{Timeout: 2 * time.Minute}
}

func (d *Downloader) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

type job struct {
	path string
	uri  string
}

// Download writes every recording under dir. Files that already exist are
// left alone, so an interrupted run can be resumed.
func (d *Downloader) Download(ctx context.Context, dir string) (*Report, error) {
	jobs, err := d.plan(ctx, dir)
	if err != nil {
		return nil, err
	}

	limit := d.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	report := &Report{}
	for _, j := range jobs {
		g.Go(func() error {
			f, err := d.fetchOne(gctx, j)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			report.Files = append(report.Files, f)
			if f.Skipped {
				report.Skipped++
			} else {
				report.Downloaded++
				report.Bytes += f.Size
			}
			if d.Progress != nil {
				d.Progress(len(report.Files), len(jobs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// plan lists the target path of every recording, keeping the first when two
// recordings map to the same file.
func (d *Downloader) plan(ctx context.Context, dir string) ([]job, error) {
	numbers, err := d.Store.ListPhoneNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing callers: %w", err)
	}
	seen := make(map[string]bool)
	var jobs []job
	for _, n := range numbers {
		iv, err := d.Store.LoadInterview(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("loading interview for %s: %w", n, err)
		}
		callerDir := filepath.Join(dir, CallerDir(iv))
		for _, rec := range iv.Recordings {
			if rec.URI == "" {
				continue
			}
			p := filepath.Join(callerDir, FileName(rec))
			if seen[p] {
				d.logger().Warn("duplicate recording file name", "path", p, "recording_sid", rec.RecordingSid)
				continue
			}
			seen[p] = true
			jobs = append(jobs, job{path: p, uri: rec.URI})
		}
	}
	return jobs, nil
}

func (d *Downloader) fetchOne(ctx context.Context, j job) (File, error) {
	if info, err := os.Stat(j.path); err == nil {
		return File{Path: j.path, Size: info.Size(), Skipped: true}, nil
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return File{}, fmt.Errorf("creating %s: %w", filepath.Dir(j.path), err)
	}

	body, err := d.open(ctx, j.uri)
	if err != nil {
		return File{}, err
	}
	defer body.Close() //nolint:errcheck

	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".download-*")
	if err != nil {
		return File{}, err
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return File{}, fmt.Errorf("downloading %s: %w", j.uri, err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return File{}, err
	}
	d.logger().Debug("downloaded recording", "path", j.path, "bytes", n)
	return File{Path: j.path, Size: n}, nil
}

// open reads a recording from the asset store when it lives there and from
// the provider otherwise.
func (d *Downloader) open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if d.Assets != nil && d.Assets.BaseURL != "" {
		if key, ok := strings.CutPrefix(uri, d.Assets.BaseURL); ok {
			asset, err := d.Assets.Store.Get(ctx, strings.TrimPrefix(key, "/"))
			if err != nil {
				return nil, fmt.Errorf("reading asset %s: %w", key, err)
			}
			return asset.Body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", uri, err)
	}
	if d.AccountSid != "" {
		req.SetBasicAuth(d.AccountSid, d.AuthToken)
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uri, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("fetching %s: %w", uri, ErrRecordingGone)
		}
		return nil, fmt.Errorf("fetching %s: status %d", uri, resp.StatusCode)
	}
	return resp.Body, nil
}

// CallerDir names the folder for a caller: the display name (or number when
// unnamed) without a browser-client prefix, with every run of other
// characters turned into a dash.
func CallerDir(iv *interview.Interview) string {
	name := iv.CallerName
	if name == "" {
		name = iv.PhoneNumber
	}
	name = clientName.ReplaceAllString(name, "")
	name = notAlnum.ReplaceAllString(name, "-")
	if name == "" || name == "-" {
		return "unknown"
	}
	return name
}

// FileName names a recording after its question and the last four
// characters of its URI, ignoring any extension.
func FileName(rec interview.Recording) string {
	base := notAlnum.ReplaceAllString(rec.Question, "-")
	base = edgeNonWord.ReplaceAllString(base, "")
	if len(base) > 16 {
		base = base[:16]
	}
	uid := strings.TrimSuffix(rec.URI, path.Ext(rec.URI))
	if len(uid) > 4 {
		uid = uid[len(uid)-4:]
	}
	return base + "-" + notAlnum.ReplaceAllString(uid, "-") + ".wav"
}
