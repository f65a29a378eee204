// Package assets serves static audio and client files from blob storage or a
// local directory.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// ErrAssetNotFound is returned when no object exists under a key.
var ErrAssetNotFound = errors.New("asset not found")

// Asset is an open object. Callers must close Body.
type Asset struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store fetches objects by key.
type Store interface {
	Get(ctx context.Context, key string) (*Asset, error)
}

// BlobStore reads objects from an Azure Blob Storage container. Keys are
// joined onto Prefix.
type BlobStore struct {
	client    *azblob.Client
	container string
	prefix    string
}

var _ Store = (*BlobStore)(nil)

// NewBlobStore wraps an existing client.
func NewBlobStore(client *azblob.Client, container, prefix string) *BlobStore {
	return &BlobStore{client: client, container: container, prefix: prefix}
}

// OpenBlobStore builds a client from a connection string when one is given,
// otherwise from accountURL and the default Azure credential chain.
func OpenBlobStore(accountURL, connectionString, container, prefix string) (*BlobStore, error) {
	if container == "" {
		return nil, fmt.Errorf("blob container is required")
	}
	if connectionString != "" {
		client, err := azblob.NewClientFromConnectionString(connectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("creating blob client: %w", err)
		}
		return NewBlobStore(client, container, prefix), nil
	}
	if accountURL == "" {
		return nil, fmt.Errorf("blob account url or connection string is required")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("loading azure credential: %w", err)
	}
	return OpenBlobStoreWithCredential(accountURL, cred, container, prefix)
}

// OpenBlobStoreWithCredential builds a client for accountURL using cred.
func OpenBlobStoreWithCredential(accountURL string, cred azcore.TokenCredential, container, prefix string) (*BlobStore, error) {
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return NewBlobStore(client, container, prefix), nil
}

// BaseURL is the URL every object in the store lives under.
func (s *BlobStore) BaseURL() string {
	return strings.TrimSuffix(s.client.URL(), "/") + "/" + s.container + "/" + s.prefix
}

func (s *BlobStore) Get(ctx context.Context, key string) (*Asset, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, s.prefix+key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
		}
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	a := &Asset{Body: resp.Body}
	if resp.ContentType != nil {
		a.ContentType = *resp.ContentType
	}
	if resp.ContentLength != nil {
		a.Size = *resp.ContentLength
	}
	return a, nil
}

// DirStore reads objects from a directory on disk.
type DirStore struct {
	Root string
}

var _ Store = DirStore{}

func (d DirStore) Get(_ context.Context, key string) (*Asset, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
	}
	full := filepath.Join(d.Root, filepath.FromSlash(clean))
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, key)
	}
	return &Asset{
		Body:        f,
		ContentType: mime.TypeByExtension(filepath.Ext(full)),
		Size:        info.Size(),
	}, nil
}

// Handler serves GET /asset/{object...}.
type Handler struct {
	Store Store
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("object")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	asset, err := h.Store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	defer asset.Body.Close()

	contentType := asset.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, asset.Body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
