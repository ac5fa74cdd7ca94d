package server

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"shadow-studio/internal/mask"
	"shadow-studio/internal/raster"
)

// ErrUnknownAsset reports an asset id that was never stored or was evicted.
var ErrUnknownAsset = errors.New("server: unknown asset")

// ErrStoreFull reports an asset the cache refused to admit.
var ErrStoreFull = errors.New("server: asset store refused the upload")

// Kind is the role of an uploaded image.
type Kind string

const (
	KindForeground Kind = "foreground"
	KindBackground Kind = "background"
	KindDepth      Kind = "depth"
)

// Asset is an uploaded, decoded image. Foreground assets carry their mask,
// depth assets carry only Depth.
type Asset struct {
	ID    string
	Kind  Kind
	Image *raster.Image
	Mask  *mask.Mask
	Depth *raster.DepthMap
}

// Size returns the asset's dimensions.
func (a *Asset) Size() (int, int) {
	if a.Depth != nil {
		return a.Depth.Width, a.Depth.Height
	}
	return a.Image.Width, a.Image.Height
}

func (a *Asset) cost() int64 {
	var n int
	if a.Image != nil {
		n += len(a.Image.Pix)
	}
	if a.Mask != nil {
		n += len(a.Mask.Pix)
	}
	if a.Depth != nil {
		n += len(a.Depth.Pix)
	}
	return int64(max(n, 1))
}

// AssetStore keeps uploaded assets in memory, bounded by their pixel bytes.
// Nothing is persisted.
type AssetStore struct {
	cache *ristretto.Cache
}

// NewAssetStore creates a store holding up to maxBytes of pixel data.
func NewAssetStore(maxBytes int64) (*AssetStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("server: asset cache: %w", err)
	}
	return &AssetStore{cache: cache}, nil
}

// Put stores a under a fresh id and returns it.
func (s *AssetStore) Put(a Asset) (*Asset, error) {
	a.ID = uuid.NewString()
	if !s.cache.Set(a.ID, &a, a.cost()) {
		return nil, ErrStoreFull
	}
	// Make the entry visible to the next Get
	s.cache.Wait()
	if _, ok := s.cache.Get(a.ID); !ok {
		return nil, ErrStoreFull
	}
	return &a, nil
}

// Get returns the asset with id, checking its kind.
func (s *AssetStore) Get(id string, kind Kind) (*Asset, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	a := v.(*Asset)
	if a.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s, not a %s", ErrUnknownAsset, id, a.Kind, kind)
	}
	return a, nil
}

// Close releases the cache's background goroutines.
func (s *AssetStore) Close() {
	s.cache.Close()
}
