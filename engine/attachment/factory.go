package attachment

import (
	"errors"
	"fmt"
)

// ErrRegionNotFound is returned by an atlas-backed factory when an attachment's image path
// has no region in the atlas.
var ErrRegionNotFound = errors.New("atlas region not found")

// Factory creates attachment shells for the skeleton loaders. The loader fills in the
// geometry after the shell is returned. Returning a nil attachment and a nil error tells
// the loader to skip the attachment; its stream data is still consumed.
type Factory interface {
	// NewRegion creates a region attachment shell.
	//
	// Parameters:
	//   - skin: the name of the skin being loaded
	//   - name: the attachment name
	//   - path: the image path
	//
	// Returns:
	//   - *Region: the shell, or nil to skip the attachment
	//   - error: a non-nil error aborts the load
	NewRegion(skin, name, path string) (*Region, error)

	// NewMesh creates a mesh attachment shell.
	//
	// Parameters:
	//   - skin: the name of the skin being loaded
	//   - name: the attachment name
	//   - path: the image path
	//
	// Returns:
	//   - *Mesh: the shell, or nil to skip the attachment
	//   - error: a non-nil error aborts the load
	NewMesh(skin, name, path string) (*Mesh, error)

	// NewSkinnedMesh creates a skinned mesh attachment shell.
	//
	// Parameters:
	//   - skin: the name of the skin being loaded
	//   - name: the attachment name
	//   - path: the image path
	//
	// Returns:
	//   - *SkinnedMesh: the shell, or nil to skip the attachment
	//   - error: a non-nil error aborts the load
	NewSkinnedMesh(skin, name, path string) (*SkinnedMesh, error)

	// NewBoundingBox creates a bounding box attachment shell.
	//
	// Parameters:
	//   - skin: the name of the skin being loaded
	//   - name: the attachment name
	//
	// Returns:
	//   - *BoundingBox: the shell, or nil to skip the attachment
	//   - error: a non-nil error aborts the load
	NewBoundingBox(skin, name string) (*BoundingBox, error)
}

// AtlasRegionLookup finds packed texture regions by image path.
type AtlasRegionLookup interface {
	// FindRegion returns the region stored under path.
	//
	// Parameters:
	//   - path: the image path
	//
	// Returns:
	//   - TextureRegion: the region placement
	//   - bool: false if the atlas has no such region
	FindRegion(path string) (TextureRegion, bool)
}

// AtlasRegions is an in-memory AtlasRegionLookup keyed by image path.
type AtlasRegions map[string]TextureRegion

func (a AtlasRegions) FindRegion(path string) (TextureRegion, bool) {
	r, ok := a[path]
	return r, ok
}

// defaultFactoryImpl creates plain shells mapped onto the whole texture.
type defaultFactoryImpl struct{}

var _ Factory = &defaultFactoryImpl{}

// NewDefaultFactory returns a Factory that creates every attachment with UVs spanning
// the full texture and no packing offsets.
func NewDefaultFactory() Factory {
	return &defaultFactoryImpl{}
}

func (f *defaultFactoryImpl) NewRegion(_, name, path string) (*Region, error) {
	r := NewRegion(name)
	r.Path = path
	return r, nil
}

func (f *defaultFactoryImpl) NewMesh(_, name, path string) (*Mesh, error) {
	m := NewMesh(name)
	m.Path = path
	return m, nil
}

func (f *defaultFactoryImpl) NewSkinnedMesh(_, name, path string) (*SkinnedMesh, error) {
	m := NewSkinnedMesh(name)
	m.Path = path
	return m, nil
}

func (f *defaultFactoryImpl) NewBoundingBox(_, name string) (*BoundingBox, error) {
	return NewBoundingBox(name), nil
}

// atlasFactoryImpl places textured attachments using regions from an atlas.
type atlasFactoryImpl struct {
	atlas       AtlasRegionLookup
	skipMissing bool
}

var _ Factory = &atlasFactoryImpl{}

// NewAtlasFactory creates a Factory that resolves every textured attachment's path
// against an atlas.
//
// Parameters:
//   - options: functional options, WithAtlas is required
//
// Returns:
//   - Factory: the atlas-backed factory
func NewAtlasFactory(options ...AtlasFactoryBuilderOption) Factory {
	f := &atlasFactoryImpl{atlas: AtlasRegions{}}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *atlasFactoryImpl) region(name, path string) (TextureRegion, bool, error) {
	region, ok := f.atlas.FindRegion(path)
	if ok {
		return region, true, nil
	}
	if f.skipMissing {
		return TextureRegion{}, false, nil
	}
	return TextureRegion{}, false, fmt.Errorf("%w: %q (attachment %q)", ErrRegionNotFound, path, name)
}

func (f *atlasFactoryImpl) NewRegion(_, name, path string) (*Region, error) {
	region, ok, err := f.region(name, path)
	if !ok {
		return nil, err
	}
	r := NewRegion(name)
	r.Path = path
	r.SetRegion(region)
	return r, nil
}

func (f *atlasFactoryImpl) NewMesh(_, name, path string) (*Mesh, error) {
	region, ok, err := f.region(name, path)
	if !ok {
		return nil, err
	}
	m := NewMesh(name)
	m.Path = path
	m.Region = region
	return m, nil
}

func (f *atlasFactoryImpl) NewSkinnedMesh(_, name, path string) (*SkinnedMesh, error) {
	region, ok, err := f.region(name, path)
	if !ok {
		return nil, err
	}
	m := NewSkinnedMesh(name)
	m.Path = path
	m.Region = region
	return m, nil
}

func (f *atlasFactoryImpl) NewBoundingBox(_, name string) (*BoundingBox, error) {
	return NewBoundingBox(name), nil
}
