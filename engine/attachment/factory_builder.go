package attachment

// AtlasFactoryBuilderOption configures an atlas-backed Factory.
type AtlasFactoryBuilderOption func(*atlasFactoryImpl)

// WithAtlas sets the region lookup used to place textured attachments.
//
// Parameters:
//   - atlas: the region lookup
//
// Returns:
//   - AtlasFactoryBuilderOption: a function that applies the atlas option
func WithAtlas(atlas AtlasRegionLookup) AtlasFactoryBuilderOption {
	return func(f *atlasFactoryImpl) {
		if atlas != nil {
			f.atlas = atlas
		}
	}
}

// WithSkipMissing makes the factory skip attachments whose path has no atlas region
// instead of failing the load.
//
// Returns:
//   - AtlasFactoryBuilderOption: a function that applies the skip option
func WithSkipMissing() AtlasFactoryBuilderOption {
	return func(f *atlasFactoryImpl) {
		f.skipMissing = true
	}
}
