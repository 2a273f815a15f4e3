package driven

import (
	port "github.com/alorle/addon-playlist/internal/port/driven"
)

// Compile-time check that AddonHTTPSource implements ContentSource interface
var _ port.ContentSource = (*AddonHTTPSource)(nil)

// Compile-time check that WikimediaHTTPIndex implements MediaIndex interface
var _ port.MediaIndex = (*WikimediaHTTPIndex)(nil)

// Compile-time check that ImageHTTPDownloader implements ImageDownloader interface
var _ port.ImageDownloader = (*ImageHTTPDownloader)(nil)

// Compile-time check that PlaylistFileWriter implements PlaylistWriter interface
var _ port.PlaylistWriter = (*PlaylistFileWriter)(nil)

// Compile-time check that both metadata stores implement LogoMetadataRepository interface
var (
	_ port.LogoMetadataRepository = (*LogoMetadataJSONRepository)(nil)
	_ port.LogoMetadataRepository = (*LogoMetadataBoltDBRepository)(nil)
)
