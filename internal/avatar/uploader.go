// Package avatar uploads avatar images to the external image host and hands
// back a URL suitable for storing on a profile.
package avatar

import "context"

// Uploader is the narrow contract profile signup depends on. Implementations
// must be safe for use by a single session; failures are wrapped with
// common.ErrorAvatarUpload by callers that require it.
type Uploader interface {
	// Upload stores the image bytes under a fresh key derived from name and
	// returns the public URL of the stored image.
	Upload(ctx context.Context, name string, data []byte) (string, error)
}
