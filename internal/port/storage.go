package port

import "context"

// ObjectStorage abstracts the object-store collaborator. Logical paths are
// opaque strings assembled by the pipeline as
// {bucket_prefix}/{run_id}/{role}/{filename}.
type ObjectStorage interface {
	// Put uploads a local file under the logical path and returns a
	// storage URI.
	Put(ctx context.Context, localPath, logicalPath string) (string, error)
	// Get downloads the object at the logical path into a local file and
	// returns its path.
	Get(ctx context.Context, logicalPath string) (string, error)
	// Exists reports whether an object is present at the logical path.
	Exists(ctx context.Context, logicalPath string) (bool, error)
}
