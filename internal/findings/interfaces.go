package findings

import "context"

// Fetcher retrieves a single remote image resource.
type Fetcher interface {
	Fetch(ctx context.Context, task DownloadTask) (FetchResult, error)
}
