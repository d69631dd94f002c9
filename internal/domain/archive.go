package domain

// RawResult is an archive response body as received, plus the total match
// count when the archive reports one.
type RawResult struct {
	Body       []byte
	TotalCount int // -1 when unknown
}

// ArchiveInfo describes a configured archive for listing.
type ArchiveInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Status      string `json:"status"`
}
