package storage

// Persistence

type WriteResult struct {
	location  string
	artifacts []string
}

func NewWriteResult(location string, artifacts []string) WriteResult {
	return WriteResult{
		location:  location,
		artifacts: artifacts,
	}
}

// Location is where the primary output of a sink can be found.
func (w *WriteResult) Location() string {
	return w.location
}

// Artifacts lists every file or record written, primary output first.
func (w *WriteResult) Artifacts() []string {
	artifacts := make([]string, len(w.artifacts))
	copy(artifacts, w.artifacts)
	return artifacts
}
