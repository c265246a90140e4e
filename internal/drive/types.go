package drive

import drive "google.golang.org/api/drive/v3"

// RemoteFile describes a file in Google Drive. Descriptors are immutable and
// never persisted; they exist to populate a selection list and hand the ID
// back to the fetcher.
type RemoteFile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MimeType    string   `json:"mime_type"`
	Parents     []string `json:"parents,omitempty"`
	WebViewLink string   `json:"web_view_link,omitempty"`
}

// Candidate is a remote file offered for selection, with its resolved
// human-readable path.
type Candidate struct {
	RemoteFile
	DisplayPath string `json:"display_path"`
}

// convertToRemoteFile converts a Drive API File to our RemoteFile type.
func convertToRemoteFile(f *drive.File) RemoteFile {
	return RemoteFile{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Parents:     f.Parents,
		WebViewLink: f.WebViewLink,
	}
}
