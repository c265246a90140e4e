package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teemow/minutegen/internal/logging"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders.
	FolderMimeType = "application/vnd.google-apps.folder"

	// rootSentinel is the conventional parent ID marking the Drive root.
	rootSentinel = "0"

	// maxCandidates bounds the selection list offered to the user.
	maxCandidates = 20

	// probePageSize is the size of the broad "does anything exist" probe.
	probePageSize = 5
)

// audioQueries is the set of filter queries used to find audio files. Drive
// has no reliable single "is audio" predicate: Google-native uploads carry an
// audio/* MIME type, but files synced from other tools often come through as
// octet-stream, so name-extension filters back up the MIME filter.
var audioQueries = []string{
	"mimeType contains 'audio/' and trashed=false",
	"name contains '.mp3' and trashed=false",
	"name contains '.wav' and trashed=false",
	"name contains '.m4a' and trashed=false",
	"name contains '.flac' and trashed=false",
	"name contains '.aac' and trashed=false",
	"name contains '.ogg' and trashed=false",
	"name contains '.wma' and trashed=false",
}

// Client wraps the Google Drive API service.
type Client struct {
	service *drive.Service
	logger  *slog.Logger
}

// NewClient creates a Drive client on top of an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return newClient(service, logger), nil
}

func newClient(service *drive.Service, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{service: service, logger: logger}
}

// SearchAudioCandidates looks for audio files the user could process. It
// runs a broad probe first so an empty Drive is reported as empty rather
// than as "no audio found"; when files exist but none match the audio
// filters, the summary breaks down what was found by coarse MIME category.
// Results are merged across queries, de-duplicated by ID and capped at
// maxCandidates.
func (c *Client) SearchAudioCandidates(ctx context.Context) ([]Candidate, string, error) {
	logger := logging.WithOperation(c.logger, "search_audio_candidates")

	probe, err := c.service.Files.List().
		Context(ctx).
		Q("trashed=false").
		PageSize(probePageSize).
		Fields("files(id, name, mimeType)").
		Do()
	if err != nil {
		return nil, "", fmt.Errorf("cannot access Google Drive files: %w", err)
	}

	if len(probe.Files) == 0 {
		return nil, "no files found in your Google Drive", nil
	}

	var merged []RemoteFile
	seen := make(map[string]bool)

	for _, query := range audioQueries {
		result, err := c.service.Files.List().
			Context(ctx).
			Q(query).
			PageSize(maxCandidates).
			Fields("files(id, name, mimeType, webViewLink, parents)").
			Do()
		if err != nil {
			// A single failing filter should not sink the whole search.
			logger.Debug("audio filter query failed", "query", query, logging.Err(err))
			continue
		}
		for _, f := range result.Files {
			// A folder named like "standups.mp3" matches the name filters.
			if f.MimeType == FolderMimeType || seen[f.Id] {
				continue
			}
			seen[f.Id] = true
			merged = append(merged, convertToRemoteFile(f))
		}
	}

	if len(merged) == 0 {
		return nil, fmt.Sprintf("no audio files found in your Google Drive (found: %s)",
			categorize(probe.Files)), nil
	}

	total := len(merged)
	if len(merged) > maxCandidates {
		merged = merged[:maxCandidates]
	}

	candidates := make([]Candidate, 0, len(merged))
	for _, f := range merged {
		candidates = append(candidates, Candidate{
			RemoteFile:  f,
			DisplayPath: c.ResolveDisplayPath(ctx, f.ID, f.Name),
		})
	}

	logger.Info("audio search completed", "candidates", len(candidates))
	return candidates, fmt.Sprintf("found %d audio files in your Google Drive", total), nil
}

// ResolveDisplayPath walks the parent-folder chain from the file to the
// Drive root and joins the ancestor names into a readable path. Any lookup
// error along the way falls back to just the file's own name; the caller
// never sees a failure here.
func (c *Client) ResolveDisplayPath(ctx context.Context, fileID, fileName string) string {
	parts := []string{fileName}
	currentID := fileID

	for {
		meta, err := c.service.Files.Get(currentID).
			Context(ctx).
			Fields("parents").
			Do()
		if err != nil {
			return fileName
		}
		if len(meta.Parents) == 0 {
			break
		}

		parentID := meta.Parents[0]
		if parentID == rootSentinel {
			break
		}

		parent, err := c.service.Files.Get(parentID).
			Context(ctx).
			Fields("name").
			Do()
		if err != nil {
			return fileName
		}

		parts = append([]string{parent.Name}, parts...)
		currentID = parentID
	}

	return strings.Join(parts, " / ")
}

// categorize summarizes files by coarse MIME category, e.g.
// "3 application, 2 image".
func categorize(files []*drive.File) string {
	counts := make(map[string]int)
	for _, f := range files {
		base := f.MimeType
		if idx := strings.Index(base, "/"); idx >= 0 {
			base = base[:idx]
		}
		if base == "" {
			base = "unknown"
		}
		counts[base]++
	}

	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, fmt.Sprintf("%d %s", counts[category], category))
	}
	return strings.Join(parts, ", ")
}
