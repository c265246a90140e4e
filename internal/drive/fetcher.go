package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/teemow/minutegen/internal/logging"
)

// ErrInvalidReference indicates the download input was neither a recognized
// Drive URL nor a bare file identifier.
var ErrInvalidReference = errors.New("invalid Google Drive file reference")

// defaultSuffix is used when the remote file name carries no extension. The
// transcription API keys the decoder off the suffix, and meeting recordings
// without one are almost always mp3.
const defaultSuffix = ".mp3"

// ExtractFileID pulls the file identifier out of a Drive reference. It
// accepts the path-segment share URL form (/file/d/<id>/...), the
// query-parameter form (?id=<id>) and a bare identifier.
func ExtractFileID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrInvalidReference
	}

	if strings.Contains(input, "drive.google.com") {
		if _, after, ok := strings.Cut(input, "/file/d/"); ok {
			id, _, _ := strings.Cut(after, "/")
			if id == "" {
				return "", ErrInvalidReference
			}
			return id, nil
		}
		if _, after, ok := strings.Cut(input, "id="); ok {
			id, _, _ := strings.Cut(after, "&")
			if id == "" {
				return "", ErrInvalidReference
			}
			return id, nil
		}
		return "", ErrInvalidReference
	}

	// Bare identifier: a single opaque token.
	if strings.ContainsAny(input, "/? \t\n") {
		return "", ErrInvalidReference
	}
	return input, nil
}

// Download fetches a remote file by ID or URL into a freshly created
// temporary file and returns its path together with the remote display name.
// The caller owns the temporary file and must delete it when processing
// finishes.
func (c *Client) Download(ctx context.Context, reference string) (string, string, error) {
	fileID, err := ExtractFileID(reference)
	if err != nil {
		return "", "", err
	}

	meta, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields("id, name").
		Do()
	if err != nil {
		return "", "", fmt.Errorf("cannot access file %s, make sure you have access to it: %w", fileID, err)
	}

	name := meta.Name
	if name == "" {
		name = "downloaded_file"
	}

	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return "", "", fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	suffix := filepath.Ext(name)
	if suffix == "" {
		suffix = defaultSuffix
	}

	tmp, err := os.CreateTemp("", "minutegen-*"+suffix)
	if err != nil {
		return "", "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("failed to write downloaded content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	c.logger.Info("downloaded file from Google Drive",
		logging.Operation("download"), logging.FileID(fileID), "name", name, "path", tmp.Name())

	return tmp.Name(), name, nil
}
