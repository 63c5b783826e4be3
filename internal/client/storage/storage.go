// Package storage contains the permanent-store backends an upload is
// written to: a content-addressed IPFS node and an S3-compatible bucket.
// Both are write-once from the client's point of view; nothing here deletes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/permavault/internal/common"
)

// Tag is a name/value label attached to an upload.
type Tag struct {
	Name  string
	Value string
}

// Receipt identifies a stored object.
type Receipt struct {
	ID  string
	URL string
}

// Store is the upload_bytes/download boundary used by the orchestrator
// and the access flow.
type Store interface {
	Put(ctx context.Context, data []byte, tags []Tag) (Receipt, error)
	// Get reads at most limit bytes of the object. A longer object yields
	// ErrTooLarge rather than a truncated body.
	Get(ctx context.Context, id string, limit int64) ([]byte, error)
}

var ErrTooLarge = errors.New("object exceeds size limit")

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// UploadTags builds the standard tag set for an upload.
func UploadTags(appName, appVersion, fileName, contentType string, encrypted bool) []Tag {
	tags := []Tag{
		{Name: "App-Name", Value: appName},
		{Name: "App-Version", Value: appVersion},
		{Name: "File-Name", Value: fileName},
	}
	if encrypted {
		tags = append(tags,
			Tag{Name: "Content-Type", Value: common.EncryptedContentType},
			Tag{Name: "Original-Content-Type", Value: contentType},
			Tag{Name: "Encrypted", Value: strconv.FormatBool(true)},
			Tag{Name: "Encryption-Method", Value: "AES-256-GCM"},
		)
		return tags
	}
	return append(tags, Tag{Name: "Content-Type", Value: contentType})
}

// TagValue returns the value of the first tag named name.
func TagValue(tags []Tag, name string) (string, bool) {
	for _, t := range tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}
