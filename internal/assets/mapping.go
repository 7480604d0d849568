package assets

import (
	"github.com/choralworks/medialib/pkg/query"
	"github.com/choralworks/medialib/pkg/repository"
)

var projection = query.NewProjectionMap("public", "assets", "a").
	Project("id", "Id").
	Project("scope", "Scope").
	Project("name", "Name").
	Project("url", "Url").
	Project("type", "Type").
	Project("size_bytes", "SizeBytes").
	Project("folder", "Folder").
	Project("blob_ref", "BlobRef").
	Project("page_count", "PageCount").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r       Record
		blobRef *string
	)

	err := s.Scan(
		&r.ID,
		&r.Scope,
		&r.Name,
		&r.URL,
		&r.Type,
		&r.SizeBytes,
		&r.Folder,
		&blobRef,
		&r.PageCount,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if blobRef != nil {
		r.BlobRef = *blobRef
	}
	return r, err
}
