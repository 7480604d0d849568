package assets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/choralworks/medialib/internal/blobstore"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FileStatus tracks a single file's progress through the upload flow.
type FileStatus string

// Upload state machine. Recorded is the terminal success; UploadFailed and
// RecordFailed are the failure exits at the blob and metadata stages.
const (
	StatusPending        FileStatus = "pending"
	StatusUploading      FileStatus = "uploading"
	StatusBlobStored     FileStatus = "blob_stored"
	StatusRecordCreating FileStatus = "record_creating"
	StatusRecorded       FileStatus = "recorded"
	StatusUploadFailed   FileStatus = "upload_failed"
	StatusRecordFailed   FileStatus = "record_failed"
)

// FileUpload is one user-supplied file in a batch.
type FileUpload struct {
	Name        string
	ContentType string
	Folder      string
	Data        []byte
}

// FileResult reports one file's terminal status. Record is set only for
// files reaching Recorded.
type FileResult struct {
	Name   string     `json:"name"`
	Status FileStatus `json:"status"`
	Record *Record    `json:"record,omitempty"`
	Err    error      `json:"-"`
}

// BatchOutcome is the tri-state summary of a batch upload.
type BatchOutcome string

// Batch outcome constants.
const (
	BatchSucceeded BatchOutcome = "succeeded"
	BatchPartial   BatchOutcome = "partial"
	BatchFailed    BatchOutcome = "failed"
)

// BatchResult summarizes an upload batch with explicit per-file results and
// success/failure counts.
type BatchResult struct {
	Outcome   BatchOutcome `json:"outcome"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Files     []FileResult `json:"files"`
}

// BatchProgressFunc receives per-file upload progress; index addresses the
// file's position in the batch.
type BatchProgressFunc func(index, percent int)

// Uploader persists user-supplied files as asset records across the blob
// store and the metadata store.
//
// For every file the blob upload strictly precedes record creation: a record
// must never reference a non-existent blob. The reverse failure (blob stored,
// record creation failed) is reported, not rolled back; the blob store delete
// is itself fallible and a second failure would compound the ambiguity, so
// the orphaned blob is left in place.
type Uploader struct {
	store       MetadataStore
	blobs       blobstore.Store
	cache       *ViewCache
	logger      *slog.Logger
	concurrency int
}

// NewUploader creates an Uploader with the given fan-out limit.
func NewUploader(store MetadataStore, blobs blobstore.Store, cache *ViewCache, logger *slog.Logger, concurrency int) *Uploader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Uploader{
		store:       store,
		blobs:       blobs,
		cache:       cache,
		logger:      logger.With("system", "upload"),
		concurrency: concurrency,
	}
}

// UploadBatch processes every file in the batch independently, up to the
// configured fan-out, and reports per-file terminal statuses plus the
// tri-state batch outcome. Files reaching Recorded are appended to the view
// cache in their batch order; failed files never enter the view.
func (u *Uploader) UploadBatch(ctx context.Context, scope string, files []FileUpload, onProgress BatchProgressFunc) BatchResult {
	results := make([]FileResult, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, u.concurrency)

	for i, file := range files {
		wg.Add(1)
		go func(i int, file FileUpload) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = u.uploadOne(ctx, scope, i, file, onProgress)
		}(i, file)
	}
	wg.Wait()

	var recorded []Record
	summary := BatchResult{Files: results}
	for _, res := range results {
		if res.Status == StatusRecorded {
			summary.Succeeded++
			recorded = append(recorded, *res.Record)
		} else {
			summary.Failed++
		}
	}

	u.cache.Append(recorded)

	switch {
	case summary.Failed == 0:
		summary.Outcome = BatchSucceeded
	case summary.Succeeded == 0:
		summary.Outcome = BatchFailed
	default:
		summary.Outcome = BatchPartial
	}

	u.logger.Info("upload batch completed",
		"scope", scope,
		"outcome", summary.Outcome,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary
}

func (u *Uploader) uploadOne(ctx context.Context, scope string, index int, file FileUpload, onProgress BatchProgressFunc) FileResult {
	result := FileResult{Name: file.Name, Status: StatusPending}

	contentType := detectContentType(file.ContentType, file.Data)
	assetType := TypeFromContentType(contentType)

	var pageCount *int
	if contentType == "application/pdf" {
		pc, err := extractPDFPageCount(file.Data)
		if err != nil {
			u.logger.Warn("failed to extract pdf page count", "name", file.Name, "error", err)
		} else {
			pageCount = pc
		}
	}

	result.Status = StatusUploading
	var progress blobstore.ProgressFunc
	if onProgress != nil {
		progress = func(percent int) { onProgress(index, percent) }
	}

	url, ref, err := u.blobs.Upload(ctx, file.Data, contentType, progress)
	if err != nil {
		u.logger.Error("blob upload failed", "name", file.Name, "error", err)
		result.Status = StatusUploadFailed
		result.Err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		return result
	}
	result.Status = StatusBlobStored

	result.Status = StatusRecordCreating
	rec, err := u.store.Insert(ctx, CreateCommand{
		Scope:     scope,
		Name:      file.Name,
		URL:       url,
		Type:      assetType,
		SizeBytes: int64(len(file.Data)),
		Folder:    file.Folder,
		BlobRef:   ref,
		PageCount: pageCount,
	})
	if err != nil {
		// blob is now orphaned; left in place deliberately
		u.logger.Error("record creation failed after blob upload", "name", file.Name, "blob_ref", ref, "error", err)
		result.Status = StatusRecordFailed
		result.Err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		return result
	}

	result.Status = StatusRecorded
	result.Record = rec
	return result
}

func detectContentType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(data []byte) (*int, error) {
	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, err
	}
	return &count, nil
}
