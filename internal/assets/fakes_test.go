package assets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/choralworks/medialib/internal/blobstore"
	"github.com/choralworks/medialib/internal/lifecycle"
	"github.com/google/uuid"
)

// sharedLog is an ordered call sequence both fakes can report into, so a
// test can assert ordering across the metadata and blob stores.
type sharedLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *sharedLog) record(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

func (l *sharedLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// fakeMetadata is an in-memory MetadataStore with scriptable failures and
// a call log for asserting operation ordering. Records are held in
// descending creation order, matching the store contract.
type fakeMetadata struct {
	mu      sync.Mutex
	records []Record

	listErr   error
	searchErr error
	insertErr error
	deleteErr error

	onSearch func()

	events *sharedLog
	calls  []string
}

func (f *fakeMetadata) logCall(format string, args ...any) {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	f.events.record(call)
}

func (f *fakeMetadata) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func cursorLess(a, b Cursor) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

func (f *fakeMetadata) ListPage(ctx context.Context, scope string, typeFilter *Type, after *Cursor, limit int) ([]Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logCall("list:%s", scope)
	if f.listErr != nil {
		return nil, false, f.listErr
	}

	var out []Record
	for _, rec := range f.records {
		if rec.Scope != scope {
			continue
		}
		if typeFilter != nil && rec.Type != *typeFilter {
			continue
		}
		if after != nil && !cursorLess(CursorOf(rec), *after) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}

	return out, len(out) == limit, nil
}

func (f *fakeMetadata) SearchAll(ctx context.Context, scope, keyword string) ([]Record, error) {
	f.mu.Lock()
	f.logCall("search:%s:%s", scope, keyword)
	hook := f.onSearch
	err := f.searchErr
	records := make([]Record, len(f.records))
	copy(records, f.records)
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}

	var out []Record
	needle := strings.ToLower(keyword)
	for _, rec := range records {
		if rec.Scope != scope {
			continue
		}
		if strings.Contains(strings.ToLower(rec.Name), needle) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeMetadata) Insert(ctx context.Context, cmd CreateCommand) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logCall("insert:%s", cmd.Name)
	if f.insertErr != nil {
		return nil, f.insertErr
	}

	cmd.normalize()
	now := time.Now()
	rec := Record{
		ID:        uuid.New(),
		Scope:     cmd.Scope,
		Name:      cmd.Name,
		URL:       cmd.URL,
		Type:      cmd.Type,
		SizeBytes: cmd.SizeBytes,
		Folder:    cmd.Folder,
		BlobRef:   cmd.BlobRef,
		PageCount: cmd.PageCount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.records = append([]Record{rec}, f.records...)
	return &rec, nil
}

func (f *fakeMetadata) FindByID(ctx context.Context, scope string, id uuid.UUID) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rec := range f.records {
		if rec.Scope == scope && rec.ID == id {
			out := rec
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeMetadata) DeleteByID(ctx context.Context, scope string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logCall("metadelete:%s", id)
	if f.deleteErr != nil {
		return f.deleteErr
	}

	for i, rec := range f.records {
		if rec.Scope == scope && rec.ID == id {
			// rebuild rather than splice in place; the backing array may be
			// shared with the slice the test seeded
			next := make([]Record, 0, len(f.records)-1)
			next = append(next, f.records[:i]...)
			next = append(next, f.records[i+1:]...)
			f.records = next
			return nil
		}
	}
	return ErrNotFound
}

// fakeBlobs is an in-memory blob store. Failures are scripted per payload:
// tests use the file name as the payload so failOn can address files.
type fakeBlobs struct {
	mu     sync.Mutex
	seq    int
	failOn map[string]bool

	deleteErr error

	events *sharedLog
	calls  []string
}

func (f *fakeBlobs) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeBlobs) Upload(ctx context.Context, data []byte, contentType string, onProgress blobstore.ProgressFunc) (string, string, error) {
	f.mu.Lock()
	f.seq++
	call := "upload:" + string(data)
	f.calls = append(f.calls, call)
	f.events.record(call)
	fail := f.failOn[string(data)]
	ref := fmt.Sprintf("ref-%d", f.seq)
	f.mu.Unlock()

	if fail {
		return "", "", fmt.Errorf("blob store rejected upload")
	}

	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	return "/files/" + ref, ref, nil
}

func (f *fakeBlobs) DeleteByRef(ctx context.Context, ref, resourceType string) error {
	f.mu.Lock()
	call := "blobdelete:" + ref
	f.calls = append(f.calls, call)
	f.events.record(call)
	err := f.deleteErr
	f.mu.Unlock()
	return err
}

func (f *fakeBlobs) Exists(ctx context.Context, ref string) (bool, error) {
	return true, nil
}

func (f *fakeBlobs) Start(lc *lifecycle.Coordinator) error {
	return nil
}

// seedRecords builds n records for scope in descending creation order,
// named name-1 (newest) through name-n (oldest).
func seedRecords(scope string, n int) []Record {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ID:        uuid.New(),
			Scope:     scope,
			Name:      fmt.Sprintf("name-%d", i+1),
			URL:       fmt.Sprintf("/files/seed-%d", i+1),
			Type:      TypeImage,
			SizeBytes: 1024,
			Folder:    "image",
			BlobRef:   fmt.Sprintf("seed-ref-%d", i+1),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return records
}
