// Package drivetest provides an in-memory Gateway double for worker and
// exporter tests.
package drivetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"rosterforge/internal/drive"
)

// Fake is an in-memory remote folder tree implementing drive.Gateway
type Fake struct {
	mu       sync.Mutex
	items    map[string]drive.Item
	children map[string][]string // parent id -> child ids, insertion order
	content  map[string][]byte   // streamed payloads by id
	nextID   int

	// PageSize splits ListChildren results into pages when > 0
	PageSize int

	// Err, when set, is returned by every call; simulates remote outages
	Err error

	// mutation counters for idempotence assertions
	FolderCreates int
	Copies        int
}

func New() *Fake {
	return &Fake{
		items:    make(map[string]drive.Item),
		children: make(map[string][]string),
		content:  make(map[string][]byte),
	}
}

// Add inserts an item under parentID, assigning id and link when empty,
// and returns the stored item.
func (f *Fake) Add(parentID string, it drive.Item) drive.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(parentID, it)
}

func (f *Fake) addLocked(parentID string, it drive.Item) drive.Item {
	if it.ID == "" {
		f.nextID++
		it.ID = fmt.Sprintf("id-%d", f.nextID)
	}
	if it.Link == "" {
		it.Link = "https://drive.example/" + it.ID
	}
	f.items[it.ID] = it
	if parentID != "" {
		f.children[parentID] = append(f.children[parentID], it.ID)
	}
	return it
}

// SetContent seeds the byte payload served for id by the export and
// download calls.
func (f *Fake) SetContent(id string, b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[id] = b
}

// Item returns a stored item by id for assertions
func (f *Fake) Item(id string) (drive.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	return it, ok
}

func (f *Fake) GetMetadata(_ context.Context, id string) (drive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return drive.Item{}, f.Err
	}
	it, ok := f.items[id]
	if !ok {
		return drive.Item{}, drive.ErrNotFound
	}
	return it, nil
}

func (f *Fake) ListChildren(_ context.Context, parentID, pageToken string) (drive.ChildPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return drive.ChildPage{}, f.Err
	}
	ids := f.children[parentID]
	start := 0
	if pageToken != "" {
		start, _ = strconv.Atoi(pageToken)
	}
	end := len(ids)
	next := ""
	if f.PageSize > 0 && start+f.PageSize < end {
		end = start + f.PageSize
		next = strconv.Itoa(end)
	}
	var page drive.ChildPage
	for _, id := range ids[start:end] {
		page.Items = append(page.Items, f.items[id])
	}
	page.NextPageToken = next
	return page, nil
}

func (f *Fake) FindChildrenByName(_ context.Context, parentID, name string) ([]drive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []drive.Item
	for _, id := range f.children[parentID] {
		if f.items[id].Name == name {
			out = append(out, f.items[id])
		}
	}
	return out, nil
}

func (f *Fake) CreateFolder(_ context.Context, parentID, name string) (drive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return drive.Item{}, f.Err
	}
	f.FolderCreates++
	return f.addLocked(parentID, drive.Item{Name: name, MimeType: drive.MimeFolder}), nil
}

func (f *Fake) CopyAsSpreadsheet(_ context.Context, sourceID, name, parentID string) (drive.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return drive.Item{}, f.Err
	}
	if _, ok := f.items[sourceID]; !ok {
		return drive.Item{}, drive.ErrNotFound
	}
	f.Copies++
	return f.addLocked(parentID, drive.Item{Name: name, MimeType: drive.MimeSheet}), nil
}

func (f *Fake) ExportSheetPDF(_ context.Context, id string) (io.ReadCloser, error) {
	return f.stream(id, []byte("%PDF-1.4 fake sheet"))
}

func (f *Fake) ExportPDF(_ context.Context, id string) (io.ReadCloser, error) {
	return f.stream(id, []byte("%PDF-1.4 fake export"))
}

func (f *Fake) DownloadRaw(_ context.Context, id string) (io.ReadCloser, error) {
	return f.stream(id, []byte("raw bytes"))
}

func (f *Fake) stream(id string, fallback []byte) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if _, ok := f.items[id]; !ok {
		return nil, drive.ErrNotFound
	}
	b, ok := f.content[id]
	if !ok {
		b = fallback
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
