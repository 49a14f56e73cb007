package workbook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"qastats/adapters/excel"
	"qastats/domain/core"
	"qastats/internal"
	"qastats/internal/errors"
	"qastats/internal/metrics"
)

// SupportedExtensions lists the upload types the reader can parse
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv"}

// Workbook is one uploaded file held in memory
type Workbook struct {
	ID         core.ID   `json:"id"`
	Name       string    `json:"name"`
	FileType   string    `json:"file_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Hash       core.Hash `json:"hash"`
	UploadedAt time.Time `json:"uploaded_at"`
	LastAccess time.Time `json:"last_access"`

	content []byte
}

// snapshot copies the entry. content is immutable after Put and stays shared.
func (w *Workbook) snapshot() *Workbook {
	c := *w
	return &c
}

// Reader returns a fresh reader over the upload
func (w *Workbook) Reader(config excel.ReaderConfig) *excel.DataReader {
	return excel.NewBytesReader(w.Name, w.content).WithConfig(config)
}

// Store keeps uploads in memory until they go unused for the TTL
type Store struct {
	mu        sync.RWMutex
	workbooks map[core.ID]*Workbook
	ttl       time.Duration
	maxBytes  int64
	reader    excel.ReaderConfig
	logger    *internal.Logger
	now       func() time.Time
}

// NewStore creates a workbook store. A zero ttl keeps uploads forever and a
// zero maxBytes disables the size check.
func NewStore(ttl time.Duration, maxBytes int64, reader excel.ReaderConfig, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{
		workbooks: make(map[core.ID]*Workbook),
		ttl:       ttl,
		maxBytes:  maxBytes,
		reader:    reader,
		logger:    logger,
		now:       time.Now,
	}
}

// Put reads an upload into the store. Re-uploading identical content under
// the same name returns the existing workbook.
func (s *Store) Put(name string, r io.Reader) (*Workbook, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if !supported(name) {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q, expected one of %s",
			filepath.Ext(name), strings.Join(SupportedExtensions, ", ")))
	}

	limited := r
	if s.maxBytes > 0 {
		limited = io.LimitReader(r, s.maxBytes+1)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, limited); err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if buf.Len() == 0 {
		return nil, errors.InvalidInput("upload is empty")
	}
	if s.maxBytes > 0 && int64(buf.Len()) > s.maxBytes {
		return nil, errors.InvalidInput(fmt.Sprintf("upload exceeds %d bytes", s.maxBytes))
	}

	content := buf.Bytes()
	hash := core.NewHash(content)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, wb := range s.workbooks {
		if wb.Hash == hash && wb.Name == name {
			wb.LastAccess = now
			return wb.snapshot(), nil
		}
	}

	wb := &Workbook{
		ID:         core.NewID(),
		Name:       name,
		FileType:   excel.FileTypeFromName(name),
		SizeBytes:  int64(len(content)),
		Hash:       hash,
		UploadedAt: now,
		LastAccess: now,
		content:    content,
	}
	s.workbooks[wb.ID] = wb
	metrics.SetWorkbooksStored(len(s.workbooks))

	s.logger.Info("stored workbook %s (%s, %d bytes, %s)", wb.ID, wb.Name, wb.SizeBytes, hash.Short())
	return wb.snapshot(), nil
}

// Get returns a copy of a workbook and refreshes its last access time
func (s *Store) Get(id core.ID) (*Workbook, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	wb, ok := s.workbooks[id]
	if !ok || s.expired(wb, now) {
		return nil, core.NewNotFoundError(core.ErrWorkbookNotFound, id.String())
	}
	wb.LastAccess = now
	return wb.snapshot(), nil
}

// Source returns a reader for a stored workbook
func (s *Store) Source(id core.ID) (*excel.DataReader, error) {
	wb, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return wb.Reader(s.reader), nil
}

// List returns copies of the live workbooks, most recently uploaded first
func (s *Store) List() []*Workbook {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Workbook, 0, len(s.workbooks))
	for _, wb := range s.workbooks {
		if !s.expired(wb, now) {
			list = append(list, wb.snapshot())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	return list
}

// Delete removes a workbook
func (s *Store) Delete(id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workbooks[id]; !ok {
		return core.NewNotFoundError(core.ErrWorkbookNotFound, id.String())
	}
	delete(s.workbooks, id)
	metrics.SetWorkbooksStored(len(s.workbooks))
	return nil
}

// Len returns the number of stored workbooks, expired ones included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workbooks)
}

// Evict drops expired workbooks and returns how many were removed
func (s *Store) Evict() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, wb := range s.workbooks {
		if s.expired(wb, now) {
			delete(s.workbooks, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.SetWorkbooksStored(len(s.workbooks))
		s.logger.Debug("evicted %d expired workbooks", removed)
	}
	return removed
}

// RunJanitor evicts expired workbooks every interval until ctx is done
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Evict()
		}
	}
}

func (s *Store) expired(wb *Workbook, now time.Time) bool {
	return s.ttl > 0 && now.Sub(wb.LastAccess) > s.ttl
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range SupportedExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
