package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"plagcheck/internal/extract"
	"plagcheck/internal/fingerprint"
	"plagcheck/internal/model"
	"plagcheck/internal/repository"
	"plagcheck/internal/similarity"
	"plagcheck/internal/storage"
)

const checkCompletedMessage = "Plagiarism check completed successfully"

// CheckResult is what one pipeline run hands back to the HTTP layer.
type CheckResult struct {
	Message             string
	Document            *model.Document
	SimilarityScore     float64
	TextExtractedLength int
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// CheckService defines the use cases around plagiarism checking.
type CheckService interface {
	// Check runs the full pipeline for one uploaded file: validate, stage to a
	// per-request temp location, fingerprint, dedup-lookup, extract, score
	// against the reference corpus, persist, respond. The temp location is
	// removed on every exit path.
	Check(ctx context.Context, r io.Reader, originalFilename string) (*CheckResult, error)

	// List returns ledger records using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single ledger record by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)
}

// UniqueViolationFunc reports whether an insert error is the storage layer's
// unique-constraint violation on the content fingerprint.
type UniqueViolationFunc func(error) bool

// checkService is a concrete implementation of CheckService.
type checkService struct {
	repo        repository.DocumentRepository
	store       storage.Storage
	extractor   extract.Extractor
	scorer      similarity.Scorer
	corpus      string
	isUniqueErr UniqueViolationFunc
	metrics     *Metrics
	now         func() time.Time
}

// NewCheckService constructs a new CheckService. metrics may be nil.
func NewCheckService(
	repo repository.DocumentRepository,
	store storage.Storage,
	extractor extract.Extractor,
	scorer similarity.Scorer,
	corpusText string,
	isUniqueErr UniqueViolationFunc,
	metrics *Metrics,
) CheckService {
	return &checkService{
		repo:        repo,
		store:       store,
		extractor:   extractor,
		scorer:      scorer,
		corpus:      corpusText,
		isUniqueErr: isUniqueErr,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *checkService) Check(ctx context.Context, r io.Reader, originalFilename string) (res *CheckResult, err error) {
	defer func() {
		s.metrics.record(outcomeOf(err))
	}()

	if r == nil {
		return nil, ErrReaderNil
	}

	// Validate: extension gate before any bytes touch disk.
	if !extract.SupportedExtension(originalFilename) {
		return nil, extract.ErrUnsupportedFormat
	}

	// Stage: per-request unique temp dir; removed on every exit path.
	tempDir, err := os.MkdirTemp("", "plagcheck-")
	if err != nil {
		return nil, dependencyErr("staging", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			// Cleanup failures never become the request's outcome.
			log.Printf("cleanup of staging dir %s failed: %v", tempDir, rmErr)
		}
	}()

	ext := strings.ToLower(filepath.Ext(originalFilename))
	stagedPath := filepath.Join(tempDir, uuid.NewString()+ext)
	written, blank, err := stage(stagedPath, r)
	if err != nil {
		return nil, dependencyErr("staging", err)
	}
	if written == 0 || blank {
		return nil, ErrEmptyUpload
	}

	// Fingerprint the staged bytes.
	hash, err := fingerprint.File(stagedPath)
	if err != nil {
		return nil, dependencyErr("fingerprinting", err)
	}

	// Dedup check. The result only decides whether a new ledger row is needed;
	// scoring always runs again.
	existing, err := s.repo.FindByHash(ctx, hash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, dependencyErr("ledger lookup", err)
	}

	// Extract. A typed parser failure or only-whitespace text ends the request
	// before any ledger write.
	text, err := s.extractor.Extract(stagedPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	// Score against the reference corpus.
	score, err := s.scorer.Score(ctx, text, s.corpus)
	if err != nil {
		return nil, dependencyErr("similarity scoring", err)
	}

	doc := existing
	if doc == nil {
		doc, err = s.persistFirstSeen(ctx, stagedPath, originalFilename, ext, hash)
		if err != nil {
			return nil, err
		}
	}

	return &CheckResult{
		Message:             checkCompletedMessage,
		Document:            doc,
		SimilarityScore:     score,
		TextExtractedLength: len(text),
	}, nil
}

// persistFirstSeen archives the original bytes and inserts the ledger row.
// Insert goes first conceptually: the unique constraint on the fingerprint is
// the correctness mechanism, so a lost race surfaces as a unique violation and
// falls back to a read, rolling back the freshly archived object.
func (s *checkService) persistFirstSeen(ctx context.Context, stagedPath, originalFilename, ext, hash string) (*model.Document, error) {
	id := uuid.NewString()
	key := filepath.ToSlash(filepath.Join("archive", id+ext))

	f, err := os.Open(stagedPath)
	if err != nil {
		return nil, dependencyErr("archive", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, dependencyErr("archive", err)
	}

	if _, err := s.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        info.Size(),
		ContentType: contentTypeFor(ext),
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"file-hash":         hash,
		},
	}); err != nil {
		return nil, dependencyErr("archive", err)
	}

	stored, err := s.repo.Create(ctx, &model.Document{
		ID:          id,
		Filename:    originalFilename,
		FileHash:    hash,
		ArchivePath: key,
		UploadedAt:  s.now(),
	})
	if err == nil {
		return stored, nil
	}

	// Another request won the race for this fingerprint, or the insert failed
	// outright. Either way the just-archived object is orphaned: remove it.
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		log.Printf("rollback of archived object %s failed: %v", key, delErr)
	}

	if s.isUniqueErr != nil && s.isUniqueErr(err) {
		winner, findErr := s.repo.FindByHash(ctx, hash)
		if findErr != nil {
			return nil, dependencyErr("ledger lookup after dedup race", findErr)
		}
		return winner, nil
	}
	return nil, dependencyErr("ledger insert", err)
}

// List returns paginated ledger records without exposing repository types.
func (s *checkService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a ledger record by ID.
func (s *checkService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// stage copies r into a new file at path, reporting bytes written and whether
// the content was entirely whitespace.
func stage(path string, r io.Reader) (written int64, blank bool, err error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, false, fmt.Errorf("create staged file: %w", err)
	}
	defer func() {
		if cErr := dst.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	var tracker blankTracker
	written, err = io.Copy(io.MultiWriter(dst, &tracker), r)
	if err != nil {
		return written, false, fmt.Errorf("write staged file: %w", err)
	}
	return written, !tracker.nonBlank, nil
}

// blankTracker observes a byte stream and remembers whether anything other
// than ASCII whitespace passed through.
type blankTracker struct {
	nonBlank bool
}

func (b *blankTracker) Write(p []byte) (int, error) {
	if !b.nonBlank {
		for _, c := range p {
			if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
				b.nonBlank = true
				break
			}
		}
	}
	return len(p), nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// outcomeOf maps a pipeline error to its terminal-state metric label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrEmptyUpload),
		errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, ErrReaderNil):
		return OutcomeValidationFailed
	case errors.Is(err, ErrNoText), isExtractionError(err):
		return OutcomeExtractionFailed
	case isDependencyError(err):
		return OutcomeDependencyError
	default:
		return OutcomeInternalError
	}
}

func isExtractionError(err error) bool {
	var exErr *extract.ExtractionError
	return errors.As(err, &exErr)
}

func isDependencyError(err error) bool {
	var depErr *DependencyError
	return errors.As(err, &depErr)
}
