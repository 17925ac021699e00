package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"plagcheck/internal/extract"
	"plagcheck/internal/model"
	"plagcheck/internal/repository"
	repoMocks "plagcheck/internal/repository/mocks"
	"plagcheck/internal/storage"
	storeMocks "plagcheck/internal/storage/mocks"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, a, b string) (float64, error) {
	args := m.Called(ctx, a, b)
	return args.Get(0).(float64), args.Error(1)
}

const testCorpus = "reference corpus text"

func mockObjectInfo() storage.ObjectInfo {
	return storage.ObjectInfo{Key: "archive/some-object", Size: 10}
}

func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type fixtures struct {
	repo  *repoMocks.MockDocumentRepository
	store *storeMocks.MockStorage
	xtr   *mockExtractor
	scr   *mockScorer
	svc   CheckService
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()
	// Confine staging to a test-owned dir so leftovers are detectable.
	t.Setenv("TMPDIR", t.TempDir())

	f := &fixtures{
		repo:  new(repoMocks.MockDocumentRepository),
		store: new(storeMocks.MockStorage),
		xtr:   new(mockExtractor),
		scr:   new(mockScorer),
	}
	f.svc = NewCheckService(f.repo, f.store, f.xtr, f.scr, testCorpus, isUnique, nil)
	return f
}

func assertNoStagingResidue(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(os.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory must be removed on every exit path")
}

func TestCheck_HappyPathFirstSeen(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	f.repo.On("FindByHash", ctx, mock.AnythingOfType("string")).Return(nil, sql.ErrNoRows).Once()
	f.xtr.On("Extract", mock.MatchedBy(func(p string) bool {
		return strings.HasSuffix(p, ".pdf")
	})).Return("a sentence about nothing in particular", nil)
	f.scr.On("Score", ctx, "a sentence about nothing in particular", testCorpus).Return(3.14, nil)
	f.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "archive/") && strings.HasSuffix(key, ".pdf")
	}), mock.Anything, mock.Anything).Return(mockObjectInfo(), nil).Once()

	f.repo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
		return doc.Filename == "paper.pdf" &&
			doc.FileHash != "" &&
			strings.HasPrefix(doc.ArchivePath, "archive/") &&
			!doc.UploadedAt.IsZero()
	})).Return(&model.Document{ID: "new-id", Filename: "paper.pdf"}, nil).Once()

	res, err := f.svc.Check(ctx, strings.NewReader("%PDF-1.4 pretend content"), "paper.pdf")

	require.NoError(t, err)
	assert.Equal(t, "new-id", res.Document.ID)
	assert.Equal(t, 3.14, res.SimilarityScore)
	assert.Equal(t, len("a sentence about nothing in particular"), res.TextExtractedLength)
	assert.Equal(t, checkCompletedMessage, res.Message)

	f.repo.AssertExpectations(t)
	f.store.AssertExpectations(t)
	assertNoStagingResidue(t)
}

func TestCheck_DuplicateFingerprintReusesRecordButRescores(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	existing := &model.Document{ID: "first-id", Filename: "original.pdf", FileHash: "abc"}
	f.repo.On("FindByHash", ctx, mock.AnythingOfType("string")).Return(existing, nil).Once()
	f.xtr.On("Extract", mock.Anything).Return("same text as before", nil)
	f.scr.On("Score", ctx, "same text as before", testCorpus).Return(55.5, nil).Once()

	res, err := f.svc.Check(ctx, strings.NewReader("identical bytes"), "renamed.pdf")

	require.NoError(t, err)
	assert.Equal(t, "first-id", res.Document.ID)
	assert.Equal(t, 55.5, res.SimilarityScore)

	// No new row and no archive for a known fingerprint, but scoring ran.
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.scr.AssertExpectations(t)
	assertNoStagingResidue(t)
}

func TestCheck_UnsupportedExtension(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	_, err := f.svc.Check(ctx, strings.NewReader("plain text"), "essay.txt")

	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)
	f.repo.AssertNotCalled(t, "FindByHash", mock.Anything, mock.Anything)
	assertNoStagingResidue(t)
}

func TestCheck_EmptyUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	for _, content := range []string{"", "   \n\t  "} {
		_, err := f.svc.Check(ctx, strings.NewReader(content), "paper.pdf")
		assert.ErrorIs(t, err, ErrEmptyUpload)
	}
	f.repo.AssertNotCalled(t, "FindByHash", mock.Anything, mock.Anything)
	assertNoStagingResidue(t)
}

func TestCheck_NilReader(t *testing.T) {
	f := newFixtures(t)
	_, err := f.svc.Check(context.Background(), nil, "paper.pdf")
	assert.ErrorIs(t, err, ErrReaderNil)
}

func TestCheck_ExtractionFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	f.repo.On("FindByHash", ctx, mock.Anything).Return(nil, sql.ErrNoRows).Once()
	f.xtr.On("Extract", mock.Anything).
		Return("", &extract.ExtractionError{Format: "docx", Err: errors.New("truncated zip")})

	_, err := f.svc.Check(ctx, strings.NewReader("PK garbage"), "broken.docx")

	var exErr *extract.ExtractionError
	assert.ErrorAs(t, err, &exErr)
	// Failed extraction takes no ledger action.
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assertNoStagingResidue(t)
}

func TestCheck_WhitespaceOnlyExtraction(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	f.repo.On("FindByHash", ctx, mock.Anything).Return(nil, sql.ErrNoRows).Once()
	f.xtr.On("Extract", mock.Anything).Return("  \n \t ", nil)

	_, err := f.svc.Check(ctx, strings.NewReader("scanned image pdf"), "scan.pdf")

	assert.ErrorIs(t, err, ErrNoText)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assertNoStagingResidue(t)
}

func TestCheck_ScorerFailureIsDependencyError(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	f.repo.On("FindByHash", ctx, mock.Anything).Return(nil, sql.ErrNoRows).Once()
	f.xtr.On("Extract", mock.Anything).Return("good text", nil)
	f.scr.On("Score", ctx, "good text", testCorpus).Return(0.0, errors.New("model down"))

	_, err := f.svc.Check(ctx, strings.NewReader("content"), "paper.pdf")

	var depErr *DependencyError
	assert.ErrorAs(t, err, &depErr)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assertNoStagingResidue(t)
}

func TestCheck_DedupRaceFallsBackToWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	winner := &model.Document{ID: "winner-id", FileHash: "abc"}

	f.repo.On("FindByHash", ctx, mock.Anything).Return(nil, sql.ErrNoRows).Once()
	f.xtr.On("Extract", mock.Anything).Return("racy text", nil)
	f.scr.On("Score", ctx, "racy text", testCorpus).Return(10.0, nil)
	f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(mockObjectInfo(), nil).Once()
	f.repo.On("Create", ctx, mock.Anything).
		Return(nil, &pgconn.PgError{Code: "23505", ConstraintName: "documents_file_hash_key"}).Once()
	// The freshly archived object is rolled back before the fallback read.
	f.store.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "archive/")
	})).Return(nil).Once()
	f.repo.On("FindByHash", ctx, mock.Anything).Return(winner, nil).Once()

	res, err := f.svc.Check(ctx, strings.NewReader("same bytes, second writer"), "paper.pdf")

	require.NoError(t, err)
	assert.Equal(t, "winner-id", res.Document.ID)
	f.repo.AssertExpectations(t)
	f.store.AssertExpectations(t)
	assertNoStagingResidue(t)
}

func TestCheck_InsertFailureRollsBackArchive(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	f.repo.On("FindByHash", ctx, mock.Anything).Return(nil, sql.ErrNoRows).Once()
	f.xtr.On("Extract", mock.Anything).Return("text", nil)
	f.scr.On("Score", ctx, "text", testCorpus).Return(1.0, nil)
	f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(mockObjectInfo(), nil).Once()
	f.repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db gone")).Once()
	f.store.On("Delete", ctx, mock.Anything).Return(nil).Once()

	_, err := f.svc.Check(ctx, strings.NewReader("bytes"), "paper.pdf")

	var depErr *DependencyError
	assert.ErrorAs(t, err, &depErr)
	f.store.AssertExpectations(t)
	assertNoStagingResidue(t)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	f.repo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
		Return(&repository.PageResult[model.Document]{
			Items: []model.Document{{ID: "a"}},
			Total: 1,
		}, nil).Once()

	// Non-positive limit and negative offset normalize to defaults.
	res, err := f.svc.List(ctx, 0, -5)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	f.repo.AssertExpectations(t)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	t.Run("found", func(t *testing.T) {
		f.repo.On("FindByID", ctx, "some-id").
			Return(&model.Document{ID: "some-id"}, nil).Once()

		doc, err := f.svc.Get(ctx, "some-id")
		require.NoError(t, err)
		assert.Equal(t, "some-id", doc.ID)
	})

	t.Run("not found", func(t *testing.T) {
		f.repo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows).Once()

		_, err := f.svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := f.svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeSuccess},
		{"empty upload", ErrEmptyUpload, OutcomeValidationFailed},
		{"unsupported format", extract.ErrUnsupportedFormat, OutcomeValidationFailed},
		{"no text", ErrNoText, OutcomeExtractionFailed},
		{"parser failure", &extract.ExtractionError{Format: "pdf", Err: errors.New("x")}, OutcomeExtractionFailed},
		{"dependency", dependencyErr("scoring", errors.New("x")), OutcomeDependencyError},
		{"unknown", errors.New("boom"), OutcomeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outcomeOf(tt.err))
		})
	}
}
