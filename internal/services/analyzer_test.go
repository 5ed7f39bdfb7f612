package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/interview-analyzer/internal/models"
)

const validAnalysis = `{"interviewee":{"whatWentWell":["Clear intro"],"whatCouldImprove":["Rambling answers"],"actionableTips":["Use STAR"]},"recruiter":{"areasMissed":["No follow-ups"],"suggestedQuestions":["Why this role?"]}}`

type analyzerFixture struct {
	analyzer AnalyzerService
	gen      *fakeGenerator
	factory  *fakeFactory
	repo     *memoryLogRepo
}

func newAnalyzerFixture(response string, opts AnalyzerOptions) *analyzerFixture {
	gen := &fakeGenerator{response: response}
	factory := &fakeFactory{gen: gen}
	repo := newMemoryLogRepo()
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = 1024
	}
	if opts.Model == "" {
		opts.Model = "test-model"
	}
	return &analyzerFixture{
		analyzer: NewAnalyzerService(NewFileEncoder(8, 4, 2), factory, repo, zap.NewNop(), opts),
		gen:      gen,
		factory:  factory,
		repo:     repo,
	}
}

func requireAnalysisError(t *testing.T, err error, kind ErrorKind, status int, message string) {
	t.Helper()
	require.Error(t, err)
	ae := ToAnalysisError(err)
	require.Equal(t, kind, ae.Kind)
	require.Equal(t, status, ae.Status)
	require.Equal(t, message, ae.Message)
}

func TestAnalyzeSuccess(t *testing.T) {
	f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{})
	audio := []byte("fake audio payload that is longer than the chunk threshold")
	video := []byte("vid")
	files := buildFileHeaders(t,
		testFile{name: "a.mp3", mime: "audio/mpeg", data: audio},
		testFile{name: "b.mp4", mime: "video/mp4", data: video},
	)
	id := uuid.New()

	out, err := f.analyzer.Analyze(context.Background(), id, "key-1", &models.UploadRequest{Username: "  alice ", Files: files})
	require.NoError(t, err)
	require.Equal(t, validAnalysis, string(out))

	require.Equal(t, 1, f.gen.calls)
	require.Equal(t, []string{"key-1"}, f.factory.keys)

	req := f.gen.lastReq
	require.Equal(t, RoleUser, req.Role)
	require.Equal(t, "application/json", req.ResponseMIMEType)
	require.Len(t, req.Parts, 3)
	require.Equal(t, base64.StdEncoding.EncodeToString(audio), req.Parts[0].InlineData.Data)
	require.Equal(t, "audio/mpeg", req.Parts[0].InlineData.MIMEType)
	require.Equal(t, base64.StdEncoding.EncodeToString(video), req.Parts[1].InlineData.Data)
	require.Equal(t, "video/mp4", req.Parts[1].InlineData.MIMEType)
	require.Equal(t, NewPromptBuilder().BuildAnalysisPrompt(), req.Parts[2].Text)

	entry, ok := f.repo.get(id)
	require.True(t, ok)
	require.Equal(t, "alice", entry.Username)
	require.Equal(t, 2, entry.FileCount)
	require.Equal(t, int64(len(audio)+len(video)), entry.TotalBytes)
	require.Equal(t, "test-model", entry.Model)
	require.Equal(t, models.StatusCompleted, entry.Status)
	require.NotNil(t, entry.DurationMs)
}

func TestAnalyzeSalvagesFencedResponse(t *testing.T) {
	f := newAnalyzerFixture("```json\n"+validAnalysis+"\n```", AnalyzerOptions{})
	files := buildFileHeaders(t, testFile{name: "a.mp3", mime: "audio/mpeg", data: []byte("x")})

	out, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", &models.UploadRequest{Username: "bob", Files: files})
	require.NoError(t, err)
	require.Equal(t, validAnalysis, string(out))
}

func TestAnalyzeValidation(t *testing.T) {
	small := testFile{name: "ok.mp3", mime: "audio/mpeg", data: []byte("ok")}

	t.Run(`missing api key`, func(t *testing.T) {
		f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{})
		files := buildFileHeaders(t, small)
		_, err := f.analyzer.Analyze(context.Background(), uuid.New(), "", &models.UploadRequest{Username: "bob", Files: files})
		requireAnalysisError(t, err, KindConfiguration, http.StatusInternalServerError, MsgMissingAPIKey)
		require.Empty(t, f.factory.keys)
	})

	t.Run(`blank username`, func(t *testing.T) {
		f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{})
		files := buildFileHeaders(t, small)
		_, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", &models.UploadRequest{Username: " \t ", Files: files})
		requireAnalysisError(t, err, KindValidation, http.StatusBadRequest, MsgUsernameRequired)
		require.Zero(t, f.gen.calls)
	})

	t.Run(`username checked before files`, func(t *testing.T) {
		f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{})
		_, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", &models.UploadRequest{})
		requireAnalysisError(t, err, KindValidation, http.StatusBadRequest, MsgUsernameRequired)
	})

	t.Run(`no files`, func(t *testing.T) {
		f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{})
		_, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", &models.UploadRequest{Username: "bob"})
		requireAnalysisError(t, err, KindValidation, http.StatusBadRequest, MsgNoFilesUploaded)
		require.Zero(t, f.gen.calls)
		require.Empty(t, f.factory.keys)
	})

	t.Run(`file too large`, func(t *testing.T) {
		f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{MaxFileSize: 4})
		files := buildFileHeaders(t, small, testFile{name: "big.mp4", mime: "video/mp4", data: []byte("too big")})
		id := uuid.New()
		_, err := f.analyzer.Analyze(context.Background(), id, "key", &models.UploadRequest{Username: "bob", Files: files})
		requireAnalysisError(t, err, KindPayloadTooLarge, http.StatusRequestEntityTooLarge,
			"File big.mp4 is too large. Maximum size is 4 bytes.")
		require.Zero(t, f.gen.calls)

		_, ok := f.repo.get(id)
		require.False(t, ok)
	})
}

func TestAnalyzeUpstreamFailures(t *testing.T) {
	files := func(t *testing.T) *models.UploadRequest {
		return &models.UploadRequest{
			Username: "carol",
			Files:    buildFileHeaders(t, testFile{name: "a.wav", mime: "audio/wav", data: []byte("wav")}),
		}
	}

	t.Run(`response without json`, func(t *testing.T) {
		f := newAnalyzerFixture("I could not analyze this file.", AnalyzerOptions{})
		id := uuid.New()
		_, err := f.analyzer.Analyze(context.Background(), id, "key", files(t))
		requireAnalysisError(t, err, KindUpstreamFormat, http.StatusBadGateway, MsgInvalidModelJSON)

		entry, ok := f.repo.get(id)
		require.True(t, ok)
		require.Equal(t, models.StatusFailed, entry.Status)
		require.Equal(t, MsgInvalidModelJSON, *entry.ErrorMessage)
	})

	t.Run(`model call fails`, func(t *testing.T) {
		f := newAnalyzerFixture("", AnalyzerOptions{})
		f.gen.err = errors.New("upstream unavailable")
		_, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", files(t))
		requireAnalysisError(t, err, KindUnknown, http.StatusInternalServerError, "upstream unavailable")
	})

	t.Run(`client creation fails`, func(t *testing.T) {
		f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{})
		f.factory.err = errors.New("bad key format")
		_, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", files(t))
		requireAnalysisError(t, err, KindUnknown, http.StatusInternalServerError, "bad key format")
		require.Zero(t, f.gen.calls)
	})

	t.Run(`shape is not enforced by default`, func(t *testing.T) {
		f := newAnalyzerFixture(`{"unexpected":true}`, AnalyzerOptions{})
		out, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", files(t))
		require.NoError(t, err)
		require.Equal(t, `{"unexpected":true}`, string(out))
	})

	t.Run(`strict schema rejects wrong shape`, func(t *testing.T) {
		f := newAnalyzerFixture(`{"unexpected":true}`, AnalyzerOptions{StrictSchema: true})
		_, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", files(t))
		requireAnalysisError(t, err, KindUpstreamFormat, http.StatusBadGateway, MsgSchemaMismatch)
	})

	t.Run(`strict schema accepts analysis`, func(t *testing.T) {
		f := newAnalyzerFixture(validAnalysis, AnalyzerOptions{StrictSchema: true})
		out, err := f.analyzer.Analyze(context.Background(), uuid.New(), "key", files(t))
		require.NoError(t, err)
		require.Equal(t, validAnalysis, string(out))
	})
}

type deadlineGenerator struct {
	deadline time.Time
	ok       bool
}

func (g *deadlineGenerator) GenerateContent(ctx context.Context, _ *GenerationRequest) (string, error) {
	g.deadline, g.ok = ctx.Deadline()
	return validAnalysis, nil
}

type staticFactory struct{ gen ContentGenerator }

func (f staticFactory) NewGenerator(context.Context, string) (ContentGenerator, error) {
	return f.gen, nil
}

func TestAnalyzeAppliesTimeout(t *testing.T) {
	gen := &deadlineGenerator{}
	analyzer := NewAnalyzerService(NewFileEncoder(8, 4, 1), staticFactory{gen: gen}, newMemoryLogRepo(), zap.NewNop(),
		AnalyzerOptions{MaxFileSize: 1024, Timeout: 5 * time.Minute})
	files := buildFileHeaders(t, testFile{name: "a.mp3", mime: "audio/mpeg", data: []byte("x")})

	before := time.Now()
	_, err := analyzer.Analyze(context.Background(), uuid.New(), "key", &models.UploadRequest{Username: "dan", Files: files})
	require.NoError(t, err)
	require.True(t, gen.ok)
	require.WithinDuration(t, before.Add(5*time.Minute), gen.deadline, 10*time.Second)
}

func TestPreview(t *testing.T) {
	require.Equal(t, "short", preview("short", 10))
	require.Equal(t, "abc...", preview("abcdef", 3))

	// "é" is two bytes; cutting inside it backs up to the rune start.
	out := preview("aé", 2)
	require.Equal(t, "a...", out)
	require.True(t, utf8.ValidString(out))

	long := strings.Repeat("日本", 300)
	out = preview(long, 500)
	require.True(t, utf8.ValidString(out))
	require.LessOrEqual(t, len(out), 503)
}
