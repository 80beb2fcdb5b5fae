// Package transcriber turns uploaded pitch recordings into transcripts.
// Files already in a Whisper-supported format under the upload limit are
// sent as-is; everything else has its audio extracted with ffmpeg first.
package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/peachme/peachme/server/internal/errors"
	"github.com/peachme/peachme/server/internal/observability"
)

// The Whisper API rejects files above 25MB.
const maxWhisperBytes = 25 * 1024 * 1024

var supportedFormats = map[string]bool{
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".m4a":  true,
	".wav":  true,
	".webm": true,
}

// CommandRunner executes an external command and returns its combined
// output. Swappable so tests run without ffmpeg installed.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// audioAPI is the slice of the OpenAI client the transcriber needs.
type audioAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Config holds transcriber settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	FFmpegPath string
	MediaDir   string
	// MaxConcurrent bounds parallel transcriptions; ffmpeg plus the
	// Whisper upload are both heavy.
	MaxConcurrent int64
}

// Transcriber extracts audio and calls the Whisper API.
type Transcriber struct {
	api        audioAPI
	model      string
	ffmpegPath string
	mediaDir   string
	sem        *semaphore.Weighted
	runCommand CommandRunner
	logger     *slog.Logger
}

func New(config Config, logger *slog.Logger) *Transcriber {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = openai.Whisper1
	}
	ffmpegPath := config.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &Transcriber{
		api:        openai.NewClientWithConfig(clientConfig),
		model:      model,
		ffmpegPath: ffmpegPath,
		mediaDir:   config.MediaDir,
		sem:        semaphore.NewWeighted(maxConcurrent),
		runCommand: defaultCommandRunner,
		logger:     logger,
	}
}

// SaveUpload writes an uploaded file into the media directory under a
// unique name and returns its path.
func (t *Transcriber) SaveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(t.mediaDir, 0770); err != nil {
		return "", errors.Wrap(err, "create media dir")
	}

	dest := filepath.Join(t.mediaDir, shortuuid.New()+"_"+filepath.Base(filename))
	out, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dest)
		return "", errors.Wrap(err, "write upload file")
	}
	return dest, nil
}

// Transcribe processes the file at path and returns the verbose Whisper
// response serialized as JSON. The uploaded file and any intermediate
// audio file are removed before returning.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return "", errors.Wrap(err, "acquire transcription slot")
	}
	defer t.sem.Release(1)
	defer os.Remove(path)

	audioPath, err := t.prepareAudio(ctx, path)
	if err != nil {
		return "", err
	}
	if audioPath != path {
		defer os.Remove(audioPath)
	}

	response, err := t.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return "", apperrors.TranscriptionFailed("whisper transcription", err)
	}

	observability.GlobalMetrics().RecordTranscription()
	t.logger.Info("transcription completed",
		"segments", len(response.Segments),
		"duration", response.Duration)

	raw, err := json.Marshal(response)
	if err != nil {
		return response.Text, nil
	}
	return string(raw), nil
}

// prepareAudio returns a path suitable for the Whisper API. Supported
// formats under the size limit pass through untouched; otherwise the
// audio track is extracted to mp3.
func (t *Transcriber) prepareAudio(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(err, "stat media file")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if supportedFormats[ext] && info.Size() < maxWhisperBytes {
		t.logger.Debug("media already in supported format, skipping conversion",
			"path", path, "size", info.Size())
		return path, nil
	}

	audioPath := strings.TrimSuffix(path, ext) + "_audio.mp3"
	t.logger.Info("extracting audio track", "source", path, "dest", audioPath)

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vn",
		"-acodec", "mp3",
		audioPath,
	}
	if output, err := t.runCommand(ctx, t.ffmpegPath, args...); err != nil {
		return "", apperrors.TranscriptionFailed(
			fmt.Sprintf("ffmpeg extract: %s", strings.TrimSpace(string(output))), err)
	}
	return audioPath, nil
}
