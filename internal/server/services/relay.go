package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/filex"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/netx"
	"github.com/clipforge/clipforge/internal/server/config"
	"github.com/clipforge/clipforge/internal/server/metrics"
)

// Relay validation errors. Handlers map these to client responses.
var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrMissingFields = errors.New("clip_size and clip_duration are required")
	ErrFileTooLarge  = errors.New("file exceeds the upload size limit")
)

// DefaultForwardMessage is returned when the destination replies 2xx with an
// empty body.
const DefaultForwardMessage = "Video uploaded successfully"

// DestinationError is a non-2xx reply from the forward destination.
type DestinationError struct {
	Status int
	Body   string
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("destination returned status %d: %s", e.Status, e.Body)
}

// Upload is a received video spooled to a transient file, plus the form
// fields that accompany it on the forward leg.
type Upload struct {
	FilePath     string
	FileName     string
	Size         int64
	ClipSize     string
	ClipDuration string
	ClipCount    int
}

// RelayService receives multipart video uploads, spools the file part to a
// transient file, and forwards it to the user's webhook destination. The
// transient file lives only for the duration of one request; Cleanup must
// run on every exit path once Receive has returned an Upload.
type RelayService struct {
	client         *http.Client
	forwardTimeout time.Duration
	maxUploadBytes int64
	spoolDir       string
	log            logging.Logger
}

func NewRelayService(cfg *config.Config, log logging.Logger) *RelayService {
	s := &RelayService{
		client:         &http.Client{},
		forwardTimeout: cfg.ForwardTimeout,
		maxUploadBytes: cfg.MaxUploadBytes,
		log:            log,
	}
	if cfg.SpoolDir != "" {
		dir, err := filex.EnsureSubdDir(cfg.SpoolDir)
		if err != nil {
			log.Warn(context.Background(), "cannot create spool directory, using temp dir",
				"dir", cfg.SpoolDir, "error", err)
		} else {
			s.spoolDir = dir
		}
	}
	return s
}

// Receive drains the multipart stream, writing the file part to a transient
// file and collecting the scalar fields. The file part is accepted under any
// field name; scalar parts are matched by name. On any error the partial
// file is already removed and the caller has nothing to clean up.
//
// clip_count defaults to 1 when absent or unparseable.
func (s *RelayService) Receive(ctx context.Context, mr *multipart.Reader) (*Upload, error) {
	u := &Upload{ClipCount: 1}
	fields := map[string]string{}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.discard(ctx, u)
			return nil, fmt.Errorf("error reading multipart stream: %w", err)
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, 4096))
			part.Close()
			if err != nil {
				s.discard(ctx, u)
				return nil, fmt.Errorf("error reading field %q: %w", part.FormName(), err)
			}
			fields[part.FormName()] = string(value)
			continue
		}

		// Only the first file part counts; the original form sends one.
		if u.FilePath != "" {
			io.Copy(io.Discard, part)
			part.Close()
			continue
		}

		if err := s.spool(part, u); err != nil {
			part.Close()
			s.discard(ctx, u)
			return nil, err
		}
		part.Close()
	}

	if u.FilePath == "" {
		return nil, ErrNoFile
	}

	u.ClipSize = fields["clip_size"]
	u.ClipDuration = fields["clip_duration"]
	if u.ClipSize == "" || u.ClipDuration == "" {
		s.discard(ctx, u)
		return nil, ErrMissingFields
	}
	if n, err := strconv.Atoi(strings.TrimSpace(fields["clip_count"])); err == nil && n >= 1 {
		u.ClipCount = n
	}

	metrics.UploadBytesReceived.Add(float64(u.Size))
	return u, nil
}

// spool streams the file part to a fresh transient file, enforcing the size
// ceiling mid-copy so an oversized upload never lands in full.
func (s *RelayService) spool(part *multipart.Part, u *Upload) error {
	f, err := filex.NewTransientFile(s.spoolDir, "clipforge", ".mp4")
	if err != nil {
		return fmt.Errorf("error creating transient file: %w", err)
	}
	u.FilePath = f.Name()
	u.FileName = part.FileName()

	written, err := io.Copy(f, io.LimitReader(part, s.maxUploadBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("error writing transient file: %w", err)
	}
	if written > s.maxUploadBytes {
		return ErrFileTooLarge
	}

	u.Size = written
	return nil
}

// Forward posts the spooled upload to webhookURL as a fresh multipart body
// and relays the destination's reply. The call is bounded by the configured
// forward timeout. Non-2xx replies come back as *DestinationError.
func (s *RelayService) Forward(ctx context.Context, webhookURL string, u *Upload) (string, error) {
	f, err := os.Open(u.FilePath)
	if err != nil {
		metrics.ForwardsTotal.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("error opening transient file: %w", err)
	}
	defer f.Close()

	fields := []netx.FormField{
		{Name: "video_type", Value: "mp4"},
		{Name: "file_name", Value: u.FileName},
		{Name: "clip_size", Value: u.ClipSize},
		{Name: "clip_duration", Value: u.ClipDuration},
		{Name: "clip_count", Value: strconv.Itoa(u.ClipCount)},
	}
	file := &netx.FilePart{
		FieldName:   "file",
		FileName:    u.FileName,
		ContentType: "video/mp4",
		Content:     f,
	}

	ctx, cancel := context.WithTimeout(ctx, s.forwardTimeout)
	defer cancel()

	status, body, err := netx.PostMultipart(ctx, s.client, webhookURL, fields, file)
	if err != nil {
		metrics.ForwardsTotal.WithLabelValues("transport_error").Inc()
		return "", fmt.Errorf("error forwarding to destination: %w", err)
	}
	if status < 200 || status > 299 {
		metrics.ForwardsTotal.WithLabelValues("destination_error").Inc()
		return "", &DestinationError{Status: status, Body: string(body)}
	}

	metrics.ForwardsTotal.WithLabelValues("ok").Inc()
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = DefaultForwardMessage
	}
	return message, nil
}

// Cleanup removes the transient file. Safe to call more than once and on a
// zero-value Upload; removal failures are logged but never surfaced.
func (s *RelayService) Cleanup(ctx context.Context, u *Upload) {
	if u == nil {
		return
	}
	s.discard(ctx, u)
}

func (s *RelayService) discard(ctx context.Context, u *Upload) {
	if u.FilePath == "" {
		return
	}
	if _, err := filex.RemoveIfExists(u.FilePath); err != nil {
		s.log.Warn(ctx, "failed to remove transient upload file", "path", u.FilePath, "error", err)
	}
}
