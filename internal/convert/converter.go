// Package convert runs the transcript-to-HTML pipeline for one export folder.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jasperwreed/chat2html/internal/config"
	"github.com/jasperwreed/chat2html/internal/logging"
	"github.com/jasperwreed/chat2html/internal/models"
	"github.com/jasperwreed/chat2html/internal/output"
	"github.com/jasperwreed/chat2html/internal/render"
	"github.com/jasperwreed/chat2html/internal/transcript"
)

// Archiver stores converted conversations.
type Archiver interface {
	SaveConversation(conv *models.Conversation) error
}

// Result describes a completed run.
type Result struct {
	OutputPath   string
	Name         string
	Format       transcript.DateFormat
	Rendered     int
	Skipped      int
	Conversation *models.Conversation
}

type Converter struct {
	cfg    config.ConvertConfig
	logger logging.Logger
	store  Archiver
	tags   []string
	now    func() time.Time
}

type Option func(*Converter)

// WithArchive saves every converted conversation to store.
func WithArchive(store Archiver) Option {
	return func(c *Converter) {
		c.store = store
	}
}

// WithTags attaches tags to archived conversations.
func WithTags(tags ...string) Option {
	return func(c *Converter) {
		c.tags = append(c.tags, tags...)
	}
}

func New(cfg config.ConvertConfig, logger logging.Logger, opts ...Option) *Converter {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	c := &Converter{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run converts the export in folder into the next versioned HTML file in the
// output directory.
func (c *Converter) Run(ctx context.Context, folder string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFolder, folder)
	}

	chatPath := filepath.Join(folder, c.cfg.ChatFile)
	if info, err := os.Stat(chatPath); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrChatFileMissing, chatPath)
	}

	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder: %w", err)
	}

	name, err := output.NextVersionedName(c.cfg.OutputDir, output.BaseName(absFolder))
	if err != nil {
		return nil, err
	}

	lines, err := readTranscript(chatPath)
	if err != nil {
		return nil, err
	}

	format, err := transcript.DetectFormat(transcript.ExtractTimestamps(lines))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFormatUndetected, chatPath)
	}

	log := c.logger.With(logging.F("folder", folder))
	log.Debug("detected timestamp format", logging.F("format", format.Name))

	doc := render.NewDocument(render.Options{
		MediaDir: MediaDir(c.cfg.OutputDir, absFolder, folder),
		SelfName: c.cfg.SelfName,
	})
	parser := transcript.NewParser(format, c.cfg.SelfMarker, c.cfg.SelfName)

	for _, block := range transcript.Segment(lines) {
		msg := parser.Parse(block, doc.LastSender())
		if !doc.Add(msg) {
			log.Warn("couldn't detect timestamp", logging.F("line", msg.Line))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	outPath := filepath.Join(c.cfg.OutputDir, name)
	if err := output.WriteNew(outPath, []byte(doc.HTML())); err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		RunID:      uuid.NewString(),
		Title:      output.BaseName(absFolder),
		SourceDir:  absFolder,
		ChatFile:   c.cfg.ChatFile,
		OutputPath: outPath,
		DateFormat: format.Name,
		Tags:       c.tags,
		CreatedAt:  c.now().UTC(),
		Messages:   doc.Messages(),
	}

	result := &Result{
		OutputPath:   outPath,
		Name:         name,
		Format:       format,
		Rendered:     doc.Rendered(),
		Skipped:      doc.Skipped(),
		Conversation: conv,
	}

	log.Info("conversion complete",
		logging.F("output", outPath),
		logging.F("rendered", result.Rendered),
		logging.F("skipped", result.Skipped),
		logging.F("run_id", conv.RunID),
	)

	if c.store != nil {
		if err := c.store.SaveConversation(conv); err != nil {
			return result, fmt.Errorf("failed to archive conversation: %w", err)
		}
		log.Debug("archived conversation", logging.F("id", conv.ID))
	}

	return result, nil
}

func readTranscript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat file: %w", err)
	}
	defer f.Close()

	lines, err := transcript.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat file: %w", err)
	}
	return lines, nil
}

// MediaDir returns the attachment folder as it appears in the document. An
// absolute folder is used as given; a relative one is resolved against
// outputDir.
func MediaDir(outputDir, absFolder, folder string) string {
	if filepath.IsAbs(folder) {
		return folder
	}
	return relativeDir(outputDir, absFolder, folder)
}

// relativeDir returns absFolder as seen from outputDir, or fallback when no
// relative path exists.
func relativeDir(outputDir, absFolder, fallback string) string {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return fallback
	}
	rel, err := filepath.Rel(absOut, absFolder)
	if err != nil {
		return fallback
	}
	return rel
}

// Render re-renders an archived conversation for a document placed in
// outputDir.
func Render(conv *models.Conversation, outputDir, selfName string) string {
	doc := render.Conversation(conv, render.Options{
		MediaDir: relativeDir(outputDir, conv.SourceDir, conv.SourceDir),
		SelfName: selfName,
	})
	return doc.HTML()
}
