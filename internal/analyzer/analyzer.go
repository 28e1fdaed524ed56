// Package analyzer summarizes user attachments (images and PDF
// documents) through the Gemini API. Its methods never propagate
// errors: any decode or API failure degrades to a fixed apology string
// so attachment handling can always produce a reply.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/telegembot/telegem/internal/config"
	"github.com/telegembot/telegem/internal/gemini"

	_ "image/gif"  //revive:disable:blank-imports
	_ "image/jpeg" //revive:disable:blank-imports
	_ "image/png"  //revive:disable:blank-imports
)

const documentPromptPrefix = "Analyze this PDF content: "

// Analyzer describes attachment analysis operations. Both methods
// return user-presentable text and never fail.
type Analyzer interface {
	// AnalyzeImage describes an image. On decode or API failure it
	// returns the fixed image apology string.
	AnalyzeImage(ctx context.Context, data []byte) string

	// AnalyzeDocument extracts and summarizes a PDF document. A
	// non-PDF filename yields the fixed unsupported message without
	// calling the generation API.
	AnalyzeDocument(ctx context.Context, data []byte, filename string) string
}

type geminiAnalyzer struct {
	gen gemini.Client
	log *slog.Logger
	cfg config.AnalyzerConfig

	imageApology    string
	documentApology string
	unsupportedMsg  string
}

// New creates an Analyzer backed by the given Gemini client. Apology
// strings come from the message configuration so they stay consistent
// with the rest of the bot's replies.
func New(gen gemini.Client, cfg config.AnalyzerConfig, msgs config.MessagesConfig, log *slog.Logger) Analyzer {
	return &geminiAnalyzer{
		gen:             gen,
		log:             log.With("component", "analyzer"),
		cfg:             cfg,
		imageApology:    msgs.ImageApology,
		documentApology: msgs.DocumentApology,
		unsupportedMsg:  msgs.UnsupportedDocument,
	}
}

// AnalyzeImage validates that the payload decodes as an image, then
// passes it to the vision model with no additional prompt context.
func (a *geminiAnalyzer) AnalyzeImage(ctx context.Context, data []byte) string {
	if len(data) == 0 {
		a.log.WarnContext(ctx, "Empty image payload")
		return a.imageApology
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		a.log.WarnContext(ctx, "Payload is not an image", "mime_type", mimeType)
		return a.imageApology
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		a.log.WarnContext(ctx, "Failed to decode image", "mime_type", mimeType, "error", err)
		return a.imageApology
	}

	text, err := a.gen.GenerateFromImage(ctx, mimeType, data)
	if err != nil {
		a.log.ErrorContext(ctx, "Image analysis failed", "error", err)
		return a.imageApology
	}

	return text
}

// AnalyzeDocument extracts plain text from all pages of a PDF,
// hard-truncates it, and submits it with the analysis instruction.
func (a *geminiAnalyzer) AnalyzeDocument(ctx context.Context, data []byte, filename string) string {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		a.log.InfoContext(ctx, "Unsupported document format", "filename", filename)
		return a.unsupportedMsg
	}

	text, err := extractPDFText(data)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to extract PDF text", "filename", filename, "error", err)
		return a.documentApology
	}

	if len(text) > a.cfg.DocumentTextLimit {
		text = text[:a.cfg.DocumentTextLimit]
	}

	result, err := a.gen.GenerateText(ctx, documentPromptPrefix+text)
	if err != nil {
		a.log.ErrorContext(ctx, "Document analysis failed", "filename", filename, "error", err)
		return a.documentApology
	}

	return result
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plainText); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return buf.String(), nil
}
