// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract downloads paper PDFs and extracts their plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/litscout/internal/httputil"
	"github.com/pdiddy/litscout/pkg/types"
)

const defaultMaxBytes = 32 << 20 // 32 MiB

// Extractor turns a paper's document URL into plain text.
type Extractor interface {
	Extract(ctx context.Context, paper types.Paper) (string, error)
}

// PDFExtractor downloads the paper PDF over HTTP and extracts text page
// by page.
type PDFExtractor struct {
	Client *http.Client
	Config types.ExtractionConfig
}

// NewPDFExtractor builds an extractor with cfg. A nil client falls back to
// http.DefaultClient.
func NewPDFExtractor(client *http.Client, cfg types.ExtractionConfig) *PDFExtractor {
	return &PDFExtractor{Client: client, Config: cfg}
}

// Extract downloads paper.PDFURL and returns its extracted text. Pages
// that fail to decode are skipped; the extraction fails only when no page
// yields text.
func (e *PDFExtractor) Extract(ctx context.Context, paper types.Paper) (string, error) {
	if paper.PDFURL == "" {
		return "", fmt.Errorf("paper %s has no document URL", paper.ID)
	}

	data, err := e.download(ctx, paper.PDFURL)
	if err != nil {
		return "", err
	}

	text, err := extractText(data)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", paper.PDFURL, err)
	}

	if max := e.Config.MaxChars; max > 0 && len(text) > max {
		text = text[:max]
	}
	return text, nil
}

func (e *PDFExtractor) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if e.Config.UserAgent != "" {
		req.Header.Set("User-Agent", e.Config.UserAgent)
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: HTTP %d", url, resp.StatusCode)
	}

	maxBytes := e.Config.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("document %s exceeds %d byte limit", url, maxBytes)
	}
	return data, nil
}

// extractText pulls plain text from an in-memory PDF, page by page.
func extractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var sb strings.Builder
	totalPages := reader.NumPage()
	extracted := 0

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = cleanText(text)
		if text == "" {
			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n\n")
		extracted++
	}

	if extracted == 0 {
		return "", fmt.Errorf("no extractable text in %d pages", totalPages)
	}
	return strings.TrimSpace(sb.String()), nil
}

// cleanText normalizes line endings and strips null bytes left behind by
// PDF text decoding.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
