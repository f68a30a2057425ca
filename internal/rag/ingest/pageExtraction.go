package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/CourseChatAPI/internal/domain/courseModels"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

func getDocType(docPath string) courseModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return courseModels.PDF
	case ".docx", ".rtf", ".odt":
		return courseModels.DOC
	case ".txt":
		return courseModels.TXT
	default:
		return courseModels.ERR
	}
}

func extractText(path string, contentType courseModels.DocType) (string, error) {
	switch contentType {
	case courseModels.PDF:
		return extractPDF(path)
	case courseModels.DOC:
		return extractDoc(path)
	case courseModels.TXT:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read txt: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file", "path", path)
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var text strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			// keep going with the remaining pages
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		text.WriteString(content)
		text.WriteString("\n\n")
	}
	return text.String(), nil
}

func extractDoc(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "path", path)
		return "", fmt.Errorf("failed to extract doc: %w", err)
	}
	return text, nil
}

// protectExtract guards against pdf pages that hang the parser.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("timeout")
	}
}
