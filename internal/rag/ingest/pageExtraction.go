package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/clearpathhq/supportbot/internal/domain/commonModels"
)

func extractPDF(path string) ([]commonModels.Page, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []commonModels.Page
	numPages := f.NumPage()
	logger.Debug("extractPDF", "path", path, "pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// log and continue with the remaining pages
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, commonModels.Page{Number: i, Text: content})
	}
	return pages, nil
}

// extractFlat reads txt, docx and rtf files, which carry no page
// structure, as a single page.
func extractFlat(path string) ([]commonModels.Page, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	return []commonModels.Page{{Number: 1, Text: text}}, nil
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
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timed out")
	}
}
