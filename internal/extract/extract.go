package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jobsniper/internal/errors"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of resume files. Supported formats
// are PDF, DOCX, and plain text.
type Extractor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewExtractor creates an extractor. maxFileSize caps input files in
// bytes; zero or negative disables the check.
func NewExtractor(logger *errors.Logger, maxFileSize int64) *Extractor {
	return &Extractor{
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// SupportedExtensions lists the file extensions the extractor accepts
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md"}
}

// ExtractFile reads the file and returns its plain text content
func (e *Extractor) ExtractFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return "", errors.NewValidationError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Path is a directory, not a file: %s", path), nil)
	}
	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return "", errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit: %s (%d bytes)", e.maxFileSize, path, info.Size()), nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return e.extractPDF(path)
	case ".docx":
		return e.extractDOCX(path)
	case ".txt", ".md":
		return e.extractPlainText(path)
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFileType,
			fmt.Sprintf("Unsupported file type %q, expected one of %s", ext, strings.Join(SupportedExtensions(), ", ")), nil)
	}
}

func (e *Extractor) extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}
	return string(data), nil
}

func (e *Extractor) extractPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot open PDF: %s", path), err)
	}
	defer func() {
		if err := file.Close(); err != nil && e.logger != nil {
			e.logger.Warn("Failed to close PDF file", "path", path, "error", err)
		}
	}()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot extract text from PDF: %s", path), err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot read PDF text stream: %s", path), err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("PDF contains no extractable text: %s", path), nil)
	}
	return text, nil
}

// extractDOCX reads the main document part of an OOXML archive and
// collects the text runs. Paragraph boundaries become newlines.
func (e *Extractor) extractDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot open DOCX archive: %s", path), err)
	}
	defer func() {
		if err := archive.Close(); err != nil && e.logger != nil {
			e.logger.Warn("Failed to close DOCX archive", "path", path, "error", err)
		}
	}()

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("DOCX archive has no word/document.xml: %s", path), nil)
	}

	rc, err := document.Open()
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot read DOCX document part: %s", path), err)
	}
	defer func() {
		if err := rc.Close(); err != nil && e.logger != nil {
			e.logger.Warn("Failed to close DOCX document part", "path", path, "error", err)
		}
	}()

	text, err := docxText(rc)
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Cannot parse DOCX document: %s", path), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("DOCX contains no extractable text: %s", path), nil)
	}
	return strings.TrimSpace(text), nil
}

func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
