package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxSpreadsheetUpload is the default size cap for imported lead lists
const MaxSpreadsheetUpload = 10 * 1024 * 1024 // 10MB

// zipMagic opens every XLSX file
var zipMagic = []byte("PK\x03\x04")

// ReadSpreadsheetUpload checks an uploaded CSV or XLSX (size, extension and
// leading bytes) and returns its content
func ReadSpreadsheetUpload(fileHeader *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if fileHeader.Size > maxSize {
		return nil, ErrUploadTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".csv", ".txt", ".xlsx", ".xlsm":
	default:
		return nil, ErrUnsupportedFile
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// One extra byte tells a file at the limit from one over it
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrUploadTooLarge
	}

	if err := checkSpreadsheetContent(ext, data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkSpreadsheetContent(ext string, data []byte) error {
	if ext == ".xlsx" || ext == ".xlsm" {
		if !bytes.HasPrefix(data, zipMagic) {
			return ErrInvalidUpload
		}
		return nil
	}

	// Text exports: no NUL bytes and valid UTF-8 in the sniffed prefix
	head := data
	if len(head) > 512 {
		head = head[:512]
		// Do not cut a multi-byte rune in half
		for len(head) > 0 && !utf8.Valid(head) {
			head = head[:len(head)-1]
		}
	}
	if bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(head) {
		return ErrInvalidUpload
	}
	return nil
}
