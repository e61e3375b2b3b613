package source

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Makepad-fr/transmit/internal/model"
)

// MaxReceiptSize bounds an uploaded receipt.
const MaxReceiptSize = 10 << 20

// ReceiptContentType sniffs data, falling back to the filename's extension
// when sniffing is inconclusive.
func ReceiptContentType(filename string, data []byte) string {
	ct, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if ct == "application/octet-stream" {
		if byExt, _, _ := strings.Cut(mime.TypeByExtension(filepath.Ext(filename)), ";"); byExt != "" {
			ct = byExt
		}
	}
	return ct
}

// checkReceipt accepts images and PDFs up to MaxReceiptSize.
func checkReceipt(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%s: empty file: %w", filename, ErrInvalidReceipt)
	}
	if len(data) > MaxReceiptSize {
		return "", fmt.Errorf("%s: larger than %d bytes: %w", filename, MaxReceiptSize, ErrInvalidReceipt)
	}
	ct := ReceiptContentType(filename, data)
	if !strings.HasPrefix(ct, "image/") && ct != "application/pdf" {
		return "", fmt.Errorf("%s: %s is not an image or PDF: %w", filename, ct, ErrInvalidReceipt)
	}
	return ct, nil
}

// EncodeReceipt validates data and returns it the way the portal's upload
// endpoint does.
func EncodeReceipt(filename string, data []byte) (model.Receipt, error) {
	ct, err := checkReceipt(filename, data)
	if err != nil {
		return model.Receipt{}, err
	}
	return model.Receipt{
		Filename:      filepath.Base(filename),
		ContentType:   ct,
		Base64Content: base64.StdEncoding.EncodeToString(data),
	}, nil
}
