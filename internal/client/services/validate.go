package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/common"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// Upload limits per source type.
const (
	MaxPDFSize   = 10 << 20
	MaxImageSize = 5 << 20
)

var (
	pdfTypes   = []string{"application/pdf"}
	imageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}
)

// ValidationError carries a message meant for the user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return common.ErrorValidation }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// ValidateSignup checks the signup form before any request is made.
func ValidateSignup(name, email string, password, confirm []byte) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || len(password) == 0 || len(confirm) == 0 {
		return invalid(MsgFieldsRequired)
	}
	if string(password) != string(confirm) {
		return invalid(MsgPasswordMatch)
	}
	if len(password) < MinPasswordLength {
		return invalid(MsgPasswordShort)
	}
	return nil
}

// ValidateName checks a new display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(MsgNameEmpty)
	}
	return nil
}

// ValidateGenerate checks a generation request against the local rules:
// options chosen, content present, file size and type within limits.
func ValidateGenerate(req models.GenerateRequest) error {
	if req.OutputType == "" || req.Language == "" || req.Difficulty == "" {
		return invalid(MsgMissingOptions)
	}

	switch req.Source {
	case models.SourceText:
		if strings.TrimSpace(req.Text) == "" {
			return invalid(MsgNoText)
		}
		return nil
	case models.SourcePDF:
		return validateFile(req.FilePath, "PDF", MaxPDFSize, "10MB", pdfTypes, MsgOnlyPDF)
	case models.SourceImage:
		return validateFile(req.FilePath, "IMAGE", MaxImageSize, "5MB", imageTypes, MsgOnlyImages)
	default:
		return invalid(MsgUnknownSource)
	}
}

func validateFile(path, kind string, maxSize int64, maxLabel string, allowed []string, typeMsg string) error {
	if strings.TrimSpace(path) == "" {
		return invalid(fmt.Sprintf("Please upload a %s file to generate from.", kind))
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return invalid(fmt.Sprintf("File %s does not exist.", path))
		}
		return invalid(fmt.Sprintf("Cannot read %s.", path))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return invalid(fmt.Sprintf("Cannot read %s.", path))
	}
	if info.Size() > maxSize {
		return invalid(fmt.Sprintf("File size must be less than %s", maxLabel))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return invalid(fmt.Sprintf("Cannot read %s.", path))
	}
	if !slices.Contains(allowed, detectContentType(head[:n])) {
		return invalid(typeMsg)
	}
	return nil
}

// detectContentType sniffs like net/http but drops parameters.
func detectContentType(b []byte) string {
	ct := http.DetectContentType(b)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}
