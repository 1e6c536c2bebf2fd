// ABOUTME: Client-side field and upload validation for the console
// ABOUTME: Email, phone, password rules plus the per-file upload guard

package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxUploadSize is the largest accepted knowledge source file, in bytes.
const MaxUploadSize = 10 * 1024 * 1024

// allowedExtensions lists the file types the ingestion pipeline accepts.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".doc":  true,
	".docx": true,
	".csv":  true,
	".xml":  true,
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Email checks the address format. Returns an error message or empty string if valid.
func Email(email string) string {
	if !emailRegex.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

// Phone checks an optional phone number. Spaces are ignored.
func Phone(phone string) string {
	if !phoneRegex.MatchString(strings.ReplaceAll(phone, " ", "")) {
		return "Please enter a valid phone number"
	}
	return ""
}

// Password enforces the registration password policy: at least 8 characters
// with one uppercase letter, one lowercase letter, and one digit.
func Password(pwd string) string {
	var hasUpper, hasLower, hasDigit bool
	for _, r := range pwd {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if len(pwd) < 8 || !hasUpper || !hasLower || !hasDigit {
		return "Password must be at least 8 characters with an uppercase letter, a lowercase letter, and a number"
	}
	return ""
}

// TenantName checks the only required wizard field.
func TenantName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Organization name cannot be empty."
	}
	return ""
}

// FileCheck describes one candidate upload.
type FileCheck struct {
	Name string
	Size int64
}

// FileResult is the per-file outcome of an upload batch validation.
type FileResult struct {
	Name  string
	Error string // empty when the file is accepted
}

// Files validates an upload batch one file at a time. A rejected file never
// blocks the rest of the batch: accepted holds the indexes of valid files and
// results carries a per-file message for each rejection.
func Files(files []FileCheck) (accepted []int, results []FileResult) {
	for i, f := range files {
		if f.Size > MaxUploadSize {
			results = append(results, FileResult{
				Name:  f.Name,
				Error: fmt.Sprintf("File %s is too large. Max size: 10MB", f.Name),
			})
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if !allowedExtensions[ext] {
			results = append(results, FileResult{
				Name:  f.Name,
				Error: fmt.Sprintf("Invalid file type for %s. Use PDF, TXT, DOC, DOCX, CSV, or XML", f.Name),
			})
			continue
		}
		accepted = append(accepted, i)
	}
	return accepted, results
}
