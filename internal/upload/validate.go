// Package upload implements pre-validation of candidate upload sets before
// any bytes reach object storage. The HTTP handler re-runs this check
// server-side regardless of any client-side result; admission is
// all-or-nothing over the candidate set.
package upload

import "fmt"

// File categories accepted per submission.
const (
	CategorySubject = "subject"
	CategoryItem    = "item"
)

// Validation error and warning codes.
const (
	CodeSubjectRequired       = "SUBJECT_REQUIRED"
	CodeCategoryLimitExceeded = "CATEGORY_LIMIT_EXCEEDED"
	CodeTooManyItems          = "TOO_MANY_ITEMS"
	CodeUnknownCategory       = "UNKNOWN_CATEGORY"
	CodeUnsupportedType       = "UNSUPPORTED_TYPE"
	CodeFileTooLarge          = "FILE_TOO_LARGE"
	CodeEmptyFile             = "EMPTY_FILE"
	CodeFileSizeAdvisory      = "FILE_SIZE_ADVISORY"
)

const (
	// MaxFileBytes is the hard per-file ceiling; exceeding it blocks the set.
	MaxFileBytes = 8 << 20
	// RecommendedFileBytes is a soft ceiling communicated as advice only.
	RecommendedFileBytes = 5 << 20
	// MaxItems bounds the number of item images per submission.
	MaxItems = 3
)

// allowedTypes is the fixed raster-format allow-list.
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// FileMeta describes a candidate file as declared by the client. No bytes are
// inspected here; the declared metadata is what admission is decided on.
type FileMeta struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Size     int64  `json:"size"`
	MIME     string `json:"mime"`
}

// FieldError is one structured validation finding.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Result carries blocking errors and non-blocking warnings for a candidate
// set. The set is admissible only when Errors is empty.
type Result struct {
	Errors   []FieldError `json:"errors,omitempty"`
	Warnings []FieldError `json:"warnings,omitempty"`
}

// OK reports whether the candidate set may proceed to upload.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Validate checks a candidate set against the admission rules: exactly one
// subject, at most three items, allow-listed types, and per-file size limits.
func Validate(files []FileMeta) Result {
	var res Result

	subjects := 0
	items := 0
	for i, f := range files {
		field := fieldName(f, i)
		switch f.Category {
		case CategorySubject:
			subjects++
			if subjects > 1 {
				res.Errors = append(res.Errors, FieldError{
					Field:   field,
					Message: "only one subject photo is allowed",
					Code:    CodeCategoryLimitExceeded,
				})
			}
		case CategoryItem:
			items++
			if items > MaxItems {
				res.Errors = append(res.Errors, FieldError{
					Field:   field,
					Message: "at most three item images are allowed",
					Code:    CodeTooManyItems,
				})
			}
		default:
			res.Errors = append(res.Errors, FieldError{
				Field:   field,
				Message: "category must be \"subject\" or \"item\"",
				Code:    CodeUnknownCategory,
			})
		}

		if _, ok := allowedTypes[f.MIME]; !ok {
			res.Errors = append(res.Errors, FieldError{
				Field:   field,
				Message: "file type must be PNG or JPEG",
				Code:    CodeUnsupportedType,
			})
		}
		switch {
		case f.Size <= 0:
			res.Errors = append(res.Errors, FieldError{
				Field:   field,
				Message: "file is empty",
				Code:    CodeEmptyFile,
			})
		case f.Size > MaxFileBytes:
			res.Errors = append(res.Errors, FieldError{
				Field:   field,
				Message: "file exceeds the 8 MiB limit",
				Code:    CodeFileTooLarge,
			})
		case f.Size > RecommendedFileBytes:
			res.Warnings = append(res.Warnings, FieldError{
				Field:   field,
				Message: "files over 5 MiB may slow down generation",
				Code:    CodeFileSizeAdvisory,
			})
		}
	}

	if subjects == 0 {
		res.Errors = append(res.Errors, FieldError{
			Field:   CategorySubject,
			Message: "a subject photo is required",
			Code:    CodeSubjectRequired,
		})
	}

	return res
}

// ExtensionFor maps an allow-listed MIME type to its storage extension.
func ExtensionFor(mime string) (string, bool) {
	ext, ok := allowedTypes[mime]
	return ext, ok
}

func fieldName(f FileMeta, idx int) string {
	if f.Name != "" {
		return f.Name
	}
	if f.Category != "" {
		return f.Category
	}
	return fmt.Sprintf("files[%d]", idx)
}
