package upload

import "testing"

func png(category string, size int64) FileMeta {
	return FileMeta{Name: category + ".png", Category: category, Size: size, MIME: "image/png"}
}

func hasCode(errs []FieldError, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidateAcceptsSubjectWithItems(t *testing.T) {
	res := Validate([]FileMeta{
		png(CategorySubject, 1024),
		png(CategoryItem, 2048),
		png(CategoryItem, 2048),
		png(CategoryItem, 2048),
	})
	if !res.OK() {
		t.Fatalf("expected admission, got errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestValidateRequiresSubject(t *testing.T) {
	res := Validate([]FileMeta{png(CategoryItem, 1024)})
	if res.OK() {
		t.Fatal("expected rejection without a subject")
	}
	if !hasCode(res.Errors, CodeSubjectRequired) {
		t.Fatalf("expected %s, got %v", CodeSubjectRequired, res.Errors)
	}
}

func TestValidateRejectsTwoSubjects(t *testing.T) {
	res := Validate([]FileMeta{
		png(CategorySubject, 1024),
		png(CategorySubject, 1024),
		png(CategoryItem, 1024),
	})
	if res.OK() {
		t.Fatal("expected rejection with two subjects")
	}
	if !hasCode(res.Errors, CodeCategoryLimitExceeded) {
		t.Fatalf("expected %s, got %v", CodeCategoryLimitExceeded, res.Errors)
	}
}

func TestValidateRejectsFourItems(t *testing.T) {
	res := Validate([]FileMeta{
		png(CategorySubject, 1024),
		png(CategoryItem, 1024),
		png(CategoryItem, 1024),
		png(CategoryItem, 1024),
		png(CategoryItem, 1024),
	})
	if res.OK() {
		t.Fatal("expected rejection with four items")
	}
	if !hasCode(res.Errors, CodeTooManyItems) {
		t.Fatalf("expected %s, got %v", CodeTooManyItems, res.Errors)
	}
}

func TestValidateTypeAndSizeRules(t *testing.T) {
	cases := []struct {
		name     string
		file     FileMeta
		wantCode string
	}{
		{"gif rejected", FileMeta{Name: "a.gif", Category: CategorySubject, Size: 100, MIME: "image/gif"}, CodeUnsupportedType},
		{"webp rejected", FileMeta{Name: "a.webp", Category: CategorySubject, Size: 100, MIME: "image/webp"}, CodeUnsupportedType},
		{"over hard cap", png(CategorySubject, MaxFileBytes+1), CodeFileTooLarge},
		{"empty file", FileMeta{Name: "a.png", Category: CategorySubject, Size: 0, MIME: "image/png"}, CodeEmptyFile},
		{"unknown category", FileMeta{Name: "a.png", Category: "hat", Size: 100, MIME: "image/png"}, CodeUnknownCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate([]FileMeta{tc.file})
			if res.OK() {
				t.Fatal("expected rejection")
			}
			if !hasCode(res.Errors, tc.wantCode) {
				t.Fatalf("expected %s, got %v", tc.wantCode, res.Errors)
			}
		})
	}
}

func TestValidateSoftCeilingIsAdvisoryOnly(t *testing.T) {
	res := Validate([]FileMeta{png(CategorySubject, RecommendedFileBytes+1)})
	if !res.OK() {
		t.Fatalf("soft ceiling must not block admission: %v", res.Errors)
	}
	if !hasCode(res.Warnings, CodeFileSizeAdvisory) {
		t.Fatalf("expected %s warning, got %v", CodeFileSizeAdvisory, res.Warnings)
	}
}

func TestValidateAllOrNothing(t *testing.T) {
	// One bad file poisons the whole set even though the subject is fine.
	res := Validate([]FileMeta{
		png(CategorySubject, 1024),
		{Name: "doc.pdf", Category: CategoryItem, Size: 1024, MIME: "application/pdf"},
	})
	if res.OK() {
		t.Fatal("expected whole-set rejection")
	}
}
