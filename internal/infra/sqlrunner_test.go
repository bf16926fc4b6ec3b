package infra

import (
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	marker, sql, err := extractMarker(`--sql 457eb33e-90ea-431f-ab82-154b40a08ce7
select 1`)
	if err != nil {
		t.Fatalf("extractMarker() error: %v", err)
	}
	if marker != "457eb33e-90ea-431f-ab82-154b40a08ce7" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.TrimSpace(sql) != "select 1" {
		t.Fatalf("sql = %q", sql)
	}
}

func TestExtractMarkerRejectsUnmarkedSQL(t *testing.T) {
	for _, query := range []string{"", "select 1", "--sql not-a-uuid\nselect 1"} {
		if _, _, err := extractMarker(query); err == nil {
			t.Fatalf("expected error for %q", query)
		}
	}
}
