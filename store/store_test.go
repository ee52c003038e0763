package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/git-pkgs/enrich/internal/core"
)

func TestJSONFileWriteBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package_info.json")

	result := &core.BatchResult{
		Records: []core.Record{
			{
				Name:             "left-pad",
				Description:      "String left pad",
				Link:             "https://www.npmjs.com/package/left-pad",
				Dependencies:     []string{},
				PeerDependencies: []string{},
				Downloads: core.DownloadSummary{
					Total:        800,
					WeeklyTrends: []core.WeeklyBucket{},
				},
				LatestVersion: "1.3.0",
			},
			core.ErrorRecord("does-not-exist-xyz123", "fetch package info: HTTP 404"),
		},
		Succeeded: 1,
		Failed:    1,
	}

	sink := NewJSONFile(path)
	if err := sink.WriteBatch(context.Background(), result); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	var back []core.Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output is not a JSON array of records: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("got %d records, want 2", len(back))
	}
	if back[0].Name != "left-pad" || back[0].Downloads.Total != 800 {
		t.Errorf("first record = %+v", back[0])
	}
	if back[1].Error != "fetch package info: HTTP 404" {
		t.Errorf("second record error = %q", back[1].Error)
	}
}

func TestJSONFileWriteBatchBadPath(t *testing.T) {
	sink := NewJSONFile(filepath.Join(t.TempDir(), "missing-dir", "out.json"))
	if err := sink.WriteBatch(context.Background(), &core.BatchResult{}); err == nil {
		t.Error("expected error for unwritable path")
	}
}
