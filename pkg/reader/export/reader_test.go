package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadActivities(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, activitiesFile, `[
		{"id": 101, "start_time": "2024-03-01 06:30:00", "sport": "running", "moving_time": "45:00", "distance_km": 8.5},
		{"id": 102, "start_time": "2024-03-02 07:00:00", "sport": "cycling", "moving_time": "1:20:00"}
	]`)

	records, err := NewReader(dir).ReadActivities(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != 101 || records[0].Sport != "running" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[0].DistanceKM == nil || *records[0].DistanceKM != 8.5 {
		t.Errorf("distance = %v, want 8.5", records[0].DistanceKM)
	}
	if records[1].DistanceKM != nil {
		t.Error("missing distance must stay nil")
	}
}

func TestReadActivities_MissingFileErrors(t *testing.T) {
	if _, err := NewReader(t.TempDir()).ReadActivities(context.Background(), nil); err == nil {
		t.Error("expected error for missing activities export")
	}
}

func TestReadWellness_ClipsToRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, wellnessFile, `{
		"sleep": [
			{"day": "2024-02-28", "total_sleep": "7:00:00"},
			{"day": "2024-03-01", "total_sleep": "7:30:00"}
		],
		"rhr": [
			{"day": "2024-03-01", "resting_heart_rate": 52},
			{"day": "2024-03-05", "resting_heart_rate": 54}
		],
		"weight": [
			{"day": "2024-03-02", "weight_kg": 71.5}
		]
	}`)

	batch, err := NewReader(dir).ReadWellness(context.Background(), "2024-03-01", "2024-03-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Sleep) != 1 || batch.Sleep[0].Day != "2024-03-01" {
		t.Errorf("sleep = %+v, want only 2024-03-01", batch.Sleep)
	}
	if len(batch.RHR) != 1 || batch.RHR[0].RestingHeartRate != 52 {
		t.Errorf("rhr = %+v, want only the in-range row", batch.RHR)
	}
	if len(batch.Weight) != 1 {
		t.Errorf("weight = %d rows, want 1", len(batch.Weight))
	}
}

func TestReadWellness_MissingFileIsEmpty(t *testing.T) {
	batch, err := NewReader(t.TempDir()).ReadWellness(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Sleep)+len(batch.RHR)+len(batch.Weight) != 0 {
		t.Error("expected an empty batch for a missing wellness export")
	}
}
