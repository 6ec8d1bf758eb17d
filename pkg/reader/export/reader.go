// Package export reads activity and wellness telemetry from JSON export
// files, the format produced by the device vendor's bulk data export.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/types"
)

const (
	activitiesFile = "activities.json"
	wellnessFile   = "wellness.json"
)

// Reader reads the two export files from a directory. A missing wellness file
// yields an empty batch; a missing activities file is an error, since an
// export without activities is almost always a wrong path.
type Reader struct {
	dir string
}

var _ shared.TelemetryReader = (*Reader)(nil)

func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

func (r *Reader) ReadActivities(ctx context.Context, _ *types.FilterSpec) ([]*types.RawActivityRecord, error) {
	path := filepath.Join(r.dir, activitiesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity export: %w", err)
	}

	var records []*types.RawActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// ReadWellness returns the raw streams clipped to the date range. Rows carry
// their date in the Day field, so clipping is a plain string comparison.
func (r *Reader) ReadWellness(ctx context.Context, startDate, endDate string) (*types.RawWellnessBatch, error) {
	path := filepath.Join(r.dir, wellnessFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.RawWellnessBatch{}, nil
		}
		return nil, fmt.Errorf("read wellness export: %w", err)
	}

	var batch types.RawWellnessBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	clipped := &types.RawWellnessBatch{}
	for _, row := range batch.Sleep {
		if inRange(row.Day, startDate, endDate) {
			clipped.Sleep = append(clipped.Sleep, row)
		}
	}
	for _, row := range batch.RHR {
		if inRange(row.Day, startDate, endDate) {
			clipped.RHR = append(clipped.RHR, row)
		}
	}
	for _, row := range batch.Weight {
		if inRange(row.Day, startDate, endDate) {
			clipped.Weight = append(clipped.Weight, row)
		}
	}
	return clipped, nil
}

func inRange(day, start, end string) bool {
	if start != "" && day < start {
		return false
	}
	if end != "" && day > end {
		return false
	}
	return true
}
