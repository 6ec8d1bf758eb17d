// Package fitfile reads activity telemetry from a directory of FIT files.
// Each file yields one raw activity record built from its session summary.
package fitfile

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/basetype"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/types"
)

// DirectoryReader yields one raw record per FIT file under a directory tree.
// Files that fail to decode are logged and skipped, never fatal.
type DirectoryReader struct {
	dir    string
	logger *slog.Logger
}

var _ shared.TelemetryReader = (*DirectoryReader)(nil)

func NewDirectoryReader(dir string, logger *slog.Logger) *DirectoryReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryReader{dir: dir, logger: logger}
}

func (r *DirectoryReader) ReadActivities(ctx context.Context, _ *types.FilterSpec) ([]*types.RawActivityRecord, error) {
	var paths []string
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".fit") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.dir, err)
	}
	sort.Strings(paths)

	var records []*types.RawActivityRecord
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.readFile(path)
		if err != nil {
			r.logger.Warn("Skipping unreadable FIT file", "path", path, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadWellness returns an empty batch: FIT activity files carry no daily
// wellness streams.
func (r *DirectoryReader) ReadWellness(ctx context.Context, startDate, endDate string) (*types.RawWellnessBatch, error) {
	return &types.RawWellnessBatch{}, nil
}

func (r *DirectoryReader) readFile(path string) (*types.RawActivityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseActivity(data)
}

// ParseActivity decodes FIT bytes into one raw activity record. Multi-session
// files use the first session summary.
func ParseActivity(data []byte) (*types.RawActivityRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty FIT data")
	}

	fitDec := decoder.New(bytes.NewReader(data))

	var session *mesgdef.Session
	var created time.Time

	for fitDec.Next() {
		fitData, err := fitDec.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode FIT: %w", err)
		}
		for i := range fitData.Messages {
			msg := &fitData.Messages[i]
			switch msg.Num {
			case typedef.MesgNumFileId:
				fileID := mesgdef.NewFileId(msg)
				if created.IsZero() && !fileID.TimeCreated.IsZero() {
					created = fileID.TimeCreated.UTC()
				}
			case typedef.MesgNumSession:
				if session == nil {
					session = mesgdef.NewSession(msg)
				}
			}
		}
	}

	if session == nil {
		return nil, fmt.Errorf("no session summary in FIT file")
	}

	start := session.StartTime.UTC()
	if start.IsZero() {
		start = created
	}
	if start.IsZero() {
		return nil, fmt.Errorf("no start time in FIT file")
	}

	record := &types.RawActivityRecord{
		ID:        start.Unix(),
		Name:      session.SportProfileName,
		StartTime: start.Format(time.RFC3339),
		Sport:     sportLabel(session.Sport, session.SubSport),
	}

	// FIT stores moving time as milliseconds of timer time
	if session.TotalTimerTime != basetype.Uint32Invalid {
		record.MovingTime = formatSeconds(int(session.TotalTimerTime / 1000))
	} else if session.TotalElapsedTime != basetype.Uint32Invalid {
		record.MovingTime = formatSeconds(int(session.TotalElapsedTime / 1000))
	}

	if session.TotalDistance != basetype.Uint32Invalid {
		km := float64(session.TotalDistance) / 100 / 1000 // cm to km
		record.DistanceKM = &km
	}

	record.AvgHR = uint8Field(session.AvgHeartRate)
	record.MaxHR = uint8Field(session.MaxHeartRate)
	record.AvgPower = uint16Field(session.AvgPower)
	record.MaxPower = uint16Field(session.MaxPower)
	record.AvgCadence = uint8Field(session.AvgCadence)
	record.MaxCadence = uint8Field(session.MaxCadence)
	record.Calories = uint16Field(session.TotalCalories)

	if session.AvgSpeed != basetype.Uint16Invalid {
		kmh := float64(session.AvgSpeed) / 1000 * 3.6 // mm/s to km/h
		record.AvgSpeedKmh = &kmh
	}
	if session.MaxSpeed != basetype.Uint16Invalid {
		kmh := float64(session.MaxSpeed) / 1000 * 3.6
		record.MaxSpeedKmh = &kmh
	}

	if session.TotalTrainingEffect != basetype.Uint8Invalid {
		te := float64(session.TotalTrainingEffect) / 10
		record.AerobicTE = &te
	}
	if session.TotalAnaerobicTrainingEffect != basetype.Uint8Invalid {
		te := float64(session.TotalAnaerobicTrainingEffect) / 10
		record.AnaerobicTE = &te
	}

	if session.TotalAscent != basetype.Uint16Invalid {
		gain := float64(session.TotalAscent)
		record.ElevationGain = &gain
	}
	if session.TotalDescent != basetype.Uint16Invalid {
		loss := float64(session.TotalDescent)
		record.ElevationLoss = &loss
	}
	if session.AvgTemperature != basetype.Sint8Invalid {
		temp := float64(session.AvgTemperature)
		record.TemperatureC = &temp
	}

	return record, nil
}

// sportLabel renders a FIT sport/sub-sport pair as the source label the sport
// mapper understands.
func sportLabel(s typedef.Sport, sub typedef.SubSport) string {
	switch s {
	case typedef.SportRunning:
		if sub == typedef.SubSportTreadmill {
			return "treadmill_running"
		}
		return "running"
	case typedef.SportCycling:
		if sub == typedef.SubSportIndoorCycling || sub == typedef.SubSportSpin {
			return "indoor_cycling"
		}
		return "cycling"
	case typedef.SportSwimming:
		if sub == typedef.SubSportOpenWater {
			return "open_water_swimming"
		}
		return "lap_swimming"
	case typedef.SportTraining, typedef.SportFitnessEquipment:
		if sub == typedef.SubSportYoga {
			return "yoga"
		}
		return "strength_training"
	}
	return s.String()
}

func formatSeconds(total int) string {
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func uint8Field(v uint8) *int {
	if v == basetype.Uint8Invalid {
		return nil
	}
	out := int(v)
	return &out
}

func uint16Field(v uint16) *int {
	if v == basetype.Uint16Invalid {
		return nil
	}
	out := int(v)
	return &out
}
