package storage

import (
	"encoding/json"
	"errors"

	"schoolsim/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp sets the current schema and codec versions on a record about to be
// persisted.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodeRunSummary(s model.RunSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeRunSummary(data []byte) (model.RunSummary, error) {
	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.RunSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.RunSummary{}, err
	}
	return summary, nil
}

func EncodeTrialSeries(trials []model.TrialSeries) ([]byte, error) {
	return json.Marshal(trials)
}

func DecodeTrialSeries(data []byte) ([]model.TrialSeries, error) {
	var trials []model.TrialSeries
	if err := json.Unmarshal(data, &trials); err != nil {
		return nil, err
	}
	for _, series := range trials {
		if err := checkVersion(series.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return trials, nil
}

func checkVersion(record model.VersionedRecord) error {
	if record.SchemaVersion != CurrentSchemaVersion || record.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
