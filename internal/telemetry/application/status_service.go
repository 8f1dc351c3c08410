package application

import (
	"context"
	"errors"
	"time"

	masterdata "aquaculture-cloud/internal/masterdata/domain"
	telemetry "aquaculture-cloud/internal/telemetry/domain"
)

// FieldStatus is a measured value with its live classification.
// Tier is empty when the parameter has no definition.
type FieldStatus struct {
	ParameterID string          `json:"parameter_id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit,omitempty"`
	Value       float64         `json:"value"`
	Tier        masterdata.Tier `json:"tier,omitempty"`
}

// LiveStatus is the classified latest reading for a line or tank.
type LiveStatus struct {
	ReadingID string            `json:"reading_id"`
	Variant   telemetry.Variant `json:"variant"`
	LineID    string            `json:"line_id"`
	TankID    string            `json:"tank_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Fields    []FieldStatus     `json:"fields"`
	Worst     masterdata.Tier   `json:"worst"`
}

// StatusService classifies the latest reading per key.
type StatusService struct {
	repo   telemetry.ReadingRepository
	params masterdata.ParameterRepository
}

// NewStatusService constructs a StatusService.
func NewStatusService(repo telemetry.ReadingRepository, params masterdata.ParameterRepository) (*StatusService, error) {
	if repo == nil || params == nil {
		return nil, errors.New("telemetry status: nil dependency")
	}
	return &StatusService{repo: repo, params: params}, nil
}

// LiveStatus returns the classified latest reading, false when no reading exists.
func (s *StatusService) LiveStatus(ctx context.Context, variant telemetry.Variant, key telemetry.Key) (*LiveStatus, bool, error) {
	reading, ok, err := s.repo.LatestFor(ctx, variant, key)
	if err != nil || !ok {
		return nil, false, err
	}
	status := &LiveStatus{
		ReadingID: reading.ID,
		Variant:   reading.Variant(),
		LineID:    reading.LineID,
		TankID:    reading.TankID,
		Timestamp: reading.Timestamp,
		Fields:    []FieldStatus{},
		Worst:     masterdata.TierNormal,
	}
	for _, field := range reading.Fields() {
		fs := FieldStatus{ParameterID: field.ParameterID, Name: field.ParameterID, Value: field.Value}
		def, err := s.params.Get(ctx, field.ParameterID)
		switch {
		case errors.Is(err, masterdata.ErrParameterNotFound):
		case err != nil:
			return nil, false, err
		default:
			fs.Name = def.DisplayName()
			fs.Unit = def.Unit
			tier, err := masterdata.Classify(field.Value, *def)
			if err != nil {
				return nil, false, err
			}
			fs.Tier = tier
			status.Worst = worse(status.Worst, tier)
		}
		status.Fields = append(status.Fields, fs)
	}
	return status, true, nil
}

func worse(a, b masterdata.Tier) masterdata.Tier {
	rank := map[masterdata.Tier]int{masterdata.TierNormal: 0, masterdata.TierWarning: 1, masterdata.TierDanger: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
