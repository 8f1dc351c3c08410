package telemetry

// Nil fields were not measured for that reading.

// EquipmentValues are line filtration sensor values.
type EquipmentValues struct {
	WaterTemperature *float64 `json:"water_temperature,omitempty"`
	PH               *float64 `json:"ph,omitempty"`
	DissolvedOxygen  *float64 `json:"dissolved_oxygen,omitempty"`
	Salinity         *float64 `json:"salinity,omitempty"`
	ORP              *float64 `json:"orp,omitempty"`
}

// TankValues are per-tank probe values.
type TankValues struct {
	WaterTemperature *float64 `json:"water_temperature,omitempty"`
	DissolvedOxygen  *float64 `json:"dissolved_oxygen,omitempty"`
	PH               *float64 `json:"ph,omitempty"`
}

// FeedingValues is a manual feeding entry.
type FeedingValues struct {
	FeedAmount *float64 `json:"feed_amount,omitempty"`
}

// FishCountValues is a manual stock/mortality entry.
type FishCountValues struct {
	FishCount *float64 `json:"fish_count,omitempty"`
	Mortality *float64 `json:"mortality,omitempty"`
}

// PackTestValues is a manual water chemistry test for a line.
type PackTestValues struct {
	Ammonia *float64 `json:"ammonia,omitempty"`
	Nitrite *float64 `json:"nitrite,omitempty"`
	Nitrate *float64 `json:"nitrate,omitempty"`
	PH      *float64 `json:"ph,omitempty"`
}

func (EquipmentValues) Variant() Variant { return VariantEquipment }
func (TankValues) Variant() Variant      { return VariantTank }
func (FeedingValues) Variant() Variant   { return VariantFeeding }
func (FishCountValues) Variant() Variant { return VariantFishCount }
func (PackTestValues) Variant() Variant  { return VariantPackTest }

// Float returns a pointer to v, for building payloads.
func Float(v float64) *float64 { return &v }

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Clone returns a reading whose payload shares no pointers with r.
func (r Reading) Clone() Reading {
	switch p := r.Payload.(type) {
	case EquipmentValues:
		r.Payload = EquipmentValues{
			WaterTemperature: cloneFloat(p.WaterTemperature),
			PH:               cloneFloat(p.PH),
			DissolvedOxygen:  cloneFloat(p.DissolvedOxygen),
			Salinity:         cloneFloat(p.Salinity),
			ORP:              cloneFloat(p.ORP),
		}
	case TankValues:
		r.Payload = TankValues{
			WaterTemperature: cloneFloat(p.WaterTemperature),
			DissolvedOxygen:  cloneFloat(p.DissolvedOxygen),
			PH:               cloneFloat(p.PH),
		}
	case FeedingValues:
		r.Payload = FeedingValues{FeedAmount: cloneFloat(p.FeedAmount)}
	case FishCountValues:
		r.Payload = FishCountValues{FishCount: cloneFloat(p.FishCount), Mortality: cloneFloat(p.Mortality)}
	case PackTestValues:
		r.Payload = PackTestValues{
			Ammonia: cloneFloat(p.Ammonia),
			Nitrite: cloneFloat(p.Nitrite),
			Nitrate: cloneFloat(p.Nitrate),
			PH:      cloneFloat(p.PH),
		}
	}
	return r
}
