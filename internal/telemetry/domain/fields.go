package telemetry

import masterdata "aquaculture-cloud/internal/masterdata/domain"

// FieldValue is one measured parameter of a reading.
type FieldValue struct {
	ParameterID string
	Value       float64
}

type accessor struct {
	parameterID string
	get         func(Payload) *float64
}

// fieldTable maps each variant to its parameter accessors, in display order.
var fieldTable = map[Variant][]accessor{
	VariantEquipment: {
		{masterdata.ParamWaterTemperature, func(p Payload) *float64 { return p.(EquipmentValues).WaterTemperature }},
		{masterdata.ParamPH, func(p Payload) *float64 { return p.(EquipmentValues).PH }},
		{masterdata.ParamDissolvedOxygen, func(p Payload) *float64 { return p.(EquipmentValues).DissolvedOxygen }},
		{masterdata.ParamSalinity, func(p Payload) *float64 { return p.(EquipmentValues).Salinity }},
		{masterdata.ParamORP, func(p Payload) *float64 { return p.(EquipmentValues).ORP }},
	},
	VariantTank: {
		{masterdata.ParamWaterTemperature, func(p Payload) *float64 { return p.(TankValues).WaterTemperature }},
		{masterdata.ParamDissolvedOxygen, func(p Payload) *float64 { return p.(TankValues).DissolvedOxygen }},
		{masterdata.ParamPH, func(p Payload) *float64 { return p.(TankValues).PH }},
	},
	VariantFeeding: {
		{masterdata.ParamFeedAmount, func(p Payload) *float64 { return p.(FeedingValues).FeedAmount }},
	},
	VariantFishCount: {
		{masterdata.ParamFishCount, func(p Payload) *float64 { return p.(FishCountValues).FishCount }},
		{masterdata.ParamMortality, func(p Payload) *float64 { return p.(FishCountValues).Mortality }},
	},
	VariantPackTest: {
		{masterdata.ParamAmmonia, func(p Payload) *float64 { return p.(PackTestValues).Ammonia }},
		{masterdata.ParamNitrite, func(p Payload) *float64 { return p.(PackTestValues).Nitrite }},
		{masterdata.ParamNitrate, func(p Payload) *float64 { return p.(PackTestValues).Nitrate }},
		{masterdata.ParamPH, func(p Payload) *float64 { return p.(PackTestValues).PH }},
	},
}

// HasField reports whether the variant carries the parameter.
func HasField(variant Variant, parameterID string) bool {
	for _, acc := range fieldTable[variant] {
		if acc.parameterID == parameterID {
			return true
		}
	}
	return false
}

// FieldIDs lists the parameters carried by a variant.
func FieldIDs(variant Variant) []string {
	ids := make([]string, 0, len(fieldTable[variant]))
	for _, acc := range fieldTable[variant] {
		ids = append(ids, acc.parameterID)
	}
	return ids
}

// Field returns the value of a parameter, false when absent or not measured.
func (r Reading) Field(parameterID string) (float64, bool) {
	if r.Payload == nil {
		return 0, false
	}
	for _, acc := range fieldTable[r.Variant()] {
		if acc.parameterID != parameterID {
			continue
		}
		if v := acc.get(r.Payload); v != nil {
			return *v, true
		}
		return 0, false
	}
	return 0, false
}

// Fields returns every measured parameter of the reading.
func (r Reading) Fields() []FieldValue {
	if r.Payload == nil {
		return nil
	}
	accessors := fieldTable[r.Variant()]
	result := make([]FieldValue, 0, len(accessors))
	for _, acc := range accessors {
		if v := acc.get(r.Payload); v != nil {
			result = append(result, FieldValue{ParameterID: acc.parameterID, Value: *v})
		}
	}
	return result
}
