package masterdata

// Parameter identifiers shared by readings, definitions and alert rules.
const (
	ParamPH               = "ph"
	ParamDissolvedOxygen  = "dissolved_oxygen"
	ParamWaterTemperature = "water_temperature"
	ParamSalinity         = "salinity"
	ParamORP              = "orp"
	ParamAmmonia          = "ammonia"
	ParamNitrite          = "nitrite"
	ParamNitrate          = "nitrate"
	ParamFeedAmount       = "feed_amount"
	ParamFishCount        = "fish_count"
	ParamMortality        = "mortality"
)
