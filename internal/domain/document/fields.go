package document

// Hash field names shared by the mapper, the index schema and query rendering.
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldTitleKey      = "title_key"
	FieldProviderTitle = "provider_title"
	FieldSearchText    = "search_text"
	FieldStatus        = "status"
	FieldCity          = "city"
	FieldSettlement    = "settlement"
	FieldDirections    = "directions"
	FieldMinAge        = "min_age"
	FieldMaxAge        = "max_age"
	FieldPrice         = "price"
	FieldPriceKey      = "price_key"
	FieldRating        = "rating"
	FieldRatingKey     = "rating_key"
	FieldGeo           = "geo"
	FieldGeocell       = "geocell"
	FieldSched         = "sched"
	FieldSchedules     = "schedules"
	FieldSeq           = "seq"
)
