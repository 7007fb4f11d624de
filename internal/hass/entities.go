// Package hass publishes aggregate results as Home Assistant sensor states.
package hass

import (
	"fmt"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/internal/pipeline"
)

// Entity suffixes appended to the sensor prefix
const (
	SuffixDaily           = "_daily"
	SuffixDailyEuros      = "_daily_euros"
	SuffixMaxM3           = "_max_m3"
	SuffixAvgM3           = "_avg_m3"
	SuffixMeterIndex      = "_meter_index"
	SuffixInfo            = "_info"
	SuffixWeekToDateM3    = "_week_to_date_m3"
	SuffixMonthToDateM3   = "_month_to_date_m3"
	SuffixMonthlyEstimate = "_monthly_estimate_euros"
	SuffixLastReadingDate = "_last_reading_date"
	SuffixOverconsumption = "_overconsumption"
)

const (
	defaultInfoState       = "sedif"
	unknownLastReadingDate = "unknown"
)

// State is the body of POST /api/states/<entity_id>
type State struct {
	State      any            `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// Entity is one sensor to publish
type Entity struct {
	ID    string
	State State
}

// Device groups every sensor under one device in the hub
type Device struct {
	Identifiers  [][]string `json:"identifiers"`
	Name         string     `json:"name"`
	Manufacturer string     `json:"manufacturer"`
	Model        string     `json:"model"`
}

func deviceFor(prefix string) Device {
	return Device{
		Identifiers:  [][]string{{"sedif", prefix}},
		Name:         "SEDIF Water Consumption",
		Manufacturer: "SEDIF",
		Model:        "Web Portal",
	}
}

// EntityID builds sensor.<prefix><suffix>
func EntityID(prefix, suffix string) string {
	return "sensor." + prefix + suffix
}

// Project maps an aggregate result onto the sensors, copying values only
func Project(result *model.AggregateResult, prefix string) []Entity {
	device := deviceFor(prefix)
	md := result.Metadata
	if md == nil {
		md = model.Metadata{}
	}
	an := result.Analytics
	price := floatValue(result.PriceM3)

	var lastDate, lastLiters, lastM3, lastEuros any
	last, hasLast := result.Last()
	if hasLast {
		lastDate = last.Date.String()
		lastLiters = last.Liters
		lastM3 = last.M3
		lastEuros = floatValue(last.Euros)
	}
	daily := result.Daily
	if daily == nil {
		daily = []model.NormalizedRecord{}
	}

	lastReading := firstTruthy(md[pipeline.MetaIndexLastDate], dayValue(an.LastDate))

	entity := func(suffix string, state any, attrs map[string]any) Entity {
		attrs["device"] = device
		return Entity{ID: EntityID(prefix, suffix), State: State{State: state, Attributes: attrs}}
	}

	return []Entity{
		entity(SuffixDaily, orZero(lastLiters), map[string]any{
			"friendly_name":       "Consommation du dernier relevé (litres)",
			"unit_of_measurement": "L",
			"last_date":           lastDate,
			"last_m3":             lastM3,
			"last_euros":          lastEuros,
			"price_m3":            price,
			"daily":               daily,
		}),
		entity(SuffixDailyEuros, orZero(lastEuros), map[string]any{
			"friendly_name":       "Coût du dernier relevé (EUR)",
			"unit_of_measurement": "EUR",
			"last_date":           lastDate,
			"last_liters":         lastLiters,
			"last_m3":             lastM3,
			"price_m3":            price,
		}),
		entity(SuffixMaxM3, orZero(md["consommation_max_m3"]), map[string]any{
			"friendly_name":       "Consommation maximale (m³)",
			"unit_of_measurement": "m3",
			"date":                md["date_consommation_max"],
			"price_m3":            price,
		}),
		entity(SuffixAvgM3, orZero(md["consommation_moyenne_m3"]), map[string]any{
			"friendly_name":       "Consommation moyenne (m³)",
			"unit_of_measurement": "m3",
			"price_m3":            price,
		}),
		entity(SuffixMeterIndex, orZero(md[pipeline.MetaIndexLastValue]), map[string]any{
			"friendly_name":       "Index compteur (m³)",
			"unit_of_measurement": "m3",
			"date":                md[pipeline.MetaIndexLastDate],
			"raw":                 md[pipeline.MetaIndexLastRaw],
		}),
		entity(SuffixInfo, orDefault(firstTruthy(md["numero_compteur"], md["id_pds"]), defaultInfoState), map[string]any{
			"friendly_name":           "Informations compteur",
			"numero_compteur":         md["numero_compteur"],
			"id_pds":                  md["id_pds"],
			"date_debut":              md["date_debut"],
			"date_fin":                md["date_fin"],
			"consommation_max_m3":     md["consommation_max_m3"],
			"consommation_moyenne_m3": md["consommation_moyenne_m3"],
			"date_consommation_max":   md["date_consommation_max"],
			"index_last_value":        md[pipeline.MetaIndexLastValue],
			"index_last_date":         md[pipeline.MetaIndexLastDate],
			"price_m3":                price,
		}),
		entity(SuffixWeekToDateM3, an.WTDM3, map[string]any{
			"friendly_name":       "Consommation semaine en cours (m³)",
			"unit_of_measurement": "m3",
			"liters":              an.WTDLiters,
			"euros":               an.WTDEuros,
			"from":                dayValue(an.WeekStart),
			"to":                  dayValue(an.WeekEnd),
			"days":                an.WeekDayCount,
			"price_m3":            price,
		}),
		entity(SuffixMonthToDateM3, an.MTDM3, map[string]any{
			"friendly_name":       "Consommation mois en cours (m³)",
			"unit_of_measurement": "m3",
			"liters":              an.MTDLiters,
			"euros":               an.MTDEuros,
			"from":                dayValue(an.MonthStart),
			"to":                  dayValue(an.MonthEnd),
			"days":                an.MonthDayCount,
			"price_m3":            price,
		}),
		entity(SuffixMonthlyEstimate, orZero(floatValue(an.EstimateMonthEuros)), map[string]any{
			"friendly_name":       "Estimation facture mensuelle (EUR)",
			"unit_of_measurement": "EUR",
			"days_in_month":       an.DaysInMonth,
			"month_day_count":     an.MonthDayCount,
			"mtd_m3":              an.MTDM3,
			"price_m3":            price,
		}),
		entity(SuffixLastReadingDate, orDefault(lastReading, unknownLastReadingDate), map[string]any{
			"friendly_name":    "Date du dernier relevé",
			"last_date":        lastReading,
			"index_last_value": md[pipeline.MetaIndexLastValue],
			"index_last_raw":   md[pipeline.MetaIndexLastRaw],
		}),
		entity(SuffixOverconsumption, orDefault(an.OverconsumptionLevel, model.LevelUnknown), map[string]any{
			"friendly_name":      fmt.Sprintf("Surconsommation (référence %d jours)", result.Days),
			"ratio":              floatValue(an.OverconsumptionRatio),
			"threshold_high":     pipeline.ThresholdHigh,
			"threshold_critical": pipeline.ThresholdCritical,
			"avg_daily_liters":   an.AvgDailyLiters,
			"last_liters":        lastLiters,
			"last_date":          dayValue(an.LastDate),
		}),
	}
}

func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func dayValue(d *model.Day) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// truthy follows the hub's notion of an unset value: nil, "", 0 or false
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case bool:
		return val
	default:
		return true
	}
}

func firstTruthy(values ...any) any {
	for _, v := range values {
		if truthy(v) {
			return v
		}
	}
	return nil
}

func orDefault(v any, def any) any {
	if truthy(v) {
		return v
	}
	return def
}

func orZero(v any) any {
	return orDefault(v, 0)
}
