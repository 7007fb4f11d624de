package pipeline

import "strings"

// Aliases is an immutable, priority-ordered list of normalized name fragments
// for one semantic field
type Aliases struct {
	field  string
	tokens []string
	set    map[string]struct{}
}

func newAliases(field string, names ...string) Aliases {
	a := Aliases{field: field, set: make(map[string]struct{}, len(names))}
	for _, name := range names {
		token := normalizeKey(name)
		if token == "" {
			continue
		}
		if _, dup := a.set[token]; dup {
			continue
		}
		a.tokens = append(a.tokens, token)
		a.set[token] = struct{}{}
	}
	return a
}

// Field names the semantic field the aliases describe
func (a Aliases) Field() string { return a.field }

// Tokens returns a copy of the normalized tokens in priority order
func (a Aliases) Tokens() []string {
	return append([]string(nil), a.tokens...)
}

// Contains reports whether the normalized name contains one of the tokens
func (a Aliases) Contains(normalized string) bool {
	for _, token := range a.tokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}

// Exact reports whether the normalized name is one of the tokens
func (a Aliases) Exact(normalized string) bool {
	_, ok := a.set[normalized]
	return ok
}

// Record field aliases, matched by substring
var (
	dateAliases   = newAliases("date", "date", "jour", "day", "dateconso", "datereleve", "date_releve", "date_index")
	volumeAliases = newAliases("volume", "volume", "conso", "consommation", "litre", "litres", "m3", "m^3")
	costAliases   = newAliases("cost", "euros", "euro", "prix", "montant", "ttc", "cost")
	unitAliases   = newAliases("unit", "unit", "unite", "unité", "uom")
)

// Tariff price aliases, matched exactly
var priceAliases = newAliases("price_m3", "prixmoyeneau", "prixmoyen", "prixmoyen_eau", "prixmoyenent", "prixm3")

// indexDateKey is the vendor field whose value overrides the matched date
var indexDateKey = normalizeKey("DATE_INDEX")

type metadataKind int

const (
	textMetadata metadataKind = iota
	numberMetadata
	dateMetadata
	indexSeriesMetadata
)

type metadataTarget struct {
	key  string
	kind metadataKind
}

// metadataTargets maps exact normalized portal keys to canonical metadata
var metadataTargets = map[string]metadataTarget{
	"consommationmax":     {key: "consommation_max_m3", kind: numberMetadata},
	"consommationmoyenne": {key: "consommation_moyenne_m3", kind: numberMetadata},
	"dateconsommationmax": {key: "date_consommation_max", kind: dateMetadata},
	"datedebut":           {key: "date_debut", kind: dateMetadata},
	"datefin":             {key: "date_fin", kind: dateMetadata},
	"idpds":               {key: "id_pds", kind: textMetadata},
	"numerocompteur":      {key: "numero_compteur", kind: textMetadata},
	"indexmesure":         {key: "index_mesure", kind: indexSeriesMetadata},
}

// Canonical metadata keys produced outside metadataTargets
const (
	MetaPrice          = "price_m3"
	MetaIndexLastValue = "index_last_value"
	MetaIndexLastDate  = "index_last_date"
	MetaIndexLastRaw   = "index_last_raw"
)
