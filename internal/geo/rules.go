package geo

import "github.com/sells-group/poi-sync/internal/model"

// DefaultRegionName is the region used when no rule matches.
const DefaultRegionName = "santos"

// Central Santos coordinate. The hill neighbourhoods have no single
// representative point, so they share it with the default region.
const (
	centralLat = -23.9608
	centralLng = -46.3336
)

// BuiltinRegions lists the representative coordinate of every region.
var BuiltinRegions = []model.Region{
	{Name: "santos", Latitude: centralLat, Longitude: centralLng},
	{Name: "morros", Latitude: centralLat, Longitude: centralLng},
	{Name: "centro", Latitude: -23.9335, Longitude: -46.3289},
	{Name: "valongo", Latitude: -23.9302, Longitude: -46.3338},
	{Name: "paqueta", Latitude: -23.9363, Longitude: -46.3223},
	{Name: "vila-nova", Latitude: -23.9398, Longitude: -46.3262},
	{Name: "vila-mathias", Latitude: -23.9437, Longitude: -46.3187},
	{Name: "macuco", Latitude: -23.9531, Longitude: -46.3068},
	{Name: "estuario", Latitude: -23.9617, Longitude: -46.2985},
	{Name: "ponta-da-praia", Latitude: -23.9858, Longitude: -46.3008},
	{Name: "aparecida", Latitude: -23.9781, Longitude: -46.3128},
	{Name: "embare", Latitude: -23.9718, Longitude: -46.3219},
	{Name: "boqueirao", Latitude: -23.9681, Longitude: -46.3279},
	{Name: "gonzaga", Latitude: -23.9663, Longitude: -46.3341},
	{Name: "pompeia", Latitude: -23.9659, Longitude: -46.3431},
	{Name: "jose-menino", Latitude: -23.9681, Longitude: -46.3519},
	{Name: "campo-grande", Latitude: -23.9544, Longitude: -46.3339},
	{Name: "marape", Latitude: -23.9557, Longitude: -46.3461},
	{Name: "vila-belmiro", Latitude: -23.9513, Longitude: -46.3389},
	{Name: "encruzilhada", Latitude: -23.9468, Longitude: -46.3283},
	{Name: "jabaquara", Latitude: -23.9419, Longitude: -46.3399},
	{Name: "saboo", Latitude: -23.9291, Longitude: -46.3531},
	{Name: "zona-noroeste", Latitude: -23.9330, Longitude: -46.3640},
	{Name: "radio-clube", Latitude: -23.9371, Longitude: -46.3719},
	{Name: "areia-branca", Latitude: -23.9334, Longitude: -46.3652},
	{Name: "bom-retiro", Latitude: -23.9297, Longitude: -46.3598},
	{Name: "castelo", Latitude: -23.9268, Longitude: -46.3698},
	{Name: "area-continental", Latitude: -23.8897, Longitude: -46.2311},
	{Name: "sao-vicente", Latitude: -23.9631, Longitude: -46.3919},
	{Name: "guaruja", Latitude: -23.9931, Longitude: -46.2564},
	{Name: "praia-grande", Latitude: -24.0058, Longitude: -46.4028},
	{Name: "cubatao", Latitude: -23.8951, Longitude: -46.4254},
}

// BuiltinRules is evaluated top to bottom. Neighbouring cities come first
// because their addresses often name a "Centro" of their own; multi-word
// neighbourhoods precede single words, and "centro" is last.
var BuiltinRules = []Rule{
	{Pattern: "são vicente", Region: "sao-vicente"},
	{Pattern: "sao vicente", Region: "sao-vicente"},
	{Pattern: "vicente de carvalho", Region: "guaruja"},
	{Pattern: "guarujá", Region: "guaruja"},
	{Pattern: "guaruja", Region: "guaruja"},
	{Pattern: "praia grande", Region: "praia-grande"},
	{Pattern: "cubatão", Region: "cubatao"},
	{Pattern: "cubatao", Region: "cubatao"},

	{Pattern: "área continental", Region: "area-continental"},
	{Pattern: "area continental", Region: "area-continental"},
	{Pattern: "caruara", Region: "area-continental"},
	{Pattern: "monte cabrão", Region: "area-continental"},
	{Pattern: "monte cabrao", Region: "area-continental"},
	{Pattern: "ilha diana", Region: "area-continental"},

	{Pattern: "ponta da praia", Region: "ponta-da-praia"},
	{Pattern: "josé menino", Region: "jose-menino"},
	{Pattern: "jose menino", Region: "jose-menino"},
	{Pattern: "vila mathias", Region: "vila-mathias"},
	{Pattern: "vila matias", Region: "vila-mathias"},
	{Pattern: "vila belmiro", Region: "vila-belmiro"},
	{Pattern: "vila nova", Region: "vila-nova"},
	{Pattern: "campo grande", Region: "campo-grande"},
	{Pattern: "rádio clube", Region: "radio-clube"},
	{Pattern: "radio clube", Region: "radio-clube"},
	{Pattern: "areia branca", Region: "areia-branca"},
	{Pattern: "bom retiro", Region: "bom-retiro"},
	{Pattern: "zona noroeste", Region: "zona-noroeste"},

	{Pattern: "gonzaga", Region: "gonzaga"},
	{Pattern: "boqueirão", Region: "boqueirao"},
	{Pattern: "boqueirao", Region: "boqueirao"},
	{Pattern: "embaré", Region: "embare"},
	{Pattern: "embare", Region: "embare"},
	{Pattern: "aparecida", Region: "aparecida"},
	{Pattern: "pompéia", Region: "pompeia"},
	{Pattern: "pompeia", Region: "pompeia"},
	{Pattern: "macuco", Region: "macuco"},
	{Pattern: "estuário", Region: "estuario"},
	{Pattern: "estuario", Region: "estuario"},
	{Pattern: "marapé", Region: "marape"},
	{Pattern: "marape", Region: "marape"},
	{Pattern: "encruzilhada", Region: "encruzilhada"},
	{Pattern: "jabaquara", Region: "jabaquara"},
	{Pattern: "saboó", Region: "saboo"},
	{Pattern: "saboo", Region: "saboo"},
	{Pattern: "castelo", Region: "castelo"},
	{Pattern: "paquetá", Region: "paqueta"},
	{Pattern: "paqueta", Region: "paqueta"},
	{Pattern: "valongo", Region: "valongo"},

	{Pattern: "monte serrat", Region: "morros"},
	{Pattern: "morro ", Region: "morros"},

	{Pattern: "centro", Region: "centro"},
}

// DefaultEngine returns an Engine over the built-in table.
func DefaultEngine() *Engine {
	e, err := NewEngine(BuiltinRegions, BuiltinRules, DefaultRegionName)
	if err != nil {
		panic("geo: invalid built-in rule table: " + err.Error())
	}
	return e
}
