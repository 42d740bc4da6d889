package branch

import "github.com/voltlead/leadsync-cli/internal/model"

// profile holds the per-vertical matching tables. The maps below are
// keyed by the closed model.Branch set and checked for exhaustiveness
// at init, so adding a vertical without its tables fails fast.
type profile struct {
	// Attrs are the BranchData keys that count toward the field score.
	Attrs []string
	// Signature is the single attribute considered unusually
	// diagnostic for this vertical; its presence earns a fixed bonus.
	Signature string
	// Keywords are matched as substrings against the lead's free text.
	Keywords []string
	// Actions are the canned follow-ups recommended on a match.
	Actions []string
}

var profiles = map[model.Branch]profile{
	model.BranchThuisbatterijen: {
		Attrs:     []string{"zonnepanelen", "dynamischContract", "stroomverbruik"},
		Signature: "dynamischContract",
		Keywords:  []string{"batterij", "thuisbatterij", "opslag", "accu", "salderen"},
		Actions: []string{
			"Controleer saldering en terugleverkosten",
			"Plan een adviesgesprek over batterijcapaciteit",
			"Stuur de thuisbatterij-brochure",
		},
	},
	model.BranchZonnepanelen: {
		Attrs:     []string{"postcode", "huisnummer", "stroomverbruik", "koopintentie"},
		Signature: "koopintentie",
		Keywords:  []string{"zonnepaneel", "zonnepanelen", "zonne-energie", "pv", "dak"},
		Actions: []string{
			"Maak een dakscan op basis van postcode en huisnummer",
			"Stuur een indicatieve legplan-offerte",
			"Plan een schouw",
		},
	},
	model.BranchEnergieContracten: {
		Attrs:     []string{"dynamischContract", "stroomverbruik", "nieuwsbrief"},
		Signature: "dynamischContract",
		Keywords:  []string{"contract", "energiecontract", "tarief", "overstappen", "dynamisch"},
		Actions: []string{
			"Vergelijk het huidige tarief met dynamische prijzen",
			"Stuur het overstapformulier",
		},
	},
	model.BranchLaadpalen: {
		Attrs:     []string{"postcode", "huisnummer", "koopintentie"},
		Signature: "koopintentie",
		Keywords:  []string{"laadpaal", "laadpunt", "elektrische auto", "ev", "opladen"},
		Actions: []string{
			"Vraag het automerk en de thuisaansluiting uit",
			"Stuur de laadpaal-configurator",
		},
	},
	model.BranchWarmtepompen: {
		Attrs:     []string{"postcode", "huisnummer", "stroomverbruik"},
		Signature: "stroomverbruik",
		Keywords:  []string{"warmtepomp", "verwarming", "gasketel", "cv", "isolatie", "hybride"},
		Actions: []string{
			"Vraag bouwjaar en isolatiestaat van de woning uit",
			"Plan een warmteverliesberekening",
		},
	},
	model.BranchVerzekeringen: {
		Attrs:     []string{"nieuwsbrief", "reden"},
		Signature: "reden",
		Keywords:  []string{"verzekering", "polis", "dekking", "premie", "aansprakelijkheid"},
		Actions: []string{
			"Inventariseer de huidige polissen",
			"Stuur een premievergelijking",
		},
	},
}

// energyBranches are the verticals whose combined score can trigger
// the synthetic multi-vertical (Custom) result.
var energyBranches = []model.Branch{
	model.BranchThuisbatterijen,
	model.BranchZonnepanelen,
	model.BranchEnergieContracten,
}

var customActions = []string{
	"Plan een breed energieadvies-gesprek",
	"Bundel batterij, panelen en contract in een voorstel",
}

var unknownActions = []string{
	"Verzamel meer informatie over de interesse",
	"Bel de lead na voor kwalificatie",
}

// baseValueCents estimates the order value per vertical, in euro cents.
var baseValueCents = map[model.Branch]int64{
	model.BranchThuisbatterijen:   650_000,
	model.BranchZonnepanelen:      550_000,
	model.BranchEnergieContracten: 30_000,
	model.BranchLaadpalen:         180_000,
	model.BranchWarmtepompen:      900_000,
	model.BranchVerzekeringen:     45_000,
	model.BranchCustom:            400_000,
	model.BranchUnknown:           50_000,
}

// statusValueFactor weighs the base value by how far a lead is down
// the funnel.
var statusValueFactor = map[model.LeadStatus]float64{
	model.StatusNew:         0.1,
	model.StatusContacted:   0.2,
	model.StatusQualified:   0.4,
	model.StatusProposal:    0.6,
	model.StatusNegotiation: 0.8,
	model.StatusConverted:   1.0,
	model.StatusLost:        0,
}

func init() {
	// Exhaustiveness: every concrete vertical needs a profile and a
	// base value, every status a value factor.
	for _, b := range model.AllBranches() {
		if _, ok := profiles[b]; !ok {
			panic("branch: missing profile for " + string(b))
		}
		if _, ok := baseValueCents[b]; !ok {
			panic("branch: missing base value for " + string(b))
		}
	}
	for _, s := range model.AllLeadStatuses() {
		if _, ok := statusValueFactor[s]; !ok {
			panic("branch: missing value factor for " + string(s))
		}
	}
}
