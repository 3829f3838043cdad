package nations

import (
	"math/rand"
	"strings"

	"github.com/talgya/hexforge/internal/world"
)

// Name parts per culture. Each culture keeps its own flavour so neighbours of
// the same culture read as related.
var (
	namePrefixes = map[world.Culture][]string{
		world.CultureWestern:  {"Aver", "Bel", "Cael", "Dor", "Eld", "Gal", "Lor", "Mer", "Rav", "Val"},
		world.CultureNorthern: {"Bjor", "Frey", "Hald", "Jarn", "Kold", "Norr", "Skar", "Thor", "Ulf", "Vald"},
		world.CultureSouthern: {"Alc", "Cor", "Esp", "Lus", "Mar", "Orr", "Sal", "Ter", "Tor", "Vel"},
		world.CultureEastern:  {"Han", "Jin", "Kai", "Lian", "Ming", "Qin", "Shen", "Tai", "Wei", "Zhou"},
		world.CultureIsland:   {"Ahu", "Kalo", "Lani", "Maui", "Nalu", "Oka", "Pele", "Tai", "Vai", "Wai"},
		world.CultureAncient:  {"Ash", "Ekh", "Kar", "Mem", "Nek", "Osi", "Sep", "Tha", "Ur", "Zer"},
		world.CultureMystical: {"Aeth", "Cyn", "Ith", "Lum", "Myr", "Nyx", "Ori", "Syl", "Vey", "Zeph"},
	}
	nameSuffixes = map[world.Culture][]string{
		world.CultureWestern:  {"ia", "land", "mark", "mont", "wick", "shire", "gard", "ton"},
		world.CultureNorthern: {"heim", "vik", "gard", "fjord", "berg", "mark", "land", "stad"},
		world.CultureSouthern: {"ia", "ora", "ana", "esa", "ia", "ona", "ero", "illa"},
		world.CultureEastern:  {"an", "ang", "ai", "ei", "ou", "un", "ia", "ing"},
		world.CultureIsland:   {"a", "ea", "i", "oa", "u", "ani", "olu", "iki"},
		world.CultureAncient:  {"et", "ar", "is", "ut", "ekh", "ur", "ia", "on"},
		world.CultureMystical: {"ara", "eth", "ion", "yss", "ael", "ith", "ia", "or"},
	}
	houseSuffixes = []string{"ford", "wood", "crest", "vale", "helm", "ridge", "wyn", "holt", "mere", "brand"}
	givenNames    = []string{
		"Aldric", "Beren", "Cassia", "Darius", "Elara", "Fenris", "Galen", "Helena",
		"Isolde", "Jorund", "Kaelen", "Liora", "Magnus", "Nerys", "Orin", "Perrin",
		"Quinn", "Rowena", "Soren", "Talia", "Ulric", "Vesna", "Wren", "Yorick",
	}
	mottoSubjects = []string{"Iron", "Faith", "Gold", "Storm", "Stone", "Flame", "Tide", "Dawn", "Oath", "Crown"}
	mottoVerbs    = []string{"Endures", "Prevails", "Remembers", "Rises", "Holds", "Provides", "Watches", "Conquers"}
)

func pick(rng *rand.Rand, parts []string) string {
	return parts[rng.Intn(len(parts))]
}

func partsFor(table map[world.Culture][]string, c world.Culture) []string {
	if parts, ok := table[c]; ok {
		return parts
	}
	return table[world.CultureWestern]
}

// NationName builds a nation name from culture-flavoured syllables.
func NationName(rng *rand.Rand, c world.Culture) string {
	return pick(rng, partsFor(namePrefixes, c)) + pick(rng, partsFor(nameSuffixes, c))
}

// HouseName builds a dynasty name.
func HouseName(rng *rand.Rand, c world.Culture) string {
	return pick(rng, partsFor(namePrefixes, c)) + pick(rng, houseSuffixes)
}

// RulerName picks a given name for a head of state.
func RulerName(rng *rand.Rand) string {
	return pick(rng, givenNames)
}

// Motto builds a house motto such as "Iron Endures".
func Motto(rng *rand.Rand) string {
	return pick(rng, mottoSubjects) + " " + pick(rng, mottoVerbs)
}

// Adjective derives the demonym-style adjective of a nation name.
func Adjective(name string) string {
	switch {
	case strings.HasSuffix(name, "ia"):
		return name[:len(name)-2] + "ian"
	case strings.HasSuffix(name, "land"):
		return name[:len(name)-4] + "ic"
	case strings.HasSuffix(name, "burg"), strings.HasSuffix(name, "berg"):
		return name[:len(name)-4] + "ian"
	case strings.HasSuffix(name, "a"):
		return name + "n"
	default:
		return name + "ian"
	}
}

// romanNumerals names duplicate nations: Valia, Valia II, Valia III...
var romanNumerals = []string{"", " II", " III", " IV", " V", " VI", " VII", " VIII", " IX", " X"}

// ensureUniqueNames renames later duplicates so every nation name is unique.
func ensureUniqueNames(nations []Nation) {
	seen := make(map[string]int)
	for i := range nations {
		base := nations[i].Name
		n := seen[base]
		seen[base] = n + 1
		if n == 0 {
			continue
		}
		if n < len(romanNumerals) {
			nations[i].Name = base + romanNumerals[n]
		} else {
			nations[i].Name = base + " " + strings.Repeat("I", n+1)
		}
	}
}
