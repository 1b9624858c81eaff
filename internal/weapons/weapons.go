package weapons

// Weapon is a static catalog entry. All fields are immutable after init.
type Weapon struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	RangeMin  float64 `json:"rangeMin"`
	RangeMax  float64 `json:"rangeMax"`
	Damage    int     `json:"damage"`
	APCost    int     `json:"apCost"`
	Special   string  `json:"special,omitempty"`
	AoERadius float64 `json:"aoeRadius,omitempty"` // grenade splash
	ConeAngle float64 `json:"coneAngle,omitempty"` // flamethrower cone, degrees

	Description string `json:"description"`
	Src         string `json:"src"`
}

// Special tags recognized by the combat resolver.
const (
	SpecialImmobilize = "Immobilize"
	SpecialBackAttack = "+1 if back attack"
)

// Stats is the subset of a weapon the combat resolver cares about.
type Stats struct {
	Damage  int    `json:"damage"`
	Range   Range  `json:"range"`
	Special string `json:"special,omitempty"`
	AoE     *AoE   `json:"aoe,omitempty"`
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type AoE struct {
	Radius    float64 `json:"radius,omitempty"`
	ConeAngle float64 `json:"coneAngle,omitempty"`
}

// catalog order is id order; index == ID is an invariant checked in tests.
var catalog = []Weapon{
	{
		ID:       0,
		Name:     "Net Launcher",
		RangeMin: 5,
		RangeMax: 7,
		Damage:   2,
		APCost:   1,
		Special:  SpecialImmobilize,
		Description: "A tactical net launcher (Range: 5-7m, Damage: 2) that immobilizes opponents for strategic control. " +
			"Perfect for locking down fast enemies or setting up devastating combo attacks with teammates.",
		Src: "https://robohash.org/net?set=set2&size=32x32",
	},
	{
		ID:       1,
		Name:     "Basic Gun",
		RangeMin: 1,
		RangeMax: 7,
		Damage:   3,
		APCost:   1,
		Description: "Standard-issue energy weapon with excellent range (1-7m) and reliable damage output (3). " +
			"The perfect all-rounder that excels at medium to long-range combat with consistent performance.",
		Src: "https://robohash.org/laser?set=set2&size=32x32",
	},
	{
		ID:        2,
		Name:      "Grenade",
		RangeMin:  5,
		RangeMax:  7,
		Damage:    3,
		APCost:    1,
		AoERadius: 2,
		Description: "High-explosive grenade with significant range (5-7m) that deals area damage (3) in a 2m radius. " +
			"Ideal for controlling choke points and dealing damage to multiple clustered enemies.",
		Src: "https://robohash.org/missile?set=set2&size=32x32",
	},
	{
		ID:       3,
		Name:     "Saw Blade",
		RangeMin: 0,
		RangeMax: 1,
		Damage:   4,
		APCost:   1,
		Special:  SpecialBackAttack,
		Description: "Devastating close-combat weapon (Range: 0-1m) with high base damage (4). " +
			"Gains +1 bonus damage when attacking from behind, making it lethal for ambush tactics and aggressive playstyles.",
		Src: "https://robohash.org/sword?set=set2&size=32x32",
	},
	{
		ID:        4,
		Name:      "Flamethrower",
		RangeMin:  1,
		RangeMax:  3,
		Damage:    3,
		APCost:    1,
		ConeAngle: 60,
		Description: "Mid-range weapon (1-3m) that deals damage (3) in a 60-degree cone. " +
			"Excellent for area denial and hitting multiple targets. Perfect for controlling corridors and close-quarters combat.",
		Src: "https://robohash.org/flamethrower?set=set2&size=32x32",
	},
}

// All returns every weapon in id order. Callers must not mutate the result.
func All() []Weapon {
	return catalog
}

// Get returns the weapon with the given id.
func Get(id int) (Weapon, bool) {
	if !IsValid(id) {
		return Weapon{}, false
	}
	return catalog[id], true
}

// IsValid reports whether id names a catalog weapon.
func IsValid(id int) bool {
	return id >= 0 && id < len(catalog)
}

// GetStats returns the combat-relevant view of a weapon.
func GetStats(id int) (Stats, bool) {
	w, ok := Get(id)
	if !ok {
		return Stats{}, false
	}
	s := Stats{
		Damage:  w.Damage,
		Range:   Range{Min: w.RangeMin, Max: w.RangeMax},
		Special: w.Special,
	}
	if w.AoERadius > 0 || w.ConeAngle > 0 {
		s.AoE = &AoE{Radius: w.AoERadius, ConeAngle: w.ConeAngle}
	}
	return s, true
}
