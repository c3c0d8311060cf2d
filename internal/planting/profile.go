package planting

const (
	CategoryVegetable       = "vegetable"
	CategoryHerb            = "herb"
	CategoryFlowerAnnual    = "flower_annual"
	CategoryFlowerPerennial = "flower_perennial"
	CategoryFlowerBulb      = "flower_bulb"
	CategoryFruitTree       = "fruit_tree"
	CategoryFruitBush       = "fruit_bush"
	CategoryTreeOrnamental  = "tree_ornamental"
	CategoryShrubOrnamental = "shrub_ornamental"
	CategoryClimber         = "climber"
	CategoryGrass           = "grass"
	CategoryGroundcover     = "groundcover"
	CategoryFern            = "fern"
	CategorySucculent       = "succulent"

	DefaultCategory = CategoryVegetable
)

// SlotType names a planting action in a timing profile.
type SlotType string

const (
	SlotIndoor    SlotType = "indoor"
	SlotOutdoor   SlotType = "outdoor"
	SlotDirectSow SlotType = "directSow"
	SlotSpring    SlotType = "spring"
	SlotAutumn    SlotType = "autumn"
)

// Slot is one row of a category's timing profile. A nil Weeks means the slot
// is not frost-relative and is dated by a calendar rule instead.
type Slot struct {
	Type  SlotType
	Weeks *int
	Label string
}

func (s Slot) FrostRelative() bool {
	return s.Weeks != nil
}

func weeks(n int) *int {
	return &n
}

var categoryOrder = []string{
	CategoryVegetable,
	CategoryHerb,
	CategoryFlowerAnnual,
	CategoryFlowerPerennial,
	CategoryFlowerBulb,
	CategoryFruitTree,
	CategoryFruitBush,
	CategoryTreeOrnamental,
	CategoryShrubOrnamental,
	CategoryClimber,
	CategoryGrass,
	CategoryGroundcover,
	CategoryFern,
	CategorySucculent,
}

// Week offsets are relative to the last spring frost.
var timingProfiles = map[string][]Slot{
	CategoryVegetable: {
		{Type: SlotIndoor, Weeks: weeks(-8), Label: "Wysiew do rozsady"},
		{Type: SlotDirectSow, Weeks: weeks(0), Label: "Siew bezpośredni do gruntu"},
		{Type: SlotOutdoor, Weeks: weeks(2), Label: "Sadzenie rozsady do gruntu"},
	},
	CategoryHerb: {
		{Type: SlotIndoor, Weeks: weeks(-6), Label: "Wysiew do doniczek"},
		{Type: SlotDirectSow, Weeks: weeks(1), Label: "Siew bezpośredni do gruntu"},
		{Type: SlotOutdoor, Weeks: weeks(2), Label: "Sadzenie do gruntu"},
	},
	CategoryFlowerAnnual: {
		{Type: SlotIndoor, Weeks: weeks(-8), Label: "Wysiew do rozsady"},
		{Type: SlotDirectSow, Weeks: weeks(1), Label: "Siew bezpośredni do gruntu"},
		{Type: SlotOutdoor, Weeks: weeks(2), Label: "Sadzenie rozsady na rabatę"},
	},
	CategoryFlowerPerennial: {
		{Type: SlotIndoor, Weeks: weeks(-10), Label: "Wysiew do rozsady"},
		{Type: SlotOutdoor, Weeks: weeks(2), Label: "Sadzenie na rabatę"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategoryFlowerBulb: {
		{Type: SlotSpring, Label: "Sadzenie cebul kwitnących wiosną"},
		{Type: SlotOutdoor, Weeks: weeks(1), Label: "Sadzenie bulw kwitnących latem"},
	},
	CategoryFruitTree: {
		{Type: SlotSpring, Weeks: weeks(-3), Label: "Sadzenie wiosenne"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategoryFruitBush: {
		{Type: SlotSpring, Weeks: weeks(-3), Label: "Sadzenie wiosenne"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategoryTreeOrnamental: {
		{Type: SlotSpring, Weeks: weeks(-2), Label: "Sadzenie wiosenne"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategoryShrubOrnamental: {
		{Type: SlotSpring, Weeks: weeks(-2), Label: "Sadzenie wiosenne"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategoryClimber: {
		{Type: SlotSpring, Weeks: weeks(0), Label: "Sadzenie przy podporze"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategoryGrass: {
		{Type: SlotDirectSow, Weeks: weeks(2), Label: "Siew trawy"},
		{Type: SlotAutumn, Label: "Siew jesienny"},
	},
	CategoryGroundcover: {
		{Type: SlotOutdoor, Weeks: weeks(1), Label: "Sadzenie do gruntu"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategoryFern: {
		{Type: SlotOutdoor, Weeks: weeks(1), Label: "Sadzenie w cieniu"},
		{Type: SlotAutumn, Label: "Sadzenie jesienne"},
	},
	CategorySucculent: {
		{Type: SlotOutdoor, Weeks: weeks(3), Label: "Wystawienie na zewnątrz"},
	},
}

// Categories returns the known plant categories in display order.
func Categories() []string {
	out := make([]string, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

func IsKnownCategory(category string) bool {
	_, ok := timingProfiles[category]
	return ok
}

// ResolveCategory maps an empty or unknown category to DefaultCategory.
func ResolveCategory(category string) string {
	if IsKnownCategory(category) {
		return category
	}
	return DefaultCategory
}

// ProfileFor returns a copy of the timing profile for category, falling back
// to the vegetable profile.
func ProfileFor(category string) []Slot {
	src := timingProfiles[ResolveCategory(category)]
	out := make([]Slot, len(src))
	for i, s := range src {
		out[i] = s
		if s.Weeks != nil {
			out[i].Weeks = weeks(*s.Weeks)
		}
	}
	return out
}
