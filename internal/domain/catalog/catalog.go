// Package catalog holds the fixed factions and the contest metadata of the faction points
// contest. The catalog is read-only once loaded.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cardcon-lab/backend/pkg/errorx"
)

// NumFactions is the number of competing factions of a contest.
const NumFactions = 4

// NumColors is the size of the palette of a faction.
const NumColors = 5

//go:embed catalog.toml
var defaultCatalog []byte

type Faction struct {
	ID       string   `toml:"id"`
	Name     string   `toml:"name"`
	Theme    string   `toml:"theme"`
	Colors   []string `toml:"colors"`
	Motto    string   `toml:"motto"`
	Benefits []string `toml:"benefits"`
}

type PrizeTier struct {
	Rank   int    `toml:"rank"`
	Title  string `toml:"title"`
	Reward string `toml:"reward"`
}

type BonusActivity struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Points      int64  `toml:"points"`
	Description string `toml:"description"`
}

type Contest struct {
	Name            string          `toml:"name"`
	Description     string          `toml:"description"`
	StartDate       time.Time       `toml:"start_date"`
	EndDate         time.Time       `toml:"end_date"`
	Rules           []string        `toml:"rules"`
	PointsPerDollar float64         `toml:"points_per_dollar"`
	PrizeTiers      []PrizeTier     `toml:"prize_tiers"`
	BonusActivities []BonusActivity `toml:"bonus_activities"`
}

type file struct {
	Contest  Contest   `toml:"contest"`
	Factions []Faction `toml:"factions"`
}

type Catalog struct {
	contest  Contest
	factions []Faction
	index    map[string]int
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("invalid embedded catalog: %v", err))
		}
		defaultCat = c
	})

	return defaultCat
}

// Load reads the catalog from a toml file. An empty path returns the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(b)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, err
	}

	c := &Catalog{
		contest:  f.Contest,
		factions: f.Factions,
		index:    make(map[string]int, len(f.Factions)),
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.factions) != NumFactions {
		return fmt.Errorf("expected %d factions, but got %d", NumFactions, len(c.factions))
	}

	for i, f := range c.factions {
		if f.ID == "" || f.Name == "" {
			return fmt.Errorf("faction %d must have an id and a name", i)
		}

		if _, ok := c.index[f.ID]; ok {
			return fmt.Errorf("duplicated faction id %s", f.ID)
		}

		if len(f.Colors) != NumColors {
			return fmt.Errorf("faction %s must have %d colors", f.ID, NumColors)
		}

		c.index[f.ID] = i
	}

	if c.contest.PointsPerDollar <= 0 {
		return fmt.Errorf("points per dollar must be a positive number")
	}

	if !c.contest.EndDate.IsZero() && c.contest.EndDate.Before(c.contest.StartDate) {
		return fmt.Errorf("contest end date must be after start date")
	}

	activities := map[string]bool{}
	for _, a := range c.contest.BonusActivities {
		if a.ID == "" || a.Points <= 0 {
			return fmt.Errorf("bonus activity %q must have an id and positive points", a.ID)
		}

		if activities[a.ID] {
			return fmt.Errorf("duplicated bonus activity id %s", a.ID)
		}
		activities[a.ID] = true
	}

	return nil
}

func (c *Catalog) GetByID(id string) (Faction, error) {
	i, ok := c.index[id]
	if !ok {
		return Faction{}, errorx.New(errorx.NotFound, "Not found faction %s", id)
	}

	return c.factions[i], nil
}

// GetAll returns the factions in catalog order.
func (c *Catalog) GetAll() []Faction {
	return append([]Faction(nil), c.factions...)
}

// FilterByTheme returns the factions whose theme contains s, ignoring case.
func (c *Catalog) FilterByTheme(s string) []Faction {
	s = strings.ToLower(s)
	result := []Faction{}
	for _, f := range c.factions {
		if strings.Contains(strings.ToLower(f.Theme), s) {
			result = append(result, f)
		}
	}

	return result
}

// Position returns the index of the faction in the catalog, or -1.
func (c *Catalog) Position(id string) int {
	i, ok := c.index[id]
	if !ok {
		return -1
	}

	return i
}

func (c *Catalog) Contest() Contest {
	return c.contest
}

func (c *Catalog) BonusActivity(id string) (BonusActivity, error) {
	for _, a := range c.contest.BonusActivities {
		if a.ID == id {
			return a, nil
		}
	}

	return BonusActivity{}, errorx.New(errorx.NotFound, "Not found bonus activity %s", id)
}
