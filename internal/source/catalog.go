package source

// City is an ordered group of adapters for one city
type City struct {
	Name     string
	Adapters []Adapter
}

// Catalog is the fixed, ordered set of cities and sources for a run.
// It is immutable once built; Cities returns a copy.
type Catalog struct {
	cities []City
}

// NewCatalog creates a catalog processed in the given order
func NewCatalog(cities ...City) Catalog {
	c := Catalog{cities: make([]City, len(cities))}
	for i, city := range cities {
		adapters := make([]Adapter, len(city.Adapters))
		copy(adapters, city.Adapters)
		c.cities[i] = City{Name: city.Name, Adapters: adapters}
	}
	return c
}

// Cities returns the cities in processing order
func (c Catalog) Cities() []City {
	out := make([]City, len(c.cities))
	for i, city := range c.cities {
		adapters := make([]Adapter, len(city.Adapters))
		copy(adapters, city.Adapters)
		out[i] = City{Name: city.Name, Adapters: adapters}
	}
	return out
}

// Len returns the number of adapters across all cities
func (c Catalog) Len() int {
	n := 0
	for _, city := range c.cities {
		n += len(city.Adapters)
	}
	return n
}
