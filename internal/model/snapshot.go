package model

import (
	"fmt"
	"sort"
	"sync"
)

// Snapshot provides thread-safe access to one ingested model state. It
// indexes every entity kind for O(1) lookup by id and maintains the derived
// cross-reference indices. Mutations go through ApplyDynamic/ApplyStatic
// (used only by the change tracker); everything else is read-only.
type Snapshot struct {
	mu        sync.RWMutex
	worldSize int

	dynamics     map[string]*DynamicZone
	dynamicOrder []string
	statics      map[string]*StaticZone
	staticOrder  []string
	configs      map[int]*ConfigMapping
	configOrder  []int
	categories   map[string]*Category
	catOrder     []string

	healths map[string]float64

	configToZones        map[int][]string
	categoryToConfigs    map[string][]int
	classnameToCategories map[string][]string
}

// NewSnapshot creates a Snapshot from ingested entities, preserving
// declaration order. Duplicate ids keep the first declaration, matching the
// lowest-id-wins authority rule consumed by the renderer.
//
// Precondition: worldSize must be positive.
// Postcondition: returns a fully indexed Snapshot or a non-nil error.
func NewSnapshot(
	worldSize int,
	dynamics []*DynamicZone,
	statics []*StaticZone,
	configs []*ConfigMapping,
	categories []*Category,
) (*Snapshot, error) {
	if worldSize <= 0 {
		return nil, fmt.Errorf("world size must be positive, got %d", worldSize)
	}

	s := &Snapshot{
		worldSize:  worldSize,
		dynamics:   make(map[string]*DynamicZone, len(dynamics)),
		statics:    make(map[string]*StaticZone, len(statics)),
		configs:    make(map[int]*ConfigMapping, len(configs)),
		categories: make(map[string]*Category, len(categories)),
	}

	for _, z := range dynamics {
		if _, exists := s.dynamics[z.ID]; exists {
			continue
		}
		if z.Index < 1 || z.Index > DynamicSlots {
			return nil, fmt.Errorf("dynamic zone %s: slot index out of series 1..%d", z.ID, DynamicSlots)
		}
		s.dynamics[z.ID] = z
		s.dynamicOrder = append(s.dynamicOrder, z.ID)
	}
	for _, z := range statics {
		if _, exists := s.statics[z.ID]; exists {
			continue
		}
		if z.Index < 1 || z.Index > StaticSlots {
			return nil, fmt.Errorf("static zone %s: slot index out of series 1..%d", z.ID, StaticSlots)
		}
		s.statics[z.ID] = z
		s.staticOrder = append(s.staticOrder, z.ID)
	}
	for _, c := range configs {
		if _, exists := s.configs[c.Number]; exists {
			continue
		}
		s.configs[c.Number] = c
		s.configOrder = append(s.configOrder, c.Number)
	}
	for _, c := range categories {
		if _, exists := s.categories[c.Name]; exists {
			continue
		}
		s.categories[c.Name] = c
		s.catOrder = append(s.catOrder, c.Name)
	}

	s.rebuildIndices()
	return s, nil
}

// WorldSize returns the configured world extent in game coordinates.
func (s *Snapshot) WorldSize() int { return s.worldSize }

// SetHealths attaches the optional zombie health records (classname to
// health value). Passing nil clears them.
func (s *Snapshot) SetHealths(h map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healths = h
}

// Health returns the health value for a classname, if loaded.
func (s *Snapshot) Health(classname string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.healths[classname]
	return v, ok
}

// HasHealthData reports whether health records were loaded.
func (s *Snapshot) HasHealthData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.healths) > 0
}

// DynamicZone returns the dynamic zone with the given id.
//
// Postcondition: returns the zone, or an error wrapping ErrNotFound.
func (s *Snapshot) DynamicZone(id string) (*DynamicZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.dynamics[id]
	if !ok {
		return nil, fmt.Errorf("dynamic zone %s: %w", id, ErrNotFound)
	}
	return z, nil
}

// StaticZone returns the static zone with the given id.
//
// Postcondition: returns the zone, or an error wrapping ErrNotFound.
func (s *Snapshot) StaticZone(id string) (*StaticZone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	z, ok := s.statics[id]
	if !ok {
		return nil, fmt.Errorf("static zone %s: %w", id, ErrNotFound)
	}
	return z, nil
}

// HasDynamic reports whether a dynamic zone with the given id exists.
func (s *Snapshot) HasDynamic(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dynamics[id]
	return ok
}

// Config returns the config mapping with the given number.
//
// Postcondition: returns the mapping, or an error wrapping ErrNotFound.
func (s *Snapshot) Config(number int) (*ConfigMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.configs[number]
	if !ok {
		return nil, fmt.Errorf("config %d: %w", number, ErrNotFound)
	}
	return c, nil
}

// Category returns the category definition with the given name.
//
// Postcondition: returns the category, or an error wrapping ErrNotFound.
func (s *Snapshot) Category(name string) (*Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[name]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return c, nil
}

// Dynamics enumerates dynamic zones in declaration order.
func (s *Snapshot) Dynamics() []*DynamicZone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*DynamicZone, 0, len(s.dynamicOrder))
	for _, id := range s.dynamicOrder {
		out = append(out, s.dynamics[id])
	}
	return out
}

// Statics enumerates static zones in declaration order.
func (s *Snapshot) Statics() []*StaticZone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*StaticZone, 0, len(s.staticOrder))
	for _, id := range s.staticOrder {
		out = append(out, s.statics[id])
	}
	return out
}

// Configs enumerates config mappings in declaration order.
func (s *Snapshot) Configs() []*ConfigMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ConfigMapping, 0, len(s.configOrder))
	for _, n := range s.configOrder {
		out = append(out, s.configs[n])
	}
	return out
}

// Categories enumerates category definitions in declaration order.
func (s *Snapshot) Categories() []*Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Category, 0, len(s.catOrder))
	for _, n := range s.catOrder {
		out = append(out, s.categories[n])
	}
	return out
}

// ZonesForConfig returns the ids of all zones (both kinds) referencing the
// given config number.
func (s *Snapshot) ZonesForConfig(number int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.configToZones[number]...)
}

// ConfigsForCategory returns the config numbers whose slots reference the
// given category name.
func (s *Snapshot) ConfigsForCategory(name string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.categoryToConfigs[name]...)
}

// CategoriesForClassname returns the category names containing the given
// zombie classname.
func (s *Snapshot) CategoriesForClassname(classname string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.classnameToCategories[classname]...)
}

// OccupiedDynamicCount returns the number of dynamic zones with nonzero
// config.
func (s *Snapshot) OccupiedDynamicCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, z := range s.dynamics {
		if z.Occupied() {
			n++
		}
	}
	return n
}

// NextFreeSlot returns the id of the lowest-numbered dynamic slot with
// config = 0.
//
// Postcondition: returns (id, true), or ("", false) when every declared slot
// is occupied.
func (s *Snapshot) NextFreeSlot() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := 0
	for _, z := range s.dynamics {
		if z.Occupied() {
			continue
		}
		if best == 0 || z.Index < best {
			best = z.Index
		}
	}
	if best == 0 {
		return "", false
	}
	return DynamicID(best), true
}

// Findings reports every unresolved cross-entity reference: zones whose
// nonzero config has no mapping, and config slots naming an unknown
// category. Dangling references are never fatal.
func (s *Snapshot) Findings() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Finding
	for _, id := range s.dynamicOrder {
		z := s.dynamics[id]
		if z.Config != 0 {
			if _, ok := s.configs[z.Config]; !ok {
				out = append(out, Finding{Kind: FindingUnresolvedConfig, ZoneID: id, ConfigNumber: z.Config})
			}
		}
	}
	for _, id := range s.staticOrder {
		z := s.statics[id]
		if z.Config != 0 {
			if _, ok := s.configs[z.Config]; !ok {
				out = append(out, Finding{Kind: FindingUnresolvedConfig, ZoneID: id, ConfigNumber: z.Config})
			}
		}
	}
	for _, n := range s.configOrder {
		for _, cat := range s.configs[n].Categories() {
			if _, ok := s.categories[cat]; !ok {
				out = append(out, Finding{Kind: FindingUnresolvedCategory, ConfigNumber: n, Category: cat})
			}
		}
	}
	return out
}

// ValidateRect checks the geometry invariants for a dynamic zone rectangle:
// corners must not invert (xUL < xLR, zUL > zLR) and must lie within
// [0, worldSize]. The snapshot never clamps; clamping is caller policy.
//
// Postcondition: returns nil, or an error wrapping ErrInvalidGeometry.
func (s *Snapshot) ValidateRect(r Rect) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validateRectLocked(r)
}

// DynamicMutation describes a validated change to a dynamic zone. Nil fields
// are left untouched.
type DynamicMutation struct {
	Config  *int
	Comment *string
	Rect    *Rect
}

// ApplyDynamic atomically applies a mutation to a dynamic zone. The zone id
// and slot index are never changed. On any validation failure the model is
// left untouched.
//
// Precondition: called only by the change tracker on commit.
// Postcondition: returns nil and the zone reflects the mutation, or an error
// wrapping ErrNotFound or ErrInvalidGeometry.
func (s *Snapshot) ApplyDynamic(id string, mut DynamicMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	z, ok := s.dynamics[id]
	if !ok {
		return fmt.Errorf("dynamic zone %s: %w", id, ErrNotFound)
	}
	if mut.Config != nil && *mut.Config < 0 {
		return fmt.Errorf("dynamic zone %s: config must be >= 0, got %d", id, *mut.Config)
	}
	if mut.Rect != nil {
		if err := s.validateRectLocked(*mut.Rect); err != nil {
			return fmt.Errorf("dynamic zone %s: %w", id, err)
		}
	}

	if mut.Config != nil {
		z.Config = *mut.Config
	}
	if mut.Comment != nil {
		z.Comment = *mut.Comment
	}
	if mut.Rect != nil {
		z.Rect = *mut.Rect
	}
	s.rebuildIndices()
	return nil
}

// StaticMutation describes a validated change to a static zone. Only the
// config field and comment are mutable; coordinates never move.
type StaticMutation struct {
	Config  *int
	Comment *string
}

// ApplyStatic atomically applies a mutation to a static zone.
//
// Postcondition: returns nil and the zone reflects the mutation, or an error
// wrapping ErrNotFound.
func (s *Snapshot) ApplyStatic(id string, mut StaticMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	z, ok := s.statics[id]
	if !ok {
		return fmt.Errorf("static zone %s: %w", id, ErrNotFound)
	}
	if mut.Config != nil && *mut.Config < 0 {
		return fmt.Errorf("static zone %s: config must be >= 0, got %d", id, *mut.Config)
	}

	if mut.Config != nil {
		z.Config = *mut.Config
		if len(z.Fields) > StaticConfigField {
			z.Fields[StaticConfigField] = fmt.Sprintf("%d", *mut.Config)
		}
	}
	if mut.Comment != nil {
		z.Comment = *mut.Comment
	}
	s.rebuildIndices()
	return nil
}

// validateRectLocked is ValidateRect for callers already holding the lock.
func (s *Snapshot) validateRectLocked(r Rect) error {
	if r.XUpperLeft >= r.XLowerRight {
		return fmt.Errorf("corners inverted on x axis (%d >= %d): %w", r.XUpperLeft, r.XLowerRight, ErrInvalidGeometry)
	}
	if r.ZUpperLeft <= r.ZLowerRight {
		return fmt.Errorf("corners inverted on z axis (%d <= %d): %w", r.ZUpperLeft, r.ZLowerRight, ErrInvalidGeometry)
	}
	for _, v := range []int{r.XUpperLeft, r.ZUpperLeft, r.XLowerRight, r.ZLowerRight} {
		if v < 0 || v > s.worldSize {
			return fmt.Errorf("corner %d outside world bounds [0, %d]: %w", v, s.worldSize, ErrInvalidGeometry)
		}
	}
	return nil
}

// rebuildIndices recomputes the derived cross-reference indices. Callers
// must hold the write lock (or have exclusive access during construction).
func (s *Snapshot) rebuildIndices() {
	s.configToZones = make(map[int][]string)
	s.categoryToConfigs = make(map[string][]int)
	s.classnameToCategories = make(map[string][]string)

	for _, id := range s.dynamicOrder {
		if z := s.dynamics[id]; z.Occupied() {
			s.configToZones[z.Config] = append(s.configToZones[z.Config], id)
		}
	}
	for _, id := range s.staticOrder {
		if z := s.statics[id]; z.Config != 0 {
			s.configToZones[z.Config] = append(s.configToZones[z.Config], id)
		}
	}
	for _, n := range s.configOrder {
		for _, cat := range s.configs[n].Categories() {
			s.categoryToConfigs[cat] = append(s.categoryToConfigs[cat], n)
		}
	}
	for _, name := range s.catOrder {
		seen := make(map[string]bool)
		for _, cn := range s.categories[name].Classnames {
			if cn == "" || seen[cn] {
				continue
			}
			seen[cn] = true
			s.classnameToCategories[cn] = append(s.classnameToCategories[cn], name)
		}
	}
	for _, cats := range s.classnameToCategories {
		sort.Strings(cats)
	}
}
