// Package health reads the optional zombie health data file. The file is
// structured markup keyed by classname; each classname may carry several
// time-of-day variants, of which exactly one (the day variant, falling back
// to the first listed) feeds danger classification.
package health

import (
	"encoding/xml"
	"fmt"
	"os"
)

type xmlZombieList struct {
	XMLName xml.Name    `xml:"zombie_datas"`
	Zombies []xmlZombie `xml:"zombie"`
}

type xmlZombie struct {
	Classname string      `xml:"classname,attr"`
	Healths   []xmlHealth `xml:"health"`
}

type xmlHealth struct {
	Time  string  `xml:"time,attr"`
	Value float64 `xml:"value,attr"`
}

// Parse decodes health records from XML bytes. Classnames without any
// health entry are skipped; a repeated classname keeps its first usable
// variant.
//
// Postcondition: returns a classname-to-health map, possibly empty, or a
// non-nil error on malformed XML.
func Parse(data []byte) (map[string]float64, error) {
	var list xmlZombieList
	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing health data: %w", err)
	}

	out := make(map[string]float64, len(list.Zombies))
	for _, z := range list.Zombies {
		if z.Classname == "" || len(z.Healths) == 0 {
			continue
		}
		if _, seen := out[z.Classname]; seen {
			continue
		}
		out[z.Classname] = pickVariant(z.Healths)
	}
	return out, nil
}

// Load reads and parses a health data file.
//
// Postcondition: returns the parsed map or a non-nil error; a missing file
// is an error for the caller to treat as "no health data".
func Load(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading health file %s: %w", path, err)
	}
	return Parse(data)
}

// pickVariant chooses the day variant when present, otherwise the first.
// The choice is deliberately stable so every consumer sees the same value.
func pickVariant(hs []xmlHealth) float64 {
	for _, h := range hs {
		if h.Time == "day" {
			return h.Value
		}
	}
	return hs[0].Value
}
