// Package resolve turns timezone names into country codes. It follows links
// to canonical names and memoizes country lookups for the duration of a run.
package resolve

import (
	"tzcc/internal/config"
	"tzcc/internal/errors"
	"tzcc/internal/zoneinfo"
)

// AliasLookup maps a possibly linked zone name to its canonical name.
type AliasLookup interface {
	Canonical(name string) string
}

// CountryLookup finds the country code of a canonical zone name.
type CountryLookup interface {
	Lookup(name string) (string, bool)
}

// CountryLookupFunc adapts a function to CountryLookup.
type CountryLookupFunc func(name string) (string, bool)

// Lookup calls f(name).
func (f CountryLookupFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// ZoneTableLookup binds a zone table to a match mode.
func ZoneTableLookup(table *zoneinfo.ZoneTable, mode config.MatchMode) CountryLookup {
	return CountryLookupFunc(func(name string) (string, bool) {
		return table.Lookup(name, mode)
	})
}

// Resolution is the outcome of resolving one timezone name.
type Resolution struct {
	Input       string
	Canonical   string
	CountryCode string
	Aliased     bool
	Cached      bool
}

// Stats counts the work a Resolver has done.
type Stats struct {
	Lookups       int
	CacheHits     int
	DistinctZones int
}

// Resolver resolves zone names through an alias table and a memoized
// country lookup. It is not safe for concurrent use.
type Resolver struct {
	aliases   AliasLookup
	countries CountryLookup
	cache     map[string]string
	lookups   int
	hits      int
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver(aliases AliasLookup, countries CountryLookup) *Resolver {
	return &Resolver{
		aliases:   aliases,
		countries: countries,
		cache:     make(map[string]string),
	}
}

// Canonical returns the canonical form of name.
func (r *Resolver) Canonical(name string) string {
	if r.aliases == nil {
		return name
	}
	return r.aliases.Canonical(name)
}

// Country returns the country code for a canonical zone name. Each
// distinct name reaches the underlying lookup at most once on success;
// misses are not cached.
func (r *Resolver) Country(canonical string) (string, error) {
	code, _, err := r.LookupCountry(canonical)
	return code, err
}

// LookupCountry is Country that also reports whether the cache answered.
func (r *Resolver) LookupCountry(canonical string) (string, bool, error) {
	if code, ok := r.cache[canonical]; ok {
		r.hits++
		return code, true, nil
	}

	r.lookups++
	code, ok := r.countries.Lookup(canonical)
	if !ok {
		return "", false, errors.NewLookupError(canonical)
	}

	r.cache[canonical] = code
	return code, false, nil
}

// Resolve maps a zone name to its country code, following a link first.
func (r *Resolver) Resolve(name string) (Resolution, error) {
	res := Resolution{Input: name}
	res.Canonical = r.Canonical(name)
	res.Aliased = res.Canonical != name

	code, cached, err := r.LookupCountry(res.Canonical)
	if err != nil {
		return res, err
	}

	res.CountryCode = code
	res.Cached = cached
	return res, nil
}

// Stats returns the lookup counters gathered so far.
func (r *Resolver) Stats() Stats {
	return Stats{
		Lookups:       r.lookups,
		CacheHits:     r.hits,
		DistinctZones: len(r.cache),
	}
}
