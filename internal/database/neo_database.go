package database

import (
	"iter"

	"neo_explorer/internal/filters"
	"neo_explorer/internal/models"
)

// NEODatabase links NEOs to their close approaches and answers lookups and queries.
// It is immutable after construction and safe for concurrent reads.
type NEODatabase struct {
	neos       []*models.NearEarthObject
	approaches []*models.CloseApproach

	byDesignation map[string]*models.NearEarthObject
	byName        map[string]*models.NearEarthObject
}

// NewNEODatabase indexes the NEOs and links each approach to its NEO.
//
// The records must not have been linked yet. They are mutated in place: every
// approach whose designation resolves gets its NEO set and is appended, in
// input order, to that NEO's Approaches. Approaches that do not resolve are
// kept with a nil NEO. A duplicated designation resolves to the last NEO
// loaded with it.
func NewNEODatabase(neos []*models.NearEarthObject, approaches []*models.CloseApproach) *NEODatabase {
	db := &NEODatabase{
		neos:          neos,
		approaches:    approaches,
		byDesignation: make(map[string]*models.NearEarthObject, len(neos)),
		byName:        make(map[string]*models.NearEarthObject),
	}

	db.indexDesignations()
	db.linkApproaches()
	db.indexNames()

	return db
}

func (db *NEODatabase) indexDesignations() {
	for _, neo := range db.neos {
		db.byDesignation[neo.Designation] = neo
	}
}

func (db *NEODatabase) linkApproaches() {
	for _, ca := range db.approaches {
		neo, ok := db.byDesignation[ca.Designation]
		if !ok {
			continue
		}
		ca.NEO = neo
		neo.Approaches = append(neo.Approaches, ca)
	}
}

// indexNames points each name at the instance held by the designation index,
// so both lookups agree even when designations were duplicated.
func (db *NEODatabase) indexNames() {
	for _, neo := range db.neos {
		if neo.Name == "" {
			continue
		}
		db.byName[neo.Name] = db.byDesignation[neo.Designation]
	}
}

// GetByDesignation returns the NEO with the exact primary designation
func (db *NEODatabase) GetByDesignation(designation string) (*models.NearEarthObject, bool) {
	neo, ok := db.byDesignation[designation]
	return neo, ok
}

// GetByName returns the NEO with the exact name. The empty name never matches.
func (db *NEODatabase) GetByName(name string) (*models.NearEarthObject, bool) {
	if name == "" {
		return nil, false
	}
	neo, ok := db.byName[name]
	return neo, ok
}

// Query yields, in load order, every approach matching all of fs.
// With no filters every approach is yielded.
func (db *NEODatabase) Query(fs []filters.Filter) iter.Seq[*models.CloseApproach] {
	return func(yield func(*models.CloseApproach) bool) {
		for _, ca := range db.approaches {
			if !filters.MatchAll(fs, ca) {
				continue
			}
			if !yield(ca) {
				return
			}
		}
	}
}

// NEOCount returns the number of distinct designations
func (db *NEODatabase) NEOCount() int {
	return len(db.byDesignation)
}

// ApproachCount returns the number of loaded approaches, linked or not
func (db *NEODatabase) ApproachCount() int {
	return len(db.approaches)
}
