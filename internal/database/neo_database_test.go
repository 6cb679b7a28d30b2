package database

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"

	"neo_explorer/internal/filters"
	"neo_explorer/internal/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildTestDatabase() (*NEODatabase, []*models.NearEarthObject, []*models.CloseApproach) {
	neos := []*models.NearEarthObject{
		models.NewNearEarthObject("433", "Eros", "16.84", "N"),
		models.NewNearEarthObject("2020 AB", "", "0.3", "Y"),
		models.NewNearEarthObject("99942", "Apophis", "", "Y"),
	}
	approaches := []*models.CloseApproach{
		{Designation: "433", Time: day(1900, time.January, 1).Add(11 * time.Minute), Distance: 0.31, Velocity: 3.72},
		{Designation: "2020 AB", Time: day(2021, time.March, 1).Add(6 * time.Hour), Distance: 0.05, Velocity: 12.0},
		{Designation: "ghost", Time: day(2021, time.March, 1), Distance: 0.01, Velocity: 30.0},
		{Designation: "99942", Time: day(2029, time.April, 13).Add(21 * time.Hour), Distance: 0.00025, Velocity: 7.42},
		{Designation: "433", Time: day(1931, time.January, 30), Distance: 0.17, Velocity: 5.9},
	}
	return NewNEODatabase(neos, approaches), neos, approaches
}

func collect(db *NEODatabase, fs []filters.Filter) []*models.CloseApproach {
	return slices.Collect(db.Query(fs))
}

func TestNEODatabase_GetByDesignation(t *testing.T) {
	db, neos, _ := buildTestDatabase()

	for _, neo := range neos {
		got, ok := db.GetByDesignation(neo.Designation)
		require.True(t, ok, neo.Designation)
		assert.Same(t, neo, got)
	}

	got, ok := db.GetByDesignation("does-not-exist")
	assert.False(t, ok)
	assert.Nil(t, got)

	_, ok = db.GetByDesignation("2020 ab")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestNEODatabase_GetByName(t *testing.T) {
	db, neos, _ := buildTestDatabase()

	eros, ok := db.GetByName("Eros")
	require.True(t, ok)
	assert.Same(t, neos[0], eros)

	byDes, ok := db.GetByDesignation("99942")
	require.True(t, ok)
	apophis, ok := db.GetByName("Apophis")
	require.True(t, ok)
	assert.Same(t, byDes, apophis)

	_, ok = db.GetByName("")
	assert.False(t, ok, "empty name never matches")

	_, ok = db.GetByName("eros")
	assert.False(t, ok)

	_, ok = db.GetByName("Nobody")
	assert.False(t, ok)
}

func TestNEODatabase_Linking(t *testing.T) {
	db, neos, approaches := buildTestDatabase()

	assert.Equal(t, 3, db.NEOCount())
	assert.Equal(t, 5, db.ApproachCount())

	eros := neos[0]
	require.Len(t, eros.Approaches, 2)
	assert.Same(t, approaches[0], eros.Approaches[0])
	assert.Same(t, approaches[4], eros.Approaches[1], "input order is preserved")

	for _, ca := range approaches {
		if ca.Designation == "ghost" {
			assert.Nil(t, ca.NEO)
			continue
		}
		require.NotNil(t, ca.NEO)
		assert.Equal(t, ca.Designation, ca.NEO.Designation)

		count := 0
		for _, linked := range ca.NEO.Approaches {
			if linked == ca {
				count++
			}
		}
		assert.Equal(t, 1, count)
	}

	for _, neo := range neos {
		for _, ca := range neo.Approaches {
			assert.NotEqual(t, "ghost", ca.Designation)
		}
	}
}

func TestNEODatabase_DuplicateDesignationLastWins(t *testing.T) {
	first := models.NewNearEarthObject("433", "Old Eros", "1", "N")
	second := models.NewNearEarthObject("433", "Eros", "16.84", "N")
	ca := &models.CloseApproach{Designation: "433", Time: day(2000, time.January, 1)}

	db := NewNEODatabase([]*models.NearEarthObject{first, second}, []*models.CloseApproach{ca})

	got, ok := db.GetByDesignation("433")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Same(t, second, ca.NEO)
	assert.Empty(t, first.Approaches)

	// every name resolves to the instance held by the designation index
	old, ok := db.GetByName("Old Eros")
	require.True(t, ok)
	assert.Same(t, second, old)
}

func TestNEODatabase_QueryNoFilters(t *testing.T) {
	db, _, approaches := buildTestDatabase()

	assert.Equal(t, approaches, collect(db, nil))
	assert.Equal(t, approaches, collect(db, []filters.Filter{}))
}

func TestNEODatabase_Query(t *testing.T) {
	db, _, approaches := buildTestDatabase()

	ptr := func(f float64) *float64 { return &f }
	yes, no := true, false
	march1 := day(2021, time.March, 1)

	tests := []struct {
		name string
		opts filters.Options
		want []*models.CloseApproach
	}{
		{
			name: "max distance",
			opts: filters.Options{DistanceMax: ptr(0.1)},
			want: []*models.CloseApproach{approaches[1], approaches[2], approaches[3]},
		},
		{
			name: "exact date includes orphan",
			opts: filters.Options{Date: &march1},
			want: []*models.CloseApproach{approaches[1], approaches[2]},
		},
		{
			name: "hazardous excludes orphan",
			opts: filters.Options{Hazardous: &yes},
			want: []*models.CloseApproach{approaches[1], approaches[3]},
		},
		{
			name: "not hazardous",
			opts: filters.Options{Hazardous: &no},
			want: []*models.CloseApproach{approaches[0], approaches[4]},
		},
		{
			name: "diameter range skips unknown diameter",
			opts: filters.Options{DiameterMin: ptr(0.1), DiameterMax: ptr(20)},
			want: []*models.CloseApproach{approaches[0], approaches[1], approaches[4]},
		},
		{
			name: "date range with velocity",
			opts: filters.Options{StartDate: ptr2(day(1900, time.January, 1)), EndDate: ptr2(day(1999, time.December, 31)), VelocityMin: ptr(4)},
			want: []*models.CloseApproach{approaches[4]},
		},
		{
			name: "zero bound is a real bound",
			opts: filters.Options{DistanceMin: ptr(0)},
			want: approaches,
		},
		{
			name: "contradictory bounds",
			opts: filters.Options{VelocityMin: ptr(10), VelocityMax: ptr(5)},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(db, filters.Create(tt.opts))
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr2(t time.Time) *time.Time { return &t }

func TestNEODatabase_QuerySingleApproachExample(t *testing.T) {
	neo := models.NewNearEarthObject("2020AB", "", "0.3", "Y")
	ca := &models.CloseApproach{Designation: "2020AB", Time: day(2021, time.March, 1), Distance: 0.05, Velocity: 12.0}
	db := NewNEODatabase([]*models.NearEarthObject{neo}, []*models.CloseApproach{ca})

	maxDist := 0.1
	yes, no := true, false

	got := collect(db, filters.Create(filters.Options{DistanceMax: &maxDist, Hazardous: &yes}))
	require.Len(t, got, 1)
	assert.Same(t, ca, got[0])

	got = collect(db, filters.Create(filters.Options{DistanceMax: &maxDist, Hazardous: &no}))
	assert.Empty(t, got)
}

func TestNEODatabase_QueryWithLimitStopsEarly(t *testing.T) {
	db, _, approaches := buildTestDatabase()

	got := slices.Collect(filters.Limit(db.Query(nil), 2))
	assert.Equal(t, approaches[:2], got)

	got = slices.Collect(filters.Limit(db.Query(nil), 0))
	assert.Equal(t, approaches, got)
}

func TestNEODatabase_QueryUnsupportedCriterionPanics(t *testing.T) {
	db, _, _ := buildTestDatabase()

	assert.PanicsWithError(t, (&filters.UnsupportedCriterionError{}).Error(), func() {
		collect(db, []filters.Filter{{}})
	})
}

type dataset struct {
	neos       []*models.NearEarthObject
	approaches []*models.CloseApproach
}

// genDataset builds NEOs designated after their index and approaches pointing at
// indexes in [0, n+2], so some approaches are orphans.
func genDataset() gopter.Gen {
	return gen.IntRange(0, 20).FlatMap(func(v interface{}) gopter.Gen {
		n := v.(int)
		return gopter.CombineGens(
			gen.SliceOfN(n, gen.Float64Range(0, 5)),
			gen.SliceOfN(n, gen.Bool()),
			gen.SliceOf(gen.IntRange(0, n+2)),
			gen.SliceOf(gen.Float64Range(0, 1)),
		).Map(func(vals []interface{}) dataset {
			diameters := vals[0].([]float64)
			hazards := vals[1].([]bool)
			refs := vals[2].([]int)
			distances := vals[3].([]float64)

			var ds dataset
			for i := 0; i < n; i++ {
				name := ""
				if i%2 == 0 {
					name = fmt.Sprintf("name-%d", i)
				}
				diameter := diameters[i]
				if i%5 == 4 {
					diameter = math.NaN()
				}
				ds.neos = append(ds.neos, &models.NearEarthObject{
					Designation: fmt.Sprintf("des-%d", i),
					Name:        name,
					Diameter:    diameter,
					Hazardous:   hazards[i],
				})
			}
			for i, ref := range refs {
				dist := 0.5
				if i < len(distances) {
					dist = distances[i]
				}
				ds.approaches = append(ds.approaches, &models.CloseApproach{
					Designation: fmt.Sprintf("des-%d", ref),
					Time:        day(2000, time.January, 1).Add(time.Duration(i) * time.Hour),
					Distance:    dist,
					Velocity:    float64(i),
				})
			}
			return ds
		})
	}, reflect.TypeOf(dataset{}))
}

func TestNEODatabase_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("indexes resolve to the loaded instance", prop.ForAll(
		func(ds dataset) bool {
			db := NewNEODatabase(ds.neos, ds.approaches)
			for _, neo := range ds.neos {
				got, ok := db.GetByDesignation(neo.Designation)
				if !ok || got != neo {
					return false
				}
				if neo.Name == "" {
					continue
				}
				byName, ok := db.GetByName(neo.Name)
				if !ok || byName != got {
					return false
				}
			}
			_, ok := db.GetByName("")
			return !ok
		},
		genDataset(),
	))

	properties.Property("every approach is linked exactly when its key resolves", prop.ForAll(
		func(ds dataset) bool {
			db := NewNEODatabase(ds.neos, ds.approaches)
			linked := 0
			for _, ca := range ds.approaches {
				neo, ok := db.GetByDesignation(ca.Designation)
				if ok != (ca.NEO != nil) || (ok && neo != ca.NEO) {
					return false
				}
				if ok {
					linked++
				}
			}
			total := 0
			for _, neo := range ds.neos {
				total += len(neo.Approaches)
			}
			return total == linked
		},
		genDataset(),
	))

	properties.Property("query without filters yields everything in load order", prop.ForAll(
		func(ds dataset) bool {
			db := NewNEODatabase(ds.neos, ds.approaches)
			return slices.Equal(collect(db, nil), ds.approaches)
		},
		genDataset(),
	))

	properties.Property("diameter bounds hold for every yielded approach", prop.ForAll(
		func(ds dataset, lo, hi float64) bool {
			db := NewNEODatabase(ds.neos, ds.approaches)
			fs := filters.Create(filters.Options{DiameterMin: &lo, DiameterMax: &hi})

			got := collect(db, fs)
			for _, ca := range got {
				if ca.NEO == nil || ca.NEO.Diameter < lo || ca.NEO.Diameter > hi {
					return false
				}
			}

			want := 0
			for _, ca := range ds.approaches {
				if filters.MatchAll(fs, ca) {
					want++
				}
			}
			return len(got) == want
		},
		genDataset(),
		gen.Float64Range(0, 2.5),
		gen.Float64Range(2.5, 5),
	))

	properties.Property("not hazardous yields only safe objects; unset yields both", prop.ForAll(
		func(ds dataset) bool {
			db := NewNEODatabase(ds.neos, ds.approaches)
			no := false
			for _, ca := range collect(db, filters.Create(filters.Options{Hazardous: &no})) {
				if ca.NEO == nil || ca.NEO.Hazardous {
					return false
				}
			}
			return len(collect(db, filters.Create(filters.Options{}))) == len(ds.approaches)
		},
		genDataset(),
	))

	properties.TestingRun(t)
}
