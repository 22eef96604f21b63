package service

import (
	"testing"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

const (
	catTools      = 1
	catPowerTools = 2
	catDrills     = 3
	catBooks      = 10
	catNovels     = 11

	member = 100
	owner  = 200
	other  = 300

	itemDrill   = 1001
	itemSaw     = 1002
	itemLamp    = 1003 // not verified
	itemNovel   = 2001
	itemHammer  = 5001 // member's, active in tools
	itemWrench  = 5002 // member's, inactive in tools
	itemAtlas   = 5003 // member's, not verified in books
	itemPliers  = 6001 // other's, active in tools
	placeLib    = 1
	placeGym    = 2
	day         = 24 * time.Hour
	toolsFamily = "Tools"
)

type fixture struct {
	store    *fakeStore
	attempts *fakeAttempts
	tree     *CategoryTree
	alloc    *ContributionAllocator
	res      *ReservationGeneric
	items    *ItemGeneric
	now      time.Time
}

// newFixture builds two category trees:
//
//	Tools(1) > Power tools(2) > Drills(3)
//	Books(10) > Novels(11)
func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := newFakeStore()
	s.addCategory(catTools, toolsFamily, 0)
	s.addCategory(catPowerTools, "Power tools", catTools)
	s.addCategory(catDrills, "Drills", catPowerTools)
	s.addCategory(catBooks, "Books", 0)
	s.addCategory(catNovels, "Novels", catBooks)

	s.addItem(model.Item{ID: itemDrill, Name: "Drill", Status: model.ItemReservable, OwnerID: owner, CategoryID: catDrills, OutDuration: 3 * day}, placeLib)
	s.addItem(model.Item{ID: itemSaw, Name: "Saw", Status: model.ItemReservable, OwnerID: owner, CategoryID: catPowerTools, OutDuration: 2 * day}, placeLib, placeGym)
	s.addItem(model.Item{ID: itemLamp, Name: "Lamp", Status: model.ItemNotVerified, OwnerID: owner, CategoryID: catTools, OutDuration: 2 * day}, placeLib)
	s.addItem(model.Item{ID: itemNovel, Name: "Novel", Status: model.ItemReservable, OwnerID: owner, CategoryID: catNovels, OutDuration: 7 * day}, placeGym)

	s.addItem(model.Item{ID: itemHammer, Name: "Hammer", Status: model.ItemReservable, OwnerID: member, CategoryID: catTools, OutDuration: day}, placeLib)
	s.addItem(model.Item{ID: itemWrench, Name: "Wrench", Status: model.ItemReservable, OwnerID: member, CategoryID: catPowerTools, OutDuration: day}, placeLib)
	s.addItem(model.Item{ID: itemAtlas, Name: "Atlas", Status: model.ItemNotVerified, OwnerID: member, CategoryID: catNovels, OutDuration: day}, placeGym)
	s.addItem(model.Item{ID: itemPliers, Name: "Pliers", Status: model.ItemReservable, OwnerID: other, CategoryID: catDrills, OutDuration: day}, placeGym)

	s.contributions[contribKey{member, itemHammer}] = true
	s.contributions[contribKey{member, itemWrench}] = false
	s.contributions[contribKey{member, itemAtlas}] = false
	s.contributions[contribKey{other, itemPliers}] = true

	coordinator := &database.Coordinator{Beginner: s, MaxAttempts: 3, BaseDelay: time.Millisecond}
	tree := &CategoryTree{Categories: fakeCategories{s}}
	alloc := &ContributionAllocator{Tree: tree, Contributions: fakeContributions{s}}
	attempts := &fakeAttempts{}
	now := time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC)

	return &fixture{
		store:    s,
		attempts: attempts,
		tree:     tree,
		alloc:    alloc,
		now:      now,
		res: &ReservationGeneric{
			Coordinator:   coordinator,
			Items:         fakeItems{s},
			Reservations:  fakeReservations{s},
			Attempts:      attempts,
			Bans:          &BanValidator{Tree: tree, Bans: fakeBans{s}},
			Overlap:       &OverlapChecker{Items: fakeItems{s}, Reservations: fakeReservations{s}},
			Contributions: alloc,
			Now:           func() time.Time { return now },
		},
		items: &ItemGeneric{
			Coordinator:   coordinator,
			Items:         fakeItems{s},
			Contributions: alloc,
		},
	}
}

func (f *fixture) line(itemID, placeID int64, start time.Time, length time.Duration) model.ReservationLine {
	return model.ReservationLine{ItemID: itemID, PickupPlaceID: placeID, StartAt: start, DueAt: start.Add(length)}
}

// checkInvariants asserts that no member has two active contributions in one tree
// and that no item is double-booked.
func (f *fixture) checkInvariants(t *testing.T) {
	t.Helper()

	for _, root := range []int64{catTools, catBooks} {
		family := []int64{root}
		for id, c := range f.store.categories {
			if c.ParentID != nil {
				if f.rootID(id) == root {
					family = append(family, id)
				}
			}
		}

		for _, m := range []int64{member, owner, other} {
			if n := f.store.activeIn(m, family); n > 1 {
				t.Errorf("member %d has %d active contributions under root %d", m, n, root)
			}
		}
	}

	ds := f.store.liveDetails()
	for i := range ds {
		for j := i + 1; j < len(ds); j++ {
			if ds[i].ItemID == ds[j].ItemID && model.Overlaps(ds[i].StartAt, ds[i].DueAt, ds[j].StartAt, ds[j].DueAt) {
				t.Errorf("item %d is double-booked by details %d and %d", ds[i].ItemID, ds[i].ID, ds[j].ID)
			}
		}
	}
}

func (f *fixture) rootID(id int64) int64 {
	for {
		c := f.store.categories[id]
		if c.ParentID == nil {
			return c.ID
		}
		id = *c.ParentID
	}
}
