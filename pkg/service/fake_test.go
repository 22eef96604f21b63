package service

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type contribKey struct {
	member, item int64
}

// fakeState is an in-memory copy of the relational schema.
type fakeState struct {
	categories    map[int64]model.Category
	items         map[int64]model.Item
	places        map[int64][]model.PickupPlace
	contributions map[contribKey]bool
	bans          []model.CategoryBan
	reservations  map[int64]model.Reservation
	details       []model.ReservationDetail
	nextID        int64
}

func (s fakeState) clone() fakeState {
	c := fakeState{
		categories:    maps.Clone(s.categories),
		items:         maps.Clone(s.items),
		places:        make(map[int64][]model.PickupPlace, len(s.places)),
		contributions: maps.Clone(s.contributions),
		bans:          slices.Clone(s.bans),
		reservations:  maps.Clone(s.reservations),
		details:       slices.Clone(s.details),
		nextID:        s.nextID,
	}

	for id, ps := range s.places {
		c.places[id] = slices.Clone(ps)
	}

	return c
}

// fakeStore serializes transactions with a mutex held from begin to commit or rollback.
// Rollback and failed commits restore the snapshot taken at begin.
type fakeStore struct {
	mu sync.Mutex
	fakeState

	commitErrs []error
	begins     int
	commits    int
	isolations []sql.IsolationLevel
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		fakeState: fakeState{
			categories:    make(map[int64]model.Category),
			items:         make(map[int64]model.Item),
			places:        make(map[int64][]model.PickupPlace),
			contributions: make(map[contribKey]bool),
			reservations:  make(map[int64]model.Reservation),
			nextID:        1,
		},
	}
}

func (s *fakeStore) BeginTx(_ context.Context, opts *sql.TxOptions) (database.Tx, error) {
	s.mu.Lock()
	s.begins++
	if opts != nil {
		s.isolations = append(s.isolations, opts.Isolation)
	}
	return &fakeTx{s: s, snapshot: s.fakeState.clone()}, nil
}

type fakeTx struct {
	database.Querier // never called, fake repositories ignore the handle

	s        *fakeStore
	snapshot fakeState
}

func (t *fakeTx) Commit() error {
	defer t.s.mu.Unlock()

	if len(t.s.commitErrs) > 0 {
		err := t.s.commitErrs[0]
		t.s.commitErrs = t.s.commitErrs[1:]
		if err != nil {
			t.s.fakeState = t.snapshot
			return err
		}
	}

	t.s.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.s.fakeState = t.snapshot
	t.s.mu.Unlock()
	return nil
}

func (s *fakeStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) addCategory(id int64, name string, parent int64) {
	c := model.Category{ID: id, Name: name}
	if parent != 0 {
		c.ParentID = &parent
	}
	s.categories[id] = c
}

func (s *fakeStore) addItem(item model.Item, placeIDs ...int64) {
	s.items[item.ID] = item
	for _, id := range placeIDs {
		s.places[item.ID] = append(s.places[item.ID], model.PickupPlace{ID: id, Name: fmt.Sprintf("Place %d", id)})
	}
}

// activeIn counts member's active contributions among items of the given categories.
func (s *fakeStore) activeIn(memberID int64, family []int64) int {
	n := 0
	for k, active := range s.contributions {
		if k.member == memberID && active && slices.Contains(family, s.items[k.item].CategoryID) {
			n++
		}
	}
	return n
}

// liveDetails returns non-deleted details of non-deleted reservations.
func (s *fakeStore) liveDetails() []model.ReservationDetail {
	var ds []model.ReservationDetail
	for _, d := range s.details {
		if !d.IsDeleted && !s.reservations[d.ReservationID].IsDeleted {
			ds = append(ds, d)
		}
	}
	return ds
}

type fakeCategories struct{ s *fakeStore }

func (r fakeCategories) Get(_ context.Context, _ database.Querier, id int64) (model.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return model.Category{}, fmt.Errorf("category %d: %w", id, database.ErrNotFound)
	}
	return c, nil
}

func (r fakeCategories) Children(_ context.Context, _ database.Querier, parentIDs []int64) ([]int64, error) {
	var ids []int64
	for _, id := range slices.Sorted(maps.Keys(r.s.categories)) {
		c := r.s.categories[id]
		if c.ParentID != nil && slices.Contains(parentIDs, *c.ParentID) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeItems struct{ s *fakeStore }

func (r fakeItems) Get(_ context.Context, _ database.Querier, id int64) (model.Item, error) {
	item, ok := r.s.items[id]
	if !ok {
		return model.Item{}, fmt.Errorf("item %d: %w", id, database.ErrNotFound)
	}
	return item, nil
}

func (r fakeItems) PickupPlaces(_ context.Context, _ database.Querier, itemID int64) ([]model.PickupPlace, error) {
	return slices.Clone(r.s.places[itemID]), nil
}

func (r fakeItems) SetStatus(_ context.Context, _ database.Querier, itemID int64, status model.ItemStatus) error {
	item, ok := r.s.items[itemID]
	if !ok {
		return database.ErrNotFound
	}
	item.Status = status
	r.s.items[itemID] = item
	return nil
}

func (r fakeItems) SetCategory(_ context.Context, _ database.Querier, itemID, categoryID int64) error {
	item, ok := r.s.items[itemID]
	if !ok {
		return database.ErrNotFound
	}
	item.CategoryID = categoryID
	r.s.items[itemID] = item
	return nil
}

type fakeContributions struct{ s *fakeStore }

func (r fakeContributions) contribution(k contribKey) model.Contribution {
	item := r.s.items[k.item]
	return model.Contribution{
		MemberID:       k.member,
		ItemID:         k.item,
		IsActive:       r.s.contributions[k],
		ItemStatus:     item.Status,
		ItemCategoryID: item.CategoryID,
	}
}

func (r fakeContributions) ForMember(_ context.Context, _ database.Querier, memberID int64, categoryIDs []int64) ([]model.Contribution, error) {
	var cs []model.Contribution
	for k := range r.s.contributions {
		if k.member == memberID && slices.Contains(categoryIDs, r.s.items[k.item].CategoryID) {
			cs = append(cs, r.contribution(k))
		}
	}

	slices.SortFunc(cs, func(a, b model.Contribution) int { return int(a.ItemID - b.ItemID) })
	return cs, nil
}

func (r fakeContributions) Get(_ context.Context, _ database.Querier, memberID, itemID int64) (model.Contribution, error) {
	k := contribKey{memberID, itemID}
	if _, ok := r.s.contributions[k]; !ok {
		return model.Contribution{}, database.ErrNotFound
	}
	return r.contribution(k), nil
}

func (r fakeContributions) SetActive(_ context.Context, _ database.Querier, memberID, itemID int64, active bool) error {
	k := contribKey{memberID, itemID}
	if _, ok := r.s.contributions[k]; !ok {
		return database.ErrNotFound
	}
	r.s.contributions[k] = active
	return nil
}

type fakeBans struct{ s *fakeStore }

func (r fakeBans) Active(_ context.Context, _ database.Querier, memberID int64, categoryIDs []int64) ([]model.CategoryBan, error) {
	var bans []model.CategoryBan
	for _, b := range r.s.bans {
		if b.MemberID == memberID && !b.IsDeleted && slices.Contains(categoryIDs, b.CategoryID) {
			b.CategoryName = r.s.categories[b.CategoryID].Name
			bans = append(bans, b)
		}
	}
	return bans, nil
}

type fakeReservations struct{ s *fakeStore }

func (r fakeReservations) Create(_ context.Context, _ database.Querier, memberID int64, createdAt time.Time) (int64, error) {
	id := r.s.id()
	r.s.reservations[id] = model.Reservation{Base: model.Base{ID: id, CreatedAt: createdAt}, MemberID: memberID}
	return id, nil
}

func (r fakeReservations) AddDetail(_ context.Context, _ database.Querier, d *model.ReservationDetail) error {
	d.ID = r.s.id()
	r.s.details = append(r.s.details, *d)
	return nil
}

func (r fakeReservations) ItemDetails(_ context.Context, _ database.Querier, itemID int64, from, to time.Time) ([]model.ReservationDetail, error) {
	var ds []model.ReservationDetail
	for _, d := range r.s.liveDetails() {
		if d.ItemID == itemID && d.StartAt.Before(to) && d.DueAt.After(from) {
			ds = append(ds, d)
		}
	}
	return ds, nil
}

func (r fakeReservations) Get(_ context.Context, _ database.Querier, id int64) (model.Reservation, error) {
	res, ok := r.s.reservations[id]
	if !ok {
		return model.Reservation{}, fmt.Errorf("reservation %d: %w", id, database.ErrNotFound)
	}

	for _, d := range r.s.details {
		if d.ReservationID == id {
			res.Details = append(res.Details, d)
		}
	}
	return res, nil
}

func (r fakeReservations) Delete(_ context.Context, _ database.Querier, id int64) error {
	res, ok := r.s.reservations[id]
	if !ok || res.IsDeleted {
		return database.ErrNotFound
	}

	res.IsDeleted = true
	r.s.reservations[id] = res

	for i := range r.s.details {
		if r.s.details[i].ReservationID == id {
			r.s.details[i].IsDeleted = true
		}
	}
	return nil
}

type fakeAttempts struct {
	mu       sync.Mutex
	attempts []model.ReservationAttempt
}

func (r *fakeAttempts) Add(_ context.Context, as ...model.ReservationAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, as...)
	return nil
}

func (r *fakeAttempts) all() []model.ReservationAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.attempts)
}
