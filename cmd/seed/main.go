package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/config"
	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

var cfg = config.New()

// words used for generating catalog names
var (
	roots      = []string{"Tools", "Books", "Sports", "Kitchen", "Electronics", "Garden", "Games", "Camping"}
	subs       = []string{"Basic", "Advanced", "Outdoor", "Kids", "Vintage"}
	adjectives = []string{"Sturdy", "Compact", "Classic", "Portable", "Heavy", "Light", "Old", "New"}
	nouns      = []string{"Drill", "Tent", "Ladder", "Novel", "Racket", "Mixer", "Console", "Lantern", "Saw", "Kayak"}
	places     = []string{"Main library", "Student center", "Gym lobby", "Dorm A", "Dorm B"}
)

func main() {
	t0 := time.Now()
	defer func() { log.Printf("Catalog generated. Elapsed: %s", time.Since(t0)) }()

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	ctx := context.Background()
	err = database.WithTx(ctx, database.SQLBeginner{DB: db}, nil, func(q database.Querier) error {
		return generate(ctx, q)
	})
	if err != nil {
		log.Fatalf("### Can't generate catalog: %v", err)
	}
}

func generate(ctx context.Context, q database.Querier) error {
	memberIDs := make([]int64, 0, cfg.SeedMembers)
	for i := range cfg.SeedMembers {
		role := model.RoleMember
		if i == 0 {
			role = model.RoleStaff
		}

		var id int64
		err := q.QueryRowContext(ctx,
			`insert into members (name, email, role) values ($1, $2, $3) returning id`,
			fmt.Sprintf("member%d", i+1), fmt.Sprintf("member%d@example.com", i+1), role,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("can't insert member: %w", err)
		}

		memberIDs = append(memberIDs, id)
	}
	log.Printf("Inserted %d members\n", len(memberIDs))

	// categoryRoot maps every category to its root
	categoryRoot := make(map[int64]int64)
	categoryIDs := make([]int64, 0)
	for i := range min(cfg.SeedCategories, len(roots)) {
		rootID, err := insertCategory(ctx, q, roots[i], nil)
		if err != nil {
			return err
		}

		categoryRoot[rootID] = rootID
		categoryIDs = append(categoryIDs, rootID)

		for _, sub := range subs {
			id, err := insertCategory(ctx, q, sub+" "+roots[i], &rootID)
			if err != nil {
				return err
			}

			categoryRoot[id] = rootID
			categoryIDs = append(categoryIDs, id)
		}
	}
	log.Printf("Inserted %d categories\n", len(categoryIDs))

	placeIDs := make([]int64, 0, len(places))
	for _, name := range places {
		var id int64
		if err := q.QueryRowContext(ctx, `insert into pickup_places (name) values ($1) returning id`, name).Scan(&id); err != nil {
			return fmt.Errorf("can't insert pickup place: %w", err)
		}

		placeIDs = append(placeIDs, id)
	}

	type memberRoot struct{ member, root int64 }
	activated := make(map[memberRoot]bool)

	for i := range cfg.SeedItems {
		ownerID := memberIDs[rand.Intn(len(memberIDs))]
		categoryID := categoryIDs[rand.Intn(len(categoryIDs))]

		status := model.ItemReservable
		if rand.Intn(5) == 0 {
			status = model.ItemNotVerified
		}

		var itemID int64
		err := q.QueryRowContext(ctx,
			`insert into items (name, status, owner_id, category_id, out_duration) values ($1, $2, $3, $4, $5) returning id`,
			adjectives[rand.Intn(len(adjectives))]+" "+nouns[rand.Intn(len(nouns))], status, ownerID, categoryID, 1+rand.Intn(14),
		).Scan(&itemID)
		if err != nil {
			return fmt.Errorf("can't insert item: %w", err)
		}

		for _, p := range rand.Perm(len(placeIDs))[:1+rand.Intn(len(placeIDs))] {
			_, err := q.ExecContext(ctx, `insert into item_pickup_places (item_id, pickup_place_id) values ($1, $2)`, itemID, placeIDs[p])
			if err != nil {
				return fmt.Errorf("can't insert item pickup place: %w", err)
			}
		}

		// first verified item of a member in a tree becomes the active contribution
		key := memberRoot{ownerID, categoryRoot[categoryID]}
		active := status.Verified() && !activated[key]
		if active {
			activated[key] = true
		}

		_, err = q.ExecContext(ctx, `insert into contributions (member_id, item_id, is_active) values ($1, $2, $3)`, ownerID, itemID, active)
		if err != nil {
			return fmt.Errorf("can't insert contribution: %w", err)
		}

		if (i+1)%100 == 0 {
			log.Printf("Inserted %d items\n", i+1)
		}
	}

	return nil
}

func insertCategory(ctx context.Context, q database.Querier, name string, parentID *int64) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, `insert into categories (name, parent_id) values ($1, $2) returning id`, name, parentID).Scan(&id); err != nil {
		return 0, fmt.Errorf("can't insert category %q: %w", name, err)
	}
	return id, nil
}
