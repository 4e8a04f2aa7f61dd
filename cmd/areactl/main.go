package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/config"
	"areasense/internal/db"
	"areasense/internal/jobs"
	"areasense/internal/route"
	"areasense/internal/store"
	"areasense/internal/tip"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const usage = `Usage: areactl <command> [args]

  import <catalog.yaml>                     upsert curated areas, briefings and events
  delete-area <area_id>                     remove an area with its content and tips
  reindex                                   queue an index rebuild on every server
  promote <handle>                          grant the moderator role
  delete-profile <handle>                   remove a profile, keeping its tips unattributed
  queue                                     list pending tips, oldest first
  decide <tip_id> <approved|rejected>       moderate a pending tip
  plan <destination> <lat> <lng> [platform] print navigation actions
  go <destination> <lat> <lng>              plan and open the first action that works`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	command, args := os.Args[1], os.Args[2:]

	// plan and go never touch the store
	switch command {
	case "plan":
		if len(args) < 3 {
			fail("Usage: areactl plan <destination> <lat> <lng> [ios|android]")
		}
		platform := cfg.RoutePlatform
		if len(args) > 3 {
			platform = args[3]
		}
		actions, err := plan(cfg, args[0], args[1], args[2], platform)
		if err != nil {
			log.Fatalf("Error planning route: %v", err)
		}
		printJSON(actions)
		return
	case "go":
		if len(args) != 3 {
			fail("Usage: areactl go <destination> <lat> <lng>")
		}
		if err := dispatch(ctx, cfg, args[0], args[1], args[2]); err != nil {
			log.Fatalf("Error opening route: %v", err)
		}
		return
	}

	st, gdb, err := store.Open(cfg.DatabaseURL, func(dsn string) (*gorm.DB, error) {
		gdb, err := db.Connect(dsn)
		if err != nil {
			return nil, err
		}
		return gdb, db.AutoMigrateAndIndexes(gdb)
	})
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	if gdb == nil {
		fmt.Println("DATABASE_URL=memory: changes are lost when areactl exits")
	}

	switch command {
	case "import":
		if len(args) != 1 {
			fail("Usage: areactl import <catalog.yaml>")
		}
		c, err := area.LoadCatalog(args[0])
		if err != nil {
			log.Fatalf("Error loading catalog: %v", err)
		}
		if err := st.ImportCatalog(ctx, c); err != nil {
			log.Fatalf("Error importing catalog: %v", err)
		}
		fmt.Printf("Imported %d areas.\n", len(c.Areas))
		if gdb != nil {
			fmt.Println("A reindex job is queued; running servers pick it up.")
		}
	case "delete-area":
		if len(args) != 1 {
			fail("Usage: areactl delete-area <area_id>")
		}
		if err := st.DeleteArea(ctx, args[0]); err != nil {
			log.Fatalf("Error deleting area: %v", err)
		}
		fmt.Printf("Deleted area %s.\n", args[0])
	case "reindex":
		if gdb == nil {
			fail("reindex needs a database; the in-memory store has no running servers to notify")
		}
		if err := (&jobs.Repo{DB: gdb}).EnqueueReindex("operator request"); err != nil {
			log.Fatalf("Error queueing reindex: %v", err)
		}
		fmt.Println("Reindex job queued.")
	case "promote":
		if len(args) != 1 {
			fail("Usage: areactl promote <handle>")
		}
		p, err := st.GetProfileByHandle(ctx, args[0])
		if err != nil {
			log.Fatalf("Error finding profile: %v", err)
		}
		if err := st.SetRole(ctx, p.ID, auth.RoleModerator); err != nil {
			log.Fatalf("Error promoting profile: %v", err)
		}
		fmt.Printf("Profile %s is now a moderator (takes effect on next login).\n", p.Handle)
	case "delete-profile":
		if len(args) != 1 {
			fail("Usage: areactl delete-profile <handle>")
		}
		p, err := st.GetProfileByHandle(ctx, args[0])
		if err != nil {
			log.Fatalf("Error finding profile: %v", err)
		}
		if err := st.DeleteProfile(ctx, p.ID); err != nil {
			log.Fatalf("Error deleting profile: %v", err)
		}
		fmt.Printf("Deleted profile %s.\n", p.Handle)
	case "queue":
		pending, err := (&tip.Queue{Repo: st}).Pending(ctx, 0)
		if err != nil {
			log.Fatalf("Error reading queue: %v", err)
		}
		for _, t := range pending {
			fmt.Printf("%d\t%s\t%s\t%s\treports=%d\t%s\n",
				t.ID, t.CreatedAt.Format("2006-01-02 15:04"), t.AreaID, t.Category, t.Reports, t.Text)
		}
	case "decide":
		if len(args) != 2 {
			fail("Usage: areactl decide <tip_id> <approved|rejected>")
		}
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fail("Invalid tip ID. Please provide an integer.")
		}
		svc := tip.NewService(st, tip.Config{
			MaxTextLength: cfg.TipMaxLength,
			ApproveKarma:  cfg.KarmaApprove,
			RejectKarma:   cfg.KarmaReject,
			VoteKarma:     cfg.KarmaVoteWeight,
			HalfLife:      cfg.RankHalfLife,
		})
		dec, err := svc.Decide(ctx, id, uuid.Nil, tip.Status(args[1]))
		if err != nil {
			log.Fatalf("Error deciding tip: %v", err)
		}
		fmt.Printf("Tip %d is %s (karma %+d).\n", dec.Tip.ID, dec.Tip.Status, dec.KarmaDelta)
	default:
		fail(usage)
	}
}

func plan(cfg config.Config, dest, latStr, lngStr, platformStr string) ([]route.Action, error) {
	origin, err := parseOrigin(latStr, lngStr)
	if err != nil {
		return nil, err
	}
	platform, err := route.ParsePlatform(platformStr)
	if err != nil {
		return nil, err
	}
	providers, err := route.ParseProviders(cfg.RouteProviders)
	if err != nil {
		return nil, err
	}
	return route.NewRouter(providers, nil).Plan(dest, origin, platform)
}

func dispatch(ctx context.Context, cfg config.Config, dest, latStr, lngStr string) error {
	actions, err := plan(cfg, dest, latStr, lngStr, cfg.RoutePlatform)
	if err != nil {
		return err
	}
	providers, _ := route.ParseProviders(cfg.RouteProviders)
	r := route.NewRouter(providers, route.NewCommandDispatcher(cfg.RouteOpener))

	out := r.Execute(ctx, actions, route.Continue())
	printJSON(out)
	return out.Err()
}

func parseOrigin(latStr, lngStr string) (area.LatLng, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return area.LatLng{}, fmt.Errorf("%w: lat %q", area.ErrInvalidCoordinate, latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return area.LatLng{}, fmt.Errorf("%w: lng %q", area.ErrInvalidCoordinate, lngStr)
	}
	return area.LatLng{Lat: lat, Lng: lng}, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(msg string) {
	fmt.Println(msg)
	os.Exit(1)
}
