package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"chatsim/internal/retention"
	"chatsim/pkg/banner"
	"chatsim/pkg/config"
	"chatsim/pkg/debug"
	"chatsim/pkg/logger"
	"chatsim/pkg/match"
	"chatsim/pkg/models"
	"chatsim/pkg/responder"
	"chatsim/pkg/store"
)

// version is set via ldflags during build/release.
var version = "dev"

func main() {
	_ = godotenv.Load(".env")
	dbVal, tblVal, cfgVal, debugAddrVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, sources, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Flags explicitly set win over env/config.
	dbPath := cfg.Storage.DBPath
	if setFlags["db"] || dbPath == "" {
		dbPath = dbVal
	}
	tablePath := cfg.Responder.TablePath
	if setFlags["responses"] || tablePath == "" {
		tablePath = tblVal
	}
	debugAddr := cfg.DebugAddr()
	if setFlags["debug-addr"] {
		debugAddr = debugAddrVal
		cfg.Debug.Enabled = true
	}

	logger.InitWithLevel(cfg.Logging.Level)

	pb, err := store.OpenPebble(dbPath)
	if err != nil {
		log.Fatalf("failed to open pebble at %s: %v", dbPath, err)
	}
	defer pb.Close()

	st := store.New(pb)
	if err := st.Load(); err != nil {
		log.Fatalf("failed to load state: %v", err)
	}
	seedRoster(st)

	tables := match.NewTableCache(tablePath)
	resp := responder.New(st, tables, responder.TimerScheduler{}, cfg.Responder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cancelRetention, err := retention.Start(ctx, st, cfg.Retention)
	if err != nil {
		log.Fatalf("failed to start retention: %v", err)
	}
	defer cancelRetention()

	shownDebug := ""
	if cfg.Debug.Enabled {
		shownDebug = debugAddr
		go func() {
			logger.Info("debug_listener_started", "addr", debugAddr)
			if err := http.ListenAndServe(debugAddr, debug.Handler(st, pb, cfg.Storage)); err != nil {
				logger.Error("debug_listener_failed", "error", err)
			}
		}()
	}

	banner.Print(dbPath, tablePath, shownDebug, sources, version)
	runConsole(ctx, st, resp)
	logger.Info("shutting_down")
}

// seedRoster installs the default contacts and the assistant conversation
// on first run, so a fresh database is immediately usable.
func seedRoster(st *store.Store) {
	if len(st.Contacts()) > 0 {
		return
	}
	contacts := []models.Contact{
		{ID: models.AssistantID, Name: "Assistant", Status: "always on", Role: models.RoleAssistant, Online: true},
		{ID: "notes", Name: "Saved Notes", Role: models.RoleNotes},
		{ID: "alex", Name: "Alex", Status: "hey there"},
		{ID: "sam", Name: "Sam"},
	}
	for _, c := range contacts {
		if err := st.AddContact(c); err != nil {
			logger.Warn("seed_contact_failed", "id", c.ID, "error", err)
		}
	}
	st.CreateDirect("Assistant", models.AssistantID)
	logger.Info("roster_seeded", "contacts", len(contacts))
}
