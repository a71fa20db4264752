package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fincal/internal/calendar"
	"fincal/internal/config"
	"fincal/internal/core"
	"fincal/internal/docstore"
	"fincal/internal/docstore/memory"
	"fincal/internal/docstore/sqlite"
	"fincal/internal/events"
	"fincal/internal/export/sheets"
	"fincal/internal/log"
	"fincal/internal/recurring"
	"fincal/internal/schedule"
	"fincal/internal/services"
)

func main() {
	exportMonth := flag.Bool("export", false, "export the current month's report to Google Sheets on startup")
	flag.Parse()

	// .env is optional; real env always wins.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auth, snaps, cleanup, err := buildBackend(cfg)
	if err != nil {
		logger.Error("failed to initialize backend",
			log.FieldBackend, cfg.Backend, log.FieldError, err)
		os.Exit(1)
	}
	defer cleanup()
	logger.Info("backend initialized", log.FieldBackend, cfg.Backend)

	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The engine runs fine without a publisher.
			logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err)
		} else {
			defer eventsClient.Close()
		}
	}

	matcher, err := recurring.GetMatcher(cfg.MatchStrategy)
	if err != nil {
		logger.Error("invalid match strategy", log.FieldError, err)
		os.Exit(1)
	}

	sess := services.NewSession(services.Config{
		Auth:         auth,
		Snapshots:    snaps,
		Events:       eventsClient,
		Scheduler:    schedule.NewTimer(),
		Logger:       logger,
		SaveDebounce: cfg.SaveDebounce,
		Matcher:      matcher,
	})
	defer sess.Close()

	sess.Start(ctx)
	identity, err := signIn(ctx, sess, auth)
	if err != nil {
		logger.Error("sign-in failed", log.FieldError, err, "guidance", docstore.Guidance(err))
		os.Exit(1)
	}
	logger.Info("signed in", log.FieldUserID, identity.UID, "email", identity.Email)

	printDashboard(sess)

	if *exportMonth {
		if err := runExport(ctx, sess); err != nil {
			logger.Error("month export failed",
				log.FieldOperation, log.OpExport, log.FieldError, err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if eventsClient != nil {
		g.Go(func() error {
			return eventsClient.ConsumeSnapshotSaved(ctx, func(msg *events.SnapshotSavedMessage) error {
				logger.Info("snapshot saved",
					log.FieldUserID, msg.UserID, "saved_at", msg.SavedAt)
				return nil
			})
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	logger.Info("engine running, press Ctrl+C to stop")
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("runtime error", log.FieldError, err)
	}

	// Pending mutations must not be lost to the debounce window.
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sess.Flush(flushCtx)
	logger.Info("engine stopped", log.FieldOperation, log.OpShutdown)
}

func buildBackend(cfg *config.Config) (docstore.Authenticator, docstore.SnapshotStore, func(), error) {
	switch cfg.Backend {
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		auth := sqlite.NewAuthenticator(repo, cfg.UserEmail, cfg.UserPassword, cfg.UserDisplayName)
		return auth, repo, func() { repo.Close() }, nil
	default:
		store := memory.New(docstore.Identity{
			UID:         core.NewID(),
			Email:       cfg.UserEmail,
			DisplayName: cfg.UserDisplayName,
		})
		return store, store, func() {}, nil
	}
}

// signIn resumes an existing session when the backend supports it,
// falling back to a fresh sign-in. A resumed session is already bound
// through the identity subscription.
func signIn(ctx context.Context, sess *services.Session, auth docstore.Authenticator) (docstore.Identity, error) {
	if r, ok := auth.(*sqlite.Authenticator); ok && r.Resume(ctx) {
		if id, ok := r.Current(); ok {
			return id, nil
		}
	}
	return sess.Login(ctx)
}

func printDashboard(sess *services.Session) {
	year, month := sess.VisibleMonth()
	stats := sess.MonthlyStats()
	savings := sess.Savings()

	fmt.Printf("\n  %d-%02d\n\n", year, month+1)
	fmt.Print(renderMonthGrid(year, month, time.Now(), sess.DayBalance))
	fmt.Println()
	fmt.Printf("  income   %s\n", core.FormatAmount(stats.TotalIncome))
	fmt.Printf("  expense  %s\n", core.FormatAmount(stats.TotalExpense))
	fmt.Printf("  balance  %s\n", core.FormatAmount(sess.MonthlyBalance()))
	fmt.Printf("  savings  %s\n", core.FormatAmount(savings.Balance))
	if pct, ok := savings.Progress(); ok {
		fmt.Printf("  goal     %s (%.1f%%)\n", core.FormatAmount(savings.Goal), pct)
	}
	fmt.Printf("  total    %s\n\n", core.FormatAmount(sess.CombinedTotal()))
}

// renderMonthGrid lays the month out in week rows, Sunday first. Days
// carrying a nonzero balance get a marker; today is bracketed.
func renderMonthGrid(year, month int, today time.Time, balance func(core.DayKey) float64) string {
	days, start := calendar.MonthGrid(year, month)
	todayKey := core.DayKeyFromTime(today)

	var b strings.Builder
	b.WriteString("  Su  Mo  Tu  We  Th  Fr  Sa\n")
	b.WriteString(strings.Repeat("    ", start))
	for day := 1; day <= days; day++ {
		key := core.NewDayKey(year, month, day)
		switch {
		case key == todayKey:
			fmt.Fprintf(&b, "[%2d]", day)
		case balance(key) != 0:
			fmt.Fprintf(&b, "%3d*", day)
		default:
			fmt.Fprintf(&b, "%3d ", day)
		}
		if (start+day)%7 == 0 {
			b.WriteByte('\n')
		}
	}
	if (start+days)%7 != 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

func runExport(ctx context.Context, sess *services.Session) error {
	exporter, err := sheets.NewFromEnv(ctx)
	if err != nil {
		return err
	}
	year, month := sess.VisibleMonth()
	return exporter.ExportMonth(ctx, year, month, sess.MonthlyStats(), sess.MonthlyBalance())
}
