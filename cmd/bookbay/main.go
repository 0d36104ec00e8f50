// Command bookbay searches a listing portal for a property by address,
// inspects its showing times, and books a viewing slot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/use-agent/bookbay/antidetect"
	"github.com/use-agent/bookbay/booking"
	"github.com/use-agent/bookbay/browser"
	"github.com/use-agent/bookbay/captcha"
	"github.com/use-agent/bookbay/config"
	"github.com/use-agent/bookbay/models"
	"github.com/use-agent/bookbay/parser"
	"github.com/use-agent/bookbay/search"
	"github.com/use-agent/bookbay/storage"
)

const usage = `Usage: bookbay <command> [flags]

Commands:
  search          find a property by address and list its showing times
  book            book a viewing slot for a stored property
  list-properties print stored properties
  list-bookings   print booking attempts
  export          write one table as CSV to stdout
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	initLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "search":
		err = runSearch(ctx, cfg, os.Args[2:])
	case "book":
		err = runBook(ctx, cfg, os.Args[2:])
	case "list-properties":
		err = runListProperties(ctx, cfg)
	case "list-bookings":
		err = runListBookings(ctx, cfg, os.Args[2:])
	case "export":
		err = runExport(ctx, cfg, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func initLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
	slog.SetDefault(slog.New(handler))
}

func runSearch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	address := fs.String("address", "", "free-text property address (required)")
	fs.Parse(args)
	if *address == "" {
		return models.NewOpError(models.ErrCodeInvalidInput, "-address is required", nil)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := browser.NewSession(cfg.Browser, cfg.Pacing)
	if err != nil {
		return err
	}
	defer session.Close()

	// With a reused profile the portal session may already be live; the
	// probe is informational and search proceeds either way.
	if cfg.Browser.ProfilePath != "" {
		if err := session.Driver().Navigate(ctx, cfg.Site.BaseURL); err == nil {
			if session.CheckLoggedIn() {
				slog.Info("authenticated session detected")
			} else {
				slog.Warn("no login indicator found, continuing unauthenticated")
			}
		}
	}

	orch := search.New(session.Driver(), cfg.Site)
	prop, resultCount, err := orch.FindByAddress(ctx, *address)

	success := err == nil && prop != nil
	if histErr := store.SaveSearchHistory(ctx, *address, resultCount, success); histErr != nil {
		slog.Warn("failed to record search history", "error", histErr)
	}
	if err != nil {
		return err
	}
	if prop == nil {
		fmt.Printf("No exact match for %q (%d results seen)\n", *address, resultCount)
		return nil
	}

	if err := store.SaveProperty(ctx, prop); err != nil {
		return err
	}
	schedule := buildSchedule(prop.ShowingTimes)
	if err := store.SaveShowingTimes(ctx, prop.PropertyID, schedule); err != nil {
		return err
	}

	printProperty(prop)
	printSchedule(schedule)
	return nil
}

func runBook(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	propertyID := fs.String("property", "", "stored property id (required)")
	date := fs.String("date", "", "viewing date, YYYY-MM-DD (required)")
	timeValue := fs.String("time", "", "viewing time, HH:MM 24h (required)")
	name := fs.String("name", "", "contact name (required)")
	email := fs.String("email", "", "contact email (required)")
	phone := fs.String("phone", "", "contact phone")
	message := fs.String("message", "", "message to the listing agent")
	fs.Parse(args)
	if *propertyID == "" || *date == "" || *timeValue == "" || *name == "" || *email == "" {
		return models.NewOpError(models.ErrCodeInvalidInput,
			"-property, -date, -time, -name and -email are required", nil)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	prop, err := store.GetProperty(ctx, *propertyID)
	if err != nil {
		return err
	}
	if prop == nil {
		return models.NewOpError(models.ErrCodeInvalidInput,
			fmt.Sprintf("property %q not found, run search first", *propertyID), nil)
	}

	session, err := browser.NewSession(cfg.Browser, cfg.Pacing)
	if err != nil {
		return err
	}
	defer session.Close()

	httpClient := antidetect.New(cfg.Browser.ProxyPool, cfg.Pacing)
	solver := captcha.NewSolver(cfg.Captcha, httpClient)
	mediator := captcha.NewMediator(solver, cfg.Captcha.SolveTimeout)

	req := models.NewBookingRequest(*propertyID, *date, *timeValue, models.ContactInfo{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Message: *message,
	})

	machine := booking.NewMachine(session.Driver(), mediator, cfg.Site)
	outcome := machine.Book(ctx, prop, req)

	if err := store.SaveBooking(ctx, req); err != nil {
		slog.Warn("failed to save booking", "booking_id", req.ID, "error", err)
	}

	if outcome.Success {
		fmt.Printf("Booking %s confirmed: %s at %s on %s\n", req.ID, prop.Address, req.Time, req.Date)
		return nil
	}
	if outcome.Err != nil {
		slog.Warn("booking not confirmed", "booking_id", req.ID, "error", outcome.Err)
	}
	fmt.Printf("Booking %s not confirmed (state %s): %s\n", req.ID, outcome.State, outcome.Reason)
	return nil
}

func runListProperties(ctx context.Context, cfg *config.Config) error {
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	props, err := store.ListProperties(ctx)
	if err != nil {
		return err
	}
	if len(props) == 0 {
		fmt.Println("No stored properties.")
		return nil
	}
	for _, p := range props {
		fmt.Printf("%-20s %-50s %s\n", p.PropertyID, p.Address, p.Price)
	}
	return nil
}

func runListBookings(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list-bookings", flag.ExitOnError)
	propertyID := fs.String("property", "", "only bookings for this property")
	fs.Parse(args)

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	bookings, err := store.ListBookings(ctx)
	if err != nil {
		return err
	}
	if *propertyID != "" {
		filtered := bookings[:0]
		for _, b := range bookings {
			if b.PropertyID == *propertyID {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}
	if len(bookings) == 0 {
		fmt.Println("No bookings.")
		return nil
	}
	for _, b := range bookings {
		fmt.Printf("%-36s %-20s %s %s  %-10s %s\n",
			b.ID, b.PropertyID, b.Date, b.Time, b.Status, b.ContactName)
	}
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	table := fs.String("table", "properties", "table to export: properties, showing_times, bookings, search_history")
	fs.Parse(args)

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.ExportCSV(ctx, *table, os.Stdout)
}

// buildSchedule roots the 7-day viewing schedule at today.
func buildSchedule(slots []models.TimeSlot) []models.DaySchedule {
	return parser.WeekScheduleFromSlots(slots, time.Now())
}

func printProperty(p *models.PropertyRecord) {
	fmt.Printf("Property %s\n", p.PropertyID)
	fmt.Printf("  Address: %s\n", p.Address)
	if p.Price != "" {
		fmt.Printf("  Price:   %s\n", p.Price)
	}
	if p.Bedrooms != "" || p.Bathrooms != "" {
		fmt.Printf("  Beds/Baths: %s / %s\n", p.Bedrooms, p.Bathrooms)
	}
	if p.SquareFeet != "" {
		fmt.Printf("  Sqft:    %s\n", p.SquareFeet)
	}
	if p.URL != "" {
		fmt.Printf("  URL:     %s\n", p.URL)
	}
}

func printSchedule(schedule []models.DaySchedule) {
	fmt.Println("Showing times (next 7 days):")
	for _, day := range schedule {
		fmt.Printf("  %s %s:", day.Date, day.DayName)
		for i, slot := range day.TimeSlots {
			if i == 5 {
				fmt.Printf(" ... (%d total)", len(day.TimeSlots))
				break
			}
			fmt.Printf(" %s", slot.Display)
		}
		fmt.Println()
	}
}
