package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"caterpro-ai/internal/app"
	"caterpro-ai/internal/config"
	"caterpro-ai/internal/database"
	"caterpro-ai/internal/events"
	"caterpro-ai/internal/generate"
	"caterpro-ai/internal/llm"
	"caterpro-ai/internal/menu"
	"caterpro-ai/internal/metrics"
	"caterpro-ai/internal/share"
	"caterpro-ai/internal/store"
	"caterpro-ai/internal/subscription"
	"caterpro-ai/internal/suppliers"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	if closer, ok := geminiClient.(llm.Closer); ok {
		defer closer.Close()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	bus := events.NewBus()
	stateStore, err := store.New(cfg.StatePath, bus, logger)
	if err != nil {
		log.Fatalf("Failed to initialize state store: %v", err)
	}

	bus.Subscribe(events.TopicUpgradePrompt, func(payload any) {
		fmt.Printf("🔒 Upgrade required to unlock: %v\n", payload)
	})

	subs := subscription.NewManager(stateStore.Load().Subscription, stateStore, bus)
	menus := menu.NewRepository(db.SQL)

	application := app.NewApp(
		generate.NewGenerator(geminiClient),
		menus,
		generate.NewHistoryRepository(db.SQL),
		metrics.NewStore(db.SQL),
		subs,
		stateStore,
		share.NewService(db.SQL, menus, cfg.ShareSigningKey, cfg.ShareBaseURL),
		suppliers.NewFinder(geminiClient, cfg.SupplierDirectoryURL),
		logger,
	)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(ctx, application, cfg, os.Args[2:])
	case "menus":
		runMenus(ctx, application)
	case "delete":
		runDelete(ctx, application, os.Args[2:])
	case "history":
		runHistory(ctx, application, os.Args[2:])
	case "share":
		runShare(ctx, application, os.Args[2:])
	case "plan":
		runPlan(application, os.Args[2:])
	case "usage":
		runUsage(application, os.Args[2:])
	case "cleanup":
		runCleanup(application, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, application *app.App, cfg *config.Config, args []string) {
	genCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	event := genCmd.String("event", "", "Event type (required)")
	guests := genCmd.String("guests", "", "Guest count range, e.g. 51-100 (required)")
	budget := genCmd.String("budget", "$$", "Budget level: $, $$, $$$ or $$$$")
	style := genCmd.String("style", "Buffet", "Service style")
	cuisine := genCmd.String("cuisine", "Any", "Cuisine, or Any")
	dietary := genCmd.String("dietary", "", "Comma-separated dietary restrictions")
	hook := genCmd.String("hook", "", "Optional business strategy hook")
	genCmd.Parse(args)

	if *event == "" || *guests == "" {
		genCmd.Usage()
		os.Exit(1)
	}

	req := generate.Request{
		EventType:    *event,
		GuestCount:   *guests,
		BudgetLevel:  *budget,
		ServiceStyle: *style,
		Cuisine:      *cuisine,
		Currency:     cfg.Currency,
		StrategyHook: *hook,
	}
	for _, d := range strings.Split(*dietary, ",") {
		if d = strings.TrimSpace(d); d != "" {
			req.DietaryRestrictions = append(req.DietaryRestrictions, d)
		}
	}

	fmt.Printf("Generating menu proposal for: %s (%s guests)...\n", req.EventType, req.GuestCount)

	result, err := application.GenerateMenu(ctx, req)
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	printMenu(result.Menu)
	fmt.Printf("\nChecklist items: %d\n", result.TotalItems)
	if remaining := application.Subscription().RemainingToday(); remaining >= 0 {
		fmt.Printf("Free generations left today: %d\n", remaining)
	}
}

func runMenus(ctx context.Context, application *app.App) {
	menus, err := application.SavedMenus(ctx)
	if err != nil {
		log.Fatalf("Failed to list menus: %v", err)
	}
	if len(menus) == 0 {
		fmt.Println("No saved menus.")
		return
	}
	for _, m := range menus {
		fmt.Printf("%4d  %-40s %s\n", m.ID, m.Title, m.SavedAt.Format("2006-01-02 15:04"))
	}
}

func runDelete(ctx context.Context, application *app.App, args []string) {
	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	id := deleteCmd.Int64("id", 0, "Saved menu id (see 'menus')")
	deleteCmd.Parse(args)

	if *id == 0 {
		deleteCmd.Usage()
		os.Exit(1)
	}

	if err := application.DeleteMenu(ctx, *id); err != nil {
		log.Fatalf("Failed to delete menu: %v", err)
	}
	fmt.Printf("Deleted menu %d.\n", *id)
}

func runHistory(ctx context.Context, application *app.App, args []string) {
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	clear := historyCmd.Bool("clear", false, "Delete all generation history")
	historyCmd.Parse(args)

	if *clear {
		if err := application.ClearHistory(ctx); err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Println("History cleared.")
		return
	}

	items, err := application.History(ctx, 20)
	if err != nil {
		log.Fatalf("Failed to list history: %v", err)
	}
	if len(items) == 0 {
		fmt.Println("No generations yet.")
		return
	}
	for _, item := range items {
		line := fmt.Sprintf("%s  %s, %s guests", item.CreatedAt.Format("2006-01-02"), item.EventType, item.GuestCount)
		if item.Cuisine != "" {
			line += ", " + item.Cuisine
		}
		if len(item.DietaryRestrictions) > 0 {
			line += " [" + strings.Join(item.DietaryRestrictions, ", ") + "]"
		}
		fmt.Println(line)
	}
}

func runShare(ctx context.Context, application *app.App, args []string) {
	shareCmd := flag.NewFlagSet("share", flag.ExitOnError)
	id := shareCmd.Int64("id", 0, "Saved menu id (see 'menus')")
	shareCmd.Parse(args)

	if *id == 0 {
		shareCmd.Usage()
		os.Exit(1)
	}

	link, err := application.ShareMenu(ctx, *id)
	if err != nil {
		log.Fatalf("Failed to create share link: %v", err)
	}
	fmt.Printf("Share link (valid until %s):\n%s\n", link.ExpiresAt.Format("2006-01-02"), link.URL)
}

func runPlan(application *app.App, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: caterpro plan <free|starter|professional|business>")
		os.Exit(1)
	}

	plan, ok := subscription.ParsePlan(strings.ToLower(args[0]))
	if !ok {
		log.Fatalf("Unknown plan: %s", args[0])
	}
	if err := application.Subscription().SetPlan(plan); err != nil {
		log.Fatalf("Failed to switch plan: %v", err)
	}
	fmt.Printf("Plan switched to %s.\n", plan)
}

func runUsage(application *app.App, args []string) {
	usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
	days := usageCmd.Int("days", 7, "Report usage for the last N days")
	usageCmd.Parse(args)

	usage, err := application.DailyUsage(*days)
	if err != nil {
		log.Fatalf("Failed to fetch usage: %v", err)
	}
	if len(usage) == 0 {
		fmt.Println("No usage recorded.")
		return
	}
	for _, d := range usage {
		fmt.Printf("%s  %6d prompt / %6d completion tokens  (%d calls)\n",
			d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution)
	}
}

func runCleanup(application *app.App, args []string) {
	cleanupCmd := flag.NewFlagSet("cleanup", flag.ExitOnError)
	days := cleanupCmd.Int("days", 90, "Keep metric records for the last N days")
	cleanupCmd.Parse(args)

	affected, err := application.CleanupMetrics(*days)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	fmt.Printf("Removed %d old metric records.\n", affected)
}

func printMenu(m *menu.Menu) {
	fmt.Printf("\n=== %s ===\n%s\n", m.MenuTitle, m.Description)

	printSection := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Printf("\n%s:\n", header)
		for _, item := range items {
			fmt.Printf("  - %s\n", item)
		}
	}

	printSection("Appetizers", m.Appetizers)
	printSection("Main Courses", m.MainCourses)
	printSection("Side Dishes", m.SideDishes)
	printSection("Dessert", m.Dessert)
	printSection("Dietary Notes", m.DietaryNotes)
	printSection("Mise en Place", m.MiseEnPlace)
	printSection("Service Notes", m.ServiceNotes)
	printSection("Delivery Logistics", m.DeliveryLogistics)
	printSection("Safety Protocols", m.SafetyProtocols)

	if len(m.ShoppingList) > 0 {
		fmt.Println("\nShopping List:")
		for _, item := range m.ShoppingList {
			fmt.Printf("  - %-30s %-12s %s\n", item.Name, item.Quantity, item.Cost)
		}
	}
	if len(m.BeveragePairings) > 0 {
		fmt.Println("\nBeverage Pairings:")
		for _, p := range m.BeveragePairings {
			fmt.Printf("  - %s: %s\n", p.MenuItem, p.Suggestion)
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

func printUsage() {
	fmt.Println("Usage: caterpro <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate    Generate a catering menu proposal")
	fmt.Println("  menus       List saved menus")
	fmt.Println("  delete      Delete a saved menu")
	fmt.Println("  history     Show recent generation requests (-clear to wipe)")
	fmt.Println("  share       Create a share link for a saved menu")
	fmt.Println("  plan        Switch the subscription plan")
	fmt.Println("  usage       Show daily token usage")
	fmt.Println("  cleanup     Remove old metric records")
}
