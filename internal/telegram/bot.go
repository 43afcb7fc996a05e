package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"caterpro-ai/internal/app"
	"caterpro-ai/internal/apperr"
	"caterpro-ai/internal/config"
	"caterpro-ai/internal/generate"
	"caterpro-ai/internal/menu"
	"caterpro-ai/internal/metrics"
	"caterpro-ai/internal/subscription"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot wraps the Telegram API around the application operations.
type Bot struct {
	api    *tgbotapi.BotAPI
	app    *app.App
	cfg    *config.Config
	logger *zap.Logger

	// lastMenus holds the most recent generated menu per chat so a
	// follow-up /save can persist it.
	mu        sync.Mutex
	lastMenus map[int64]*menu.Menu
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	logger.Info("authorized telegram bot", zap.String("account", api.Self.UserName))

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("response", resp.Description))

	return &Bot{
		api:       api,
		app:       application,
		cfg:       cfg,
		logger:    logger,
		lastMenus: make(map[int64]*menu.Menu),
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("failed to parse update", zap.Error(err))
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("userID", update.Message.From.ID),
			zap.String("userName", update.Message.From.UserName),
		)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start" || text == "/help":
		b.sendMarkdown(msg.Chat.ID, helpText)
	case text == "/menus":
		b.handleMenus(msg.Chat.ID)
	case text == "/history":
		b.handleHistory(msg.Chat.ID)
	case text == "/clearhistory":
		b.handleClearHistory(msg.Chat.ID)
	case strings.HasPrefix(text, "/delete"):
		b.handleDelete(msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/delete")))
	case text == "/metrics":
		b.handleMetricsRequest(msg)
	case strings.HasPrefix(text, "/save"):
		b.handleSave(msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/save")))
	case strings.HasPrefix(text, "/share"):
		b.handleShare(msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/share")))
	case strings.HasPrefix(text, "/suppliers"):
		b.handleSuppliers(msg.Chat.ID)
	case strings.HasPrefix(text, "/plan"):
		b.handlePlanChange(msg.Chat.ID, strings.TrimSpace(strings.TrimPrefix(text, "/plan")))
	default:
		b.handleGenerateRequest(msg)
	}
}

const helpText = `🍽 *CaterPro AI*

Send your event as: ` + "`event | guests | budget | service style | cuisine | dietary`" + `
Example: ` + "`Wedding Reception | 51-100 | $$$ | Plated | French | Gluten-Free, Vegan`" + `

Commands:
/save <title> — save the last generated menu
/menus — list saved menus
/delete <id> — delete a saved menu
/share <id> — create a share link for a saved menu
/suppliers — find suppliers for the last menu's shopping list
/history — recent generation requests
/clearhistory — delete all generation history
/plan <free|starter|professional|business> — switch plan`

func (b *Bot) handleGenerateRequest(msg *tgbotapi.Message) {
	req, err := parseGenerateRequest(msg.Text)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, "🤔 I could not read that. Send /help for the request format.")
		return
	}

	sentMsg, err := b.api.Send(markdownMessage(msg.Chat.ID, "🧑‍🍳 *Crafting your proposal...*"))
	if err != nil {
		b.logger.Warn("failed to send initial reply", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := b.app.GenerateMenu(ctx, req)
	if err != nil {
		b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, b.formatError(err))
		return
	}

	b.mu.Lock()
	b.lastMenus[msg.Chat.ID] = result.Menu
	b.mu.Unlock()

	b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, formatMenuMarkdown(result.Menu))

	if remaining := b.app.Subscription().RemainingToday(); remaining >= 0 {
		b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("_%d free generation(s) left today._", remaining))
	}
}

func (b *Bot) handleSave(chatID int64, title string) {
	b.mu.Lock()
	last := b.lastMenus[chatID]
	b.mu.Unlock()

	if last == nil {
		b.sendMarkdown(chatID, "Nothing to save yet. Generate a menu first.")
		return
	}
	if title == "" {
		title = last.MenuTitle
	}

	id, err := b.app.SaveMenu(context.Background(), title, *last)
	if err != nil {
		b.sendMarkdown(chatID, b.formatError(err))
		return
	}
	b.sendMarkdown(chatID, fmt.Sprintf("✅ Saved as *%s* (id %d)", title, id))
}

func (b *Bot) handleMenus(chatID int64) {
	menus, err := b.app.SavedMenus(context.Background())
	if err != nil {
		b.sendMarkdown(chatID, b.formatError(err))
		return
	}
	if len(menus) == 0 {
		b.sendMarkdown(chatID, "_No saved menus yet._")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 *Saved Menus*\n\n")
	for _, m := range menus {
		sb.WriteString(fmt.Sprintf("• *%d* — %s (%s)\n", m.ID, m.Title, m.SavedAt.Format("2006-01-02")))
	}
	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) handleDelete(chatID int64, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.sendMarkdown(chatID, "Usage: `/delete <menu id>` — see /menus for ids.")
		return
	}

	if err := b.app.DeleteMenu(context.Background(), id); err != nil {
		b.sendMarkdown(chatID, b.formatError(err))
		return
	}
	b.sendMarkdown(chatID, fmt.Sprintf("🗑 Deleted menu %d.", id))
}

func (b *Bot) handleShare(chatID int64, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.sendMarkdown(chatID, "Usage: `/share <menu id>` — see /menus for ids.")
		return
	}

	link, err := b.app.ShareMenu(context.Background(), id)
	if err != nil {
		b.sendMarkdown(chatID, b.formatError(err))
		return
	}
	b.sendMarkdown(chatID, fmt.Sprintf("🔗 Share link (valid until %s):\n%s",
		link.ExpiresAt.Format("2006-01-02"), link.URL))
}

func (b *Bot) handleSuppliers(chatID int64) {
	b.mu.Lock()
	last := b.lastMenus[chatID]
	b.mu.Unlock()

	if last == nil {
		b.sendMarkdown(chatID, "Generate a menu first so I know what to source.")
		return
	}

	sentMsg, err := b.api.Send(markdownMessage(chatID, "🔎 *Matching suppliers...*"))
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	found, err := b.app.FindSuppliers(ctx, last)
	if err != nil {
		b.editMarkdown(chatID, sentMsg.MessageID, b.formatError(err))
		return
	}
	if len(found) == 0 {
		b.editMarkdown(chatID, sentMsg.MessageID, "_No matching suppliers found._")
		return
	}

	var sb strings.Builder
	sb.WriteString("🚚 *Suppliers*\n\n")
	for _, s := range found {
		sb.WriteString(fmt.Sprintf("*%s* (%s)\n", s.Name, s.Category))
		if s.Specialty != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", s.Specialty))
		}
		if s.Contact != "" {
			sb.WriteString(fmt.Sprintf("%s\n", s.Contact))
		}
		sb.WriteString("\n")
	}
	b.editMarkdown(chatID, sentMsg.MessageID, sb.String())
}

func (b *Bot) handleHistory(chatID int64) {
	items, err := b.app.History(context.Background(), 10)
	if err != nil {
		b.sendMarkdown(chatID, b.formatError(err))
		return
	}
	if len(items) == 0 {
		b.sendMarkdown(chatID, "_No generations yet._")
		return
	}

	var sb strings.Builder
	sb.WriteString("🗓 *Recent Requests*\n\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s, %s guests", item.EventType, item.GuestCount))
		if item.Cuisine != "" {
			sb.WriteString(fmt.Sprintf(", %s", item.Cuisine))
		}
		sb.WriteString(fmt.Sprintf(" (%s)\n", item.CreatedAt.Format("2006-01-02")))
	}
	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) handleClearHistory(chatID int64) {
	if err := b.app.ClearHistory(context.Background()); err != nil {
		b.sendMarkdown(chatID, b.formatError(err))
		return
	}
	b.sendMarkdown(chatID, "🗑 History cleared.")
}

func (b *Bot) handlePlanChange(chatID int64, arg string) {
	plan, ok := subscription.ParsePlan(strings.ToLower(arg))
	if !ok {
		b.sendMarkdown(chatID, "Usage: `/plan free|starter|professional|business`")
		return
	}
	if err := b.app.Subscription().SetPlan(plan); err != nil {
		b.sendMarkdown(chatID, b.formatError(err))
		return
	}
	b.sendMarkdown(chatID, fmt.Sprintf("✅ Plan switched to *%s*.", plan))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.app.DailyUsage(7)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath, b.cfg.StatePath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DatabaseSize))
	sb.WriteString(fmt.Sprintf("• State File: %s\n", health.StateSize))

	b.sendMarkdown(msg.Chat.ID, sb.String())
}

// formatError resolves any failure to a {title, message} pair before it
// reaches the chat.
func (b *Bot) formatError(err error) string {
	b.logger.Warn("operation failed", zap.Error(err))

	switch {
	case errors.Is(err, app.ErrDailyLimitReached):
		return "🔒 *Daily Limit Reached*\nYou have used all free generations for today. Upgrade your plan for unlimited menus."
	case errors.Is(err, app.ErrFeatureLocked):
		return "🔒 *Upgrade Required*\nThis feature is not included in your current plan."
	}

	state := apperr.Classify(err)
	safeMsg := strings.ReplaceAll(state.Message, "`", "'")
	return fmt.Sprintf("❌ *%s*\n%s", state.Title, safeMsg)
}

// parseGenerateRequest reads the pipe-separated request format:
// event | guests | budget | service style | cuisine | dietary.
func parseGenerateRequest(text string) (generate.Request, error) {
	parts := strings.Split(text, "|")
	if len(parts) < 2 {
		return generate.Request{}, fmt.Errorf("expected at least event and guest count")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	req := generate.Request{
		EventType:  parts[0],
		GuestCount: parts[1],
	}
	if req.EventType == "" || req.GuestCount == "" {
		return generate.Request{}, fmt.Errorf("event and guest count must not be empty")
	}
	if len(parts) > 2 {
		req.BudgetLevel = parts[2]
	}
	if len(parts) > 3 {
		req.ServiceStyle = parts[3]
	}
	if len(parts) > 4 {
		req.Cuisine = parts[4]
	}
	if len(parts) > 5 && parts[5] != "" {
		for _, d := range strings.Split(parts[5], ",") {
			if d = strings.TrimSpace(d); d != "" {
				req.DietaryRestrictions = append(req.DietaryRestrictions, d)
			}
		}
	}
	return req, nil
}

func formatMenuMarkdown(m *menu.Menu) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍽 *%s*\n_%s_\n", m.MenuTitle, m.Description))

	writeSection := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("\n*%s*\n", header))
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("• %s\n", item))
		}
	}

	writeSection("Appetizers", m.Appetizers)
	writeSection("Main Courses", m.MainCourses)
	writeSection("Side Dishes", m.SideDishes)
	writeSection("Dessert", m.Dessert)
	writeSection("Dietary Notes", m.DietaryNotes)
	writeSection("Service Notes", m.ServiceNotes)

	if len(m.ShoppingList) > 0 {
		sb.WriteString("\n🛒 *Shopping List*\n")
		for _, item := range m.ShoppingList {
			sb.WriteString(fmt.Sprintf("• %s — %s", item.Name, item.Quantity))
			if item.Cost != "" {
				sb.WriteString(fmt.Sprintf(" (~%s)", item.Cost))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n_Save this proposal with_ `/save <title>`")
	return sb.String()
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	return msg
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	if _, err := b.api.Send(markdownMessage(chatID, text)); err != nil {
		b.logger.Warn("failed to send message", zap.Error(err))
	}
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit message", zap.Error(err))
	}
}
