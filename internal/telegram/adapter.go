package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/quickgen/internal/session"
	"github.com/user/quickgen/internal/types"
)

const maxTelegramMessage = 4096

// Adapter bridges Telegram to the session controller. Each Telegram
// chat maps to one workspace, created on first contact.
type Adapter struct {
	bot        *tgbotapi.BotAPI
	controller *session.Controller
	store      types.WorkspaceStore
}

// New creates a Telegram adapter.
func New(token string, controller *session.Controller, store types.WorkspaceStore) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{
		bot:        bot,
		controller: controller,
		store:      store,
	}, nil
}

// Start begins long-polling for Telegram updates.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

// workspaceName derives the per-chat workspace name.
func workspaceName(chatID int64) string {
	return "telegram-" + strconv.FormatInt(chatID, 10)
}

// workspaceFor returns the chat's workspace, creating it on first use.
func (a *Adapter) workspaceFor(ctx context.Context, chatID int64) (*types.Workspace, error) {
	name := workspaceName(chatID)

	workspaces, err := a.store.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	for _, ws := range workspaces {
		if ws.Name == name {
			return ws, nil
		}
	}
	return a.store.CreateWorkspace(ctx, name)
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	ws, err := a.workspaceFor(ctx, chatID)
	if err != nil {
		slog.Error("resolve workspace", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, "Sorry, I couldn't open your workspace.")
		return
	}

	_, err = a.controller.Submit(ws, msg.Text,
		session.WithOnComplete(func(reply *types.ChatMessage, artifact *types.GeneratedArtifact) {
			a.sendResponse(chatID, reply.Content)
			if artifact != nil {
				a.sendResponse(chatID, "Saved the generated page. Run `quickgen preview` on your machine to view it.")
			}
		}),
		session.WithOnError(func(err error) {
			a.sendResponse(chatID, "Error: "+err.Error())
		}),
	)
	if err != nil {
		slog.Error("submit request", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, "Sorry, I encountered an error processing your message.")
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, "Hello! Describe the web page you want and I'll generate it.")

	case "new":
		ws, err := a.workspaceFor(ctx, chatID)
		if err != nil {
			a.sendResponse(chatID, "Error clearing the conversation.")
			return
		}
		if err := a.store.ClearChatHistory(ctx, ws.ID); err != nil {
			a.sendResponse(chatID, "Error clearing the conversation.")
			return
		}
		a.sendResponse(chatID, "Conversation cleared. Describe a new page to get started.")

	case "cancel":
		ws, err := a.workspaceFor(ctx, chatID)
		if err != nil {
			a.sendResponse(chatID, "Error fetching your workspace.")
			return
		}
		a.controller.Cancel(ws.ID)
		a.sendResponse(chatID, "Cancelled the current generation.")

	case "status":
		ws, err := a.workspaceFor(ctx, chatID)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		history, err := a.store.FetchChatHistory(ctx, ws.ID)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		artifact, _ := a.store.LatestArtifact(ctx, ws.ID)
		hasPage := "no"
		if artifact != nil {
			hasPage = "yes"
		}
		a.sendResponse(chatID, fmt.Sprintf("Workspace: %s\nMessages: %d\nGenerated page: %s", ws.ID, len(history), hasPage))

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /new, /cancel, /status")
	}
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := a.bot.Send(msg); err != nil {
			// Retry without markdown if it fails
			msg.ParseMode = ""
			if _, err := a.bot.Send(msg); err != nil {
				slog.Error("send message", "chat_id", chatID, "error", err)
			}
		}
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}
