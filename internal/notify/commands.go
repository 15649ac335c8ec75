package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// longPollTimeout is the getUpdates timeout passed to Telegram. The HTTP
// client timeout must exceed it.
const longPollTimeout = 25 * time.Second

// StatusSource exposes the live engine state for operator commands.
type StatusSource interface {
	Status() domain.EngineStatus
}

// CommandPoller long-polls the Telegram Bot API and answers operator commands
// from the configured chat. Supported commands:
//
//	/status  reply with the one-line engine status
//
// Commands may carry a bot suffix (/status@MemebotBot). Messages from other
// chats and unknown commands are ignored.
type CommandPoller struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
	status  StatusSource
	logger  *slog.Logger

	offset int64
}

// NewCommandPoller creates a CommandPoller bound to one chat.
func NewCommandPoller(token, chatID string, status StatusSource, logger *slog.Logger) *CommandPoller {
	return &CommandPoller{
		token:   token,
		chatID:  chatID,
		baseURL: DefaultTelegramBaseURL,
		status:  status,
		logger:  logger.With(slog.String("component", "telegram_commands")),
		client:  &http.Client{Timeout: longPollTimeout + 10*time.Second},
	}
}

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool             `json:"ok"`
	Result []telegramUpdate `json:"result"`
}

// Run polls for updates until the context is cancelled. Transient API errors
// are logged and retried after a short pause.
func (p *CommandPoller) Run(ctx context.Context) error {
	p.logger.Info("telegram command poller started", slog.String("chat_id", p.chatID))
	defer p.logger.Info("telegram command poller stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := p.fetchUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("getUpdates failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= p.offset {
				p.offset = upd.UpdateID + 1
			}
			p.handle(ctx, upd)
		}
	}
}

func (p *CommandPoller) fetchUpdates(ctx context.Context) ([]telegramUpdate, error) {
	params := url.Values{}
	params.Set("timeout", strconv.Itoa(int(longPollTimeout/time.Second)))
	params.Set("offset", strconv.FormatInt(p.offset, 10))
	params.Set("allowed_updates", `["message"]`)

	reqURL := fmt.Sprintf("%s/bot%s/getUpdates?%s", p.baseURL, p.token, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed updatesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("telegram: decode updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram: getUpdates not ok: %s", string(body))
	}
	return parsed.Result, nil
}

func (p *CommandPoller) handle(ctx context.Context, upd telegramUpdate) {
	if upd.Message == nil {
		return
	}
	if strconv.FormatInt(upd.Message.Chat.ID, 10) != p.chatID {
		p.logger.Debug("ignoring message from foreign chat",
			slog.Int64("chat_id", upd.Message.Chat.ID),
		)
		return
	}

	text := strings.TrimSpace(upd.Message.Text)
	command, _, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/status":
		p.reply(ctx, p.status.Status().String())
	default:
		if strings.HasPrefix(command, "/") {
			p.logger.Debug("unknown command", slog.String("command", command))
		}
	}
}

func (p *CommandPoller) reply(ctx context.Context, text string) {
	payload := map[string]string{
		"chat_id": p.chatID,
		"text":    text,
	}
	if err := telegramPost(ctx, p.client, p.baseURL, p.token, "sendMessage", payload); err != nil {
		p.logger.Warn("command reply failed", slog.String("error", err.Error()))
	}
}
