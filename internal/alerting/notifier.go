package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Digest summarises the regressions detected after a snapshot import.
type Digest struct {
	SnapshotID int64
	Filename   string
	UploadedAt time.Time
	NewIssues  int
	Declined   int
	// TopItems lists the worst-hit listing titles, most urgent first.
	TopItems []string
}

// Notifier delivers a regression digest to a seller-facing channel.
type Notifier interface {
	Notify(ctx context.Context, digest Digest) error
}

// TelegramNotifier pushes digests through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls the sendMessage API with the rendered digest.
func (n *TelegramNotifier) Notify(ctx context.Context, digest Digest) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(digest),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	n.logger.Info().Int64("snapshot_id", digest.SnapshotID).
		Int("new_issues", digest.NewIssues).
		Int("declined", digest.Declined).
		Msg("regression digest sent (Telegram)")
	return nil
}

func renderMessage(d Digest) string {
	builder := strings.Builder{}
	builder.WriteString("[Listing Health Alert]\n")
	builder.WriteString(fmt.Sprintf("Snapshot: %s (imported %s UTC)\n", d.Filename, d.UploadedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("New issues: %d\n", d.NewIssues))
	builder.WriteString(fmt.Sprintf("Declined: %d\n", d.Declined))
	if len(d.TopItems) > 0 {
		builder.WriteString("Worst hit:\n")
		for _, title := range d.TopItems {
			builder.WriteString(fmt.Sprintf("- %s\n", title))
		}
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
