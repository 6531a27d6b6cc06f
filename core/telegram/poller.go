package telegram

import (
	"net"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/gamebot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// updateTypes are the updates the bot subscribes to. my_chat_member is not
// delivered unless asked for.
var updateTypes = []string{"message", "callback_query", "my_chat_member"}

// newPoller picks the update source for cfg.Telegram.RunMode.
func newPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(cfg.Webhook.Listen, strconv.Itoa(cfg.Webhook.Port)),
			SecretToken:    cfg.Webhook.Secret,
			AllowedUpdates: updateTypes,
			Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	return &tele.LongPoller{
		Timeout:        longPollTimeout(cfg.Telegram.LongPollTimeoutSeconds),
		AllowedUpdates: updateTypes,
	}
}

func longPollTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(seconds) * time.Second
}
