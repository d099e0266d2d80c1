package notify

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/echo-project/crisis-engine/internal/database"
)

// SlackNotifier mirrors escalated alerts to a Slack channel. It is
// optional: a nil notifier is a valid no-op.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier, or nil when the token or channel
// is not configured.
func NewSlackNotifier(botToken, channel string) *SlackNotifier {
	if botToken == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		client:  slack.New(botToken),
		channel: channel,
	}
}

// PostAlert posts a formatted alert message to the configured channel
func (n *SlackNotifier) PostAlert(alert *database.Alert, incident *database.Incident) error {
	if n == nil {
		return nil
	}

	message := fmt.Sprintf(`:rotating_light: *Alerte %s* (niveau %d)
:pushpin: *Incident:* %s
:memo: *Résumé:* %s`,
		incident.SeverityLabel,
		alert.Severity,
		incident.ID,
		alert.Summary,
	)

	if alert.Lat != nil && alert.Lng != nil {
		message += fmt.Sprintf("\n:round_pushpin: *Position:* %.4f, %.4f", *alert.Lat, *alert.Lng)
	}
	if len(alert.Contacts) > 0 {
		message += fmt.Sprintf("\n:telephone_receiver: *Services à contacter:* %d", len(alert.Contacts))
	}

	_, _, err := n.client.PostMessage(
		n.channel,
		slack.MsgOptionText(message, false),
	)
	return err
}
