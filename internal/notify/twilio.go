// Package notify delivers best-effort SMS notifications via the Twilio
// Messages REST API.
package notify

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.twilio.com"

// TwilioNotifier sends SMS messages to the configured admin phone.
// Sending is best effort: callers treat errors as log-and-discard.
type TwilioNotifier struct {
	accountSID string
	authToken  string
	from       string
	to         string

	apiBase string
	client  *http.Client
}

func NewTwilioNotifier(accountSID, authToken, from, to string) *TwilioNotifier {
	return &TwilioNotifier{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		apiBase:    defaultAPIBase,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Configured reports whether all credentials required to send are set.
func (n *TwilioNotifier) Configured() bool {
	return n.accountSID != "" && n.authToken != "" && n.from != "" && n.to != ""
}

// Send posts one SMS. When credentials are missing it logs and reports
// success so unconfigured deployments stay quiet.
func (n *TwilioNotifier) Send(text string) error {
	if !n.Configured() {
		log.Printf("twilio credentials not configured, skipping SMS")
		return nil
	}

	form := url.Values{}
	form.Set("Body", text)
	form.Set("From", n.from)
	form.Set("To", n.to)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", n.apiBase, n.accountSID)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(n.accountSID, n.authToken)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
