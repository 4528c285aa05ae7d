package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/silverbackhw/portal-sync/internal/service"
)

const (
	googleTokenURL = "https://oauth2.googleapis.com/token"
	senderName     = "SilverBack Home Warranty"
	defaultReplyTo = "info@silverbackhw.com"

	// maxListedErrors caps the error table of one report
	maxListedErrors = 50
)

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	From         string
	To           string // comma separated
	ReplyTo      string
}

// Reporter mails a summary of each full sync through the Gmail API
type Reporter struct {
	from    string
	replyTo string
	to      []string
	send    func(ctx context.Context, raw string) error
	now     func() time.Time
}

// NewReporter builds a reporter authorized by a long-lived refresh token.
// The access token is refreshed on demand by the token source.
func NewReporter(ctx context.Context, cfg Config) (*Reporter, error) {
	var recipients []string
	for _, r := range strings.Split(cfg.To, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one report recipient is required")
	}
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("gmail refresh token is required")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: googleTokenURL,
		},
	}
	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	gmailService, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	replyTo := cfg.ReplyTo
	if replyTo == "" {
		replyTo = defaultReplyTo
	}

	return &Reporter{
		from:    cfg.From,
		replyTo: replyTo,
		to:      recipients,
		send: func(ctx context.Context, raw string) error {
			sent, err := gmailService.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}
			log.Printf("[report] Sent sync report (message id: %s)", sent.Id)
			return nil
		},
		now: time.Now,
	}, nil
}

// SendReport mails the outcome of a full sync
func (r *Reporter) SendReport(ctx context.Context, result *service.SyncResult) error {
	subject := fmt.Sprintf("CRM sync report: %d records, %d errors", result.Total, len(result.Errors))

	body, err := renderReport(result, r.now())
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	return r.send(ctx, r.encodeMessage(subject, body))
}

// encodeMessage builds the RFC 2822 message in the URL-safe base64 form the API expects
func (r *Reporter) encodeMessage(subject string, htmlBody string) string {
	lines := []string{
		fmt.Sprintf("From: %s <%s>", senderName, r.from),
		fmt.Sprintf("Reply-To: %s <%s>", senderName, r.replyTo),
		"To: " + strings.Join(r.to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"",
		htmlBody,
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(lines, "\r\n")))
}

var reportTemplate = template.Must(template.New("report").Parse(`<h2>CRM sync finished {{.FinishedAt}}</h2>
<table>
<tr><th></th><th>Created</th><th>Updated</th></tr>
<tr><td>Policies</td><td>{{.Result.Policies.Created}}</td><td>{{.Result.Policies.Updated}}</td></tr>
<tr><td>Claims</td><td>{{.Result.Claims.Created}}</td><td>{{.Result.Claims.Updated}}</td></tr>
<tr><td>RE Pros</td><td>{{.Result.REPros.Created}}</td><td>{{.Result.REPros.Updated}}</td></tr>
</table>
<p>Total records processed: {{.Result.Total}}</p>
{{if .Errors}}<h3>Errors ({{len .Result.Errors}})</h3>
<ul>
{{range .Errors}}<li><strong>{{.Identifier}}</strong>: {{.Error}}</li>
{{end}}</ul>
{{if .Omitted}}<p>and {{.Omitted}} more</p>
{{end}}{{else}}<p>No errors.</p>
{{end}}`))

func renderReport(result *service.SyncResult, finishedAt time.Time) (string, error) {
	errs := result.Errors
	omitted := 0
	if len(errs) > maxListedErrors {
		omitted = len(errs) - maxListedErrors
		errs = errs[:maxListedErrors]
	}

	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Result     *service.SyncResult
		Errors     []service.RecordError
		Omitted    int
		FinishedAt string
	}{
		Result:     result,
		Errors:     errs,
		Omitted:    omitted,
		FinishedAt: finishedAt.UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
