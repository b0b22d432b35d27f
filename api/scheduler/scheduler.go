// Package scheduler runs the periodic unread-digest job: every account with
// unread messages gets a summary email with a one-click opt-out link. Delivery
// is best-effort; unread state only ever changes through the message store.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/schoolhub/school-messaging-api/config"
	"github.com/schoolhub/school-messaging-api/databases"
	"github.com/schoolhub/school-messaging-api/directory"
	"github.com/schoolhub/school-messaging-api/models"
	templates "github.com/schoolhub/school-messaging-api/templates/html"
)

const digestJobTimeout = 2 * time.Minute

// Scheduler handles periodic background jobs for the messaging service
type Scheduler struct {
	cron     *cron.Cron
	MDB      databases.MessageDatabase
	ADB      databases.AccountDatabase
	Resolver *directory.Resolver
	conf     config.Config
}

// New creates a new scheduler instance
func New(mdb databases.MessageDatabase, adb databases.AccountDatabase, resolver *directory.Resolver, conf config.Config) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		MDB:      mdb,
		ADB:      adb,
		Resolver: resolver,
		conf:     conf,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	if s.conf.SendgridAPIKey == "" {
		zap.S().Warn("SENDGRID_API_KEY not set, unread digest emails disabled")
		return
	}
	if _, err := s.cron.AddFunc(s.conf.DigestSchedule, s.RunUnreadDigest); err != nil {
		zap.S().With(err).Errorw("failed to register unread digest job", "schedule", s.conf.DigestSchedule)
		return
	}
	s.cron.Start()
	zap.S().Infow("unread digest scheduler started", "schedule", s.conf.DigestSchedule)
}

// Stop halts the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunUnreadDigest mails every opted-in account that currently has unread
// messages. Exported so operators can trigger it out of schedule.
func (s *Scheduler) RunUnreadDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), digestJobTimeout)
	defer cancel()

	unread, err := s.MDB.Find(ctx, bson.M{"isRead": false})
	if err != nil {
		zap.S().With(err).Error("unread digest: failed to list unread messages")
		return
	}
	if len(unread) == 0 {
		zap.S().Debug("unread digest: nothing to send")
		return
	}

	type recipientTotal struct {
		ref   models.ParticipantRef
		count int64
	}
	totals := map[string]*recipientTotal{}
	for _, msg := range unread {
		key := string(msg.Recipient.Kind) + "/" + msg.Recipient.ID
		if t, ok := totals[key]; ok {
			t.count++
			continue
		}
		totals[key] = &recipientTotal{ref: msg.Recipient, count: 1}
	}

	sent := 0
	for _, t := range totals {
		ident := s.Resolver.Resolve(ctx, t.ref)
		if !ident.Exists || ident.Account.IsZero() {
			continue
		}
		account, err := s.ADB.FindOne(ctx, bson.M{"_id": ident.Account})
		if err != nil || account.DigestOptOut || account.Email == "" {
			continue
		}
		token, err := NewUnsubscribeToken(account.ID.Hex(), s.conf.JWTSecret)
		if err != nil {
			zap.S().With(err).Errorw("unread digest: failed to sign unsubscribe token", "account", account.ID.Hex())
			continue
		}

		subject := fmt.Sprintf("You have %d unread message(s)", t.count)
		html := templates.RenderUnreadDigestEmail(ident.DisplayName, t.count, s.conf.BaseURL, token)
		plain := fmt.Sprintf("Hi %s, you have %d unread message(s) waiting in your portal inbox.", ident.DisplayName, t.count)
		if err := s.sendEmail(ident.DisplayName, account.Email, subject, plain, html); err != nil {
			zap.S().With(err).Errorw("unread digest: failed to send email", "account", account.ID.Hex())
			continue
		}
		sent++
	}
	zap.S().Infow("unread digest finished", "recipients", len(totals), "emailsSent", sent)
}

func (s *Scheduler) sendEmail(toName, toEmail, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.conf.DigestFromName, s.conf.DigestFromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(s.conf.SendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid status %d", response.StatusCode)
	}
	return nil
}
