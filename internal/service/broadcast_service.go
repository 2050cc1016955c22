package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/messaging"
	"alcyxob/gym-membership/internal/roster"
)

// Templates overrides the reminder body per status. Empty fields fall back
// to the messaging defaults.
type Templates struct {
	Expired  string
	Expiring string
	Active   string
}

func (t Templates) For(status domain.Status) string {
	var tpl string
	switch status {
	case domain.StatusExpired:
		tpl = t.Expired
	case domain.StatusExpiringSoon:
		tpl = t.Expiring
	default:
		tpl = t.Active
	}
	if tpl == "" {
		return messaging.DefaultTemplate(status)
	}
	return tpl
}

// BroadcastRequest selects recipients and the message. MemberIDs, when set,
// restricts the filtered targets to those members. An empty Template uses
// the per-status template of each recipient.
type BroadcastRequest struct {
	Status    roster.StatusFilter
	Search    string
	MemberIDs []string
	Template  string
}

// Delivery is the outcome of one reminder. Link is the chat link the
// message was handed to; staff open it to send.
type Delivery struct {
	MemberID string        `json:"memberId"`
	Name     string        `json:"name"`
	Phone    string        `json:"phone"`
	Status   domain.Status `json:"status"`
	Message  string        `json:"message"`
	Link     string        `json:"link,omitempty"`
	Error    string        `json:"error,omitempty"`
}

type BroadcastService interface {
	// Targets lists reminder recipients, most urgent first.
	Targets(ctx context.Context, status roster.StatusFilter, search string) ([]domain.Member, error)
	Send(ctx context.Context, req BroadcastRequest) ([]Delivery, error)
}

type broadcastService struct {
	roster      directory.Directory
	clock       clock.Clock
	templates   Templates
	countryCode string
	log         *slog.Logger
}

func NewBroadcastService(dir directory.Directory, clk clock.Clock, templates Templates, countryCode string, logger *slog.Logger) BroadcastService {
	if logger == nil {
		logger = slog.Default()
	}
	return &broadcastService{
		roster:      dir,
		clock:       clk,
		templates:   templates,
		countryCode: countryCode,
		log:         logger,
	}
}

func (s *broadcastService) Targets(ctx context.Context, status roster.StatusFilter, search string) ([]domain.Member, error) {
	members, err := s.roster.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	return roster.Query(members, s.clock.Now(), roster.Options{
		Status: status,
		Search: search,
		Tab:    roster.TabMessaging,
	}), nil
}

func (s *broadcastService) Send(ctx context.Context, req BroadcastRequest) ([]Delivery, error) {
	targets, err := s.Targets(ctx, req.Status, req.Search)
	if err != nil {
		return nil, err
	}
	if len(req.MemberIDs) > 0 {
		targets = onlyIDs(targets, req.MemberIDs)
	}

	asOf := s.clock.Now()
	deliveries := make([]Delivery, 0, len(targets))
	failed := 0
	for _, m := range targets {
		if err := ctx.Err(); err != nil {
			return deliveries, err
		}
		status := roster.Classify(m, asOf)
		tpl := req.Template
		if strings.TrimSpace(tpl) == "" {
			tpl = s.templates.For(status)
		}
		d := Delivery{
			MemberID: m.ID.Hex(),
			Name:     m.Name,
			Phone:    m.Phone,
			Status:   status,
			Message:  messaging.RenderTemplate(tpl, m, asOf),
		}

		// The server cannot open the chat app itself, so it records the
		// link the dispatcher settles on and hands it back to the caller.
		rec := &messaging.LinkRecorder{}
		if err := messaging.NewWhatsApp(rec, s.countryCode, s.log).Send(ctx, m.Phone, d.Message); err != nil {
			failed++
			d.Error = err.Error()
			if errors.Is(err, messaging.ErrMalformedNumber) {
				s.log.Debug("skipping member with malformed phone", "member_id", d.MemberID, "phone", m.Phone)
			}
		} else {
			d.Link = rec.Last()
		}
		deliveries = append(deliveries, d)
	}

	s.log.Info("broadcast prepared", "recipients", len(deliveries), "failed", failed)
	return deliveries, nil
}

func onlyIDs(members []domain.Member, ids []string) []domain.Member {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = struct{}{}
	}
	out := members[:0:0]
	for _, m := range members {
		if _, ok := want[m.ID.Hex()]; ok {
			out = append(out, m)
		}
	}
	return out
}
