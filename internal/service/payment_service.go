package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository"
	"alcyxob/gym-membership/internal/roster"
)

var ErrInvalidPaymentMethod = errors.New("payment method must be cash, upi or card")

// PaymentInput describes a collected fee. Empty Plan keeps the member's
// current plan; empty PaidOn means today; empty Method means cash.
type PaymentInput struct {
	Amount float64
	Method domain.PaymentMethod
	Plan   string
	PaidOn string
	Note   string
}

type PaymentService interface {
	// RecordPayment stores the payment and renews the membership. Renewal
	// starts from the later of the current expiry and the payment date, so
	// paying early never loses days and paying late never backdates.
	RecordPayment(ctx context.Context, memberID, recordedBy primitive.ObjectID, in PaymentInput) (*domain.Payment, *domain.Member, error)
	ListForMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Payment, error)
}

type paymentService struct {
	memberRepo  repository.MemberRepository
	paymentRepo repository.PaymentRepository
	clock       clock.Clock
	log         *slog.Logger
}

func NewPaymentService(memberRepo repository.MemberRepository, paymentRepo repository.PaymentRepository, clk clock.Clock, logger *slog.Logger) PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &paymentService{memberRepo: memberRepo, paymentRepo: paymentRepo, clock: clk, log: logger}
}

func (s *paymentService) RecordPayment(ctx context.Context, memberID, recordedBy primitive.ObjectID, in PaymentInput) (*domain.Payment, *domain.Member, error) {
	if in.Amount <= 0 {
		return nil, nil, fmt.Errorf("%w: amount must be positive", ErrValidationFailed)
	}
	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.Method))))
	switch method {
	case "":
		method = domain.PaymentCash
	case domain.PaymentCash, domain.PaymentUPI, domain.PaymentCard:
	default:
		return nil, nil, ErrInvalidPaymentMethod
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrMemberNotFound
		}
		return nil, nil, err
	}

	now := s.clock.Now()
	loc := now.Location()
	paidOn := domain.CivilDay(now)
	if in.PaidOn != "" {
		d, ok := domain.ParseDate(in.PaidOn, loc)
		if !ok {
			return nil, nil, fmt.Errorf("%w: invalid paidOn %q", ErrValidationFailed, in.PaidOn)
		}
		paidOn = domain.CivilDay(d)
	}
	plan := strings.TrimSpace(in.Plan)
	if plan == "" {
		plan = member.Plan
	}

	start := paidOn
	if current, ok := domain.ParseDate(member.ExpiryDate, loc); ok && domain.CivilDay(current).After(paidOn) {
		start = domain.CivilDay(current)
	}
	newExpiry := roster.ExpiryFromJoining(start, plan)

	payment := &domain.Payment{
		MemberID:       member.ID,
		Amount:         in.Amount,
		Method:         method,
		Plan:           plan,
		PaidOn:         domain.FormatDate(paidOn),
		PreviousExpiry: member.ExpiryDate,
		NewExpiry:      domain.FormatDate(newExpiry),
		RecordedBy:     recordedBy,
		Note:           strings.TrimSpace(in.Note),
	}

	member.Plan = plan
	member.Amount = in.Amount
	member.ExpiryDate = payment.NewExpiry
	// A renewal lifts any manual deactivation.
	member.Status = ""
	if err := s.memberRepo.Update(ctx, member); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrMemberNotFound
		}
		return nil, nil, err
	}

	id, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, nil, err
	}
	payment.ID = id
	s.log.Info("payment recorded",
		"member_id", member.ID.Hex(),
		"amount", payment.Amount,
		"method", payment.Method,
		"previous_expiry", payment.PreviousExpiry,
		"new_expiry", payment.NewExpiry,
	)
	return payment, member, nil
}

func (s *paymentService) ListForMember(ctx context.Context, memberID primitive.ObjectID) ([]domain.Payment, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return s.paymentRepo.GetByMemberID(ctx, memberID)
}
