package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository"
	"alcyxob/gym-membership/internal/roster"
	"alcyxob/gym-membership/internal/storage"
)

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrMemberNotFound     = errors.New("member not found")
	ErrNoMeasurements     = errors.New("member has no weight and height on record")
	ErrPhotoNotUploaded   = errors.New("photo has not been uploaded")
	ErrPhotoKeyMismatch   = errors.New("photo key does not belong to this member")
	ErrStorageUnavailable = errors.New("photo storage is not configured")
)

// MemberInput carries the writable member fields. On create, empty
// JoiningDate means today and empty ExpiryDate is derived from JoiningDate
// and Plan. On update, empty dates keep the stored values.
type MemberInput struct {
	Name        string
	Phone       string
	Plan        string
	JoiningDate string
	ExpiryDate  string
	Amount      float64
	Weight      *float64
	Height      *float64
}

// PhotoUpload is a presigned upload slot for a member photo.
type PhotoUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MemberService interface {
	Create(ctx context.Context, in MemberInput) (*domain.Member, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	Update(ctx context.Context, id primitive.ObjectID, in MemberInput) (*domain.Member, error)
	// Deactivate marks the membership expired regardless of its expiry date.
	Deactivate(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// List runs the roster query over every member as of today.
	List(ctx context.Context, opts roster.Options) ([]domain.Member, error)
	BMI(ctx context.Context, id primitive.ObjectID) (*roster.BMI, error)
	PhotoUploadURL(ctx context.Context, id primitive.ObjectID, contentType string) (*PhotoUpload, error)
	ConfirmPhoto(ctx context.Context, id primitive.ObjectID, key string) (*domain.Member, error)
	PhotoURL(ctx context.Context, m *domain.Member) (string, error)
	// Today is the service's notion of now, in the gym's time zone.
	Today() time.Time
}

type memberService struct {
	memberRepo  repository.MemberRepository
	paymentRepo repository.PaymentRepository
	roster      directory.Directory
	files       storage.FileStorage
	clock       clock.Clock
	log         *slog.Logger
}

// NewMemberService wires the member service. files may be nil when no object
// store is configured; photo operations then fail with ErrStorageUnavailable.
func NewMemberService(
	memberRepo repository.MemberRepository,
	paymentRepo repository.PaymentRepository,
	dir directory.Directory,
	files storage.FileStorage,
	clk clock.Clock,
	logger *slog.Logger,
) MemberService {
	if logger == nil {
		logger = slog.Default()
	}
	return &memberService{
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		roster:      dir,
		files:       files,
		clock:       clk,
		log:         logger,
	}
}

func (s *memberService) Today() time.Time { return s.clock.Now() }

func (s *memberService) Create(ctx context.Context, in MemberInput) (*domain.Member, error) {
	member := &domain.Member{}
	if err := s.apply(member, in); err != nil {
		return nil, err
	}
	id, err := s.memberRepo.Create(ctx, member)
	if err != nil {
		return nil, err
	}
	member.ID = id
	s.log.Info("member created", "member_id", id.Hex(), "plan", member.Plan, "expiry", member.ExpiryDate)
	return member, nil
}

func (s *memberService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

func (s *memberService) Update(ctx context.Context, id primitive.ObjectID, in MemberInput) (*domain.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(member, in); err != nil {
		return nil, err
	}
	if err := s.save(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) Deactivate(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	member.Status = string(domain.StatusExpired)
	if err := s.save(ctx, member); err != nil {
		return nil, err
	}
	s.log.Info("member deactivated", "member_id", id.Hex())
	return member, nil
}

func (s *memberService) Delete(ctx context.Context, id primitive.ObjectID) error {
	member, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	if err := s.paymentRepo.DeleteByMemberID(ctx, id); err != nil {
		s.log.Warn("failed to delete payment history", "member_id", id.Hex(), "error", err)
	}
	if member.PhotoKey != "" && s.files != nil {
		if err := s.files.DeleteObject(ctx, member.PhotoKey); err != nil {
			s.log.Warn("failed to delete member photo", "member_id", id.Hex(), "key", member.PhotoKey, "error", err)
		}
	}
	return nil
}

func (s *memberService) List(ctx context.Context, opts roster.Options) ([]domain.Member, error) {
	members, err := s.roster.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	return roster.Query(members, s.clock.Now(), opts), nil
}

func (s *memberService) BMI(ctx context.Context, id primitive.ObjectID) (*roster.BMI, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bmi := roster.MemberBMI(member.Weight, member.Height)
	if bmi == nil {
		return nil, ErrNoMeasurements
	}
	return bmi, nil
}

func (s *memberService) PhotoUploadURL(ctx context.Context, id primitive.ObjectID, contentType string) (*PhotoUpload, error) {
	if s.files == nil {
		return nil, ErrStorageUnavailable
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	key, err := storage.MemberPhotoKey(id.Hex(), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &PhotoUpload{
		Key:       key,
		URL:       url,
		ExpiresAt: s.clock.Now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

func (s *memberService) ConfirmPhoto(ctx context.Context, id primitive.ObjectID, key string) (*domain.Member, error) {
	if s.files == nil {
		return nil, ErrStorageUnavailable
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !storage.IsMemberPhotoKey(id.Hex(), key) {
		return nil, ErrPhotoKeyMismatch
	}
	exists, err := s.files.ObjectExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPhotoNotUploaded
	}

	previous := member.PhotoKey
	if err := s.memberRepo.SetPhotoKey(ctx, id, key); err != nil {
		return nil, err
	}
	member.PhotoKey = key
	if previous != "" && previous != key {
		if err := s.files.DeleteObject(ctx, previous); err != nil {
			s.log.Warn("failed to delete replaced photo", "member_id", id.Hex(), "key", previous, "error", err)
		}
	}
	return member, nil
}

func (s *memberService) PhotoURL(ctx context.Context, m *domain.Member) (string, error) {
	if m.PhotoKey == "" || s.files == nil {
		return "", nil
	}
	return s.files.GeneratePresignedDownloadURL(ctx, m.PhotoKey, storage.DefaultPresignedURLExpiry)
}

// apply validates in and copies it onto member. Dates left empty in
// the input keep member's current values and are derived only when unset.
func (s *memberService) apply(member *domain.Member, in MemberInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if in.Amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrValidationFailed)
	}
	if (in.Weight != nil && *in.Weight <= 0) || (in.Height != nil && *in.Height <= 0) {
		return fmt.Errorf("%w: weight and height must be positive", ErrValidationFailed)
	}
	plan := strings.TrimSpace(in.Plan)
	if plan == "" {
		plan = "Monthly"
	}

	now := s.clock.Now()
	loc := now.Location()
	joiningDate, expiryDate := member.JoiningDate, member.ExpiryDate

	joining, haveJoining := domain.ParseDate(joiningDate, loc)
	if in.JoiningDate != "" {
		d, ok := domain.ParseDate(in.JoiningDate, loc)
		if !ok {
			return fmt.Errorf("%w: invalid joiningDate %q", ErrValidationFailed, in.JoiningDate)
		}
		joining, haveJoining = d, true
		joiningDate = domain.FormatDate(d)
	} else if joiningDate == "" {
		joining, haveJoining = domain.CivilDay(now), true
		joiningDate = domain.FormatDate(joining)
	}

	if in.ExpiryDate != "" {
		d, ok := domain.ParseDate(in.ExpiryDate, loc)
		if !ok {
			return fmt.Errorf("%w: invalid expiryDate %q", ErrValidationFailed, in.ExpiryDate)
		}
		expiryDate = domain.FormatDate(d)
	} else if expiryDate == "" {
		if !haveJoining {
			joining = domain.CivilDay(now)
		}
		expiryDate = domain.FormatDate(roster.ExpiryFromJoining(joining, plan))
	}

	member.Name = name
	member.Phone = strings.TrimSpace(in.Phone)
	member.Plan = plan
	member.JoiningDate = joiningDate
	member.ExpiryDate = expiryDate
	member.Amount = in.Amount
	member.Weight = in.Weight
	member.Height = in.Height
	return nil
}

func (s *memberService) save(ctx context.Context, member *domain.Member) error {
	if err := s.memberRepo.Update(ctx, member); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}
