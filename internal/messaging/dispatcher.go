// Package messaging hands WhatsApp messages to an external app. Delivery is
// fire-and-forget: a nil error means the message was handed over, not that
// it was read.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"alcyxob/gym-membership/internal/domain"
)

var (
	ErrAppUnavailable  = errors.New("messaging app not available")
	ErrMalformedNumber = errors.New("malformed phone number")
)

// DispatchError reports why a message could not be handed over. Kind is one
// of ErrAppUnavailable or ErrMalformedNumber, so errors.Is works on it.
type DispatchError struct {
	Kind  error
	Phone string
	Err   error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatch to %q: %v: %v", e.Phone, e.Kind, e.Err)
	}
	return fmt.Sprintf("dispatch to %q: %v", e.Phone, e.Kind)
}

func (e *DispatchError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Dispatcher sends a message body to a phone number.
type Dispatcher interface {
	Send(ctx context.Context, phone, body string) error
}

// Opener launches a URL in whatever can handle it. It returns
// ErrAppUnavailable (possibly wrapped) when nothing handles the scheme.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// WhatsApp dispatches through the WhatsApp app, falling back to the
// wa.me web link when the app cannot be opened.
type WhatsApp struct {
	opener             Opener
	defaultCountryCode string
	log                *slog.Logger
}

// NewWhatsApp builds a dispatcher. defaultCountryCode is prefixed to bare
// ten-digit local numbers, e.g. "91".
func NewWhatsApp(opener Opener, defaultCountryCode string, logger *slog.Logger) *WhatsApp {
	if logger == nil {
		logger = slog.Default()
	}
	return &WhatsApp{opener: opener, defaultCountryCode: domain.PhoneDigits(defaultCountryCode), log: logger}
}

// Send opens the app link first and, only if the app is unavailable, the web link.
func (w *WhatsApp) Send(ctx context.Context, phone, body string) error {
	number, err := NormalizePhone(phone, w.defaultCountryCode)
	if err != nil {
		return err
	}

	err = w.opener.Open(ctx, AppLink(number, body))
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrAppUnavailable) {
		return err
	}

	w.log.Debug("whatsapp app unavailable, using web link", "phone", number)
	if err := w.opener.Open(ctx, WebLink(number, body)); err != nil {
		if errors.Is(err, ErrAppUnavailable) {
			return &DispatchError{Kind: ErrAppUnavailable, Phone: phone, Err: err}
		}
		return err
	}
	return nil
}

// AppLink is the whatsapp:// deep link for number (digits with country code).
func AppLink(number, body string) string {
	q := url.Values{}
	q.Set("phone", number)
	q.Set("text", body)
	return "whatsapp://send?" + q.Encode()
}

// WebLink is the https://wa.me link for number.
func WebLink(number, body string) string {
	q := url.Values{}
	q.Set("text", body)
	return "https://wa.me/" + number + "?" + q.Encode()
}

// NormalizePhone reduces raw to the international digit form WhatsApp
// expects. Ten-digit local numbers, optionally with a trunk "0", get
// defaultCountryCode prefixed; the result must be 11 to 15 digits.
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	digits := domain.PhoneDigits(raw)
	if len(digits) == 11 && digits[0] == '0' {
		digits = digits[1:]
	}
	if len(digits) == 10 && defaultCountryCode != "" {
		digits = defaultCountryCode + digits
	}
	if len(digits) < 11 || len(digits) > 15 {
		return "", &DispatchError{Kind: ErrMalformedNumber, Phone: raw}
	}
	return digits, nil
}
