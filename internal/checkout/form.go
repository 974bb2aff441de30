package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepComplete:
		return "complete"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	ErrStepIncomplete = errors.New("checkout step is incomplete")
	ErrNotReviewed    = errors.New("checkout is not at the review step")
	ErrCompleted      = errors.New("checkout already completed")
)

type ShippingInfo struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zip_code" validate:"required"`
	Country   string `json:"country" validate:"required,iso3166_1_alpha2"`
}

// PaymentInfo is collected for the form flow only; it is never stored or charged.
type PaymentInfo struct {
	CardNumber string `json:"card_number" validate:"required,credit_card"`
	ExpiryDate string `json:"expiry_date" validate:"required,card_expiry"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	CardName   string `json:"card_name" validate:"required"`
}

// CartSource is the part of the cart store checkout needs. Drain must
// return the cart and empty it atomically.
type CartSource interface {
	Cart() domain.Cart
	Drain(ctx context.Context) domain.Cart
}

type Confirmation struct {
	OrderNumber string
	PlacedAt    time.Time
	Email       string
	ShipTo      string
	Lines       []domain.LineItem
	Summary     Summary
	CardLast4   string
}

// Form walks shipping, payment and review. Completing it clears the cart;
// no payment is taken.
type Form struct {
	cart   CartSource
	policy Policy

	step     Step
	shipping *ShippingInfo
	payment  *PaymentInfo
}

func NewForm(cart CartSource, policy Policy) (*Form, error) {
	if cart.Cart().IsEmpty() {
		return nil, ErrEmptyCart
	}

	return &Form{
		cart:   cart,
		policy: policy,
		step:   StepShipping,
	}, nil
}

func (f *Form) Step() Step {
	return f.step
}

// Summary prices the current cart contents.
func (f *Form) Summary() Summary {
	return f.policy.Summarize(f.cart.Cart().Total())
}

func (f *Form) SetShipping(info ShippingInfo) error {
	if f.step == StepComplete {
		return ErrCompleted
	}

	info.Country = strings.ToUpper(strings.TrimSpace(info.Country))
	if err := validateStruct(info); err != nil {
		return err
	}

	f.shipping = &info
	return nil
}

func (f *Form) SetPayment(info PaymentInfo) error {
	if f.step == StepComplete {
		return ErrCompleted
	}

	info.CardNumber = strings.ReplaceAll(info.CardNumber, " ", "")
	if err := validateStruct(info); err != nil {
		return err
	}

	f.payment = &info
	return nil
}

// Next advances once the current step's data has been accepted.
func (f *Form) Next() error {
	switch f.step {
	case StepShipping:
		if f.shipping == nil {
			return fmt.Errorf("%s: %w", f.step, ErrStepIncomplete)
		}
	case StepPayment:
		if f.payment == nil {
			return fmt.Errorf("%s: %w", f.step, ErrStepIncomplete)
		}
	case StepReview:
		return ErrNotReviewed
	case StepComplete:
		return ErrCompleted
	}

	f.step++
	return nil
}

func (f *Form) Back() {
	if f.step > StepShipping && f.step < StepComplete {
		f.step--
	}
}

// Complete places the order from the review step and empties the cart.
func (f *Form) Complete(ctx context.Context) (Confirmation, error) {
	switch f.step {
	case StepComplete:
		return Confirmation{}, ErrCompleted
	case StepReview:
	default:
		return Confirmation{}, ErrNotReviewed
	}

	c := f.cart.Drain(ctx)
	if c.IsEmpty() {
		return Confirmation{}, ErrEmptyCart
	}

	conf := Confirmation{
		OrderNumber: orderNumber(),
		PlacedAt:    time.Now().UTC(),
		Email:       f.shipping.Email,
		ShipTo:      f.shipping.FirstName + " " + f.shipping.LastName,
		Lines:       c.Items,
		Summary:     f.policy.Summarize(c.Total()),
		CardLast4:   last4(f.payment.CardNumber),
	}

	f.step = StepComplete
	f.payment = nil

	return conf, nil
}

func orderNumber() string {
	id := uuid.New()
	return "SB-" + strings.ToUpper(id.String()[:8])
}

func last4(card string) string {
	if len(card) <= 4 {
		return card
	}
	return card[len(card)-4:]
}
