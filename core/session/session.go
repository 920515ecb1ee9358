// Package session walks a user through pricing selections.
//
// The walk is an explicit state machine: region, service, pricing model,
// product family, option, quantity. Every menu carries the two universal
// controls "back" and "done"; confirmed quantities become line items, and
// already-added items survive any later failure.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"aws-cost/core/catalog"
	"aws-cost/core/cost"
	"aws-cost/core/offers"
	"aws-cost/core/options"
	"aws-cost/internal/errors"
)

// State identifies one step of the selection walk
type State int

const (
	// StateSelectRegion chooses from the fixed region enumeration
	StateSelectRegion State = iota

	// StateSelectService chooses a service from the catalog
	StateSelectService

	// StateSelectPricingModel chooses among the document's pricing models
	StateSelectPricingModel

	// StateSelectProductFamily chooses a family under the chosen model
	StateSelectProductFamily

	// StateSelectOption chooses one pricing option within the family
	StateSelectOption

	// StateEnterQuantity confirms a positive quantity for the option
	StateEnterQuantity

	// StateDone is terminal; the accumulated items are final
	StateDone
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateSelectRegion:
		return "select-region"
	case StateSelectService:
		return "select-service"
	case StateSelectPricingModel:
		return "select-pricing-model"
	case StateSelectProductFamily:
		return "select-product-family"
	case StateSelectOption:
		return "select-option"
	case StateEnterQuantity:
		return "enter-quantity"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Control is a universal menu control
type Control int

const (
	// ControlNone means a regular menu item was chosen
	ControlNone Control = iota

	// ControlBack steps one level up
	ControlBack

	// ControlDone finishes the current depth
	ControlDone
)

// Choice is one answer to a menu prompt. Index is valid only when Control
// is ControlNone.
type Choice struct {
	Index   int
	Control Control
}

// Prompter is the user interaction boundary. Implementations present one
// menu or free-text prompt at a time and hand back exactly one answer.
type Prompter interface {
	// Select presents a menu plus the universal back/done controls
	Select(title string, items []string) (Choice, error)

	// Input asks for one free-text value
	Input(prompt string) (string, error)

	// Info reports progress
	Info(format string, args ...interface{})

	// Failure reports a recoverable failure
	Failure(format string, args ...interface{})
}

// ServiceLister enumerates the catalog's service codes
type ServiceLister interface {
	ServiceCodes() []string
}

// Config configures a session
type Config struct {
	// Services lists selectable service codes
	Services ServiceLister

	// Source produces regional pricing documents
	Source offers.Source

	// Prompter is the user boundary
	Prompter Prompter

	// Region preselects a region and skips the region menu when known
	Region string

	// Currency stamps created line items (default USD)
	Currency string

	// Logger receives debug output; nil means silent
	Logger *zap.Logger
}

// Session accumulates line items across selection cycles
type Session struct {
	services ServiceLister
	source   offers.Source
	prompter Prompter
	currency string
	logger   *zap.Logger

	state       State
	region      string
	serviceCode string
	doc         *offers.RegionPricingDocument
	model       offers.PricingModel
	family      string
	pending     *options.PricingOption
	items       []cost.LineItem
}

// New creates a session. A preset region that is not in the enumeration is
// ignored and the region menu is shown instead.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}

	s := &Session{
		services: cfg.Services,
		source:   cfg.Source,
		prompter: cfg.Prompter,
		currency: currency,
		logger:   logger,
		state:    StateSelectRegion,
	}

	if cfg.Region != "" {
		if catalog.IsKnownRegion(cfg.Region) {
			s.region = cfg.Region
			s.state = StateSelectService
		} else {
			logger.Warn("ignoring unknown preset region", zap.String("region", cfg.Region))
		}
	}

	return s
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Region returns the chosen region, or "" before one is chosen
func (s *Session) Region() string {
	return s.region
}

// Items returns a copy of the accumulated line items
func (s *Session) Items() []cost.LineItem {
	items := make([]cost.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// Run drives the state machine until done. The returned items are always
// the full accumulation, including when the prompter fails mid-walk, so
// callers can still summarize partial progress.
func (s *Session) Run(ctx context.Context) ([]cost.LineItem, error) {
	for s.state != StateDone {
		if err := ctx.Err(); err != nil {
			return s.Items(), err
		}

		var err error
		switch s.state {
		case StateSelectRegion:
			err = s.selectRegion()
		case StateSelectService:
			err = s.selectService(ctx)
		case StateSelectPricingModel:
			err = s.selectModel()
		case StateSelectProductFamily:
			err = s.selectFamily()
		case StateSelectOption:
			err = s.selectOption()
		case StateEnterQuantity:
			err = s.enterQuantity()
		default:
			err = errors.Newf(errors.TypeInternal, "session reached invalid state %d", s.state)
		}
		if err != nil {
			return s.Items(), err
		}
	}

	s.logger.Debug("session finished", zap.Int("items", len(s.items)))
	return s.Items(), nil
}

func (s *Session) selectRegion() error {
	regions := catalog.Regions()
	labels := make([]string, len(regions))
	for i, r := range regions {
		labels[i] = fmt.Sprintf("%s (%s)", r.Code, r.Location)
	}

	choice, err := s.prompter.Select("Select a region", labels)
	if err != nil {
		return err
	}
	if choice.Control != ControlNone {
		// Aborting before a region is chosen ends the session empty.
		s.state = StateDone
		return nil
	}

	s.region = regions[choice.Index].Code
	s.state = StateSelectService
	return nil
}

func (s *Session) selectService(ctx context.Context) error {
	codes := s.services.ServiceCodes()

	choice, err := s.prompter.Select(fmt.Sprintf("Select a service [%s]", s.region), codes)
	if err != nil {
		return err
	}
	switch choice.Control {
	case ControlDone:
		s.state = StateDone
		return nil
	case ControlBack:
		s.state = StateSelectRegion
		return nil
	}

	code := codes[choice.Index]
	doc, err := s.source.FetchRegionalPricing(ctx, code, s.region)
	if err != nil {
		if recoverable(err) {
			s.prompter.Failure("Could not load pricing for %s: %v", code, err)
			s.logger.Warn("pricing fetch failed",
				zap.String("service", code),
				zap.String("region", s.region),
				zap.Error(err))
			return nil
		}
		return err
	}

	s.serviceCode = code
	s.doc = doc
	s.state = StateSelectPricingModel
	return nil
}

func (s *Session) selectModel() error {
	models := options.Models(s.doc)
	if len(models) == 0 {
		s.prompter.Failure("%s has no pricing models in %s", s.serviceCode, s.region)
		s.state = StateSelectService
		return nil
	}

	labels := make([]string, len(models))
	for i, m := range models {
		labels[i] = m.String()
	}

	choice, err := s.prompter.Select(fmt.Sprintf("Select a pricing model for %s", s.serviceCode), labels)
	if err != nil {
		return err
	}
	if choice.Control != ControlNone {
		// Both controls finish this service and return to the service menu.
		s.state = StateSelectService
		return nil
	}

	s.model = models[choice.Index]
	s.state = StateSelectProductFamily
	return nil
}

func (s *Session) selectFamily() error {
	families := options.Families(s.doc, s.model)
	if len(families) == 0 {
		s.prompter.Failure("%s has no product families under %s", s.serviceCode, s.model)
		s.state = StateSelectPricingModel
		return nil
	}

	choice, err := s.prompter.Select(fmt.Sprintf("Select a product family (%s)", s.model), families)
	if err != nil {
		return err
	}
	switch choice.Control {
	case ControlBack:
		s.state = StateSelectPricingModel
		return nil
	case ControlDone:
		s.state = StateSelectService
		return nil
	}

	s.family = families[choice.Index]
	s.state = StateSelectOption
	return nil
}

func (s *Session) selectOption() error {
	opts := options.BuildOptions(s.doc, s.model, s.family)
	if len(opts) == 0 {
		s.prompter.Failure("No options for %s / %s", s.model, s.family)
		s.state = StateSelectProductFamily
		return nil
	}

	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = fmt.Sprintf("%s (%s per %s)", o.Label, o.PricePerUnit.String(), o.Unit)
	}

	choice, err := s.prompter.Select(fmt.Sprintf("Select an option (%s)", s.family), labels)
	if err != nil {
		return err
	}
	switch choice.Control {
	case ControlBack:
		s.state = StateSelectProductFamily
		return nil
	case ControlDone:
		s.state = StateSelectService
		return nil
	}

	s.pending = &opts[choice.Index]
	s.state = StateEnterQuantity
	return nil
}

func (s *Session) enterQuantity() error {
	opt := s.pending
	prompt := fmt.Sprintf("Quantity (%s)", opt.Unit)

	for {
		text, err := s.prompter.Input(prompt)
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.EqualFold(trimmed, "back") {
			s.pending = nil
			s.state = StateSelectOption
			return nil
		}

		qty, verr := ParseQuantity(trimmed)
		if verr != nil {
			s.prompter.Failure("%s", verr.Message)
			continue
		}

		item := cost.NewLineItem(cost.LineItem{
			Service:      s.serviceCode,
			PricingModel: s.model.String(),
			SKU:          opt.SKU,
			Family:       s.family,
			Label:        opt.Label,
			Region:       s.region,
			Unit:         opt.Unit,
			UnitPrice:    opt.PricePerUnit,
			Quantity:     qty,
			Currency:     s.currency,
		})
		s.items = append(s.items, item)

		s.prompter.Info("Added %s x %s = %s %s", opt.Label, qty.String(), item.Cost.String(), item.Currency)
		s.logger.Debug("line item added",
			zap.String("service", item.Service),
			zap.String("sku", item.SKU),
			zap.String("quantity", qty.String()),
			zap.String("cost", item.Cost.String()))

		s.pending = nil
		s.state = StateSelectProductFamily
		return nil
	}
}

// ParseQuantity validates a free-text quantity. Any positive decimal is
// accepted; zero, negatives, and non-numbers are input errors.
func ParseQuantity(text string) (decimal.Decimal, *errors.Error) {
	qty, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, errors.Inputf("quantity must be a number, got %q", text)
	}
	if !qty.IsPositive() {
		return decimal.Decimal{}, errors.Inputf("quantity must be positive, got %s", qty.String())
	}
	return qty, nil
}

// recoverable reports whether a fetch failure should return the session to
// the service menu instead of ending the walk.
func recoverable(err error) bool {
	return errors.IsType(err, errors.TypeNetwork) ||
		errors.IsType(err, errors.TypeNotFound) ||
		errors.IsType(err, errors.TypeEmptyResult)
}
