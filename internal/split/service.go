package split

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
	"github.com/MrJamesThe3rd/easysplit/internal/code"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=split
type Repository interface {
	CodeTaken(ctx context.Context, code string) (bool, error)
	MenuExists(ctx context.Context, code string) (bool, error)
	CreateSplit(ctx context.Context, s *Split) error
	GetSplit(ctx context.Context, code string) (*Split, error)
	// UpdateSplit overwrites every field of the split with s.Code. Last write wins.
	UpdateSplit(ctx context.Context, s *Split) error
	// ListSplitsByMenuCode returns splits seeded from a menu, newest first.
	ListSplitsByMenuCode(ctx context.Context, menuCode string) ([]*Split, error)
}

type Service struct {
	repo  Repository
	codes *code.Generator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, codes: code.New("split")}
}

// Params is the caller's view of a split. Extras holds voluntary extra contributions
// keyed by person id.
type Params struct {
	Name          string
	MenuCode      string
	People        []Person
	Items         []Item
	Quantities    []Quantity
	Extras        map[string]float64
	Draft         *Draft
	Currency      string
	ServiceCharge float64
	TipPercent    float64
}

// Settle computes totals for params without touching storage.
func Settle(params Params) (allocation.Result, error) {
	people := make([]allocation.Person, len(params.People))
	for i, p := range params.People {
		people[i] = allocation.Person{ID: p.ID, Name: p.Name}
	}

	items := make([]allocation.PricedItem, len(params.Items))
	for i, it := range params.Items {
		items[i] = allocation.PricedItem{ID: it.ID, Price: it.Price}
	}

	quantities := make([]allocation.Quantity, len(params.Quantities))
	for i, q := range params.Quantities {
		quantities[i] = allocation.Quantity{ItemID: q.ItemID, PersonID: q.PersonID, Quantity: q.Quantity}
	}

	return allocation.Settle(people, items, quantities, params.ServiceCharge, params.TipPercent, params.Extras)
}

func (s *Service) Create(ctx context.Context, params Params) (*Split, error) {
	sp, err := s.build(ctx, params)
	if err != nil {
		return nil, err
	}

	c, err := s.codes.Unique(ctx, s.repo.CodeTaken)
	if err != nil {
		return nil, fmt.Errorf("allocating split code: %w", err)
	}

	sp.Code = c

	if err := s.repo.CreateSplit(ctx, sp); err != nil {
		return nil, err
	}

	return sp, nil
}

func (s *Service) Get(ctx context.Context, splitCode string) (*Split, error) {
	return s.repo.GetSplit(ctx, code.Normalize(splitCode))
}

func (s *Service) Update(ctx context.Context, splitCode string, params Params) (*Split, error) {
	sp, err := s.build(ctx, params)
	if err != nil {
		return nil, err
	}

	sp.Code = code.Normalize(splitCode)

	if err := s.repo.UpdateSplit(ctx, sp); err != nil {
		return nil, err
	}

	return sp, nil
}

func (s *Service) ListByMenu(ctx context.Context, menuCode string) ([]*Split, error) {
	return s.repo.ListSplitsByMenuCode(ctx, code.Normalize(menuCode))
}

// build validates the menu reference and computes totals. Nothing is written when
// either step fails.
func (s *Service) build(ctx context.Context, params Params) (*Split, error) {
	menuCode := code.Normalize(params.MenuCode)

	if menuCode != "" {
		exists, err := s.repo.MenuExists(ctx, menuCode)
		if err != nil {
			return nil, fmt.Errorf("checking menu: %w", err)
		}

		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, menuCode)
		}
	}

	res, err := Settle(params)
	if err != nil {
		return nil, err
	}

	currency := strings.TrimSpace(params.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	return &Split{
		Name:          strings.TrimSpace(params.Name),
		MenuCode:      menuCode,
		People:        params.People,
		Items:         params.Items,
		Quantities:    params.Quantities,
		Totals:        Totals(res),
		Draft:         params.Draft,
		Currency:      currency,
		ServiceCharge: params.ServiceCharge,
		TipPercent:    params.TipPercent,
	}, nil
}

// Totals converts engine output to the stored representation.
func Totals(res allocation.Result) []PersonTotal {
	out := make([]PersonTotal, len(res.Totals))

	for i, t := range res.Totals {
		out[i] = PersonTotal{
			Person:            Person{ID: t.Person.ID, Name: t.Person.Name},
			Subtotal:          t.Subtotal,
			Service:           t.Service,
			Tip:               t.Tip,
			Total:             t.Total,
			ExtraContribution: t.ExtraContribution,
			BaseTotal:         t.BaseTotal,
		}
	}

	return out
}
