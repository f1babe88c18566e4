package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/easysplit/internal/code"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=menu
type Repository interface {
	CodeTaken(ctx context.Context, code string) (bool, error)
	CreateMenu(ctx context.Context, m *Menu) error
	GetMenu(ctx context.Context, code string) (*Menu, error)
	// UpdateMenu replaces name, currency and the whole item list of the menu with m.Code.
	UpdateMenu(ctx context.Context, m *Menu) error
	DeleteMenu(ctx context.Context, code string) error
}

type Service struct {
	repo  Repository
	codes *code.Generator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, codes: code.New("menu")}
}

type Params struct {
	Name     string
	Currency string
	Items    []ItemParams
}

type ItemParams struct {
	Name  string
	Price float64
}

func (p Params) build() *Menu {
	m := &Menu{
		Name:     strings.TrimSpace(p.Name),
		Currency: strings.TrimSpace(p.Currency),
		Items:    make([]Item, 0, len(p.Items)),
	}

	if m.Currency == "" {
		m.Currency = DefaultCurrency
	}

	for _, it := range p.Items {
		m.Items = append(m.Items, Item{Name: strings.TrimSpace(it.Name), Price: it.Price})
	}

	return m
}

func (s *Service) Create(ctx context.Context, params Params) (*Menu, error) {
	c, err := s.codes.Unique(ctx, s.repo.CodeTaken)
	if err != nil {
		return nil, fmt.Errorf("allocating menu code: %w", err)
	}

	m := params.build()
	m.Code = c

	if err := s.repo.CreateMenu(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) Get(ctx context.Context, menuCode string) (*Menu, error) {
	return s.repo.GetMenu(ctx, code.Normalize(menuCode))
}

func (s *Service) Update(ctx context.Context, menuCode string, params Params) (*Menu, error) {
	m := params.build()
	m.Code = code.Normalize(menuCode)

	if err := s.repo.UpdateMenu(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) Delete(ctx context.Context, menuCode string) error {
	return s.repo.DeleteMenu(ctx, code.Normalize(menuCode))
}
