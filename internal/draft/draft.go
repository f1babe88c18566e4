// Package draft is the editable, in-memory form of a split.
//
// People are assigned to order items the way a table orders: each order item is one
// instance of a menu line, owned by whoever ordered it and shared evenly between its
// assignees. Payload flattens that model into the quantity links the API stores.
package draft

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
	"github.com/MrJamesThe3rd/easysplit/internal/client"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

const (
	DefaultCurrency      = split.DefaultCurrency
	DefaultServiceCharge = 12.5
)

var (
	ErrUnknownPerson = errors.New("unknown person")
	ErrUnknownItem   = errors.New("unknown order item")
	ErrInvalid       = errors.New("invalid draft value")
)

type Person struct {
	ID   string
	Name string
	// Extra is a voluntary amount on top of the person's share.
	Extra float64
}

type OrderItem struct {
	InstanceID string
	OriginalID int64
	Name       string
	Price      float64
	OwnerID    string
	AssignedTo []string
}

type Draft struct {
	Name          string
	MenuCode      string
	Currency      string
	ServiceCharge float64
	TipPercent    float64
	People        []Person
	Items         []OrderItem

	// catalog holds the lines items can be ordered from, keyed by id.
	catalog []split.Item
}

func New() *Draft {
	return &Draft{Currency: DefaultCurrency, ServiceCharge: DefaultServiceCharge}
}

// FromSplit reopens a saved split. The stored draft is used when present; otherwise order
// items are rebuilt from the quantity links without changing anyone's share.
func FromSplit(sp *client.Split) *Draft {
	d := &Draft{
		Name:          sp.Name,
		MenuCode:      sp.MenuCode,
		Currency:      sp.Currency,
		ServiceCharge: sp.ServiceCharge,
		TipPercent:    sp.TipPercent,
		People:        make([]Person, len(sp.People)),
		catalog:       append([]split.Item(nil), sp.Items...),
	}

	extras := make(map[string]float64, len(sp.Totals))
	for _, t := range sp.Totals {
		extras[t.Person.ID] = t.ExtraContribution
	}

	for i, p := range sp.People {
		d.People[i] = Person{ID: p.ID, Name: p.Name, Extra: extras[p.ID]}
	}

	if sp.Draft != nil {
		for _, oi := range sp.Draft.OrderItems {
			d.Items = append(d.Items, OrderItem{
				InstanceID: oi.InstanceID,
				OriginalID: oi.OriginalID,
				Name:       oi.Name,
				Price:      oi.Price,
				OwnerID:    oi.OwnerID,
				AssignedTo: append([]string(nil), oi.AssignedTo...),
			})
		}

		return d
	}

	links := make(map[int64][]split.Quantity, len(sp.Items))
	for _, q := range sp.Quantities {
		links[q.ItemID] = append(links[q.ItemID], q)
	}

	for _, it := range sp.Items {
		d.Items = append(d.Items, rebuildItem(it, links[it.ID])...)
	}

	return d
}

// evenTolerance absorbs the float noise of stored 1/k multipliers.
const evenTolerance = 1e-6

// rebuildItem turns one stored item and its quantity links back into order items.
// Links that split the item evenly become one shared order item. Any other shape gets one
// order item per person priced at price × quantity, so every stored share survives.
func rebuildItem(it split.Item, links []split.Quantity) []OrderItem {
	order := make([]string, 0, len(links))
	shares := make(map[string]float64, len(links))

	for _, q := range links {
		if q.Quantity <= 0 {
			continue
		}

		if _, ok := shares[q.PersonID]; !ok {
			order = append(order, q.PersonID)
		}

		shares[q.PersonID] += q.Quantity
	}

	if isEvenSplit(order, shares) {
		return []OrderItem{{
			InstanceID: uuid.NewString(),
			OriginalID: it.ID,
			Name:       it.Name,
			Price:      it.Price,
			AssignedTo: order,
		}}
	}

	out := make([]OrderItem, 0, len(order))
	for _, id := range order {
		out = append(out, OrderItem{
			InstanceID: uuid.NewString(),
			OriginalID: it.ID,
			Name:       it.Name,
			Price:      it.Price * shares[id],
			AssignedTo: []string{id},
		})
	}

	return out
}

func isEvenSplit(order []string, shares map[string]float64) bool {
	if len(order) == 0 {
		return true
	}

	want := 1 / float64(len(order))
	for _, id := range order {
		if math.Abs(shares[id]-want) > evenTolerance {
			return false
		}
	}

	return true
}

// Catalog returns the lines that can be ordered.
func (d *Draft) Catalog() []split.Item {
	return d.catalog
}

// LoadMenu replaces the catalog with a menu's items and links the draft to the menu.
// Existing order items are kept.
func (d *Draft) LoadMenu(code string, m *client.MenuWithItems) {
	d.MenuCode = strings.ToUpper(strings.TrimSpace(code))
	if m.Menu.Currency != "" {
		d.Currency = m.Menu.Currency
	}

	d.catalog = make([]split.Item, len(m.Items))
	for i, it := range m.Items {
		d.catalog[i] = split.Item{ID: it.ID, Name: it.Name, Price: it.Price}
	}
}

func (d *Draft) AddPerson(name string) (Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Person{}, fmt.Errorf("%w: person name is empty", ErrInvalid)
	}

	p := Person{ID: uuid.NewString(), Name: name}
	d.People = append(d.People, p)

	return p, nil
}

func (d *Draft) RenamePerson(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: person name is empty", ErrInvalid)
	}

	i := d.personIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, id)
	}

	d.People[i].Name = name

	return nil
}

// RemovePerson drops the person and every assignment to them. Items they owned lose
// their owner; an item left with no assignees stays on the bill unbilled.
func (d *Draft) RemovePerson(id string) error {
	i := d.personIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, id)
	}

	d.People = append(d.People[:i], d.People[i+1:]...)

	for j := range d.Items {
		item := &d.Items[j]

		if item.OwnerID == id {
			item.OwnerID = ""
		}

		kept := item.AssignedTo[:0]
		for _, pid := range item.AssignedTo {
			if pid != id {
				kept = append(kept, pid)
			}
		}

		item.AssignedTo = kept
	}

	return nil
}

// SetExtra records a voluntary extra contribution. Zero clears it.
func (d *Draft) SetExtra(id string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: extra contribution must not be negative", ErrInvalid)
	}

	i := d.personIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, id)
	}

	d.People[i].Extra = allocation.Round2(amount)

	return nil
}

func (d *Draft) SetRates(serviceCharge, tipPercent float64) error {
	if serviceCharge < 0 || serviceCharge > 100 || tipPercent < 0 || tipPercent > 100 {
		return fmt.Errorf("%w: rates must be between 0 and 100", ErrInvalid)
	}

	d.ServiceCharge = serviceCharge
	d.TipPercent = tipPercent

	return nil
}

// AddItem orders a new line. A non-empty ownerID also assigns the item to its owner.
func (d *Draft) AddItem(name string, price float64, ownerID string) (OrderItem, error) {
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return OrderItem{}, fmt.Errorf("%w: item needs a name and a positive price", ErrInvalid)
	}

	if ownerID != "" && d.personIndex(ownerID) < 0 {
		return OrderItem{}, fmt.Errorf("%w: %s", ErrUnknownPerson, ownerID)
	}

	originalID := d.catalogID(name, price)

	item := OrderItem{
		InstanceID: uuid.NewString(),
		OriginalID: originalID,
		Name:       name,
		Price:      price,
		OwnerID:    ownerID,
		AssignedTo: []string{},
	}

	if ownerID != "" {
		item.AssignedTo = append(item.AssignedTo, ownerID)
	}

	d.Items = append(d.Items, item)

	return item, nil
}

// AddCatalogItem orders one instance of a catalog line.
func (d *Draft) AddCatalogItem(itemID int64, ownerID string) (OrderItem, error) {
	for _, it := range d.catalog {
		if it.ID == itemID {
			return d.AddItem(it.Name, it.Price, ownerID)
		}
	}

	return OrderItem{}, fmt.Errorf("%w: catalog item %d", ErrUnknownItem, itemID)
}

func (d *Draft) RemoveItem(instanceID string) error {
	i := d.itemIndex(instanceID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, instanceID)
	}

	d.Items = append(d.Items[:i], d.Items[i+1:]...)

	return nil
}

// Assign replaces an item's assignees. The price is split evenly between them.
func (d *Draft) Assign(instanceID string, personIDs []string) error {
	i := d.itemIndex(instanceID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, instanceID)
	}

	set := make([]string, 0, len(personIDs))
	seen := make(map[string]struct{}, len(personIDs))

	for _, id := range personIDs {
		if d.personIndex(id) < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownPerson, id)
		}

		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		set = append(set, id)
	}

	d.Items[i].AssignedTo = set

	return nil
}

// Toggle adds the person to the item's assignees, or removes them if already present.
func (d *Draft) Toggle(instanceID, personID string) error {
	i := d.itemIndex(instanceID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, instanceID)
	}

	if d.personIndex(personID) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPerson, personID)
	}

	item := &d.Items[i]

	for j, id := range item.AssignedTo {
		if id == personID {
			item.AssignedTo = append(item.AssignedTo[:j], item.AssignedTo[j+1:]...)
			return nil
		}
	}

	item.AssignedTo = append(item.AssignedTo, personID)

	return nil
}

// Totals computes live totals, extra contributions included.
func (d *Draft) Totals() (allocation.Result, error) {
	people := make([]allocation.Person, len(d.People))
	extras := make(map[string]float64, len(d.People))

	for i, p := range d.People {
		people[i] = allocation.Person{ID: p.ID, Name: p.Name}
		extras[p.ID] = p.Extra
	}

	items := make([]allocation.Item, len(d.Items))
	for i, it := range d.Items {
		items[i] = allocation.Item{Price: it.Price, Assignees: it.AssignedTo}
	}

	return allocation.Redistribute(allocation.Compute(people, items, d.ServiceCharge, d.TipPercent), extras)
}

// Validate reports whether the draft can be saved: the API needs at least one person,
// one item and one assignment.
func (d *Draft) Validate() error {
	switch {
	case len(d.People) == 0:
		return fmt.Errorf("%w: add at least one person", ErrInvalid)
	case len(d.Items) == 0:
		return fmt.Errorf("%w: add at least one item", ErrInvalid)
	}

	for _, it := range d.Items {
		if len(it.AssignedTo) > 0 {
			return nil
		}
	}

	return fmt.Errorf("%w: assign at least one item", ErrInvalid)
}

// Payload flattens the draft for saving. Each order item becomes its own item and each
// of its k assignees gets a quantity of 1/k. The draft itself travels along so the split
// can be reopened with its assignment model intact.
func (d *Draft) Payload() (client.SplitInput, error) {
	res, err := d.Totals()
	if err != nil {
		return client.SplitInput{}, err
	}

	in := client.SplitInput{
		Name:          strings.TrimSpace(d.Name),
		MenuCode:      d.MenuCode,
		People:        make([]split.Person, len(d.People)),
		Items:         make([]split.Item, len(d.Items)),
		Quantities:    []split.Quantity{},
		Currency:      d.Currency,
		ServiceCharge: d.ServiceCharge,
		TipPercent:    d.TipPercent,
		Totals:        split.Totals(res),
		Draft:         &split.Draft{OrderItems: make([]split.OrderItem, len(d.Items))},
	}

	for i, p := range d.People {
		in.People[i] = split.Person{ID: p.ID, Name: p.Name}
	}

	for i, it := range d.Items {
		id := int64(i + 1)
		in.Items[i] = split.Item{ID: id, Name: it.Name, Price: it.Price}

		for _, pid := range it.AssignedTo {
			in.Quantities = append(in.Quantities, split.Quantity{
				ItemID:   id,
				PersonID: pid,
				Quantity: 1 / float64(len(it.AssignedTo)),
			})
		}

		in.Draft.OrderItems[i] = split.OrderItem{
			InstanceID: it.InstanceID,
			OriginalID: it.OriginalID,
			Name:       it.Name,
			Price:      it.Price,
			OwnerID:    it.OwnerID,
			AssignedTo: append([]string{}, it.AssignedTo...),
		}
	}

	return in, nil
}

func (d *Draft) personIndex(id string) int {
	for i, p := range d.People {
		if p.ID == id {
			return i
		}
	}

	return -1
}

func (d *Draft) itemIndex(instanceID string) int {
	for i, it := range d.Items {
		if it.InstanceID == instanceID {
			return i
		}
	}

	return -1
}

// catalogID returns the id of the catalog line matching name and price, adding one when
// the item was typed in by hand.
func (d *Draft) catalogID(name string, price float64) int64 {
	var maxID int64

	for _, it := range d.catalog {
		if strings.EqualFold(it.Name, name) && it.Price == price {
			return it.ID
		}

		maxID = max(maxID, it.ID)
	}

	id := maxID + 1
	d.catalog = append(d.catalog, split.Item{ID: id, Name: name, Price: price})

	return id
}
