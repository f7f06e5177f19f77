// Package memstore is an in-memory implementation of the repositories. It
// enforces the unique, check and cascade rules of the SQL schema and rolls
// back everything written inside a failed transaction.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type txKey struct{}

type tables struct {
	services  map[string]entity.Service
	ads       map[string]entity.Advertising
	leads     map[string]entity.Lead
	contracts map[string]entity.Contract
	customers map[string]entity.Customer
	roles     map[string]map[string]bool
	seq       map[string]int
}

func (t tables) clone() tables {
	c := tables{
		services:  make(map[string]entity.Service, len(t.services)),
		ads:       make(map[string]entity.Advertising, len(t.ads)),
		leads:     make(map[string]entity.Lead, len(t.leads)),
		contracts: make(map[string]entity.Contract, len(t.contracts)),
		customers: make(map[string]entity.Customer, len(t.customers)),
		roles:     make(map[string]map[string]bool, len(t.roles)),
		seq:       make(map[string]int, len(t.seq)),
	}
	for k, v := range t.services {
		c.services[k] = v
	}
	for k, v := range t.ads {
		c.ads[k] = v
	}
	for k, v := range t.leads {
		c.leads[k] = v
	}
	for k, v := range t.contracts {
		c.contracts[k] = v
	}
	for k, v := range t.customers {
		c.customers[k] = v
	}
	for k, v := range t.roles {
		perms := make(map[string]bool, len(v))
		for p := range v {
			perms[p] = true
		}
		c.roles[k] = perms
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	t    tables
	next int

	// FailOn makes the named operation ("leads.create", "customers.create",
	// ...) return the error once.
	FailOn map[string]error
}

func New() *Store {
	return &Store{t: tables{}.clone(), FailOn: map[string]error{}}
}

func (s *Store) Services() *ServiceRepo { return &ServiceRepo{s} }
func (s *Store) Ads() *AdvertisingRepo { return &AdvertisingRepo{s} }
func (s *Store) Leads() *LeadRepo { return &LeadRepo{s} }
func (s *Store) Contracts() *ContractRepo { return &ContractRepo{s} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s} }
func (s *Store) Statistics() *StatisticsRepo { return &StatisticsRepo{s} }
func (s *Store) Roles() *RoleRepo { return &RoleRepo{s} }
func (s *Store) TxManager() *TxManager { return &TxManager{s} }

// Count returns the number of rows in table.
func (s *Store) Count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch table {
	case "services":
		return len(s.t.services)
	case "advertisements":
		return len(s.t.ads)
	case "leads":
		return len(s.t.leads)
	case "contracts":
		return len(s.t.contracts)
	case "customers":
		return len(s.t.customers)
	}
	panic("unknown table " + table)
}

func (s *Store) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		delete(s.FailOn, op)
		return err
	}
	return nil
}

func (s *Store) stamp(id string) {
	s.next++
	s.t.seq[id] = s.next
}

// ordered returns ids sorted by insertion.
func (s *Store) ordered(ids []string) []string {
	sort.Slice(ids, func(i, j int) bool { return s.t.seq[ids[i]] < s.t.seq[ids[j]] })
	return ids
}

func unique(constraint, column, value string) *entity.ConflictError {
	return &entity.ConflictError{
		Constraint: constraint,
		Field:      fieldOf(constraint),
		Value:      value,
		Detail:     fmt.Sprintf("Key (%s)=(%s) already exists.", column, value),
	}
}

func fieldOf(constraint string) string {
	switch constraint {
	case "leads_phone_key":
		return "phone"
	case "leads_email_key":
		return "email"
	case "contracts_name_key":
		return "name"
	case "customers_lead_id_key":
		return "lead"
	case "customers_contract_id_key":
		return "contract"
	}
	return ""
}

// TxManager snapshots the tables on entry and restores them when fn fails.
type TxManager struct{ s *Store }

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	m.s.mu.Lock()
	snapshot, next := m.s.t.clone(), m.s.next
	m.s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.s.mu.Lock()
		m.s.t, m.s.next = snapshot, next
		m.s.mu.Unlock()
		return err
	}
	return nil
}
