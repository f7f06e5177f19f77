package memstore

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ServiceRepo struct{ s *Store }

func (r *ServiceRepo) Create(_ context.Context, svc *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("services.create"); err != nil {
		return err
	}
	r.s.t.services[svc.ID] = *svc
	r.s.stamp(svc.ID)
	return nil
}

func (r *ServiceRepo) Update(_ context.Context, svc *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.services[svc.ID]; !ok {
		return entity.ErrNotFound
	}
	r.s.t.services[svc.ID] = *svc
	return nil
}

func (r *ServiceRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.services[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.t.services, id)
	for aid, a := range r.s.t.ads {
		if a.ProductID == id {
			r.s.deleteAds(aid)
		}
	}
	for cid, c := range r.s.t.contracts {
		if c.ProductID == id {
			r.s.deleteContract(cid)
		}
	}
	return nil
}

func (r *ServiceRepo) FindByID(_ context.Context, id string) (*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.t.services[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &svc, nil
}

func (r *ServiceRepo) List(_ context.Context) ([]entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Service{}
	for _, id := range r.s.ordered(keys(r.s.t.services)) {
		out = append(out, r.s.t.services[id])
	}
	return out, nil
}

type AdvertisingRepo struct{ s *Store }

func (r *AdvertisingRepo) Create(_ context.Context, a *entity.Advertising) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.services[a.ProductID]; !ok {
		return entity.ErrNotFound
	}
	row := *a
	row.Product = nil
	r.s.t.ads[a.ID] = row
	r.s.stamp(a.ID)
	return nil
}

func (r *AdvertisingRepo) Update(_ context.Context, a *entity.Advertising) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.ads[a.ID]; !ok {
		return entity.ErrNotFound
	}
	row := *a
	row.Product = nil
	r.s.t.ads[a.ID] = row
	return nil
}

func (r *AdvertisingRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.ads[id]; !ok {
		return entity.ErrNotFound
	}
	r.s.deleteAds(id)
	return nil
}

func (r *AdvertisingRepo) FindByID(_ context.Context, id string) (*entity.Advertising, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.t.ads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	r.s.withProduct(&a)
	return &a, nil
}

func (r *AdvertisingRepo) List(_ context.Context) ([]entity.Advertising, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Advertising{}
	for _, id := range r.s.ordered(keys(r.s.t.ads)) {
		a := r.s.t.ads[id]
		r.s.withProduct(&a)
		out = append(out, a)
	}
	return out, nil
}

type LeadRepo struct{ s *Store }

func (r *LeadRepo) checkUnique(l *entity.Lead) error {
	for id, other := range r.s.t.leads {
		if id == l.ID {
			continue
		}
		if other.Phone == l.Phone {
			return unique("leads_phone_key", "phone", l.Phone)
		}
		if other.Email == l.Email {
			return unique("leads_email_key", "email", l.Email)
		}
	}
	return nil
}

func (r *LeadRepo) Create(_ context.Context, l *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("leads.create"); err != nil {
		return err
	}
	if err := r.checkUnique(l); err != nil {
		return err
	}
	row := *l
	row.Ads = nil
	r.s.t.leads[l.ID] = row
	r.s.stamp(l.ID)
	return nil
}

func (r *LeadRepo) Update(_ context.Context, l *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("leads.update"); err != nil {
		return err
	}
	if _, ok := r.s.t.leads[l.ID]; !ok {
		return entity.ErrNotFound
	}
	if err := r.checkUnique(l); err != nil {
		return err
	}
	row := *l
	row.Ads = nil
	r.s.t.leads[l.ID] = row
	return nil
}

func (r *LeadRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.leads[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.t.leads, id)
	for cid, c := range r.s.t.customers {
		if c.LeadID == id {
			delete(r.s.t.customers, cid)
		}
	}
	return nil
}

func (r *LeadRepo) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	return r.find(func(l entity.Lead) bool { return l.ID == id })
}

func (r *LeadRepo) FindByPhone(_ context.Context, phone string) (*entity.Lead, error) {
	return r.find(func(l entity.Lead) bool { return l.Phone == phone })
}

func (r *LeadRepo) FindByEmail(_ context.Context, email string) (*entity.Lead, error) {
	return r.find(func(l entity.Lead) bool { return l.Email == email })
}

func (r *LeadRepo) FindMatching(_ context.Context, in *entity.Lead) (*entity.Lead, error) {
	return r.find(func(l entity.Lead) bool {
		return l.Matches(in.FirstName, in.LastName, in.Phone, in.Email, in.AdsID)
	})
}

func (r *LeadRepo) List(_ context.Context) ([]entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Lead{}
	for _, id := range r.s.ordered(keys(r.s.t.leads)) {
		l := r.s.t.leads[id]
		r.s.withAds(&l)
		out = append(out, l)
	}
	return out, nil
}

func (r *LeadRepo) find(match func(entity.Lead) bool) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.t.leads {
		if match(l) {
			r.s.withAds(&l)
			return &l, nil
		}
	}
	return nil, entity.ErrNotFound
}

type ContractRepo struct{ s *Store }

func (r *ContractRepo) check(c *entity.Contract) error {
	if _, ok := r.s.t.services[c.ProductID]; !ok {
		return entity.ErrNotFound
	}
	if c.EndDate.Before(c.StartDate) {
		return entity.ErrContractDates
	}
	for id, other := range r.s.t.contracts {
		if id != c.ID && other.Name == c.Name {
			return unique("contracts_name_key", "name", c.Name)
		}
	}
	return nil
}

func (r *ContractRepo) Create(_ context.Context, c *entity.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("contracts.create"); err != nil {
		return err
	}
	if err := r.check(c); err != nil {
		return err
	}
	row := *c
	row.Product = nil
	r.s.t.contracts[c.ID] = row
	r.s.stamp(c.ID)
	return nil
}

// Update keeps the stored start date.
func (r *ContractRepo) Update(_ context.Context, c *entity.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("contracts.update"); err != nil {
		return err
	}
	stored, ok := r.s.t.contracts[c.ID]
	if !ok {
		return entity.ErrNotFound
	}
	row := *c
	row.Product = nil
	row.StartDate = stored.StartDate
	if err := r.check(&row); err != nil {
		return err
	}
	r.s.t.contracts[c.ID] = row
	return nil
}

func (r *ContractRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.contracts[id]; !ok {
		return entity.ErrNotFound
	}
	r.s.deleteContract(id)
	return nil
}

func (r *ContractRepo) FindByID(_ context.Context, id string) (*entity.Contract, error) {
	return r.find(func(c entity.Contract) bool { return c.ID == id })
}

func (r *ContractRepo) FindByName(_ context.Context, name string) (*entity.Contract, error) {
	return r.find(func(c entity.Contract) bool { return c.Name == name })
}

func (r *ContractRepo) List(_ context.Context) ([]entity.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Contract{}
	for _, id := range r.s.ordered(keys(r.s.t.contracts)) {
		c := r.s.t.contracts[id]
		r.s.withService(&c)
		out = append(out, c)
	}
	return out, nil
}

func (r *ContractRepo) find(match func(entity.Contract) bool) (*entity.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.t.contracts {
		if match(c) {
			r.s.withService(&c)
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

type CustomerRepo struct{ s *Store }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("customers.create"); err != nil {
		return err
	}
	if _, ok := r.s.t.leads[c.LeadID]; !ok {
		return entity.ErrNotFound
	}
	if _, ok := r.s.t.contracts[c.ContractID]; !ok {
		return entity.ErrNotFound
	}
	for _, other := range r.s.t.customers {
		if other.LeadID == c.LeadID {
			return unique("customers_lead_id_key", "lead_id", c.LeadID)
		}
		if other.ContractID == c.ContractID {
			return unique("customers_contract_id_key", "contract_id", c.ContractID)
		}
	}
	row := *c
	row.Lead, row.Contract = nil, nil
	r.s.t.customers[c.ID] = row
	r.s.stamp(c.ID)
	return nil
}

func (r *CustomerRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.customers[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.t.customers, id)
	return nil
}

func (r *CustomerRepo) FindByID(_ context.Context, id string) (*entity.Customer, error) {
	return r.find(func(c entity.Customer) bool { return c.ID == id })
}

func (r *CustomerRepo) FindByLeadID(_ context.Context, leadID string) (*entity.Customer, error) {
	return r.find(func(c entity.Customer) bool { return c.LeadID == leadID })
}

func (r *CustomerRepo) List(_ context.Context) ([]entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Customer{}
	for _, id := range r.s.ordered(keys(r.s.t.customers)) {
		out = append(out, r.s.withLinks(r.s.t.customers[id]))
	}
	return out, nil
}

func (r *CustomerRepo) find(match func(entity.Customer) bool) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.t.customers {
		if match(c) {
			c = r.s.withLinks(c)
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

type StatisticsRepo struct{ s *Store }

func (r *StatisticsRepo) CountLeadsByAds(_ context.Context, adsID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.leadsOf(adsID), nil
}

func (r *StatisticsRepo) CountCustomersByAds(_ context.Context, adsID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, _ := r.s.customersOf(adsID)
	return n, nil
}

func (r *StatisticsRepo) SumContractCostByAds(_ context.Context, adsID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, income := r.s.customersOf(adsID)
	return income, nil
}

func (r *StatisticsRepo) AggregateByAds(_ context.Context) ([]entity.AdsAggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.AdsAggregate{}
	for _, id := range r.s.ordered(keys(r.s.t.ads)) {
		a := r.s.t.ads[id]
		customers, income := r.s.customersOf(id)
		out = append(out, entity.AdsAggregate{
			AdsID:          id,
			Name:           a.Name,
			Budget:         a.Budget,
			LeadsCount:     r.s.leadsOf(id),
			CustomersCount: customers,
			Income:         income,
		})
	}
	return out, nil
}

func (r *StatisticsRepo) Totals(_ context.Context) (*entity.TotalStatistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return &entity.TotalStatistics{
		ProductsCount:       int64(len(r.s.t.services)),
		AdvertisementsCount: int64(len(r.s.t.ads)),
		LeadsCount:          int64(len(r.s.t.leads)),
		CustomersCount:      int64(len(r.s.t.customers)),
	}, nil
}

type RoleRepo struct{ s *Store }

func (r *RoleRepo) EnsurePermissions(_ context.Context, role string, permissions []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	perms, ok := r.s.t.roles[role]
	if !ok {
		perms = map[string]bool{}
		r.s.t.roles[role] = perms
	}
	for _, p := range permissions {
		perms[p] = true
	}
	return nil
}

func (r *RoleRepo) HasPermission(_ context.Context, role, permission string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.t.roles[role][permission], nil
}

// Permissions lists the permissions granted to role, sorted.
func (r *RoleRepo) Permissions(role string) []string {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := keys(r.s.t.roles[role])
	sort.Strings(out)
	return out
}

// Cascades and joins. Callers hold s.mu.

func (s *Store) deleteAds(id string) {
	delete(s.t.ads, id)
	for lid, l := range s.t.leads {
		if l.AdsID != nil && *l.AdsID == id {
			l.AdsID = nil
			s.t.leads[lid] = l
		}
	}
}

func (s *Store) deleteContract(id string) {
	delete(s.t.contracts, id)
	for cid, c := range s.t.customers {
		if c.ContractID == id {
			delete(s.t.customers, cid)
		}
	}
}

func (s *Store) withProduct(a *entity.Advertising) {
	if svc, ok := s.t.services[a.ProductID]; ok {
		a.Product = &svc
	}
}

func (s *Store) withService(c *entity.Contract) {
	if svc, ok := s.t.services[c.ProductID]; ok {
		c.Product = &entity.Service{ID: svc.ID, Name: svc.Name}
	}
}

func (s *Store) withAds(l *entity.Lead) {
	if l.AdsID == nil {
		return
	}
	if a, ok := s.t.ads[*l.AdsID]; ok {
		l.Ads = &entity.Advertising{ID: a.ID, Name: a.Name, Channel: a.Channel}
	}
}

func (s *Store) withLinks(c entity.Customer) entity.Customer {
	lead, contract := s.t.leads[c.LeadID], s.t.contracts[c.ContractID]
	c.Lead, c.Contract = &lead, &contract
	return c
}

func (s *Store) leadsOf(adsID string) int64 {
	var n int64
	for _, l := range s.t.leads {
		if l.AdsID != nil && *l.AdsID == adsID {
			n++
		}
	}
	return n
}

func (s *Store) customersOf(adsID string) (int64, decimal.Decimal) {
	var n int64
	income := decimal.Zero
	for _, c := range s.t.customers {
		l := s.t.leads[c.LeadID]
		if l.AdsID == nil || *l.AdsID != adsID {
			continue
		}
		n++
		income = income.Add(s.t.contracts[c.ContractID].Cost)
	}
	return n, income
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
