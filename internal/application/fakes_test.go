package application

import (
	"context"
	"encoding/base64"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	repo "github.com/oksasatya/inventory-sales-api/internal/domain/repository"
	"github.com/oksasatya/inventory-sales-api/pkg/mailer"
)

var pngDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(
	[]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"))

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type fakeUsers struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*entity.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[bson.ObjectID]*entity.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.users {
		if x.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	u.ID = bson.NewObjectID()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) get(id bson.ObjectID) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id bson.ObjectID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) mutate(id bson.ObjectID, fn func(u *entity.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	fn(u)
	return nil
}

func (f *fakeUsers) SetVerificationCode(_ context.Context, id bson.ObjectID, code string) error {
	return f.mutate(id, func(u *entity.User) { u.VerificationCode = code })
}

func (f *fakeUsers) MarkVerified(_ context.Context, id bson.ObjectID) error {
	return f.mutate(id, func(u *entity.User) { u.Verified = true })
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id bson.ObjectID, hash string) error {
	return f.mutate(id, func(u *entity.User) {
		u.Password = hash
		u.ResetCode = ""
		u.ResetCodeExpiresAt = nil
	})
}

func (f *fakeUsers) SetResetCode(_ context.Context, id bson.ObjectID, code string, expiresAt time.Time) error {
	return f.mutate(id, func(u *entity.User) {
		u.ResetCode = code
		u.ResetCodeExpiresAt = &expiresAt
	})
}

func (f *fakeUsers) GetByResetCode(_ context.Context, email, code string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.ResetCodeValid(code, now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUsers) UpdateImage(_ context.Context, id bson.ObjectID, url string) error {
	return f.mutate(id, func(u *entity.User) { u.ImageURL = url })
}

// fakeProducts applies sales under a lock so it behaves like the
// conditional update of the real store.
type fakeProducts struct {
	mu       sync.Mutex
	products map[bson.ObjectID]*entity.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: map[bson.ObjectID]*entity.Product{}}
}

func clone(p *entity.Product) *entity.Product {
	cp := *p
	cp.Sizes = append([]entity.SizeStock(nil), p.Sizes...)
	cp.Sales = append([]entity.Sale{}, p.Sales...)
	return &cp
}

func (f *fakeProducts) Create(_ context.Context, p *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.products {
		if x.Name == p.Name {
			return repo.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	f.products[p.ID] = clone(p)
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id bson.ObjectID) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(p), nil
}

func (f *fakeProducts) GetByName(_ context.Context, name string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Name == name {
			return clone(p), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProducts) List(_ context.Context) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BuyingDate.After(out[j].BuyingDate) })
	return out, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, *clone(p))
		}
	}
	return out, nil
}

func (f *fakeProducts) SearchByName(_ context.Context, q string, limit int) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Product{}
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) && len(out) < limit {
			out = append(out, *clone(p))
		}
	}
	return out, nil
}

func (f *fakeProducts) Update(_ context.Context, id bson.ObjectID, upd repo.ProductUpdate) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if upd.Name != nil {
		for _, x := range f.products {
			if x.ID != id && x.Name == *upd.Name {
				return nil, repo.ErrDuplicate
			}
		}
		p.Name = *upd.Name
	}
	if upd.NumberInStock != nil {
		p.NumberInStock = *upd.NumberInStock
	}
	if upd.BuyingPrice != nil {
		p.BuyingPrice = *upd.BuyingPrice
	}
	if upd.PriceToSell != nil {
		p.PriceToSell = *upd.PriceToSell
	}
	if upd.BuyingDate != nil {
		p.BuyingDate = *upd.BuyingDate
	}
	if upd.Sizes != nil {
		p.Sizes = *upd.Sizes
	}
	if upd.Photo != nil {
		p.Photo = *upd.Photo
	}
	if upd.PhotoKey != nil {
		p.PhotoKey = *upd.PhotoKey
	}
	return clone(p), nil
}

func (f *fakeProducts) RecordSale(_ context.Context, id bson.ObjectID, sale entity.Sale) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if p.NumberInStock < sale.QuantitySold {
		return nil, repo.ErrInsufficientStock
	}
	idx := -1
	if sale.Size != "" {
		for i, s := range p.Sizes {
			if s.Size == sale.Size && s.Stock >= sale.QuantitySold {
				idx = i
			}
		}
		if idx < 0 {
			return nil, repo.ErrInsufficientStock
		}
		p.Sizes[idx].Stock -= sale.QuantitySold
	}
	p.NumberInStock -= sale.QuantitySold
	p.Sales = append(p.Sales, sale)
	return clone(p), nil
}

func (f *fakeProducts) IncreaseStock(_ context.Context, id bson.ObjectID, amount int, size string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if size != "" {
		found := false
		for i := range p.Sizes {
			if p.Sizes[i].Size == size {
				p.Sizes[i].Stock += amount
				found = true
			}
		}
		if !found {
			return nil, repo.ErrNotFound
		}
	}
	p.NumberInStock += amount
	return clone(p), nil
}

func (f *fakeProducts) Delete(_ context.Context, id bson.ObjectID) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	delete(f.products, id)
	return p, nil
}

type fakeCategories struct {
	mu   sync.Mutex
	cats map[bson.ObjectID]*entity.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{cats: map[bson.ObjectID]*entity.Category{}}
}

func (f *fakeCategories) Create(_ context.Context, c *entity.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = bson.NewObjectID()
	if c.Outcomes == nil {
		c.Outcomes = []bson.ObjectID{}
	}
	cp := *c
	f.cats[c.ID] = &cp
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id bson.ObjectID) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cats[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	cp.Outcomes = append([]bson.ObjectID{}, c.Outcomes...)
	return &cp, nil
}

func (f *fakeCategories) ListByOwner(_ context.Context, owner bson.ObjectID) ([]entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Category{}
	for _, c := range f.cats {
		if c.Owner == owner {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategories) owned(id, owner bson.ObjectID) (*entity.Category, error) {
	c, ok := f.cats[id]
	if !ok || c.Owner != owner {
		return nil, repo.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategories) Rename(_ context.Context, id, owner bson.ObjectID, name string) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.owned(id, owner)
	if err != nil {
		return nil, err
	}
	c.Name = name
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) Delete(_ context.Context, id, owner bson.ObjectID) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.owned(id, owner)
	if err != nil {
		return nil, err
	}
	delete(f.cats, id)
	return c, nil
}

func (f *fakeCategories) AttachOutcome(_ context.Context, id, owner, outcomeID bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.owned(id, owner)
	if err != nil {
		return err
	}
	c.Outcomes = append(c.Outcomes, outcomeID)
	return nil
}

func (f *fakeCategories) SetSum(_ context.Context, id bson.ObjectID, sum float64) (*entity.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cats[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	c.Sum = sum
	cp := *c
	return &cp, nil
}

type fakeOutcomes struct {
	mu       sync.Mutex
	outcomes map[bson.ObjectID]entity.Outcome
}

func newFakeOutcomes() *fakeOutcomes {
	return &fakeOutcomes{outcomes: map[bson.ObjectID]entity.Outcome{}}
}

func (f *fakeOutcomes) Create(_ context.Context, o *entity.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = bson.NewObjectID()
	f.outcomes[o.ID] = *o
	return nil
}

func (f *fakeOutcomes) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]entity.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Outcome{}
	for _, id := range ids {
		if o, ok := f.outcomes[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOutcomes) SumValues(_ context.Context, ids []bson.ObjectID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0.0
	for _, id := range ids {
		sum += f.outcomes[id].Value
	}
	return sum, nil
}

func (f *fakeOutcomes) DeleteByIDs(_ context.Context, ids []bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.outcomes, id)
	}
	return nil
}

type fakeStore struct {
	mu         sync.Mutex
	uploads    map[string]int
	destroyed  []string
	failOn     error
	destroyErr error
}

func newFakeStore() *fakeStore { return &fakeStore{uploads: map[string]int{}} }

func (f *fakeStore) Upload(_ context.Context, _ []byte, key string, _ []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != nil {
		return "", f.failOn
	}
	f.uploads[key]++
	return "https://cdn.test/" + key + "?v=" + string(rune('0'+f.uploads[key])), nil
}

func (f *fakeStore) Destroy(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, key)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) last() mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return mailer.Message{}
	}
	return f.sent[len(f.sent)-1]
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
