package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"blooddonation/internal/identity"
	"blooddonation/internal/models"
	"blooddonation/internal/payments"
	"blooddonation/internal/store"
)

// window applies a store.Page to an already sorted slice.
func window[T any](items []T, p store.Page) []T {
	if p.Skip >= int64(len(items)) {
		return []T{}
	}
	items = items[p.Skip:]
	if p.Limit > 0 && p.Limit < int64(len(items)) {
		items = items[:p.Limit]
	}
	return append([]T{}, items...)
}

type tokens map[string]string

func (t tokens) Verify(_ context.Context, token string) (identity.Principal, error) {
	email, ok := t[token]
	if !ok {
		return identity.Principal{}, identity.ErrInvalidToken
	}
	return identity.Principal{UID: token, Email: email}, nil
}

type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) Insert(_ context.Context, u models.User) (*mongo.InsertOneResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, u)
	return &mongo.InsertOneResult{InsertedID: u.ID}, nil
}

func (m *memUsers) List(_ context.Context, q store.UserQuery) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if q.Status == "" || u.Status == q.Status {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, q.Page), int64(len(out)), nil
}

func (m *memUsers) CountByRole(_ context.Context, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if role == "" || u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) update(email string, fn func(u *models.User)) *mongo.UpdateResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == email {
			fn(&m.users[i])
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}
		}
	}
	return &mongo.UpdateResult{}
}

func (m *memUsers) UpdateStatus(_ context.Context, email, status string) (*mongo.UpdateResult, error) {
	return m.update(email, func(u *models.User) { u.Status = status }), nil
}

func (m *memUsers) UpdateRole(_ context.Context, email, role string) (*mongo.UpdateResult, error) {
	return m.update(email, func(u *models.User) { u.Role = role }), nil
}

func (m *memUsers) UpdateProfile(_ context.Context, email string, p store.ProfileUpdate) (*mongo.UpdateResult, error) {
	return m.update(email, func(u *models.User) {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.BloodGroup != nil {
			u.BloodGroup = *p.BloodGroup
		}
		if p.District != nil {
			u.District = *p.District
		}
	}), nil
}

func (m *memUsers) SearchDonors(_ context.Context, q store.DonorQuery) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if u.Role != models.RoleDonor || u.Status != models.StatusActive {
			continue
		}
		if (q.BloodGroup != "" && u.BloodGroup != q.BloodGroup) ||
			(q.District != "" && u.District != q.District) ||
			(q.Upazila != "" && u.Upazila != q.Upazila) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type memRequests struct {
	mu   sync.Mutex
	reqs []models.DonationRequest
}

func (m *memRequests) add(r models.DonationRequest) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = primitive.NewObjectID()
	m.reqs = append(m.reqs, r)
	return r.ID
}

func (m *memRequests) get(id primitive.ObjectID) (models.DonationRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reqs {
		if r.ID == id {
			return r, true
		}
	}
	return models.DonationRequest{}, false
}

func (m *memRequests) FindByID(_ context.Context, id primitive.ObjectID) (*models.DonationRequest, error) {
	r, ok := m.get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *memRequests) List(_ context.Context, q store.RequestQuery) ([]models.DonationRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DonationRequest
	for _, r := range m.reqs {
		if (q.RequesterEmail == "" || r.RequesterEmail == q.RequesterEmail) &&
			(q.Status == "" || r.DonationStatus == q.Status) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, q.Page), int64(len(out)), nil
}

func (m *memRequests) Recent(ctx context.Context, email string, n int64) ([]models.DonationRequest, error) {
	list, _, err := m.List(ctx, store.RequestQuery{RequesterEmail: email, Page: store.Page{Limit: n}})
	return list, err
}

func (m *memRequests) Insert(_ context.Context, r models.DonationRequest) (*mongo.InsertOneResult, error) {
	return &mongo.InsertOneResult{InsertedID: m.add(r)}, nil
}

func (m *memRequests) modify(id primitive.ObjectID, fn func(r *models.DonationRequest) bool) *mongo.UpdateResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reqs {
		if m.reqs[i].ID == id {
			if !fn(&m.reqs[i]) {
				return &mongo.UpdateResult{}
			}
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}
		}
	}
	return &mongo.UpdateResult{}
}

func (m *memRequests) Update(_ context.Context, id primitive.ObjectID, u store.RequestUpdate) (*mongo.UpdateResult, error) {
	return m.modify(id, func(r *models.DonationRequest) bool {
		if u.HospitalName != nil {
			r.HospitalName = *u.HospitalName
		}
		if u.RequestMessage != nil {
			r.RequestMessage = *u.RequestMessage
		}
		return true
	}), nil
}

func (m *memRequests) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*mongo.UpdateResult, error) {
	return m.modify(id, func(r *models.DonationRequest) bool {
		r.DonationStatus = status
		return true
	}), nil
}

func (m *memRequests) Claim(_ context.Context, id primitive.ObjectID, donorName, donorEmail string) (*mongo.UpdateResult, error) {
	if _, ok := m.get(id); !ok {
		return nil, store.ErrNotFound
	}
	res := m.modify(id, func(r *models.DonationRequest) bool {
		if r.DonationStatus != models.DonationPending {
			return false
		}
		r.DonorName, r.DonorEmail, r.DonationStatus = donorName, donorEmail, models.DonationInProgress
		return true
	})
	if res.MatchedCount == 0 {
		return nil, store.ErrNotPending
	}
	return res, nil
}

func (m *memRequests) Delete(_ context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reqs {
		if m.reqs[i].ID == id {
			m.reqs = append(m.reqs[:i], m.reqs[i+1:]...)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

func (m *memRequests) CountByStatus(ctx context.Context, status string) (int64, error) {
	_, total, err := m.List(ctx, store.RequestQuery{Status: status})
	return total, err
}

type memPayments struct {
	mu     sync.Mutex
	byTx   map[string]models.Payment
	writes int
}

func (m *memPayments) Record(_ context.Context, p models.Payment) (models.Payment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byTx == nil {
		m.byTx = map[string]models.Payment{}
	}
	if existing, ok := m.byTx[p.TransactionID]; ok {
		return existing, false, nil
	}
	p.ID = primitive.NewObjectID()
	m.byTx[p.TransactionID] = p
	m.writes++
	return p, true, nil
}

func (m *memPayments) List(_ context.Context, page store.Page) ([]models.Payment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Payment, 0, len(m.byTx))
	for _, p := range m.byTx {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return window(out, page), int64(len(out)), nil
}

func (m *memPayments) TotalAmount(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, p := range m.byTx {
		sum += p.Amount
	}
	return sum, nil
}

type memBlogs struct {
	mu    sync.Mutex
	blogs []models.Blog
}

func (m *memBlogs) FindByID(_ context.Context, id primitive.ObjectID) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.blogs {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memBlogs) match(q store.BlogQuery) []models.Blog {
	var out []models.Blog
	for _, b := range m.blogs {
		if (q.Status == "" || b.Status == q.Status) && (q.AuthorEmail == "" || b.AuthorEmail == q.AuthorEmail) {
			out = append(out, b)
		}
	}
	return out
}

func (m *memBlogs) List(_ context.Context, q store.BlogQuery) ([]models.Blog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.match(q)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, q.Page), int64(len(out)), nil
}

func (m *memBlogs) Count(_ context.Context, q store.BlogQuery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(q))), nil
}

func (m *memBlogs) Insert(_ context.Context, b models.Blog) (*mongo.InsertOneResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = primitive.NewObjectID()
	m.blogs = append(m.blogs, b)
	return &mongo.InsertOneResult{InsertedID: b.ID}, nil
}

func (m *memBlogs) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*mongo.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.blogs {
		if m.blogs[i].ID == id {
			m.blogs[i].Status = status
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return &mongo.UpdateResult{}, nil
}

func (m *memBlogs) Delete(_ context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.blogs {
		if m.blogs[i].ID == id {
			m.blogs = append(m.blogs[:i], m.blogs[i+1:]...)
			return &mongo.DeleteResult{DeletedCount: 1}, nil
		}
	}
	return &mongo.DeleteResult{}, nil
}

type fakeGateway struct {
	mu       sync.Mutex
	created  []payments.CheckoutRequest
	sessions map[string]payments.SessionDetails
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, req)
	return payments.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (g *fakeGateway) RetrieveSession(_ context.Context, id string) (payments.SessionDetails, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[id]
	if !ok {
		return payments.SessionDetails{}, errors.New("no such checkout session")
	}
	return s, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	router   *gin.Engine
	users    *memUsers
	requests *memRequests
	payments *memPayments
	blogs    *memBlogs
	gateway  *fakeGateway
}

const (
	adminToken     = "tok-admin"
	volunteerToken = "tok-volunteer"
	donorToken     = "tok-donor"
	otherToken     = "tok-other"
	blockedToken   = "tok-blocked"
	strangerToken  = "tok-stranger"
)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Now().UTC()
	ts := &testServer{
		users: &memUsers{users: []models.User{
			{Email: "admin@x.com", Name: "Admin", Role: models.RoleAdmin, Status: models.StatusActive, CreatedAt: now},
			{Email: "vol@x.com", Name: "Vol", Role: models.RoleVolunteer, Status: models.StatusActive, CreatedAt: now},
			{Email: "donor@x.com", Name: "Donor", Role: models.RoleDonor, Status: models.StatusActive, BloodGroup: "A+", District: "Dhaka", CreatedAt: now},
			{Email: "other@x.com", Name: "Other", Role: models.RoleDonor, Status: models.StatusActive, BloodGroup: "B+", District: "Dhaka", CreatedAt: now},
			{Email: "blocked@x.com", Name: "Blocked", Role: models.RoleDonor, Status: models.StatusBlocked, BloodGroup: "A+", District: "Dhaka", CreatedAt: now},
		}},
		requests: &memRequests{},
		payments: &memPayments{},
		blogs:    &memBlogs{},
		gateway:  &fakeGateway{sessions: map[string]payments.SessionDetails{}},
	}

	ts.router = gin.New()
	Register(ts.router, Deps{
		Users:    ts.users,
		Requests: ts.requests,
		Payments: ts.payments,
		Blogs:    ts.blogs,
		DB:       pingFunc(func(context.Context) error { return nil }),
		Verifier: tokens{
			adminToken:     "admin@x.com",
			volunteerToken: "vol@x.com",
			donorToken:     "donor@x.com",
			otherToken:     "other@x.com",
			blockedToken:   "blocked@x.com",
			strangerToken:  "stranger@x.com",
		},
		Gateway:  ts.gateway,
		Checkout: CheckoutConfig{Currency: "usd", SiteDomain: "http://localhost:5173"},
		Log:      zap.NewNop(),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func paymentOf(tx string, amount float64) models.Payment {
	return models.Payment{TransactionID: tx, Amount: amount, DonorName: models.AnonymousDonor, PaidAt: time.Now()}
}
