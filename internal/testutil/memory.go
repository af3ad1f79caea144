// Package testutil provides in-memory repositories and a fake object store
// shared by handler and router tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type engagementKey struct {
	kind   models.EngagementKind
	userID string
	foodID primitive.ObjectID
}

// MemoryStore implements every repository interface in memory.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	partners    map[string]*models.FoodPartner
	foods       map[primitive.ObjectID]*models.FoodItem
	engagements map[engagementKey]*models.Engagement
	clock       time.Time

	// FailCreateFood makes CreateFood return this error when set.
	FailCreateFood error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.User),
		partners:    make(map[string]*models.FoodPartner),
		foods:       make(map[primitive.ObjectID]*models.FoodItem),
		engagements: make(map[engagementKey]*models.Engagement),
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now returns strictly increasing timestamps so newest-first ordering is stable.
func (s *MemoryStore) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *MemoryStore) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	user.UpdatedAt = s.now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemoryStore) CreateFoodPartner(ctx context.Context, partner *models.FoodPartner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.partners {
		if p.Email == partner.Email {
			return repositories.ErrDuplicateEmail
		}
	}
	if partner.ID == "" {
		partner.ID = uuid.NewString()
	}
	partner.CreatedAt = s.now()
	partner.UpdatedAt = partner.CreatedAt
	cp := *partner
	s.partners[partner.ID] = &cp
	return nil
}

func (s *MemoryStore) GetFoodPartnerByID(ctx context.Context, id string) (*models.FoodPartner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetFoodPartnerByEmail(ctx context.Context, email string) (*models.FoodPartner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.partners {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *MemoryStore) GetFoodPartnersByIDs(ctx context.Context, ids []string) (map[string]*models.FoodPartner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]*models.FoodPartner, len(ids))
	for _, id := range ids {
		if p, ok := s.partners[id]; ok {
			cp := *p
			result[id] = &cp
		}
	}
	return result, nil
}

func (s *MemoryStore) CreateFood(ctx context.Context, food *models.FoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreateFood != nil {
		return s.FailCreateFood
	}
	food.ID = primitive.NewObjectID()
	food.LikeCount = 0
	food.SavesCount = 0
	food.CreatedAt = s.now()
	food.UpdatedAt = food.CreatedAt
	cp := *food
	cp.Partner = nil
	s.foods[food.ID] = &cp
	return nil
}

func (s *MemoryStore) GetFoodByID(ctx context.Context, id string) (*models.FoodItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.foods[oid]
	if !ok {
		return nil, repositories.ErrFoodNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *MemoryStore) ListFoods(ctx context.Context, opts repositories.ListOptions) ([]models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	foods := s.sortedFoods(func(*models.FoodItem) bool { return true })

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(foods)) {
			return []models.FoodItem{}, nil
		}
		foods = foods[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(foods)) {
		foods = foods[:opts.Limit]
	}
	return foods, nil
}

func (s *MemoryStore) ListFoodsByPartner(ctx context.Context, partnerID string) ([]models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedFoods(func(f *models.FoodItem) bool { return f.FoodPartnerID == partnerID }), nil
}

func (s *MemoryStore) sortedFoods(keep func(*models.FoodItem) bool) []models.FoodItem {
	foods := []models.FoodItem{}
	for _, f := range s.foods {
		if keep(f) {
			foods = append(foods, *f)
		}
	}
	sort.Slice(foods, func(i, j int) bool {
		return foods[i].CreatedAt.After(foods[j].CreatedAt)
	})
	return foods
}

func (s *MemoryStore) Toggle(ctx context.Context, kind models.EngagementKind, userID, foodID string) (*models.ToggleResult, error) {
	oid, err := primitive.ObjectIDFromHex(foodID)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	food, ok := s.foods[oid]
	if !ok {
		return nil, repositories.ErrFoodNotFound
	}

	key := engagementKey{kind: kind, userID: userID, foodID: oid}
	delta := int64(-1)
	var record *models.Engagement
	if _, exists := s.engagements[key]; exists {
		delete(s.engagements, key)
	} else {
		record = &models.Engagement{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			FoodID:    oid,
			CreatedAt: s.now(),
		}
		s.engagements[key] = record
		delta = 1
	}

	if kind == models.EngagementSave {
		food.SavesCount += delta
	} else {
		food.LikeCount += delta
	}
	food.UpdatedAt = s.now()

	return &models.ToggleResult{Kind: kind, Active: delta > 0, Count: food.Counter(kind), Record: record}, nil
}

func (s *MemoryStore) ListSaved(ctx context.Context, userID string) ([]models.SavedFood, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := []models.SavedFood{}
	for key, e := range s.engagements {
		if key.kind != models.EngagementSave || key.userID != userID {
			continue
		}
		food, ok := s.foods[key.foodID]
		if !ok {
			continue
		}
		saved = append(saved, models.SavedFood{ID: e.ID, UserID: userID, Food: *food, CreatedAt: e.CreatedAt})
	}
	sort.Slice(saved, func(i, j int) bool {
		return saved[i].CreatedAt.After(saved[j].CreatedAt)
	})
	return saved, nil
}

// EngagementCount returns how many records of kind reference foodID.
func (s *MemoryStore) EngagementCount(kind models.EngagementKind, foodID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.engagements {
		if key.kind == kind && key.foodID == foodID {
			n++
		}
	}
	return n
}

// FoodCount returns the number of stored food items.
func (s *MemoryStore) FoodCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.foods)
}

// FakeStorage records uploads instead of sending them anywhere.
type FakeStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	Err     error
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{Objects: make(map[string][]byte), Types: make(map[string]string)}
}

func (f *FakeStorage) Name() string { return "fake" }

func (f *FakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Objects[key] = append([]byte(nil), data...)
	f.Types[key] = contentType
	return "https://cdn.test/" + key, nil
}

// Uploads returns the number of stored objects.
func (f *FakeStorage) Uploads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Objects)
}

// NewJSONRequest builds a request with a JSON-encoded body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON unmarshals a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}
