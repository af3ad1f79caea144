package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anonto42/foodreels/backend/internal/models"
	"github.com/anonto42/foodreels/backend/internal/testutil"
)

func (s *testServer) toggle(t *testing.T, path string, user *models.User, foodID string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"foodId": foodID})
	return s.serve(s.bearer(t, req, user))
}

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	s := newTestServer(t)
	partner := s.seedPartner(t, "chef@example.com")
	user := s.seedUser(t, "eater@example.com")
	food := s.seedFood(t, partner.ID, "Spicy Wrap")

	rec := s.toggle(t, "/api/food/like", user, food.ID.Hex())
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var liked struct {
		Message   string             `json:"message"`
		Like      *models.Engagement `json:"like"`
		LikeCount int64              `json:"likeCount"`
	}
	testutil.DecodeJSON(t, rec, &liked)
	if liked.Message != "Food liked successfully" || liked.LikeCount != 1 {
		t.Errorf("Unexpected like response %+v", liked)
	}
	if liked.Like == nil || liked.Like.UserID != user.ID || liked.Like.FoodID != food.ID {
		t.Errorf("Expected like record for the pair, got %+v", liked.Like)
	}
	if n := s.store.EngagementCount(models.EngagementLike, food.ID); n != 1 {
		t.Errorf("Expected exactly one like record, got %d", n)
	}

	rec = s.toggle(t, "/api/food/like", user, food.ID.Hex())
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var unliked map[string]any
	testutil.DecodeJSON(t, rec, &unliked)
	if unliked["message"] != "Food unliked successfully" || unliked["likeCount"] != float64(0) {
		t.Errorf("Unexpected unlike response %v", unliked)
	}
	if _, ok := unliked["like"]; ok {
		t.Error("Unlike response should not carry a record")
	}
	if n := s.store.EngagementCount(models.EngagementLike, food.ID); n != 0 {
		t.Errorf("Expected no like records, got %d", n)
	}

	stored, _ := s.store.GetFoodByID(t.Context(), food.ID.Hex())
	if stored.LikeCount != 0 {
		t.Errorf("Expected likeCount back to 0, got %d", stored.LikeCount)
	}
}

func TestToggleSave_CountersAreIndependent(t *testing.T) {
	s := newTestServer(t)
	partner := s.seedPartner(t, "chef@example.com")
	alice := s.seedUser(t, "alice@example.com")
	bob := s.seedUser(t, "bob@example.com")
	food := s.seedFood(t, partner.ID, "Dumplings")

	s.toggle(t, "/api/food/save", alice, food.ID.Hex())
	rec := s.toggle(t, "/api/food/save", bob, food.ID.Hex())
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	var saved map[string]any
	testutil.DecodeJSON(t, rec, &saved)
	if saved["message"] != "Food saved successfully" || saved["savesCount"] != float64(2) {
		t.Errorf("Unexpected save response %v", saved)
	}
	if saved["save"] == nil {
		t.Error("Expected the save record in the response")
	}

	stored, _ := s.store.GetFoodByID(t.Context(), food.ID.Hex())
	if stored.SavesCount != 2 || stored.LikeCount != 0 {
		t.Errorf("Expected saves=2 likes=0, got saves=%d likes=%d", stored.SavesCount, stored.LikeCount)
	}

	rec = s.toggle(t, "/api/food/save", alice, food.ID.Hex())
	var unsaved map[string]any
	testutil.DecodeJSON(t, rec, &unsaved)
	if rec.Code != http.StatusOK || unsaved["message"] != "Food unsaved successfully" || unsaved["savesCount"] != float64(1) {
		t.Errorf("Unexpected unsave response %d %v", rec.Code, unsaved)
	}
}

func TestToggle_ConcurrentDuplicatesKeepCounterConsistent(t *testing.T) {
	s := newTestServer(t)
	partner := s.seedPartner(t, "chef@example.com")
	user := s.seedUser(t, "eater@example.com")
	food := s.seedFood(t, partner.ID, "Ramen")

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.toggle(t, "/api/food/like", user, food.ID.Hex())
		}()
	}
	wg.Wait()

	stored, _ := s.store.GetFoodByID(t.Context(), food.ID.Hex())
	records := s.store.EngagementCount(models.EngagementLike, food.ID)
	if stored.LikeCount != int64(records) {
		t.Errorf("Counter %d does not match %d records", stored.LikeCount, records)
	}
	if records != 0 {
		t.Errorf("An even number of toggles should leave no record, got %d", records)
	}
}

func TestToggle_Errors(t *testing.T) {
	s := newTestServer(t)
	user := s.seedUser(t, "eater@example.com")

	tests := []struct {
		name        string
		foodID      string
		wantCode    int
		wantMessage string
	}{
		{name: "missing id", foodID: "", wantCode: http.StatusBadRequest},
		{name: "not an object id", foodID: "pizza", wantCode: http.StatusBadRequest, wantMessage: "Invalid food id"},
		{name: "unknown food", foodID: "65a1b2c3d4e5f60718293a4b", wantCode: http.StatusNotFound, wantMessage: "Food not found"},
	}

	for _, tc := range tests {
		for _, path := range []string{"/api/food/like", "/api/food/save"} {
			t.Run(tc.name+path, func(t *testing.T) {
				rec := s.toggle(t, path, user, tc.foodID)
				if rec.Code != tc.wantCode {
					t.Fatalf("Expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
				}
				var body map[string]string
				testutil.DecodeJSON(t, rec, &body)
				if tc.wantMessage != "" && body["message"] != tc.wantMessage {
					t.Errorf("Expected %q, got %q", tc.wantMessage, body["message"])
				}
			})
		}
	}
}

func TestToggle_RequiresUser(t *testing.T) {
	s := newTestServer(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/food/like", map[string]string{"foodId": "65a1b2c3d4e5f60718293a4b"})
	rec := s.serve(req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	var body map[string]string
	testutil.DecodeJSON(t, rec, &body)
	if body["message"] != "Please login as user first" {
		t.Errorf("Unexpected message %q", body["message"])
	}
}

func TestGetSavedFoods(t *testing.T) {
	s := newTestServer(t)
	partner := s.seedPartner(t, "chef@example.com")
	user := s.seedUser(t, "eater@example.com")
	other := s.seedUser(t, "other@example.com")

	rec := s.serve(s.bearer(t, httptest.NewRequest(http.MethodGet, "/api/food/save", nil), user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for an empty list, got %d: %s", rec.Code, rec.Body.String())
	}
	var empty struct {
		Message    string             `json:"message"`
		SavedFoods []models.SavedFood `json:"savedFoods"`
	}
	testutil.DecodeJSON(t, rec, &empty)
	if empty.SavedFoods == nil || len(empty.SavedFoods) != 0 {
		t.Errorf("Expected an empty array, got %s", rec.Body.String())
	}

	first := s.seedFood(t, partner.ID, "Tacos")
	second := s.seedFood(t, partner.ID, "Burrito")
	s.toggle(t, "/api/food/save", user, first.ID.Hex())
	s.toggle(t, "/api/food/save", user, second.ID.Hex())
	s.toggle(t, "/api/food/save", other, first.ID.Hex())
	s.toggle(t, "/api/food/like", user, first.ID.Hex())

	rec = s.serve(s.bearer(t, httptest.NewRequest(http.MethodGet, "/api/food/save", nil), user))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp struct {
		Message    string             `json:"message"`
		SavedFoods []models.SavedFood `json:"savedFoods"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Message != "Saved foods retrieved successfully" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if len(resp.SavedFoods) != 2 {
		t.Fatalf("Expected 2 saved foods, got %d", len(resp.SavedFoods))
	}
	if resp.SavedFoods[0].Food.Name != "Burrito" || resp.SavedFoods[1].Food.Name != "Tacos" {
		t.Errorf("Expected most recent save first, got %s then %s", resp.SavedFoods[0].Food.Name, resp.SavedFoods[1].Food.Name)
	}
	if p := resp.SavedFoods[0].Food.Partner; p == nil || p.Name != "Taco Town" {
		t.Errorf("Expected partner attached to saved food, got %+v", p)
	}
	if resp.SavedFoods[1].Food.SavesCount != 2 || resp.SavedFoods[1].Food.LikeCount != 1 {
		t.Errorf("Expected current counters on Tacos, got %+v", resp.SavedFoods[1].Food)
	}
}
