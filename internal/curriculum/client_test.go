package curriculum_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openlearnhub/hub-edge/internal/curriculum"
	"github.com/openlearnhub/hub-edge/internal/platform/cache"
)

// fakeBackend is a stub of the upstream curriculum API.
type fakeBackend struct {
	mux      *http.ServeMux
	requests atomic.Int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{mux: http.NewServeMux()}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	f.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func savedFixture(id, userID string) curriculum.Saved {
	return curriculum.Saved{
		ID:     id,
		UserID: userID,
		FormData: curriculum.FormData{
			LearningGoal: "Web Development",
			CurrentLevel: "Beginner",
		},
		Curriculum: &curriculum.Data{
			StudentProfile: &curriculum.StudentProfile{Summary: "Motivated beginner"},
			Curriculum: map[string]*curriculum.LearningTier{
				"beginner": {TierDescription: "Foundations"},
			},
		},
		CreatedAt: "2026-08-01T10:00:00Z",
		UpdatedAt: "2026-08-01T10:00:00Z",
	}
}

func newTestClient(t *testing.T, backend *fakeBackend) (*curriculum.Client, *cache.Store) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	store := cache.NewStore(cache.NewMemoryBackend())
	return curriculum.NewClient(srv.URL, store), store
}

func TestClient_Generate(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("POST /api/curriculum/generate", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["userId"] != "u1" {
			t.Errorf("userId = %v, want u1", req["userId"])
		}
		if req["learning_goal"] != "Web Development" {
			t.Errorf("learning_goal = %v, want Web Development", req["learning_goal"])
		}

		saved := savedFixture("c1", "u1")
		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Curriculum generated",
			"curriculum": saved,
		})
	})
	client, store := newTestClient(t, backend)
	ctx := t.Context()

	// Seed a stale list entry; Generate must invalidate it.
	store.Save(ctx, cache.UserCurriculaKey("u1"), []curriculum.Saved{})

	result := client.Generate(ctx, "u1", curriculum.FormData{
		LearningGoal: "Web Development",
		CurrentLevel: "Beginner",
	})

	if !result.Success {
		t.Fatalf("Generate() success = false, message = %q", result.Message)
	}
	if result.Curriculum == nil || result.Curriculum.ID != "c1" {
		t.Errorf("Generate() curriculum = %+v, want id c1", result.Curriculum)
	}

	var list []curriculum.Saved
	if store.Get(ctx, cache.UserCurriculaKey("u1"), &list) {
		t.Error("user curricula cache entry survived Generate(); want invalidated")
	}
}

func TestClient_Generate_MissingGoal(t *testing.T) {
	backend := newFakeBackend()
	client, _ := newTestClient(t, backend)

	result := client.Generate(t.Context(), "u1", curriculum.FormData{})

	if result.Success {
		t.Error("Generate() with empty goal succeeded; want validation failure")
	}
	if result.Error != "validation_error" {
		t.Errorf("Error = %q, want validation_error", result.Error)
	}
	if backend.requests.Load() != 0 {
		t.Errorf("backend saw %d requests, want 0 (validation is client-side)", backend.requests.Load())
	}
}

func TestClient_Generate_ServiceRejection(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("POST /api/curriculum/generate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"message": "Daily generation limit reached",
			"error":   "rate_limited",
		})
	})
	client, _ := newTestClient(t, backend)

	result := client.Generate(t.Context(), "u1", curriculum.FormData{LearningGoal: "Go"})

	if result.Success {
		t.Fatal("Generate() succeeded on 429")
	}
	if result.Message != "Daily generation limit reached" {
		t.Errorf("Message = %q, want server message", result.Message)
	}
	if result.Error != "rate_limited" {
		t.Errorf("Error = %q, want rate_limited", result.Error)
	}
}

func TestClient_Generate_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // unreachable from here on
	store := cache.NewStore(cache.NewMemoryBackend())
	client := curriculum.NewClient(srv.URL, store)

	result := client.Generate(t.Context(), "u1", curriculum.FormData{LearningGoal: "Go"})

	if result.Success {
		t.Fatal("Generate() succeeded against a dead server")
	}
	if result.Error != curriculum.NetworkError {
		t.Errorf("Error = %q, want %q", result.Error, curriculum.NetworkError)
	}
}

func TestClient_GetByID_CacheFirst(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("GET /api/curriculum/c1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"curriculum": savedFixture("c1", "u1")})
	})
	client, _ := newTestClient(t, backend)
	ctx := t.Context()

	first := client.GetByID(ctx, "c1")
	if first == nil || first.ID != "c1" {
		t.Fatalf("GetByID() = %+v, want c1", first)
	}
	if backend.requests.Load() != 1 {
		t.Fatalf("backend saw %d requests, want 1", backend.requests.Load())
	}

	// Second read is served from cache.
	second := client.GetByID(ctx, "c1")
	if second == nil || second.ID != "c1" {
		t.Fatalf("GetByID() second read = %+v, want c1", second)
	}
	if backend.requests.Load() != 1 {
		t.Errorf("backend saw %d requests after cached read, want 1", backend.requests.Load())
	}
}

func TestClient_GetByID_NotFound(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("GET /api/curriculum/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Curriculum not found"})
	})
	client, store := newTestClient(t, backend)
	ctx := t.Context()

	if got := client.GetByID(ctx, "missing"); got != nil {
		t.Errorf("GetByID() = %+v, want nil", got)
	}

	// Failures must not be cached.
	var cached curriculum.Saved
	if store.Get(ctx, cache.CurriculumKey("missing"), &cached) {
		t.Error("failed fetch left a cache entry")
	}
}

func TestClient_GetByID_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	store := cache.NewStore(cache.NewMemoryBackend())
	client := curriculum.NewClient(srv.URL, store)

	if got := client.GetByID(t.Context(), "c1"); got != nil {
		t.Errorf("GetByID() = %+v, want nil on network error", got)
	}
}

func TestClient_GetUserCurricula(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("GET /api/curriculum/user/u1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"curricula": []curriculum.Saved{savedFixture("c1", "u1"), savedFixture("c2", "u1")},
		})
	})
	client, _ := newTestClient(t, backend)
	ctx := t.Context()

	list := client.GetUserCurricula(ctx, "u1")
	if len(list) != 2 {
		t.Fatalf("GetUserCurricula() returned %d items, want 2", len(list))
	}

	client.GetUserCurricula(ctx, "u1")
	if backend.requests.Load() != 1 {
		t.Errorf("backend saw %d requests after cached read, want 1", backend.requests.Load())
	}
}

func TestClient_GetUserCurricula_FailureIsEmptyList(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("GET /api/curriculum/user/u1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
	})
	client, _ := newTestClient(t, backend)

	list := client.GetUserCurricula(t.Context(), "u1")
	if list == nil {
		t.Fatal("GetUserCurricula() = nil, want empty slice")
	}
	if len(list) != 0 {
		t.Errorf("GetUserCurricula() returned %d items, want 0", len(list))
	}
}

func TestClient_GetUserCurricula_MissingFieldIsEmptyList(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("GET /api/curriculum/user/u1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok"}) // no curricula field
	})
	client, _ := newTestClient(t, backend)

	list := client.GetUserCurricula(t.Context(), "u1")
	if list == nil {
		t.Fatal("GetUserCurricula() = nil, want empty slice")
	}
}

func TestClient_Delete_InvalidatesBothKeys(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("DELETE /api/curriculum/c1", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["userId"] != "u1" {
			t.Errorf("userId = %q, want u1", req["userId"])
		}
		w.WriteHeader(http.StatusNoContent)
	})
	client, store := newTestClient(t, backend)
	ctx := t.Context()

	store.Save(ctx, cache.CurriculumKey("c1"), savedFixture("c1", "u1"))
	store.Save(ctx, cache.UserCurriculaKey("u1"), []curriculum.Saved{savedFixture("c1", "u1")})

	if !client.Delete(ctx, "c1", "u1") {
		t.Fatal("Delete() = false, want true")
	}

	var saved curriculum.Saved
	if store.Get(ctx, cache.CurriculumKey("c1"), &saved) {
		t.Error("curriculum cache entry survived Delete()")
	}
	var list []curriculum.Saved
	if store.Get(ctx, cache.UserCurriculaKey("u1"), &list) {
		t.Error("user curricula cache entry survived Delete()")
	}
}

func TestClient_Delete_FailureKeepsCache(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("DELETE /api/curriculum/c1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "not yours"})
	})
	client, store := newTestClient(t, backend)
	ctx := t.Context()

	store.Save(ctx, cache.CurriculumKey("c1"), savedFixture("c1", "u1"))

	if client.Delete(ctx, "c1", "u1") {
		t.Fatal("Delete() = true on 403, want false")
	}

	var saved curriculum.Saved
	if !store.Get(ctx, cache.CurriculumKey("c1"), &saved) {
		t.Error("cache entry lost on failed Delete()")
	}
}

func TestClient_UpdateProgress_RepopulatesCache(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("PATCH /api/curriculum/c1/progress", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Progress map[string]any `json:"progress"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Progress["beginner_0"] != true {
			t.Errorf("progress = %v, want beginner_0 true", req.Progress)
		}

		saved := savedFixture("c1", "u1")
		saved.Progress = req.Progress
		writeJSON(w, http.StatusOK, map[string]any{"curriculum": saved})
	})
	client, _ := newTestClient(t, backend)
	ctx := t.Context()

	updated := client.UpdateProgress(ctx, "c1", map[string]any{"beginner_0": true})
	if updated == nil {
		t.Fatal("UpdateProgress() = nil, want curriculum")
	}
	if updated.Progress["beginner_0"] != true {
		t.Errorf("Progress = %v, want beginner_0 true", updated.Progress)
	}

	// The fresh response must already be in cache: no further fetch needed.
	before := backend.requests.Load()
	got := client.GetByID(ctx, "c1")
	if got == nil || got.Progress["beginner_0"] != true {
		t.Errorf("GetByID() after update = %+v, want cached fresh copy", got)
	}
	if backend.requests.Load() != before {
		t.Error("GetByID() after UpdateProgress() hit the network; want cache")
	}
}

func TestClient_UpdateProgress_Failure(t *testing.T) {
	backend := newFakeBackend()
	backend.mux.HandleFunc("PATCH /api/curriculum/c1/progress", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid progress"})
	})
	client, _ := newTestClient(t, backend)

	if got := client.UpdateProgress(t.Context(), "c1", map[string]any{}); got != nil {
		t.Errorf("UpdateProgress() = %+v, want nil", got)
	}
}

// Generate followed by a list fetch must show the new curriculum rather
// than a stale cached list.
func TestClient_GenerateThenList(t *testing.T) {
	backend := newFakeBackend()
	generated := false
	backend.mux.HandleFunc("POST /api/curriculum/generate", func(w http.ResponseWriter, r *http.Request) {
		generated = true
		writeJSON(w, http.StatusOK, map[string]any{"curriculum": savedFixture("c1", "u1")})
	})
	backend.mux.HandleFunc("GET /api/curriculum/user/u1", func(w http.ResponseWriter, r *http.Request) {
		list := []curriculum.Saved{}
		if generated {
			list = append(list, savedFixture("c1", "u1"))
		}
		writeJSON(w, http.StatusOK, map[string]any{"curricula": list})
	})
	client, _ := newTestClient(t, backend)
	ctx := t.Context()

	// Prime the list cache while it is still empty.
	if got := client.GetUserCurricula(ctx, "u1"); len(got) != 0 {
		t.Fatalf("initial list has %d items, want 0", len(got))
	}

	result := client.Generate(ctx, "u1", curriculum.FormData{LearningGoal: "Web Dev"})
	if !result.Success {
		t.Fatalf("Generate() failed: %s", result.Message)
	}

	list := client.GetUserCurricula(ctx, "u1")
	if len(list) != 1 || list[0].ID != "c1" {
		t.Errorf("list after generate = %+v, want [c1]", list)
	}
}
