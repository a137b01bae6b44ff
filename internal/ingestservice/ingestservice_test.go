package ingestservice

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agrirobotics/datalake/internal/auth"
	apierrors "github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
)

// Fakes

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, apierrors.NewNotFoundError("user not found", nil)
}

type fakeMissionRepo struct {
	nextID   int64
	missions map[int64]*models.Mission
}

func (f *fakeMissionRepo) Create(ctx context.Context, m *models.Mission) (*models.Mission, error) {
	f.nextID++
	created := *m
	created.ID = f.nextID
	created.CreatedAt = time.Now()
	if f.missions == nil {
		f.missions = make(map[int64]*models.Mission)
	}
	f.missions[created.ID] = &created
	return &created, nil
}

func (f *fakeMissionRepo) Get(ctx context.Context, id int64) (*models.Mission, error) {
	if m, ok := f.missions[id]; ok {
		return m, nil
	}
	return nil, apierrors.NewNotFoundError("mission not found", nil)
}

func (f *fakeMissionRepo) List(ctx context.Context, offset, limit int) ([]*models.Mission, error) {
	return nil, nil
}

type fakeTelemetryRepo struct {
	states    []models.RobotState
	events    []models.AgriEvent
	insertErr error
}

func (f *fakeTelemetryRepo) InsertRobotStates(ctx context.Context, missionID int64, states []models.RobotState) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.states = append(f.states, states...)
	return nil
}

func (f *fakeTelemetryRepo) ListRobotStates(ctx context.Context, missionID int64) ([]models.RobotState, error) {
	return f.states, nil
}

func (f *fakeTelemetryRepo) LatestRobotState(ctx context.Context, missionID int64) (*models.RobotState, error) {
	if len(f.states) == 0 {
		return nil, apierrors.NewNotFoundError("no robot state recorded for mission", nil)
	}
	return &f.states[len(f.states)-1], nil
}

func (f *fakeTelemetryRepo) InsertAgriEvents(ctx context.Context, missionID int64, events []models.AgriEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeTelemetryRepo) ListAgriEvents(ctx context.Context, missionID int64) ([]models.AgriEvent, error) {
	return f.events, nil
}

type fakeImageRepo struct {
	nextID      int64
	images      []*models.MissionImage
	predictions []models.ImagePrediction
	createErr   error
}

func (f *fakeImageRepo) CreateImage(ctx context.Context, image *models.MissionImage) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextID++
	stored := *image
	stored.ID = f.nextID
	f.images = append(f.images, &stored)
	return f.nextID, nil
}

func (f *fakeImageRepo) InsertPredictions(ctx context.Context, imageID int64, predictions []models.ImagePrediction) error {
	f.predictions = append(f.predictions, predictions...)
	return nil
}

type fakeObjectStore struct {
	objects []string
	removed []string
	putErr  error
}

func (f *fakeObjectStore) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeObjectStore) Put(ctx context.Context, objectName string, reader io.Reader, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects = append(f.objects, objectName)
	return "minio://agribot-images/" + objectName, nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, objectName string) error {
	f.removed = append(f.removed, objectName)
	return nil
}

type fakeCache struct {
	mu     sync.Mutex
	latest map[int64]*models.RobotState
	setErr error
}

func (f *fakeCache) SetLatestState(ctx context.Context, missionID int64, state *models.RobotState) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		f.latest = make(map[int64]*models.RobotState)
	}
	f.latest[missionID] = state
	return nil
}

func (f *fakeCache) GetLatestState(ctx context.Context, missionID int64) (*models.RobotState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.latest[missionID]; ok {
		return s, nil
	}
	return nil, errors.New("cache miss")
}

func newTestService(users *fakeUserRepo, missions *fakeMissionRepo, telemetry *fakeTelemetryRepo, images *fakeImageRepo, store *fakeObjectStore, stateCache *fakeCache) *IngestService {
	if users == nil {
		users = &fakeUserRepo{}
	}
	if missions == nil {
		missions = &fakeMissionRepo{}
	}
	if telemetry == nil {
		telemetry = &fakeTelemetryRepo{}
	}
	if images == nil {
		images = &fakeImageRepo{}
	}
	if store == nil {
		store = &fakeObjectStore{}
	}
	svc := New(users, missions, telemetry, images, store, nil, auth.NewPasswordHasher(4))
	if stateCache != nil {
		svc.Cache = stateCache
	}
	return svc
}

// Tests

func TestAuthenticate(t *testing.T) {
	hasher := auth.NewPasswordHasher(4)
	hash, err := hasher.Hash("fieldday")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	users := &fakeUserRepo{users: map[string]*models.User{
		"agribot": {ID: 1, Username: "agribot", PasswordHash: hash, IsActive: true},
	}}
	svc := newTestService(users, nil, nil, nil, nil, nil)

	cases := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"Correct credentials", "agribot", "fieldday", false},
		{"Wrong password", "agribot", "wrong", true},
		{"Unknown user", "nobody", "fieldday", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			user, err := svc.Authenticate(context.Background(), c.username, c.password)
			if (err != nil) != c.wantErr {
				t.Fatalf("Authenticate(%q) error = %v, wantErr %v", c.username, err, c.wantErr)
			}
			if !c.wantErr && user.Username != c.username {
				t.Errorf("Authenticate returned user %q, want %q", user.Username, c.username)
			}
		})
	}

	t.Run("Unknown user and wrong password are indistinguishable", func(t *testing.T) {
		_, errUnknown := svc.Authenticate(context.Background(), "nobody", "fieldday")
		_, errWrong := svc.Authenticate(context.Background(), "agribot", "wrong")
		if errUnknown.Error() != errWrong.Error() {
			t.Errorf("error messages differ: %q vs %q", errUnknown, errWrong)
		}
	})
}

func TestAuthenticateConcurrent(t *testing.T) {
	hasher := auth.NewPasswordHasher(4)
	hash, err := hasher.Hash("fieldday")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	users := &fakeUserRepo{users: map[string]*models.User{
		"agribot": {ID: 1, Username: "agribot", PasswordHash: hash, IsActive: true},
	}}
	svc := newTestService(users, nil, nil, nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		correct := i%2 == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			password := "wrong"
			if correct {
				password = "fieldday"
			}
			user, err := svc.Authenticate(context.Background(), "agribot", password)
			if correct && err != nil {
				t.Errorf("correct password rejected: %v", err)
			}
			if !correct && err == nil {
				t.Errorf("wrong password accepted, got user %v", user)
			}
		}()
	}
	wg.Wait()
}

func TestResolveActiveUser(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*models.User{
		"active":   {ID: 1, Username: "active", IsActive: true},
		"inactive": {ID: 2, Username: "inactive", IsActive: false},
	}}
	svc := newTestService(users, nil, nil, nil, nil, nil)

	if _, err := svc.ResolveActiveUser(context.Background(), "active"); err != nil {
		t.Errorf("active user rejected: %v", err)
	}

	_, err := svc.ResolveActiveUser(context.Background(), "inactive")
	apiErr, ok := err.(*apierrors.APIError)
	if !ok || apiErr.Type != apierrors.ErrorTypeAuthorize {
		t.Errorf("inactive user error = %v, want authorization error", err)
	}

	_, err = svc.ResolveActiveUser(context.Background(), "ghost")
	if !apierrors.IsAuth(err) {
		t.Errorf("unknown subject error = %v, want authentication error", err)
	}
}

func TestCreateMissionValidation(t *testing.T) {
	now := time.Now()
	valid := models.Mission{
		RobotID:     7,
		FieldID:     3,
		MissionType: "spraying",
		StartTime:   now.Add(-time.Hour),
		EndTime:     now,
	}

	cases := []struct {
		name    string
		mutate  func(m *models.Mission)
		wantErr bool
	}{
		{"Valid mission", func(m *models.Mission) {}, false},
		{"Missing robot_id", func(m *models.Mission) { m.RobotID = 0 }, true},
		{"Missing field_id", func(m *models.Mission) { m.FieldID = 0 }, true},
		{"Missing mission_type", func(m *models.Mission) { m.MissionType = "" }, true},
		{"Missing start_time", func(m *models.Mission) { m.StartTime = time.Time{} }, true},
		{"End before start", func(m *models.Mission) { m.EndTime = m.StartTime.Add(-time.Minute) }, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			missions := &fakeMissionRepo{}
			svc := newTestService(nil, missions, nil, nil, nil, nil)

			mission := valid
			c.mutate(&mission)

			created, err := svc.CreateMission(context.Background(), &mission, 42)
			if (err != nil) != c.wantErr {
				t.Fatalf("CreateMission error = %v, wantErr %v", err, c.wantErr)
			}
			if c.wantErr {
				if len(missions.missions) != 0 {
					t.Error("invalid mission reached the repository")
				}
				return
			}
			if created.ID == 0 || created.CreatedAt.IsZero() {
				t.Error("created mission missing generated id or created_at")
			}
			if created.UserID != 42 {
				t.Errorf("created mission user_id = %d, want 42", created.UserID)
			}
		})
	}
}

func TestCreateMissionThenGet(t *testing.T) {
	missions := &fakeMissionRepo{}
	svc := newTestService(nil, missions, nil, nil, nil, nil)

	dist := 1234.5
	mission := models.Mission{
		RobotID:            7,
		FieldID:            3,
		MissionType:        "weeding",
		StartTime:          time.Now().Add(-time.Hour),
		EndTime:            time.Now(),
		TravelledDistanceM: &dist,
	}

	created, err := svc.CreateMission(context.Background(), &mission, 1)
	if err != nil {
		t.Fatalf("CreateMission failed: %v", err)
	}

	got, err := svc.GetMission(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetMission failed: %v", err)
	}
	if got.MissionType != "weeding" || got.TravelledDistanceM == nil || *got.TravelledDistanceM != dist {
		t.Errorf("round-tripped mission does not match insert: %+v", got)
	}
}

func TestAddRobotStates(t *testing.T) {
	base := time.Now().Truncate(time.Second)

	t.Run("Empty batch rejected", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, nil, nil)
		if _, err := svc.AddRobotStates(context.Background(), 1, nil); !apierrors.IsValidation(err) {
			t.Errorf("empty batch error = %v, want validation error", err)
		}
	})

	t.Run("Cache gets newest sample regardless of input order", func(t *testing.T) {
		telemetry := &fakeTelemetryRepo{}
		stateCache := &fakeCache{}
		svc := newTestService(nil, nil, telemetry, nil, nil, stateCache)

		// Newest sample deliberately in the middle of the batch.
		batch := []models.RobotState{
			{Timestamp: base.Add(1 * time.Second)},
			{Timestamp: base.Add(5 * time.Second)},
			{Timestamp: base.Add(3 * time.Second)},
		}
		count, err := svc.AddRobotStates(context.Background(), 9, batch)
		if err != nil {
			t.Fatalf("AddRobotStates failed: %v", err)
		}
		if count != 3 {
			t.Errorf("count = %d, want 3", count)
		}
		cached := stateCache.latest[9]
		if cached == nil || !cached.Timestamp.Equal(base.Add(5*time.Second)) {
			t.Errorf("cached latest = %+v, want timestamp %v", cached, base.Add(5*time.Second))
		}
	})

	t.Run("Insert failure skips cache", func(t *testing.T) {
		telemetry := &fakeTelemetryRepo{insertErr: apierrors.NewDatabaseError("boom", nil)}
		stateCache := &fakeCache{}
		svc := newTestService(nil, nil, telemetry, nil, nil, stateCache)

		_, err := svc.AddRobotStates(context.Background(), 9, []models.RobotState{{Timestamp: base}})
		if err == nil {
			t.Fatal("expected insert error")
		}
		if len(stateCache.latest) != 0 {
			t.Error("cache updated although the batch failed")
		}
	})

	t.Run("Cache failure does not fail ingest", func(t *testing.T) {
		telemetry := &fakeTelemetryRepo{}
		stateCache := &fakeCache{setErr: errors.New("redis down")}
		svc := newTestService(nil, nil, telemetry, nil, nil, stateCache)

		if _, err := svc.AddRobotStates(context.Background(), 9, []models.RobotState{{Timestamp: base}}); err != nil {
			t.Errorf("ingest failed on cache error: %v", err)
		}
	})
}

func TestAddAgriEventsValidation(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil, nil, nil)

	cases := []struct {
		name   string
		events []models.AgriEvent
	}{
		{"Empty batch", nil},
		{"Missing timestamp", []models.AgriEvent{{EventType: "spray"}}},
		{"Missing event_type", []models.AgriEvent{{Timestamp: time.Now()}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := svc.AddAgriEvents(context.Background(), 1, c.events); !apierrors.IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestUploadImage(t *testing.T) {
	upload := ImageUpload{Timestamp: time.Now()}

	t.Run("Duplicate filenames get distinct objects and ids", func(t *testing.T) {
		images := &fakeImageRepo{}
		store := &fakeObjectStore{}
		svc := newTestService(nil, nil, nil, images, store, nil)

		first, err := svc.UploadImage(context.Background(), 7, upload, "photo.jpg", strings.NewReader("a"), "image/jpeg")
		if err != nil {
			t.Fatalf("first upload failed: %v", err)
		}
		second, err := svc.UploadImage(context.Background(), 7, upload, "photo.jpg", strings.NewReader("b"), "image/jpeg")
		if err != nil {
			t.Fatalf("second upload failed: %v", err)
		}

		if store.objects[0] == store.objects[1] {
			t.Error("two uploads of the same filename share one object name")
		}
		if first.ID == second.ID {
			t.Error("two uploads share one image id")
		}
	})

	t.Run("Object names are mission-scoped and traversal-safe", func(t *testing.T) {
		store := &fakeObjectStore{}
		svc := newTestService(nil, nil, nil, nil, store, nil)

		_, err := svc.UploadImage(context.Background(), 7, upload, "../../../etc/passwd.png", strings.NewReader("x"), "image/png")
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		name := store.objects[0]
		if !strings.HasPrefix(name, "7/") || !strings.HasSuffix(name, ".png") {
			t.Errorf("object name %q missing mission prefix or extension", name)
		}
		if strings.Contains(name, "..") {
			t.Errorf("object name %q carries traversal segments", name)
		}
	})

	t.Run("Store failure leaves no metadata row", func(t *testing.T) {
		images := &fakeImageRepo{}
		store := &fakeObjectStore{putErr: errors.New("connection reset")}
		svc := newTestService(nil, nil, nil, images, store, nil)

		if _, err := svc.UploadImage(context.Background(), 7, upload, "photo.jpg", strings.NewReader("x"), "image/jpeg"); err == nil {
			t.Fatal("expected upload error")
		}
		if len(images.images) != 0 {
			t.Error("metadata row created although the object write failed")
		}
	})

	t.Run("Row failure triggers compensating object delete", func(t *testing.T) {
		images := &fakeImageRepo{createErr: apierrors.NewDatabaseError("insert failed", nil)}
		store := &fakeObjectStore{}
		svc := newTestService(nil, nil, nil, images, store, nil)

		if _, err := svc.UploadImage(context.Background(), 7, upload, "photo.jpg", strings.NewReader("x"), "image/jpeg"); err == nil {
			t.Fatal("expected upload error")
		}
		if len(store.removed) != 1 || store.removed[0] != store.objects[0] {
			t.Errorf("compensating delete not issued for %v, removed %v", store.objects, store.removed)
		}
	})

	t.Run("Missing timestamp rejected before any store call", func(t *testing.T) {
		store := &fakeObjectStore{}
		svc := newTestService(nil, nil, nil, nil, store, nil)

		_, err := svc.UploadImage(context.Background(), 7, ImageUpload{}, "photo.jpg", strings.NewReader("x"), "image/jpeg")
		if !apierrors.IsValidation(err) {
			t.Fatalf("error = %v, want validation error", err)
		}
		if len(store.objects) != 0 {
			t.Error("object stored despite invalid metadata")
		}
	})
}

func TestAddPredictions(t *testing.T) {
	t.Run("Generated detection ids are distinct", func(t *testing.T) {
		images := &fakeImageRepo{}
		svc := newTestService(nil, nil, nil, images, nil, nil)

		batch := []models.ImagePrediction{
			{ClassName: "weed", Confidence: 0.9},
			{ClassName: "crop", Confidence: 0.8},
		}
		count, err := svc.AddPredictions(context.Background(), 5, batch)
		if err != nil {
			t.Fatalf("AddPredictions failed: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
		ids := map[string]bool{}
		for _, p := range images.predictions {
			if p.DetectionID == "" {
				t.Error("prediction stored without detection id")
			}
			if ids[p.DetectionID] {
				t.Errorf("detection id %q assigned twice", p.DetectionID)
			}
			ids[p.DetectionID] = true
		}
	})

	t.Run("Supplied detection id is preserved", func(t *testing.T) {
		images := &fakeImageRepo{}
		svc := newTestService(nil, nil, nil, images, nil, nil)

		batch := []models.ImagePrediction{
			{DetectionID: "det-42", ClassName: "weed", Confidence: 0.5},
		}
		if _, err := svc.AddPredictions(context.Background(), 5, batch); err != nil {
			t.Fatalf("AddPredictions failed: %v", err)
		}
		if images.predictions[0].DetectionID != "det-42" {
			t.Errorf("detection id = %q, want det-42", images.predictions[0].DetectionID)
		}
	})

	t.Run("Validation failures", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, nil, nil)

		cases := []struct {
			name  string
			batch []models.ImagePrediction
		}{
			{"Empty batch", nil},
			{"Missing class", []models.ImagePrediction{{Confidence: 0.5}}},
			{"Confidence above one", []models.ImagePrediction{{ClassName: "weed", Confidence: 1.5}}},
			{"Negative confidence", []models.ImagePrediction{{ClassName: "weed", Confidence: -0.1}}},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				if _, err := svc.AddPredictions(context.Background(), 5, c.batch); !apierrors.IsValidation(err) {
					t.Errorf("error = %v, want validation error", err)
				}
			})
		}
	})
}

func TestGetLatestRobotState(t *testing.T) {
	base := time.Now().Truncate(time.Second)

	t.Run("Cache hit served without repository", func(t *testing.T) {
		stateCache := &fakeCache{latest: map[int64]*models.RobotState{
			3: {Timestamp: base},
		}}
		telemetry := &fakeTelemetryRepo{}
		svc := newTestService(nil, nil, telemetry, nil, nil, stateCache)

		state, err := svc.GetLatestRobotState(context.Background(), 3)
		if err != nil {
			t.Fatalf("GetLatestRobotState failed: %v", err)
		}
		if !state.Timestamp.Equal(base) {
			t.Errorf("state timestamp = %v, want %v", state.Timestamp, base)
		}
	})

	t.Run("Cache miss falls back to repository", func(t *testing.T) {
		telemetry := &fakeTelemetryRepo{states: []models.RobotState{{Timestamp: base}}}
		svc := newTestService(nil, nil, telemetry, nil, nil, &fakeCache{})

		state, err := svc.GetLatestRobotState(context.Background(), 3)
		if err != nil {
			t.Fatalf("GetLatestRobotState failed: %v", err)
		}
		if !state.Timestamp.Equal(base) {
			t.Errorf("state timestamp = %v, want %v", state.Timestamp, base)
		}
	})
}
