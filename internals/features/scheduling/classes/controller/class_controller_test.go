package controller_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/controller"
	classsvc "github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/classes/service"
	"github.com/fooldevoloper/scheuling-system-sub000/internals/features/scheduling/repository/repotest"
)

type fixture struct {
	app        *fiber.App
	instructor uuid.UUID
	roomType   uuid.UUID
	room       uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := repotest.New()
	f := fixture{
		instructor: store.AddInstructor("Grace"),
		roomType:   store.AddRoomType("Lecture hall"),
	}
	f.room = store.AddRoom("A-101", f.roomType)

	svc := classsvc.New(store, store, nil, classsvc.Settings{
		HorizonDays: 30, ConflictHorizonDays: 365, MaxWindowDays: 366, Location: time.UTC,
	})
	now := func() time.Time { return time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC) }
	svc.Now = now
	svc.Materializer.Now = now

	ctl := controller.NewClassController(svc, nil)
	app := fiber.New()
	app.Get("/classes/:id", ctl.GetByID)
	app.Post("/classes", ctl.Create)
	app.Delete("/classes/:id", ctl.Deactivate)
	app.Post("/classes/conflicts/preview", ctl.Preview)
	f.app = app
	return f
}

type envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code"`
	Errors    map[string][]string `json:"errors"`
	Data      json.RawMessage     `json:"data"`
	Details   struct {
		Conflicts []json.RawMessage `json:"conflicts"`
	} `json:"details"`
}

func (f fixture) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return resp.StatusCode, env
}

func (f fixture) weekly(name string, days []int, start, end string) map[string]any {
	return map[string]any{
		"name":          name,
		"instructor_id": f.instructor,
		"room_type_id":  f.roomType,
		"room_id":       f.room,
		"class_type":    "recurring",
		"recurrence": map[string]any{
			"pattern":      "weekly",
			"days_of_week": days,
			"start_date":   "2024-03-04",
			"time_slots":   []map[string]string{{"start_time": start, "end_time": end}},
		},
	}
}

func TestCreateAndConflicts(t *testing.T) {
	f := newFixture(t)

	status, env := f.do(t, http.MethodPost, "/classes", f.weekly("Algebra", []int{1}, "09:00", "10:00"))
	if status != http.StatusCreated {
		t.Fatalf("create status = %d (%s)", status, env.Message)
	}
	var out struct {
		Class struct {
			ID uuid.UUID `json:"id"`
		} `json:"class"`
		Materialized struct {
			Created int `json:"created"`
		} `json:"materialized"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Class.ID == uuid.Nil || out.Materialized.Created == 0 {
		t.Fatalf("unexpected create payload: %s", env.Data)
	}

	overlap := f.weekly("Geometry", []int{1}, "09:30", "10:30")
	status, env = f.do(t, http.MethodPost, "/classes", overlap)
	if status != http.StatusConflict || env.ErrorCode != "CONFLICT" {
		t.Fatalf("overlap: status=%d code=%s", status, env.ErrorCode)
	}
	if len(env.Details.Conflicts) == 0 {
		t.Fatal("expected conflicts in details")
	}

	status, env = f.do(t, http.MethodPost, "/classes/conflicts/preview", overlap)
	if status != http.StatusOK {
		t.Fatalf("preview status = %d", status)
	}
	var preview struct {
		HasConflict bool `json:"has_conflict"`
	}
	if err := json.Unmarshal(env.Data, &preview); err != nil {
		t.Fatal(err)
	}
	if !preview.HasConflict {
		t.Fatalf("preview should report the overlap: %s", env.Data)
	}

	overlap["force"] = true
	if status, env = f.do(t, http.MethodPost, "/classes", overlap); status != http.StatusCreated {
		t.Fatalf("forced create status = %d (%s)", status, env.Message)
	}

	if status, _ = f.do(t, http.MethodGet, "/classes/"+out.Class.ID.String(), nil); status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	if status, _ = f.do(t, http.MethodDelete, "/classes/"+out.Class.ID.String(), nil); status != http.StatusOK {
		t.Fatalf("deactivate status = %d", status)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantKey string
	}{
		{
			name:    "missing name",
			mutate:  func(b map[string]any) { delete(b, "name") },
			wantKey: "name",
		},
		{
			name:    "unknown pattern",
			mutate:  func(b map[string]any) { b["recurrence"].(map[string]any)["pattern"] = "yearly" },
			wantKey: "recurrence.pattern",
		},
		{
			name:    "recurring without recurrence",
			mutate:  func(b map[string]any) { delete(b, "recurrence") },
			wantKey: "recurrence",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := f.weekly("Algebra", []int{1}, "09:00", "10:00")
			tt.mutate(body)
			status, env := f.do(t, http.MethodPost, "/classes", body)
			if status != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422 (%s)", status, env.Message)
			}
			if _, ok := env.Errors[tt.wantKey]; !ok {
				t.Fatalf("errors = %v, want key %q", env.Errors, tt.wantKey)
			}
		})
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "bad id", path: "/classes/not-a-uuid", want: http.StatusBadRequest},
		{name: "unknown id", path: "/classes/" + uuid.NewString(), want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _ := f.do(t, http.MethodGet, tt.path, nil); status != tt.want {
				t.Fatalf("status = %d, want %d", status, tt.want)
			}
		})
	}
}
