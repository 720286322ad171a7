package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestWriteDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "uq_instructors_email"}, http.StatusConflict},
		{"wrapped unique", fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"gorm duplicated", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeDBError(c, "instructor", tt.err) })
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	if got := likePattern("  Lab A "); got != "%lab a%" {
		t.Fatalf("got %q", got)
	}
}
