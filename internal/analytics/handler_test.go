package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/webinars"
)

type stubCounter struct {
	counts *Counts
	err    error
}

func (s stubCounter) CountByWebinar(context.Context, uuid.UUID) (*Counts, error) { return s.counts, s.err }

type stubWebinars struct{ id uuid.UUID }

func (s stubWebinars) GetByID(_ context.Context, id uuid.UUID) (*models.Webinar, error) {
	if id != s.id {
		return nil, webinars.ErrNotFound
	}
	return &models.Webinar{ID: id}, nil
}

func TestSummarize(t *testing.T) {
	s := Summarize(Counts{TotalInvites: 3, ViewedInvites: 2, TotalViews: 7})
	assert.Equal(t, 66.7, s.ViewRate)
	assert.Equal(t, 7, s.TotalViews)

	assert.Zero(t, Summarize(Counts{}).ViewRate)
}

func TestGetByWebinar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()

	cases := []struct {
		name    string
		path    string
		counter stubCounter
		code    int
	}{
		{"ok", id.String(), stubCounter{counts: &Counts{TotalInvites: 4, ViewedInvites: 1, EmailsSent: 3, EmailsFailed: 1}}, http.StatusOK},
		{"bad id", "nope", stubCounter{}, http.StatusBadRequest},
		{"unknown webinar", uuid.NewString(), stubCounter{}, http.StatusNotFound},
		{"store error", id.String(), stubCounter{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/webinars/:id/analytics", NewHandler(tc.counter, stubWebinars{id: id}, nil).GetByWebinar)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webinars/"+tc.path+"/analytics", nil))
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.JSONEq(t, `{"total_invites":4,"viewed_invites":1,"total_views":0,"expired_invites":0,"emails_sent":3,"emails_failed":1,"view_rate":25}`, w.Body.String())
			}
		})
	}
}
