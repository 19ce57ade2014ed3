package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/supplylink/core-service/internal/apperr"
)

func TestErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validationf("bad input"), http.StatusBadRequest},
		{apperr.Preconditionf("no approved link"), http.StatusPreconditionFailed},
		{apperr.Transitionf("cannot move from REJECTED"), http.StatusUnprocessableEntity},
		{apperr.Conflictf("modified concurrently"), http.StatusConflict},
		{apperr.NotFoundf("order missing"), http.StatusNotFound},
		{apperr.Forbiddenf("role may not"), http.StatusForbidden},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		assert.Equal(t, tc.want, w.Code, "error %v", tc.err)
	}
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, fmt.Errorf("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
