package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/virtualstage/backlot/internal/permissions"
)

func TestRequirePermissionWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// No userID in context hits the early 401 branch, so the checker is never
	// invoked and a zero-value instance is enough.
	r := gin.New()
	r.GET("/secure", RequirePermission(&permissions.Checker{}, "stories.view"), func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/secure", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
