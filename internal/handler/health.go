package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/patient-dashboard-api/internal/model"
)

// WelcomeMessage is the fixed body of GET /.
const WelcomeMessage = "Welcome to the Patient Dashboard API"

// Welcome answers GET / with a fixed greeting.
func Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, model.WelcomeResponse{Message: WelcomeMessage})
}

// Health is a liveness probe for load balancers and orchestrators.  It
// returns a plain text "ok" with status 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
