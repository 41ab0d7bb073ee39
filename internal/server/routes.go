package server

import (
	"net/http"
	"strconv"
	"time"

	"auroramon/internal/core/domain"
	"auroramon/internal/core/events"
	"auroramon/pkg/aurora"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/api/info", s.SystemInfoHandler)
	e.GET("/api/measures", s.LiveMeasuresHandler)
	e.GET("/api/measure/:type", s.MeasureHandler)
	e.GET("/api/energy", s.EnergyCountersHandler)
	e.GET("/api/state", s.SystemStateHandler)
	e.GET("/api/sensors", s.SensorCatalogHandler)
	e.GET("/api/probe/:command", s.DebugProbeHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) SystemInfoHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetSystemInfoRequest{}, 80*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetSystemInfoResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, responseError(res))
	}
	return c.String(http.StatusOK, response.Info.Report())
}

func (s *Server) LiveMeasuresHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetLiveMeasuresRequest{}, 80*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetLiveMeasuresResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, responseError(res))
	}
	return c.JSON(http.StatusOK, response.Measures)
}

func (s *Server) MeasureHandler(c echo.Context) error {
	measure, err := aurora.ParseMeasureType(c.Param("type"))
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetMeasureRequest{Measure: measure}, 30*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetMeasureResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, responseError(res))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"type":  response.Measure.Type.String(),
		"value": response.Measure.Value,
		"unit":  response.Measure.Type.Unit(),
	})
}

func (s *Server) EnergyCountersHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetEnergyCountersRequest{}, 80*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetEnergyCountersResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, responseError(res))
	}
	return c.JSON(http.StatusOK, response.Counters)
}

func (s *Server) SystemStateHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetSystemStateRequest{}, 30*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetSystemStateResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, responseError(res))
	}
	return c.JSON(http.StatusOK, response.State)
}

// SensorCatalogHandler describes every sensor the monitor publishes,
// keyed to the device identity read from the inverter.
func (s *Server) SensorCatalogHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetSystemInfoRequest{}, 80*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetSystemInfoResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, responseError(res))
	}
	device := events.InverterDevice(response.Info)
	sensors := events.InverterBaseSensors(device)
	sensors = append(sensors, events.InverterEnergySensors(device)...)
	bridge := events.BridgeDevice(device.Id)
	sensors = append(sensors, events.BridgeSensors(bridge)...)
	return c.JSON(http.StatusOK, sensors)
}

func (s *Server) DebugProbeHandler(c echo.Context) error {
	command, err := strconv.ParseUint(c.Param("command"), 0, 8)
	if err != nil {
		return c.String(http.StatusBadRequest, "command must be a byte value")
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.DebugProbeRequest{Command: byte(command)}, 30*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.DebugProbeResponse)
	if !ok || response.HasResponseError() {
		return c.String(http.StatusServiceUnavailable, responseError(res))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"command": command,
		"frame":   response.Frame,
	})
}

func responseError(res any) string {
	if response, ok := res.(domain.ActorResponse); ok && response.HasResponseError() {
		return response.GetResponseError().Error()
	}
	return "unexpected response"
}
