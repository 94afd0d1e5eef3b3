package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shenikar/disaster_alert_system/internal/config"
	"github.com/shenikar/disaster_alert_system/internal/hub"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/internal/risk"
	"github.com/shenikar/disaster_alert_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	reportService service.ReportService
	riskService   service.RiskService
	hub           *hub.Hub
	logger        *logrus.Logger
	validate      *validator.Validate
	cfg           *config.Config
	upgrader      websocket.Upgrader
}

func NewHandler(reportService service.ReportService, riskService service.RiskService, h *hub.Hub, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		reportService: reportService,
		riskService:   riskService,
		hub:           h,
		logger:        logger,
		validate:      validator.New(),
		cfg:           cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// @Summary Submit an incident report
// @Description Submit a citizen incident report. The report is verified, stored and pushed to live subscribers.
// @Tags Reports
// @Accept json
// @Produce json
// @Param report body CreateReportRequest true "Incident report"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [post]
func (h *Handler) createReport(c *gin.Context) {
	var input CreateReportRequest
	log := h.logger.WithField("method", "createReport")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := DTOToReportModel(input)
	if err := h.reportService.CreateReport(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create report in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToReportResponse(model))
}

// @Summary Get a list of reports
// @Description Get a paginated list of reports, newest first.
// @Tags Reports
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Param verified query bool false "Only verified reports"
// @Success 200 {array} ReportResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [get]
func (h *Handler) listReports(c *gin.Context) {
	log := h.logger.WithField("method", "listReports")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	verifiedOnly, _ := strconv.ParseBool(c.DefaultQuery("verified", "false"))

	reports, err := h.reportService.ListReports(c.Request.Context(), page, pageSize, verifiedOnly)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToReportResponses(reports))
}

// @Summary Get report by ID
// @Description Get a single report with its operator notes.
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id} [get]
func (h *Handler) getReport(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getReport").WithField("id", id)

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err, "Failed to get report from service")
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Update report status
// @Description Move a report forward through pending, investigating, in-progress, resolved. Backward moves need override. Requires API key.
// @Tags Operator
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 409 {object} map[string]string "Status transition not allowed"
// @Router /reports/{id}/status [patch]
func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateStatus").WithField("id", id)

	var input UpdateStatusRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	report, err := h.reportService.UpdateStatus(c.Request.Context(), id, models.ReportStatus(input.Status), input.Override)
	if err != nil {
		h.respondError(c, log, err, "Failed to update status in service")
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Add an operator note
// @Description Append a note to a report. Notes cannot be edited. Requires API key.
// @Tags Operator
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param note body AddNoteRequest true "Note"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /reports/{id}/notes [post]
func (h *Handler) addNote(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "addNote").WithField("id", id)

	var input AddNoteRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	report, err := h.reportService.AddNote(c.Request.Context(), id, input.Author, input.Text)
	if err != nil {
		h.respondError(c, log, err, "Failed to add note in service")
		return
	}
	c.JSON(http.StatusCreated, ModelToReportResponse(report))
}

// @Summary Override verification
// @Description Set verified flag and priority by hand. Requires API key.
// @Tags Operator
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param verification body OverrideVerificationRequest true "Verification decision"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Router /reports/{id}/verification [patch]
func (h *Handler) overrideVerification(c *gin.Context) {
	id, ok := parseReportID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "overrideVerification").WithField("id", id)

	var input OverrideVerificationRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	report, err := h.reportService.OverrideVerification(c.Request.Context(), id, *input.Verified, models.Priority(input.Priority))
	if err != nil {
		h.respondError(c, log, err, "Failed to override verification in service")
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Get dashboard statistics
// @Description Totals by status, urgency and type, 24h volume, weekly trend and active emergencies. Requires API key.
// @Tags Operator
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.ReportStats
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.reportService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Score disaster risk at a point
// @Description Per-hazard scores, aggregate score, zone and recommended action for a coordinate.
// @Tags Risk
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} models.RiskAssessment
// @Failure 400 {object} map[string]string "Invalid coordinate"
// @Failure 503 {object} map[string]string "Historical data unavailable"
// @Router /risk [get]
func (h *Handler) scoreRisk(c *gin.Context) {
	log := h.logger.WithField("method", "scoreRisk")

	var q RiskQuery
	if !h.bindQuery(c, log, &q) {
		return
	}

	assessment, err := h.riskService.Score(c.Request.Context(), *q.Latitude, *q.Longitude)
	if err != nil {
		h.respondError(c, log, err, "Failed to score risk")
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// @Summary Score disaster risk over a grid
// @Description Square grid of gridSize x gridSize cells covering radiusKm around the centre. format=geojson returns a FeatureCollection.
// @Tags Risk
// @Produce json
// @Param lat query number true "Centre latitude"
// @Param lng query number true "Centre longitude"
// @Param radiusKm query number true "Half side of the grid in km"
// @Param gridSize query int true "Cells per side"
// @Param format query string false "json or geojson"
// @Success 200 {array} models.GridCell
// @Failure 400 {object} map[string]string "Invalid grid parameters"
// @Failure 503 {object} map[string]string "Historical data unavailable"
// @Router /risk/grid [get]
func (h *Handler) scoreGrid(c *gin.Context) {
	log := h.logger.WithField("method", "scoreGrid")

	var q GridQuery
	if !h.bindQuery(c, log, &q) {
		return
	}

	cells, err := h.riskService.ScoreGrid(c.Request.Context(), *q.Latitude, *q.Longitude, q.RadiusKm, q.GridSize)
	if err != nil {
		h.respondError(c, log, err, "Failed to score risk grid")
		return
	}

	if q.Format == "geojson" {
		c.JSON(http.StatusOK, risk.GridToFeatureCollection(cells))
		return
	}
	c.JSON(http.StatusOK, cells)
}

// @Summary Live event channel
// @Description Websocket. Send {"type":"subscribeToArea","lat":..,"lng":..,"radiusKm":..} or {"type":"unsubscribe"}; receive newReport and reportUpdated events.
// @Tags Live
// @Router /ws [get]
func (h *Handler) serveWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	h.hub.ServeConn(conn)
}

// @Summary Get application health status
// @Description Get health status of the application and live hub counters
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Hub: h.hub.Stats()})
}

func parseReportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bindAndValidate(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError переводит доменные ошибки в HTTP-статусы
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrReportNotFound):
		log.WithError(err).Warn(msg)
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
	case errors.Is(err, models.ErrInvalidStatusTransition):
		log.WithError(err).Warn(msg)
		c.JSON(http.StatusConflict, gin.H{"error": "status transition not allowed"})
	case errors.Is(err, models.ErrInvalidGrid):
		log.WithError(err).Warn(msg)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrHistoryUnavailable):
		log.WithError(err).Error(msg)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "historical incident data unavailable"})
	default:
		log.WithError(err).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
