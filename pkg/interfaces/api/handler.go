package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/application/services/orchestration"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/infrastructure/events"
	"github.com/vsinha/prodsched/pkg/infrastructure/export"
)

// EventReader reads the retained event journal
type EventReader interface {
	ReadEvents(streamID string, fromVersion int) ([]events.Event, error)
	ReadAllEvents(fromSequence int) ([]events.Event, error)
}

// EventPage is a slice of the journal. Next is the sequence to pass as from on the following call.
type EventPage struct {
	Events []events.Event `json:"events"`
	Next   int            `json:"next"`
}

// WeekFactory builds a week from its Monday using configured defaults
type WeekFactory func(weekStart time.Time) (*entities.WorkWeekConfig, error)

// GenerateRequest asks for a proposal. Unset week fields fall back to configured defaults.
type GenerateRequest struct {
	WeekStart        string `json:"week_start" validate:"required,iso_date"`
	WorkDays         []int  `json:"work_days" validate:"omitempty,dive,min=1,max=5"`
	ScheduleDays     int    `json:"schedule_days" validate:"omitempty,min=1,max=7"`
	CapacityOverride int    `json:"capacity_override" validate:"min=0"`
}

// EditRequest applies one operation to a proposal the client holds
type EditRequest struct {
	Proposal   *entities.ScheduleProposal `json:"proposal" validate:"required"`
	Op         string                     `json:"op" validate:"required,oneof=move remove place"`
	OrderID    string                     `json:"order_id" validate:"required"`
	TargetDate string                     `json:"target_date" validate:"required_unless=Op remove"`
	Order      *entities.ProductionOrder  `json:"order" validate:"required_if=Op place"`
}

// CommitRequest commits a proposal for the week it carries
type CommitRequest struct {
	Proposal *entities.ScheduleProposal `json:"proposal" validate:"required"`
}

// ScheduleHandler exposes the scheduling orchestrator over HTTP
type ScheduleHandler struct {
	orchestrator *orchestration.SchedulingOrchestrator
	weeks        WeekFactory
	journal      EventReader
	validate     *validator.Validate
}

// NewScheduleHandler creates the handler. journal may be nil, in which case the event routes return empty pages.
func NewScheduleHandler(orchestrator *orchestration.SchedulingOrchestrator, weeks WeekFactory, journal EventReader) *ScheduleHandler {
	return &ScheduleHandler{
		orchestrator: orchestrator,
		weeks:        weeks,
		journal:      journal,
		validate:     newValidator(),
	}
}

func (h *ScheduleHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		BadRequest(c, describe(err))
		return false
	}
	return true
}

// Generate handles POST /schedule/generate
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if !h.bind(c, &req) {
		return
	}

	start, _ := entities.ParseDate(req.WeekStart)
	week, err := h.weeks(start)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	if len(req.WorkDays) > 0 {
		week.SelectedWorkDays = req.WorkDays
	}
	if req.ScheduleDays > 0 {
		week.ScheduleDays = req.ScheduleDays
	}
	if req.CapacityOverride > 0 {
		week.CapacityOverride = req.CapacityOverride
	}

	result, err := h.orchestrator.GenerateSchedule(c.Request.Context(), *week)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, result)
}

// Edit handles POST /schedule/edit
func (h *ScheduleHandler) Edit(c *gin.Context) {
	var req EditRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.orchestrator.EditSchedule(c.Request.Context(), req.Proposal, dto.EditOperation{
		Op:         dto.EditOp(req.Op),
		OrderID:    entities.OrderID(req.OrderID),
		TargetDate: req.TargetDate,
		Order:      req.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, result)
}

// Commit handles POST /schedule/commit
func (h *ScheduleHandler) Commit(c *gin.Context) {
	var req CommitRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.orchestrator.CommitSchedule(c.Request.Context(), req.Proposal, req.Proposal.Week)
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, result)
}

// List handles GET /schedule?from=YYYY-MM-DD&to=YYYY-MM-DD. Missing bounds default to the current week.
func (h *ScheduleHandler) List(c *gin.Context) {
	view, ok := h.listView(c)
	if !ok {
		return
	}
	Success(c, view)
}

// Export handles GET /schedule/export, returning the committed entries as a workbook
func (h *ScheduleHandler) Export(c *gin.Context) {
	view, ok := h.listView(c)
	if !ok {
		return
	}

	f, err := export.EntriesWorkbook(view)
	if err != nil {
		InternalError(c, "failed to build workbook: "+err.Error())
		return
	}
	defer f.Close()

	filename := export.Filename("schedule", view.From.Format(entities.DateLayout))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func (h *ScheduleHandler) listView(c *gin.Context) (*dto.ScheduleView, bool) {
	from := entities.MondayOf(time.Now())
	to := from.AddDate(0, 0, 7)

	if s := c.Query("from"); s != "" {
		d, err := entities.ParseDate(s)
		if err != nil {
			BadRequest(c, "invalid from: "+err.Error())
			return nil, false
		}
		from, to = d, d.AddDate(0, 0, 7)
	}
	if s := c.Query("to"); s != "" {
		d, err := entities.ParseDate(s)
		if err != nil {
			BadRequest(c, "invalid to: "+err.Error())
			return nil, false
		}
		to = d
	}

	view, err := h.orchestrator.ListSchedule(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return view, true
}

// Queue handles GET /queue
func (h *ScheduleHandler) Queue(c *gin.Context) {
	view, err := h.orchestrator.PriorityQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, view)
}

// Counts handles GET /departments/counts
func (h *ScheduleHandler) Counts(c *gin.Context) {
	counts, err := h.orchestrator.GetDepartmentCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, counts)
}

// Progress handles POST /orders/:id/progress
func (h *ScheduleHandler) Progress(c *gin.Context) {
	result, err := h.orchestrator.ProgressOrder(c.Request.Context(), entities.OrderID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, result)
}

// History handles GET /orders/:id/history
func (h *ScheduleHandler) History(c *gin.Context) {
	history, err := h.orchestrator.DepartmentHistory(c.Request.Context(), entities.OrderID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, gin.H{"order_id": c.Param("id"), "transitions": history})
}

// Events handles GET /events?from=N&stream=ID. Without a stream, from is a journal sequence;
// with one, it is a stream version.
func (h *ScheduleHandler) Events(c *gin.Context) {
	from := 0
	if s := c.Query("from"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			BadRequest(c, "invalid from: must be a non-negative integer")
			return
		}
		from = n
	}

	if stream := c.Query("stream"); stream != "" {
		h.streamPage(c, stream, from)
		return
	}

	page := EventPage{Events: []events.Event{}, Next: from}
	if h.journal != nil {
		list, err := h.journal.ReadAllEvents(from)
		if err != nil {
			InternalError(c, "failed to read events: "+err.Error())
			return
		}
		page.Events = list
		if n := len(list); n > 0 {
			page.Next = list[n-1].Sequence() + 1
		}
	}
	Success(c, page)
}

// OrderEvents handles GET /orders/:id/events
func (h *ScheduleHandler) OrderEvents(c *gin.Context) {
	h.streamPage(c, c.Param("id"), 1)
}

func (h *ScheduleHandler) streamPage(c *gin.Context, stream string, fromVersion int) {
	page := EventPage{Events: []events.Event{}, Next: fromVersion}
	if h.journal != nil {
		list, err := h.journal.ReadEvents(stream, fromVersion)
		if err != nil {
			InternalError(c, "failed to read events: "+err.Error())
			return
		}
		page.Events = list
		if n := len(list); n > 0 {
			page.Next = list[n-1].Version() + 1
		}
	}
	Success(c, page)
}
