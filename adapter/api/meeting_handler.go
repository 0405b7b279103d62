package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"meetdesk/internal/meetings/application/commands"
	"meetdesk/internal/meetings/application/queries"
	meetingsDomain "meetdesk/internal/meetings/domain"
	remindersApplication "meetdesk/internal/reminders/application"
)

const dateLayout = "2006-01-02"

// MeetingHandler handles calendar API requests.
type MeetingHandler struct {
	schedule *commands.ScheduleMeetingHandler
	update   *commands.UpdateMeetingHandler
	delete   *commands.DeleteMeetingHandler
	list     *queries.ListMeetingsHandler
	get      *queries.GetMeetingHandler
	export   *queries.ExportMeetingsHandler
	validate *validator.Validate
	logger   *slog.Logger
}

// MeetingHandlerConfig holds dependencies for the meeting handler.
type MeetingHandlerConfig struct {
	Schedule *commands.ScheduleMeetingHandler
	Update   *commands.UpdateMeetingHandler
	Delete   *commands.DeleteMeetingHandler
	List     *queries.ListMeetingsHandler
	Get      *queries.GetMeetingHandler
	Export   *queries.ExportMeetingsHandler
	Logger   *slog.Logger
}

// NewMeetingHandler creates a new meeting handler.
func NewMeetingHandler(cfg MeetingHandlerConfig) *MeetingHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &MeetingHandler{
		schedule: cfg.Schedule,
		update:   cfg.Update,
		delete:   cfg.Delete,
		list:     cfg.List,
		get:      cfg.Get,
		export:   cfg.Export,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   cfg.Logger,
	}
}

// meetingRequest is the payload for creating and updating meetings.
type meetingRequest struct {
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime      string `json:"end_time" validate:"omitempty,datetime=15:04"`
	Title        string `json:"title" validate:"required,max=200"`
	Participants string `json:"participants" validate:"max=2000"`
	Category     string `json:"category" validate:"max=50"`
	Location     string `json:"location" validate:"max=200"`
	Notes        string `json:"notes" validate:"max=4000"`
	Recurrence   string `json:"recurrence"`
	Count        int    `json:"count" validate:"omitempty,min=1,max=366"`
}

// meetingResponse is the JSON shape for a single meeting.
type meetingResponse struct {
	ID           uuid.UUID `json:"id"`
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time,omitempty"`
	EndTime      string    `json:"end_time,omitempty"`
	Title        string    `json:"title"`
	Participants string    `json:"participants,omitempty"`
	Category     string    `json:"category"`
	Location     string    `json:"location,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toResponse(dto queries.MeetingDTO) meetingResponse {
	return meetingResponse{
		ID:           dto.ID,
		Date:         dto.Date.Format(dateLayout),
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		Title:        dto.Title,
		Participants: dto.Participants,
		Category:     dto.Category,
		Location:     dto.Location,
		Notes:        dto.Notes,
		CreatedAt:    dto.CreatedAt,
		UpdatedAt:    dto.UpdatedAt,
	}
}

// ListCategories handles GET /api/v1/categories. The category set feeds the
// calendar's create form.
func (h *MeetingHandler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": meetingsDomain.Categories,
		"default":    meetingsDomain.DefaultCategory,
	})
}

// ListMeetings handles GET /api/v1/meetings
func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQueryFromParams(w, r)
	if !ok {
		return
	}

	dtos, err := h.list.Handle(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to list meetings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list meetings")
		return
	}

	responses := make([]meetingResponse, 0, len(dtos))
	for _, dto := range dtos {
		responses = append(responses, toResponse(dto))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"meetings": responses,
		"total":    len(responses),
	})
}

// GetMeeting handles GET /api/v1/meetings/{meetingID}
func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := h.meetingID(w, r)
	if !ok {
		return
	}

	dto, err := h.get.Handle(r.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrMeetingNotFound) {
			writeError(w, http.StatusNotFound, "meeting not found")
			return
		}
		h.logger.Error("failed to get meeting", "meeting_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meeting")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(*dto))
}

// ScheduleMeeting handles POST /api/v1/meetings
func (h *MeetingHandler) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.decodeMeetingRequest(w, r)
	if !ok {
		return
	}

	result, err := h.schedule.Handle(r.Context(), commands.ScheduleMeetingCommand{
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Title:        req.Title,
		Participants: req.Participants,
		Category:     req.Category,
		Location:     req.Location,
		Notes:        req.Notes,
		Recurrence:   req.Recurrence,
		Count:        req.Count,
	})
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}

	// Multi-row paths do not return per-occurrence ids; the listing is the
	// source of truth for those.
	writeJSON(w, http.StatusCreated, map[string]any{
		"meeting_id":         result.MeetingID,
		"created":            result.Created,
		"reminders_enqueued": result.RemindersEnqueued,
	})
}

// UpdateMeeting handles PUT /api/v1/meetings/{meetingID}
func (h *MeetingHandler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := h.meetingID(w, r)
	if !ok {
		return
	}

	req, date, ok := h.decodeMeetingRequest(w, r)
	if !ok {
		return
	}

	err := h.update.Handle(r.Context(), commands.UpdateMeetingCommand{
		MeetingID:    id,
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Title:        req.Title,
		Participants: req.Participants,
		Category:     req.Category,
		Location:     req.Location,
		Notes:        req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrMeetingNotFound):
			writeError(w, http.StatusNotFound, "meeting not found")
		case errors.Is(err, meetingsDomain.ErrMeetingEmptyTitle), errors.Is(err, meetingsDomain.ErrMeetingZeroDate):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update meeting", "meeting_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update meeting")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteMeeting handles DELETE /api/v1/meetings/{meetingID}
func (h *MeetingHandler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := h.meetingID(w, r)
	if !ok {
		return
	}

	if err := h.delete.Handle(r.Context(), id); err != nil {
		if errors.Is(err, commands.ErrMeetingNotFound) {
			writeError(w, http.StatusNotFound, "meeting not found")
			return
		}
		h.logger.Error("failed to delete meeting", "meeting_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete meeting")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ExportMeetings handles GET /api/v1/meetings/export
func (h *MeetingHandler) ExportMeetings(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQueryFromParams(w, r)
	if !ok {
		return
	}

	buf, err := h.export.Handle(r.Context(), query)
	if err != nil {
		h.logger.Error("failed to export meetings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export meetings")
		return
	}

	filename := fmt.Sprintf("meetings-%s.xlsx", time.Now().Format(dateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to stream export", "error", err)
	}
}

func (h *MeetingHandler) writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, remindersApplication.ErrCampaignExists):
		writeError(w, http.StatusConflict, "a reminder campaign already exists for this meeting")
	case errors.Is(err, meetingsDomain.ErrInvalidRecurrence),
		errors.Is(err, meetingsDomain.ErrMeetingEmptyTitle),
		errors.Is(err, meetingsDomain.ErrMeetingZeroDate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("failed to schedule meeting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to schedule meeting")
	}
}

func (h *MeetingHandler) decodeMeetingRequest(w http.ResponseWriter, r *http.Request) (meetingRequest, time.Time, bool) {
	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return req, time.Time{}, false
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return req, time.Time{}, false
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return req, time.Time{}, false
	}
	return req, date, true
}

func (h *MeetingHandler) meetingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("meetingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meeting id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *MeetingHandler) listQueryFromParams(w http.ResponseWriter, r *http.Request) (queries.ListMeetingsQuery, bool) {
	var query queries.ListMeetingsQuery
	params := r.URL.Query()

	if dateParam := params.Get("date"); dateParam != "" {
		date, err := time.ParseInLocation(dateLayout, dateParam, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return query, false
		}
		query.Date = &date
		return query, true
	}

	fromParam, toParam := params.Get("from"), params.Get("to")
	if fromParam != "" || toParam != "" {
		if fromParam == "" || toParam == "" {
			writeError(w, http.StatusBadRequest, "from and to must be provided together")
			return query, false
		}
		from, err := time.ParseInLocation(dateLayout, fromParam, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return query, false
		}
		to, err := time.ParseInLocation(dateLayout, toParam, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return query, false
		}
		if to.Before(from) {
			writeError(w, http.StatusBadRequest, "to must not precede from")
			return query, false
		}
		query.From, query.To = &from, &to
	}
	return query, true
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		return fmt.Sprintf("field %q failed validation on %q", first.Field(), first.Tag())
	}
	return "invalid request payload"
}
