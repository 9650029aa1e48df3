package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meetbase/internal/apperr"
	"meetbase/internal/middleware"
	"meetbase/internal/models"
	"meetbase/internal/policy"
	"meetbase/internal/utils"
)

type MeetingsController struct {
	db *gorm.DB
}

func NewMeetingsController(db *gorm.DB) *MeetingsController {
	return &MeetingsController{db: db}
}

type userSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type meetingResponse struct {
	models.Meeting
	Creator userSummary `json:"creator"`
}

type createMeetingPayload struct {
	BaseRoomName string `json:"base_room_name"`
	SDate        string `json:"s_date"`
	EDate        string `json:"e_date"`
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid " + field + ", expected RFC3339")
	}
	return t, nil
}

// Create schedules a meeting. The creator is always the actor; an end
// date is optional. End-before-start is accepted as-is.
func (m *MeetingsController) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	if !policy.Can(actor, policy.CreateMeeting, nil) {
		fail(c, apperr.Forbidden("not allowed to create meetings"))
		return
	}

	var p createMeetingPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	p.BaseRoomName = strings.TrimSpace(p.BaseRoomName)
	if p.BaseRoomName == "" || strings.TrimSpace(p.SDate) == "" {
		fail(c, apperr.Validation("base_room_name and s_date are required"))
		return
	}

	sDate, err := parseDate(p.SDate, "s_date")
	if err != nil {
		fail(c, err)
		return
	}
	var eDate *time.Time
	if strings.TrimSpace(p.EDate) != "" {
		t, err := parseDate(p.EDate, "e_date")
		if err != nil {
			fail(c, err)
			return
		}
		eDate = &t
	}

	roomName, err := utils.GenerateRoomName(p.BaseRoomName)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	var creator models.User
	if err := m.db.First(&creator, actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("Creator user not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}

	meeting := models.Meeting{
		RoomName:  roomName,
		SDate:     sDate,
		EDate:     eDate,
		CreatedBy: creator.ID,
	}
	if err := m.db.Create(&meeting).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, meetingResponse{
		Meeting: meeting,
		Creator: userSummary{ID: creator.ID, Name: creator.Name, Email: creator.Email},
	})
}

func (m *MeetingsController) find(c *gin.Context) (models.Meeting, bool) {
	var meeting models.Meeting
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, apperr.Validation("invalid meeting id"))
		return meeting, false
	}
	if err := m.db.First(&meeting, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("Meeting not found"))
			return meeting, false
		}
		fail(c, apperr.Internal(err))
		return meeting, false
	}
	return meeting, true
}

type updateMeetingPayload struct {
	RoomName string `json:"room_name"`
	SDate    string `json:"s_date"`
	EDate    string `json:"e_date"`
}

// Update applies a partial update. Creator or ADMIN.
func (m *MeetingsController) Update(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	meeting, ok := m.find(c)
	if !ok {
		return
	}
	if !policy.Can(actor, policy.UpdateMeeting, policy.MeetingRes{CreatedBy: meeting.CreatedBy}) {
		fail(c, apperr.Forbidden("not allowed to modify this meeting"))
		return
	}

	var p updateMeetingPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if name := strings.TrimSpace(p.RoomName); name != "" {
		meeting.RoomName = name
	}
	if strings.TrimSpace(p.SDate) != "" {
		t, err := parseDate(p.SDate, "s_date")
		if err != nil {
			fail(c, err)
			return
		}
		meeting.SDate = t
	}
	if strings.TrimSpace(p.EDate) != "" {
		t, err := parseDate(p.EDate, "e_date")
		if err != nil {
			fail(c, err)
			return
		}
		meeting.EDate = &t
	}

	if err := m.db.Save(&meeting).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting": meeting})
}

type endDatePayload struct {
	EDate string `json:"e_date"`
}

// UpdateEndDate sets the end date of an open-ended meeting. Creator or
// ADMIN.
func (m *MeetingsController) UpdateEndDate(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	meeting, ok := m.find(c)
	if !ok {
		return
	}
	if !policy.Can(actor, policy.UpdateMeeting, policy.MeetingRes{CreatedBy: meeting.CreatedBy}) {
		fail(c, apperr.Forbidden("not allowed to modify this meeting"))
		return
	}

	var p endDatePayload
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.EDate) == "" {
		fail(c, apperr.Validation("e_date is required"))
		return
	}
	t, err := parseDate(p.EDate, "e_date")
	if err != nil {
		fail(c, err)
		return
	}
	meeting.EDate = &t

	if err := m.db.Save(&meeting).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting": meeting})
}

// Delete removes a meeting. Creator or ADMIN. Participant rows of the
// meeting are left in place.
func (m *MeetingsController) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	meeting, ok := m.find(c)
	if !ok {
		return
	}
	if !policy.Can(actor, policy.DeleteMeeting, policy.MeetingRes{CreatedBy: meeting.CreatedBy}) {
		fail(c, apperr.Forbidden("not allowed to delete this meeting"))
		return
	}

	if err := m.db.Delete(&meeting).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted successfully"})
}
