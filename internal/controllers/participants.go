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
)

type ParticipantsController struct {
	db *gorm.DB
}

func NewParticipantsController(db *gorm.DB) *ParticipantsController {
	return &ParticipantsController{db: db}
}

type participantUserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type participantMeetingSummary struct {
	ID       uint      `json:"id"`
	RoomName string    `json:"room_name"`
	SDate    time.Time `json:"s_date"`
}

type participantResponse struct {
	models.Participant
	User    participantUserSummary    `json:"user"`
	Meeting participantMeetingSummary `json:"meeting"`
}

type createParticipantPayload struct {
	MeetingID uint   `json:"meeting_id"`
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at"`
	LeftAt    string `json:"left_at"`
}

// Create attaches a user to a meeting. Only the meeting creator or an
// ADMIN may add participants. Existence of the meeting and the user is
// checked before the policy runs.
func (p *ParticipantsController) Create(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}

	var req createParticipantPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if req.MeetingID == 0 || req.UserID == 0 || strings.TrimSpace(req.Role) == "" {
		fail(c, apperr.Validation("meeting_id, user_id and role are required"))
		return
	}

	var meeting models.Meeting
	if err := p.db.First(&meeting, req.MeetingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("Meeting not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}
	var user models.User
	if err := p.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("User not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}

	if !policy.Can(actor, policy.AddParticipant, policy.MeetingRes{CreatedBy: meeting.CreatedBy}) {
		fail(c, apperr.Forbidden("not allowed to add participants to this meeting"))
		return
	}

	participant := models.Participant{
		MeetingID: meeting.ID,
		UserID:    user.ID,
		Role:      strings.TrimSpace(req.Role),
	}
	if strings.TrimSpace(req.JoinedAt) != "" {
		t, err := parseDate(req.JoinedAt, "joined_at")
		if err != nil {
			fail(c, err)
			return
		}
		participant.JoinedAt = &t
	}
	if strings.TrimSpace(req.LeftAt) != "" {
		t, err := parseDate(req.LeftAt, "left_at")
		if err != nil {
			fail(c, err)
			return
		}
		participant.LeftAt = &t
	}

	if err := p.db.Create(&participant).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, participantResponse{
		Participant: participant,
		User:        participantUserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
		Meeting:     participantMeetingSummary{ID: meeting.ID, RoomName: meeting.RoomName, SDate: meeting.SDate},
	})
}

// find loads the participant plus the owner of its meeting. A meeting
// deleted from under the participant leaves MeetingCreatedBy zero, so
// only ADMIN or the participant's own user still pass the policy.
func (p *ParticipantsController) find(c *gin.Context) (models.Participant, policy.ParticipantRes, bool) {
	var participant models.Participant
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, apperr.Validation("invalid participant id"))
		return participant, policy.ParticipantRes{}, false
	}
	if err := p.db.First(&participant, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("Participant not found"))
			return participant, policy.ParticipantRes{}, false
		}
		fail(c, apperr.Internal(err))
		return participant, policy.ParticipantRes{}, false
	}

	res := policy.ParticipantRes{UserID: participant.UserID}
	var meeting models.Meeting
	if err := p.db.First(&meeting, participant.MeetingID).Error; err == nil {
		res.MeetingCreatedBy = meeting.CreatedBy
	}
	return participant, res, true
}

type updateParticipantPayload struct {
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
	LeftAt   string `json:"left_at"`
}

// Update applies a partial update. Meeting creator, ADMIN, or the
// participant's own user.
func (p *ParticipantsController) Update(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	participant, res, ok := p.find(c)
	if !ok {
		return
	}
	if !policy.Can(actor, policy.UpdateParticipant, res) {
		fail(c, apperr.Forbidden("not allowed to modify this participant"))
		return
	}

	var req updateParticipantPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}
	if role := strings.TrimSpace(req.Role); role != "" {
		participant.Role = role
	}
	if strings.TrimSpace(req.JoinedAt) != "" {
		t, err := parseDate(req.JoinedAt, "joined_at")
		if err != nil {
			fail(c, err)
			return
		}
		participant.JoinedAt = &t
	}
	if strings.TrimSpace(req.LeftAt) != "" {
		t, err := parseDate(req.LeftAt, "left_at")
		if err != nil {
			fail(c, err)
			return
		}
		participant.LeftAt = &t
	}

	if err := p.db.Save(&participant).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": participant})
}

// Delete removes a participant. Meeting creator, ADMIN, or the
// participant's own user.
func (p *ParticipantsController) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	participant, res, ok := p.find(c)
	if !ok {
		return
	}
	if !policy.Can(actor, policy.DeleteParticipant, res) {
		fail(c, apperr.Forbidden("not allowed to delete this participant"))
		return
	}

	if err := p.db.Delete(&participant).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Participant deleted successfully"})
}
