package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/roster"
	"alcyxob/gym-membership/internal/service"
)

type MemberHandler struct {
	memberService service.MemberService
	logger        *slog.Logger
}

func NewMemberHandler(memberService service.MemberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{memberService: memberService, logger: logger}
}

// MemberRequest is the body for creating and updating a member.
type MemberRequest struct {
	Name        string   `json:"name" binding:"required"`
	Phone       string   `json:"phone"`
	Plan        string   `json:"plan"`
	JoiningDate string   `json:"joiningDate"`
	ExpiryDate  string   `json:"expiryDate"`
	Amount      float64  `json:"amount" binding:"gte=0"`
	Weight      *float64 `json:"weight"`
	Height      *float64 `json:"height"`
}

func (r MemberRequest) input() service.MemberInput {
	return service.MemberInput{
		Name:        r.Name,
		Phone:       r.Phone,
		Plan:        r.Plan,
		JoiningDate: r.JoiningDate,
		ExpiryDate:  r.ExpiryDate,
		Amount:      r.Amount,
		Weight:      r.Weight,
		Height:      r.Height,
	}
}

// MemberResponse carries the stored record plus values derived as of the
// request: Status is whatever was stored, DerivedStatus is what the roster
// logic computes today.
type MemberResponse struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	Plan          string        `json:"plan"`
	JoiningDate   string        `json:"joiningDate"`
	ExpiryDate    string        `json:"expiryDate,omitempty"`
	Amount        float64       `json:"amount"`
	Weight        *float64      `json:"weight,omitempty"`
	Height        *float64      `json:"height,omitempty"`
	Status        string        `json:"status,omitempty"`
	DerivedStatus domain.Status `json:"derivedStatus"`
	DaysLeft      *int          `json:"daysLeft,omitempty"`
	BMI           *roster.BMI   `json:"bmi,omitempty"`
	PhotoURL      string        `json:"photoUrl,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// MapMemberToResponse derives status, days left and BMI as of asOf.
func MapMemberToResponse(m *domain.Member, asOf time.Time, photoURL string) MemberResponse {
	if m == nil {
		return MemberResponse{}
	}
	resp := MemberResponse{
		ID:            m.ID.Hex(),
		Name:          m.Name,
		Phone:         m.Phone,
		Plan:          m.Plan,
		JoiningDate:   m.JoiningDate,
		ExpiryDate:    m.ExpiryDate,
		Amount:        m.Amount,
		Weight:        m.Weight,
		Height:        m.Height,
		Status:        m.Status,
		DerivedStatus: roster.Classify(*m, asOf),
		BMI:           roster.MemberBMI(m.Weight, m.Height),
		PhotoURL:      photoURL,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if days, ok := roster.DaysLeft(*m, asOf); ok {
		resp.DaysLeft = &days
	}
	return resp
}

func (h *MemberHandler) respond(c *gin.Context, code int, m *domain.Member) {
	c.JSON(code, h.mapMember(c, m))
}

func (h *MemberHandler) mapMember(c *gin.Context, m *domain.Member) MemberResponse {
	url, err := h.memberService.PhotoURL(c.Request.Context(), m)
	if err != nil {
		h.logger.Warn("presign photo failed", "member_id", m.ID.Hex(), "error", err)
	}
	return MapMemberToResponse(m, h.memberService.Today(), url)
}

// ListMembers handles GET /members?status=&search=&tab=.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	status, err := roster.ParseStatusFilter(c.Query("status"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	tab, err := roster.ParseTab(c.Query("tab"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	members, err := h.memberService.List(c.Request.Context(), roster.Options{
		Status: status,
		Search: c.Query("search"),
		Tab:    tab,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	out := make([]MemberResponse, len(members))
	for i := range members {
		out[i] = h.mapMember(c, &members[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	m, err := h.memberService.Create(c.Request.Context(), req.input())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusCreated, m)
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	m, err := h.memberService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, m)
}

func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	m, err := h.memberService.Update(c.Request.Context(), id, req.input())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, m)
}

func (h *MemberHandler) DeleteMember(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.memberService.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MemberHandler) DeactivateMember(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	m, err := h.memberService.Deactivate(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, m)
}

func (h *MemberHandler) GetBMI(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	bmi, err := h.memberService.BMI(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bmi)
}

type PhotoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type PhotoConfirmRequest struct {
	Key string `json:"key" binding:"required"`
}

// RequestPhotoUpload handles POST /members/:id/photo and returns a presigned
// PUT URL. The client uploads directly to storage, then confirms.
func (h *MemberHandler) RequestPhotoUpload(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	up, err := h.memberService.PhotoUploadURL(c.Request.Context(), id, req.ContentType)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, up)
}

// ConfirmPhotoUpload handles PUT /members/:id/photo.
func (h *MemberHandler) ConfirmPhotoUpload(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req PhotoConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	m, err := h.memberService.ConfirmPhoto(c.Request.Context(), id, req.Key)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	h.respond(c, http.StatusOK, m)
}
