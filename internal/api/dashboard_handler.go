package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-membership/internal/roster"
	"alcyxob/gym-membership/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	broadcastService service.BroadcastService
	memberService    service.MemberService
	logger           *slog.Logger
}

func NewDashboardHandler(
	dashboardService service.DashboardService,
	broadcastService service.BroadcastService,
	memberService service.MemberService,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		broadcastService: broadcastService,
		memberService:    memberService,
		logger:           logger,
	}
}

type ExpiringMemberResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Expiry   string `json:"expiryDate"`
	DaysLeft int    `json:"daysLeft"`
}

type DashboardResponse struct {
	Total        int                      `json:"total"`
	Active       int                      `json:"active"`
	ExpiringSoon int                      `json:"expiringSoon"`
	Expired      int                      `json:"expired"`
	TotalFees    float64                  `json:"totalFees"`
	NewThisMonth int                      `json:"newThisMonth"`
	Expiring     []ExpiringMemberResponse `json:"expiring"`
}

func MapSummaryToResponse(s roster.Summary) DashboardResponse {
	resp := DashboardResponse{
		Total:        s.Total,
		Active:       s.Active,
		ExpiringSoon: s.ExpiringSoon,
		Expired:      s.Expired,
		TotalFees:    s.TotalFees,
		NewThisMonth: s.NewThisMonth,
		Expiring:     make([]ExpiringMemberResponse, len(s.Expiring)),
	}
	for i, e := range s.Expiring {
		resp.Expiring[i] = ExpiringMemberResponse{
			ID:       e.Member.ID.Hex(),
			Name:     e.Member.Name,
			Phone:    e.Member.Phone,
			Expiry:   e.Member.ExpiryDate,
			DaysLeft: e.DaysLeft,
		}
	}
	return resp
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	sum, err := h.dashboardService.Summary(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapSummaryToResponse(sum))
}

// GetBroadcastTargets lists members for the reminder screen, lapsed first.
func (h *DashboardHandler) GetBroadcastTargets(c *gin.Context) {
	status, err := roster.ParseStatusFilter(c.Query("status"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	members, err := h.broadcastService.Targets(c.Request.Context(), status, c.Query("search"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	asOf := h.memberService.Today()
	out := make([]MemberResponse, len(members))
	for i := range members {
		out[i] = MapMemberToResponse(&members[i], asOf, "")
	}
	c.JSON(http.StatusOK, out)
}

type BroadcastSendRequest struct {
	Status    string   `json:"status"`
	Search    string   `json:"search"`
	MemberIDs []string `json:"memberIds"`
	Template  string   `json:"template"`
}

type BroadcastSendResponse struct {
	Sent       int                `json:"sent"`
	Failed     int                `json:"failed"`
	Deliveries []service.Delivery `json:"deliveries"`
}

// SendBroadcast renders a reminder per selected member and returns the
// WhatsApp links for the front desk to open.
func (h *DashboardHandler) SendBroadcast(c *gin.Context) {
	var req BroadcastSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	status, err := roster.ParseStatusFilter(req.Status)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	deliveries, err := h.broadcastService.Send(c.Request.Context(), service.BroadcastRequest{
		Status:    status,
		Search:    req.Search,
		MemberIDs: req.MemberIDs,
		Template:  req.Template,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	resp := BroadcastSendResponse{Deliveries: deliveries}
	if resp.Deliveries == nil {
		resp.Deliveries = []service.Delivery{}
	}
	for _, d := range deliveries {
		if d.Error != "" {
			resp.Failed++
		} else {
			resp.Sent++
		}
	}
	c.JSON(http.StatusOK, resp)
}
