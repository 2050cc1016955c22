package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	memberService  service.MemberService
	logger         *slog.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, memberService service.MemberService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, memberService: memberService, logger: logger}
}

type RecordPaymentRequest struct {
	Amount float64              `json:"amount" binding:"required,gt=0"`
	Method domain.PaymentMethod `json:"method"`
	Plan   string               `json:"plan"`
	PaidOn string               `json:"paidOn"`
	Note   string               `json:"note"`
}

type RecordPaymentResponse struct {
	Payment domain.Payment `json:"payment"`
	Member  MemberResponse `json:"member"`
}

// RecordPayment handles POST /members/:id/payments and renews the membership.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	memberID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	staffID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}

	payment, member, err := h.paymentService.RecordPayment(c.Request.Context(), memberID, staffID, service.PaymentInput{
		Amount: req.Amount,
		Method: req.Method,
		Plan:   req.Plan,
		PaidOn: req.PaidOn,
		Note:   req.Note,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	url, _ := h.memberService.PhotoURL(c.Request.Context(), member)
	c.JSON(http.StatusCreated, RecordPaymentResponse{
		Payment: *payment,
		Member:  MapMemberToResponse(member, h.memberService.Today(), url),
	})
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	memberID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	payments, err := h.paymentService.ListForMember(c.Request.Context(), memberID)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}
