package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"devstreak/internal/apperr"
	"devstreak/internal/models"
	"devstreak/internal/payments"
)

type checkoutRequest struct {
	ProductKey string `json:"product_key" binding:"required"`
	Quantity   int    `json:"quantity" binding:"omitempty,min=1"`
}

type verifyPaymentRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	ProductKey string `json:"product_key" binding:"required"`
}

// handleCheckout opens a hosted checkout session with the payment
// provider for one catalog product.
func (s *Server) handleCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	product, ok := s.catalog.ByKey(req.ProductKey)
	if !ok {
		s.respondError(c, apperr.New(apperr.Validation, "invalid product"))
		return
	}

	ident := currentIdentity(c)
	ctx := c.Request.Context()

	user, err := s.resolveUser(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	session, err := s.payments.CreateCheckoutSession(ctx, payments.CheckoutParams{
		ProductID:     product.ID,
		Quantity:      req.Quantity,
		CustomerEmail: user.Email,
		CustomerName:  customerName(user),
		ReturnURL: fmt.Sprintf("%s/dashboard/success?session_id={CHECKOUT_SESSION_ID}&product_key=%s",
			s.siteBaseURL, req.ProductKey),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info("checkout session created",
		slog.String("user_id", ident.UserID),
		slog.String("session_id", session.SessionID))
	c.JSON(http.StatusOK, gin.H{
		"checkout_url": session.CheckoutURL,
		"session_id":   session.SessionID,
	})
}

// handleVerifyPayment confirms a checkout session with the provider and
// records it once; re-verifying an already recorded session is a no-op.
func (s *Server) handleVerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	ident := currentIdentity(c)
	ctx := c.Request.Context()

	existing, err := s.store.GetPaymentBySession(ctx, req.SessionID)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"verified":         true,
			"already_recorded": true,
			"payment":          existing,
		})
		return
	}
	if apperr.KindOf(err) != apperr.NotFound {
		s.respondError(c, err)
		return
	}

	product, ok := s.catalog.ByKey(req.ProductKey)
	if !ok {
		s.respondError(c, apperr.New(apperr.Validation, "invalid product"))
		return
	}

	session, err := s.payments.GetCheckoutSession(ctx, req.SessionID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if session.PaymentStatus != string(models.PaymentSucceeded) {
		s.respondError(c, apperr.New(apperr.Precondition, "payment not completed yet"))
		return
	}
	if session.PaymentID == "" {
		s.respondError(c, apperr.New(apperr.Upstream, "payment id missing from checkout session"))
		return
	}

	providerPayment, err := s.payments.GetPayment(ctx, session.PaymentID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	amount := providerPayment.TotalAmount
	if amount == 0 {
		amount = product.Price
	}
	currency := providerPayment.Currency
	if currency == "" {
		currency = product.Currency
	}
	email := providerPayment.CustomerEmail
	if email == "" {
		email = session.CustomerEmail
	}

	recorded, err := s.store.RecordPayment(ctx, models.Payment{
		UserID:    ident.UserID,
		Amount:    amount,
		Currency:  currency,
		Status:    models.PaymentSucceeded,
		Type:      product.Type,
		ProductID: product.Key,
		SessionID: req.SessionID,
		Metadata: map[string]string{
			"customer_email":      email,
			"provider_product_id": product.ID,
			"payment_id":          providerPayment.PaymentID,
		},
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.logger.Info("payment recorded",
		slog.String("user_id", ident.UserID),
		slog.String("session_id", req.SessionID))
	c.JSON(http.StatusOK, gin.H{"verified": true, "payment": recorded})
}

// handleListPayments returns the user's recorded payments.
func (s *Server) handleListPayments(c *gin.Context) {
	ident := currentIdentity(c)
	list, err := s.store.ListPayments(c.Request.Context(), ident.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list, "count": len(list)})
}

// resolveUser mirrors the identity locally when it carries an email,
// otherwise falls back to a previously mirrored record.
func (s *Server) resolveUser(c *gin.Context) (models.User, error) {
	ident := currentIdentity(c)
	ctx := c.Request.Context()

	if ident.Email != "" {
		return s.store.UpsertUser(ctx, models.User{ID: ident.UserID, Email: ident.Email, Name: ident.Name})
	}

	user, err := s.store.GetUser(ctx, ident.UserID)
	if apperr.KindOf(err) == apperr.NotFound {
		return models.User{}, apperr.New(apperr.Precondition, "no user profile on record, sign in again")
	}
	return user, err
}

func customerName(user models.User) string {
	if user.Name != "" {
		return user.Name
	}
	return "Valued Customer"
}
