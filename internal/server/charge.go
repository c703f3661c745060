package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	transactiondomain "github.com/smallbiznis/donare/internal/transaction/domain"
)

// CreateCharge processes a one-off charge. Unknown body fields are rejected
// before any scoring or ledger mutation.
func (s *Server) CreateCharge(c *gin.Context) {
	var req transactiondomain.CreateChargeRequest

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tx, err := s.transactionSvc.Charge(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// A blocked charge is a business outcome surfaced with its score and
	// explanation, not a generic error.
	if tx.Status == transactiondomain.TransactionStatusBlocked {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": gin.H{
				"type":        "transaction_blocked",
				"score":       tx.RiskScore,
				"explanation": tx.Explanation,
			},
			"transaction_id": tx.ID.String(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tx})
}

func (s *Server) ListTransactions(c *gin.Context) {
	items, err := s.transactionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
