// Package server exposes the HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tallyup-dev/tallyup/internal/buildinfo"
	"github.com/tallyup-dev/tallyup/internal/ingest"
	"github.com/tallyup-dev/tallyup/internal/store"
)

// Server wires the HTTP handlers to the store and the ingest pipeline.
type Server struct {
	store    *store.Store
	pipeline *ingest.Pipeline
	log      zerolog.Logger
}

// New creates a Server.
func New(st *store.Store, pipeline *ingest.Pipeline, log zerolog.Logger) *Server {
	return &Server{store: st, pipeline: pipeline, log: log}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")

	api.GET("/version", s.getVersion)

	api.POST("/statements/upload", s.uploadStatements)
	api.GET("/statements", s.getStatements)

	api.GET("/transactions", s.getTransactions)
	api.GET("/transactions/all", s.getAllTransactions)
	api.POST("/transactions/split", s.splitTransaction)
	api.POST("/transactions/overrideCategory", s.overrideCategory)
	api.GET("/transactions/byRule", s.getTransactionsByRule)

	api.GET("/categorizedTransactions", s.getCategorizedTransactions)
	api.GET("/duplicateCreditCardTransactions", s.getDuplicates)
	api.POST("/removeDuplicateCreditCardTransactions", s.removeDuplicates)
	api.GET("/minMaxCreditCardTransactionDates", s.getCreditCardDateBounds)
	api.GET("/minMaxCheckingAccountTransactionDates", s.getCheckingDateBounds)

	api.GET("/categories", s.getCategories)
	api.POST("/categories", s.addCategory)
	api.PUT("/categories", s.updateCategory)
	api.DELETE("/categories/:id", s.deleteCategory)

	api.GET("/categoryAssignmentRules", s.getRules)
	api.POST("/categoryAssignmentRules", s.addRule)
	api.PUT("/categoryAssignmentRules", s.updateRule)
	api.POST("/categoryAssignmentRules/replace", s.replaceRules)
	api.DELETE("/categoryAssignmentRules/:id", s.deleteRule)

	return r
}

func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"serverVersion": buildinfo.Version})
}
