package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tallyup-dev/tallyup/internal/categorize"
	"github.com/tallyup-dev/tallyup/internal/ingest"
	"github.com/tallyup-dev/tallyup/internal/model"
	"github.com/tallyup-dev/tallyup/internal/statement"
	"github.com/tallyup-dev/tallyup/internal/store"
)

// uploadStatements receives multipart statement files under the "files"
// field. Every file is processed independently; a rejected file name fails
// that file only.
func (s *Server) uploadStatements(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	var files []ingest.File
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}

	results := s.pipeline.ProcessBatch(c.Request.Context(), files)

	var errs []string
	rejectedOnly := true
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		errs = append(errs, res.FileName+": "+res.Err.Error())
		if !errors.Is(res.Err, statement.ErrUnrecognizedFilename) {
			rejectedOnly = false
		}
	}

	if len(errs) == 0 {
		c.JSON(http.StatusOK, gin.H{"uploadStatus": "success"})
		return
	}
	status := http.StatusBadRequest
	if !rejectedOnly {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"uploadStatus": "failed", "errors": errs})
}

func (s *Server) getStatements(c *gin.Context) {
	ctx := c.Request.Context()
	creditCard, err := s.store.Statements(ctx, model.StatementCreditCard)
	if err != nil {
		s.fail(c, err)
		return
	}
	checking, err := s.store.Statements(ctx, model.StatementChecking)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"creditCardStatements":      creditCard,
		"checkingAccountStatements": checking,
	})
}

// transactionQuery mirrors the historical query parameters.
type transactionQuery struct {
	StartDate         string `form:"startDate"`
	EndDate           string `form:"endDate"`
	IncludeCreditCard bool   `form:"includeCreditCardTransactions"`
	IncludeChecking   bool   `form:"includeCheckingAccountTransactions"`
}

func (s *Server) getTransactions(c *gin.Context) {
	var q transactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	creditCard := []model.Transaction{}
	checking := []model.Transaction{}
	var err error
	if q.IncludeCreditCard {
		creditCard, err = s.store.Transactions(ctx, model.KindCreditCard, q.StartDate, q.EndDate)
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	if q.IncludeChecking {
		checking, err = s.store.Transactions(ctx, model.KindChecking, q.StartDate, q.EndDate)
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"creditCardTransactions":      creditCard,
		"checkingAccountTransactions": checking,
	})
}

func (s *Server) getAllTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	creditCard, err := s.store.Transactions(ctx, model.KindCreditCard, "", "")
	if err != nil {
		s.fail(c, err)
		return
	}
	checking, err := s.store.Transactions(ctx, model.KindChecking, "", "")
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"creditCardTransactions":      creditCard,
		"checkingAccountTransactions": checking,
	})
}

// getCategorizedTransactions runs the categorization engine over the selected
// transactions and returns the bucketed report.
func (s *Server) getCategorizedTransactions(c *gin.Context) {
	var q transactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	var txns []model.Transaction
	if q.IncludeCreditCard {
		creditCard, err := s.store.Transactions(ctx, model.KindCreditCard, q.StartDate, q.EndDate)
		if err != nil {
			s.fail(c, err)
			return
		}
		txns = append(txns, creditCard...)
	}
	if q.IncludeChecking {
		checking, err := s.store.Transactions(ctx, model.KindChecking, q.StartDate, q.EndDate)
		if err != nil {
			s.fail(c, err)
			return
		}
		txns = append(txns, checking...)
	}

	engine, err := s.buildEngine(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	result := engine.Categorize(txns)
	c.JSON(http.StatusOK, gin.H{
		"categorized":   result.Categorized,
		"ignored":       result.Ignored,
		"uncategorized": result.Uncategorized,
		"unidentified":  engine.Unidentified(result.Uncategorized),
		"netTotal":      result.NetTotal,
	})
}

func (s *Server) buildEngine(c *gin.Context) (*categorize.Engine, error) {
	ctx := c.Request.Context()
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.store.Rules(ctx)
	if err != nil {
		return nil, err
	}
	ignore, err := s.store.EnsureIgnoreCategory(ctx)
	if err != nil {
		return nil, err
	}
	dir := categorize.NewDirectory(categories)
	return categorize.NewEngine(dir, rules, ignore.ID), nil
}

func (s *Server) getDuplicates(c *gin.Context) {
	duplicates, err := s.pipeline.Duplicates(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, duplicates)
}

func (s *Server) removeDuplicates(c *gin.Context) {
	if err := s.pipeline.RemoveDuplicates(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) getCreditCardDateBounds(c *gin.Context) {
	bounds, err := s.store.MinMaxDates(c.Request.Context(), model.KindCreditCard)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bounds)
}

func (s *Server) getCheckingDateBounds(c *gin.Context) {
	bounds, err := s.store.MinMaxDates(c.Request.Context(), model.KindChecking)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bounds)
}

// getCategories returns categories, hiding disregarded ones unless ?all=true.
func (s *Server) getCategories(c *gin.Context) {
	categories, err := s.store.Categories(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if c.Query("all") != "true" {
		categories = categorize.VisibleCategories(categories)
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) addCategory(c *gin.Context) {
	var category model.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.AddCategory(c.Request.Context(), category); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	var category model.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.UpdateCategory(c.Request.Context(), category); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) deleteCategory(c *gin.Context) {
	if err := s.store.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) getRules(c *gin.Context) {
	rules, err := s.store.Rules(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (s *Server) addRule(c *gin.Context) {
	var rule model.CategoryAssignmentRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.AddRule(c.Request.Context(), rule); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) updateRule(c *gin.Context) {
	var rule model.CategoryAssignmentRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.UpdateRule(c.Request.Context(), rule); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) replaceRules(c *gin.Context) {
	var rules []model.CategoryAssignmentRule
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.ReplaceRules(c.Request.Context(), rules); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) deleteRule(c *gin.Context) {
	if err := s.store.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) getTransactionsByRule(c *gin.Context) {
	ruleID := c.Query("categoryAssignmentRuleId")
	txns, err := s.store.TransactionsByRule(c.Request.Context(), ruleID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

type splitRequest struct {
	ParentTransactionID string              `json:"parentTransactionId"`
	NewTransactions     []model.Transaction `json:"newTransactions"`
}

func (s *Server) splitTransaction(c *gin.Context) {
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SplitTransaction(c.Request.Context(), req.ParentTransactionID, req.NewTransactions); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type overrideRequest struct {
	CategoryID     string   `json:"categoryId"`
	TransactionIDs []string `json:"transactionIds"`
}

func (s *Server) overrideCategory(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SetOverrideCategory(c.Request.Context(), req.CategoryID, req.TransactionIDs); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// fail maps store errors to HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}
