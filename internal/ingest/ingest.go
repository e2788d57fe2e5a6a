// Package ingest runs the upload pipeline: normalize the CSV, classify the
// file name, extract typed transactions, persist, and run the post-upload
// cleanup passes.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tallyup-dev/tallyup/internal/auditlog"
	"github.com/tallyup-dev/tallyup/internal/csvkit"
	"github.com/tallyup-dev/tallyup/internal/dedup"
	"github.com/tallyup-dev/tallyup/internal/extract"
	"github.com/tallyup-dev/tallyup/internal/model"
	"github.com/tallyup-dev/tallyup/internal/statement"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	AddStatement(ctx context.Context, stmt model.Statement) error
	AddTransactions(ctx context.Context, txns []model.Transaction) error
	Transactions(ctx context.Context, kind model.TransactionKind, startDate, endDate string) ([]model.Transaction, error)
	DeleteTransactions(ctx context.Context, ids []string) error
	DuplicateCandidates(ctx context.Context) ([]model.Transaction, error)
	MinMaxDates(ctx context.Context, kind model.TransactionKind) (model.MinMaxDates, error)
	Categories(ctx context.Context) ([]model.Category, error)
	AddCategories(ctx context.Context, cats []model.Category) error
}

// File is one uploaded statement: the original name and the raw bytes. The
// transport layer (multipart receiver, CLI) produces these.
type File struct {
	Name string
	Data []byte
}

// FileResult reports the outcome of one file in a batch.
type FileResult struct {
	FileName    string `json:"fileName"`
	StatementID string `json:"statementId,omitempty"`
	Err         error  `json:"-"`
}

// Pipeline ingests statement files.
type Pipeline struct {
	store      Store
	classifier *statement.Classifier
	log        zerolog.Logger
	auditDir   string
}

// New creates a Pipeline.
func New(st Store, classifier *statement.Classifier, log zerolog.Logger) *Pipeline {
	return &Pipeline{store: st, classifier: classifier, log: log}
}

// WithAuditDir makes the pipeline append one row per processed file to the
// ingest log in dir. An empty dir disables the log.
func (p *Pipeline) WithAuditDir(dir string) *Pipeline {
	p.auditDir = dir
	return p
}

// audit appends one entry to the ingest log. Audit failures never fail the
// ingest; they are logged and dropped.
func (p *Pipeline) audit(e auditlog.Entry) {
	if p.auditDir == "" {
		return
	}
	if err := auditlog.Append(p.auditDir, []auditlog.Entry{e}); err != nil {
		p.log.Warn().Err(err).Msg("writing ingest log")
	}
}

// ProcessBatch ingests each file independently. A rejected or failed file
// does not abort the rest of the batch; writes already committed for earlier
// files stay committed.
func (p *Pipeline) ProcessBatch(ctx context.Context, files []File) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		id, err := p.ProcessFile(ctx, f.Name, f.Data)
		if err != nil {
			p.log.Warn().Err(err).Str("file", f.Name).Msg("statement rejected")
			p.audit(auditlog.Entry{Timestamp: time.Now().UTC(), FileName: f.Name, Error: err.Error()})
		}
		results = append(results, FileResult{FileName: f.Name, StatementID: id, Err: err})
	}
	return results
}

// ProcessFile ingests one statement file and returns the new statement id.
// Nothing is persisted when classification fails.
func (p *Pipeline) ProcessFile(ctx context.Context, fileName string, data []byte) (string, error) {
	class, err := p.classifier.Classify(fileName)
	if err != nil {
		return "", err
	}

	rows, err := csvkit.Parse(data)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", fileName, err)
	}

	stmt := model.Statement{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Kind:      class.Kind,
		StartDate: class.StartDate,
		EndDate:   class.EndDate,
	}

	var res extract.Result
	switch class.Kind {
	case model.StatementCreditCard:
		res = extract.CreditCard(stmt.ID, rows, p.log)
	case model.StatementChecking:
		res = extract.Checking(stmt.ID, rows, p.log)
	default:
		return "", fmt.Errorf("unsupported statement kind %q", class.Kind)
	}
	res.Apply(&stmt)

	if err := p.store.AddTransactions(ctx, res.Transactions); err != nil {
		return "", err
	}
	if err := p.store.AddStatement(ctx, stmt); err != nil {
		return "", err
	}

	p.log.Info().
		Str("file", fileName).
		Str("statement", stmt.ID).
		Int("transactions", stmt.TransactionCount).
		Str("netAmount", stmt.NetAmount.String()).
		Msg("statement ingested")
	p.audit(auditlog.Entry{
		Timestamp:    time.Now().UTC(),
		FileName:     fileName,
		StatementID:  stmt.ID,
		Transactions: stmt.TransactionCount,
		NetAmount:    stmt.NetAmount.String(),
	})

	if class.Kind == model.StatementCreditCard {
		if err := p.RemoveDuplicates(ctx); err != nil {
			return "", err
		}
		if err := p.AddReferencedCategories(ctx); err != nil {
			return "", err
		}
	}

	return stmt.ID, nil
}

// RemoveDuplicates deletes cross-statement duplicate credit-card
// transactions, keeping the first-seen copy of each fingerprint. Running it
// again without new uploads deletes nothing.
func (p *Pipeline) RemoveDuplicates(ctx context.Context) error {
	candidates, err := p.store.DuplicateCandidates(ctx)
	if err != nil {
		return err
	}
	duplicates := dedup.Find(candidates)
	if len(duplicates) == 0 {
		return nil
	}
	if err := p.store.DeleteTransactions(ctx, dedup.IDs(duplicates)); err != nil {
		return err
	}
	p.log.Info().Int("removed", len(duplicates)).Msg("duplicate credit-card transactions removed")
	return nil
}

// Duplicates returns the currently flagged duplicates without deleting them.
func (p *Pipeline) Duplicates(ctx context.Context) ([]model.Transaction, error) {
	candidates, err := p.store.DuplicateCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return dedup.Find(candidates), nil
}

// AddReferencedCategories creates categories named by issuer-supplied
// categories on credit-card transactions that do not exist yet. The literal
// "false" is the blank-cell sentinel leaking through the issuer column and is
// never materialized as a category.
func (p *Pipeline) AddReferencedCategories(ctx context.Context) error {
	bounds, err := p.store.MinMaxDates(ctx, model.KindCreditCard)
	if err != nil {
		return err
	}
	txns, err := p.store.Transactions(ctx, model.KindCreditCard, bounds.MinDate, bounds.MaxDate)
	if err != nil {
		return err
	}

	referenced := make(map[string]struct{})
	for _, txn := range txns {
		if txn.IssuerCategory != "" && txn.IssuerCategory != "false" {
			referenced[txn.IssuerCategory] = struct{}{}
		}
	}

	existing, err := p.store.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range existing {
		delete(referenced, c.Name)
	}

	newCategories := make([]model.Category, 0, len(referenced))
	for name := range referenced {
		newCategories = append(newCategories, model.Category{
			ID:             uuid.NewString(),
			Name:           name,
			DisregardLevel: model.DisregardNone,
		})
	}
	return p.store.AddCategories(ctx, newCategories)
}
