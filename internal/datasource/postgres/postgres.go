// Package postgres is a data source over the regulator's open-data tables
// loaded into PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/logging"
	"github.com/vcollos/dashboard-rn518/internal/model"
	"github.com/vcollos/dashboard-rn518/internal/operators"
)

const ledgerColumns = `reg_ans::text, COALESCE(cd_conta_contabil::text, ''), descricao,
	COALESCE(vl_saldo_inicial, 0)::text, COALESCE(vl_saldo_final, 0)::text,
	COALESCE(arquivo_origem, ''), ano, trimestre`

const activeOperatorsSQL = `SELECT registro_operadora::text, razao_social,
	COALESCE(nome_fantasia, ''), COALESCE(cidade, ''),
	COALESCE(regiao_de_comercializacao, ''), data_descredenciamento
FROM operadoras
WHERE data_descredenciamento IS NULL
ORDER BY razao_social`

const coveredLivesSQL = `SELECT qd_beneficiarios
FROM beneficiarios_trimestre
WHERE cd_operadoras = $1 AND ano = $2 AND trimestre = $3
LIMIT 1`

const metadataSQL = `SELECT data, reg_ans::text, COALESCE(arquivo_origem, ''), ano, trimestre
FROM demonstracoes_financeiras
ORDER BY data DESC
LIMIT 1`

// Source reads from a pgx connection pool.
type Source struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Source, error) {
	if dsn == "" {
		return nil, datasource.ErrNotConfigured
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Source{pool: pool, log: log}, nil
}

// Close releases the pool.
func (s *Source) Close() {
	s.pool.Close()
}

// ledgerQuery builds the entry query for f with positional arguments.
func ledgerQuery(f datasource.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.OperatorID != "" {
		args = append(args, f.OperatorID)
		where = append(where, "reg_ans = $"+strconv.Itoa(len(args)))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		where = append(where, "ano = $"+strconv.Itoa(len(args)))
	}
	if f.Quarter != 0 {
		args = append(args, f.Quarter)
		where = append(where, "trimestre = $"+strconv.Itoa(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(ledgerColumns)
	b.WriteString("\nFROM demonstracoes_financeiras")
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\nORDER BY id")
	return b.String(), args
}

// ledgerRow is a scanned demonstracoes_financeiras row.
type ledgerRow struct {
	OperatorID  string
	AccountCode string
	Description *string
	Opening     string
	Closing     string
	SourceFile  string
	Year        int
	Quarter     int
}

func (r ledgerRow) entry() (model.LedgerEntry, error) {
	opening, err := decimal.NewFromString(r.Opening)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing vl_saldo_inicial %q: %w", r.Opening, err)
	}
	closing, err := decimal.NewFromString(r.Closing)
	if err != nil {
		return model.LedgerEntry{}, fmt.Errorf("parsing vl_saldo_final %q: %w", r.Closing, err)
	}
	var desc string
	if r.Description != nil {
		desc = *r.Description
	}
	return model.LedgerEntry{
		OperatorID:     r.OperatorID,
		Period:         model.Period{Year: r.Year, Quarter: r.Quarter},
		AccountCode:    r.AccountCode,
		Description:    desc,
		OpeningBalance: opening,
		ClosingBalance: closing,
		SourceFile:     r.SourceFile,
	}, nil
}

// LedgerEntries implements datasource.Source.
func (s *Source) LedgerEntries(ctx context.Context, f datasource.Filter) ([]model.LedgerEntry, error) {
	sql, args := ledgerQuery(f)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var r ledgerRow
		if err := rows.Scan(&r.OperatorID, &r.AccountCode, &r.Description, &r.Opening, &r.Closing, &r.SourceFile, &r.Year, &r.Quarter); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger entries: %w", err)
	}
	return entries, nil
}

// operatorRow is a scanned operadoras row.
type operatorRow struct {
	ID           string
	LegalName    string
	TradeName    string
	City         string
	Region       string
	Deregistered *time.Time
}

func (r operatorRow) operator() model.Operator {
	return operators.Normalize(model.Operator{
		ID:             r.ID,
		LegalName:      r.LegalName,
		TradeName:      r.TradeName,
		Municipality:   r.City,
		Region:         r.Region,
		DeregisteredOn: r.Deregistered,
	})
}

// ActiveOperators implements datasource.Source. Operators are ordered by
// legal name.
func (s *Source) ActiveOperators(ctx context.Context) ([]model.Operator, error) {
	rows, err := s.pool.Query(ctx, activeOperatorsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying operators: %w", err)
	}
	defer rows.Close()

	var ops []model.Operator
	for rows.Next() {
		var r operatorRow
		if err := rows.Scan(&r.ID, &r.LegalName, &r.TradeName, &r.City, &r.Region, &r.Deregistered); err != nil {
			return nil, fmt.Errorf("scanning operator: %w", err)
		}
		ops = append(ops, r.operator())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading operators: %w", err)
	}
	s.log.Debug("active operators loaded", "count", len(ops))
	return ops, nil
}

// CoveredLives implements datasource.Source. Lookup failures are reported
// as an unknown count; only cancellation is returned as an error.
func (s *Source) CoveredLives(ctx context.Context, operatorID string, p model.Period) (int64, bool, error) {
	var n *int64
	err := s.pool.QueryRow(ctx, coveredLivesSQL, operatorID, p.Year, p.Quarter).Scan(&n)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return 0, false, nil
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, false, ctxErr
		}
		s.log.Debug("covered lives unavailable", "operator_id", operatorID, "period", p.String(), "error", err)
		return 0, false, nil
	case n == nil:
		return 0, false, nil
	}
	return *n, true, nil
}

// Metadata implements datasource.Source.
func (s *Source) Metadata(ctx context.Context) (model.Metadata, bool, error) {
	var (
		m       model.Metadata
		year    int
		quarter int
	)
	err := s.pool.QueryRow(ctx, metadataSQL).Scan(&m.LatestDate, &m.OperatorID, &m.SourceFile, &year, &quarter)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Metadata{}, false, nil
	}
	if err != nil {
		return model.Metadata{}, false, fmt.Errorf("querying metadata: %w", err)
	}
	m.LatestPeriod = model.Period{Year: year, Quarter: quarter}
	return m, true, nil
}
