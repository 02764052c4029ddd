package ingest

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/transakce/internal/config"
	"github.com/cleared-dev/transakce/internal/logger"
	"github.com/cleared-dev/transakce/internal/lookups"
	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/rules"
	"github.com/cleared-dev/transakce/internal/store"
)

func newTestService(t *testing.T, maxErrors int) (*Service, *store.Store) {
	t.Helper()
	svc, st, _ := newTestServiceAt(t, maxErrors)
	return svc, st
}

// newTestServiceAt also returns the sqlite file path.
func newTestServiceAt(t *testing.T, maxErrors int) (*Service, *store.Store, string) {
	t.Helper()
	cfg := config.Database{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "test.db")}
	require.NoError(t, store.Migrate(cfg))

	st, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Queries().SaveLookups(context.Background(), lookups.Default()))

	return NewService(st, maxErrors), st, cfg.DSN
}

func loadTestRules(t *testing.T, svc *Service) {
	t.Helper()
	defs, err := rules.LoadFile(filepath.Join("..", "..", "testdata", "rules.yaml"))
	require.NoError(t, err)
	_, _, err = svc.LoadRules(context.Background(), defs, "tester")
	require.NoError(t, err)
}

func importFixture(t *testing.T, svc *Service, name string, opts Options) *Summary {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	defer f.Close()

	opts.Filename = name
	sum, err := svc.Import(context.Background(), f, opts)
	require.NoError(t, err)
	return sum
}

func byExternalID(t *testing.T, st *store.Store, batchID string) map[string]model.Transaction {
	t.Helper()
	txs, err := st.Queries().ListTransactions(context.Background(), store.TxFilter{BatchID: batchID})
	require.NoError(t, err)
	out := make(map[string]model.Transaction, len(txs))
	for _, tx := range txs {
		out[tx.ExternalID] = tx
	}
	return out
}

func TestImport_Raiffeisen(t *testing.T) {
	svc, st := newTestService(t, 0)
	loadTestRules(t, svc)

	sum := importFixture(t, svc, "raiffeisen.csv", Options{User: "jana"})
	assert.Equal(t, "raiffeisen", sum.Format)
	assert.Equal(t, 5, sum.TotalRows)
	assert.Equal(t, 5, sum.Imported)
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, 0, sum.Errors)
	assert.Empty(t, sum.ErrorDetails)

	txs := byExternalID(t, st, sum.BatchID)
	require.Len(t, txs, 5)

	alpha := txs["RB-TEST-001"]
	assert.Equal(t, model.Income, alpha.IncomeExpense)
	assert.Equal(t, "trzby", alpha.Kind)
	assert.Equal(t, model.UnitMH, alpha.Unit)
	assert.True(t, alpha.MHPct.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "jana", alpha.CreatedBy)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), alpha.Date.UTC())

	shop := txs["RB-TEST-002"]
	assert.Equal(t, "potraviny", shop.Kind)
	assert.Equal(t, model.OwnExternal, shop.OwnFlag)
	assert.Equal(t, model.Expense, shop.IncomeExpense)
	require.NotNil(t, shop.OrigAmount)
	assert.Equal(t, "-1234.5", shop.OrigAmount.String())

	rent := txs["RB-TEST-003"]
	assert.Equal(t, "najem", rent.Kind)
	assert.Equal(t, "kancelar", rent.Detail)
	require.NotNil(t, rent.ProjectID)
	assert.Equal(t, "4cfuture", *rent.ProjectID)

	power := txs["RB-TEST-004"]
	assert.Empty(t, power.Kind)
	assert.Equal(t, model.Expense, power.IncomeExpense)

	transfer := txs["RB-TEST-005"]
	assert.Equal(t, "Převod ze spořicího účtu", transfer.Note)
	assert.Equal(t, model.StatusImported, transfer.Status)

	trail, err := st.Queries().AuditTrail(context.Background(), alpha.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, model.AuditActionImport, trail[0].Action)
	assert.Equal(t, "Soubor: batch "+sum.BatchID, trail[0].Details)
	assert.Equal(t, "jana", trail[0].User)

	batch, err := st.Queries().GetBatch(context.Background(), sum.BatchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchCompleted, batch.Status)
	assert.Equal(t, model.BatchTransactions, batch.Kind)
	assert.Equal(t, "raiffeisen.csv", batch.Filename)
	assert.Equal(t, "jana", batch.CreatedBy)
	assert.Equal(t, 5, batch.ImportedCount)
	assert.NotNil(t, batch.CompletedAt)
}

func TestImport_ReimportSkipsDuplicates(t *testing.T) {
	svc, st := newTestService(t, 0)
	importFixture(t, svc, "raiffeisen.csv", Options{})

	sum := importFixture(t, svc, "raiffeisen.csv", Options{})
	assert.Equal(t, 0, sum.Imported)
	assert.Equal(t, 5, sum.Skipped)
	assert.Equal(t, 0, sum.Errors)
	require.Len(t, sum.ErrorDetails, 5)
	assert.Equal(t, string(OutcomeDuplicate), sum.ErrorDetails[0].Kind)
	assert.Equal(t, 1, sum.ErrorDetails[0].Row)
	assert.Contains(t, sum.ErrorDetails[0].Message, "RB-TEST-001")

	txs, err := st.Queries().ListTransactions(context.Background(), store.TxFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 5)
}

func TestImport_Creditas(t *testing.T) {
	svc, st := newTestService(t, 0)
	loadTestRules(t, svc)

	sum := importFixture(t, svc, "creditas.csv", Options{})
	assert.Equal(t, "creditas", sum.Format)
	assert.Equal(t, 5, sum.Imported)
	assert.Equal(t, 0, sum.Errors)

	txs, err := st.Queries().ListTransactions(context.Background(), store.TxFilter{BatchID: sum.BatchID})
	require.NoError(t, err)
	require.Len(t, txs, 5)

	first := txs[0]
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), first.Date.UTC())
	require.NotNil(t, first.BookingDate)
	assert.Equal(t, first.Date.UTC(), first.BookingDate.UTC())
	assert.Equal(t, "118514285/2250", first.Account)
	assert.Equal(t, "987654321/1234", first.CounterAccount)
	assert.Equal(t, "1234", first.CounterBank)
	assert.Equal(t, "trzby", first.Kind)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(15000)))
}

func TestImport_NoRules(t *testing.T) {
	svc, st := newTestService(t, 0)
	loadTestRules(t, svc)

	sum := importFixture(t, svc, "raiffeisen.csv", Options{NoRules: true})
	assert.Equal(t, 5, sum.Imported)

	for _, tx := range byExternalID(t, st, sum.BatchID) {
		assert.Empty(t, tx.Kind, tx.ExternalID)
		assert.NotEmpty(t, tx.IncomeExpense, tx.ExternalID)
	}
}

const mixedCSV = "Datum;Účet;Typ;Částka;ID transakce\n" +
	"15.01.2025;123/0100;Platba;-10,00;A1\n" +
	"15.01.2025;123/0100;Platba;abc;A2\n" +
	"15.01.2025;123/0100;;5,00;A3\n" +
	"31.02.2025;123/0100;Platba;5,00;A4\n" +
	"16.01.2025;123/0100;Platba;7,00;A1\n"

func TestImport_RowErrors(t *testing.T) {
	svc, st := newTestService(t, 0)

	sum, err := svc.Import(context.Background(), strings.NewReader(mixedCSV), Options{Filename: "mixed.csv"})
	require.NoError(t, err)
	assert.Equal(t, "generic", sum.Format)
	assert.Equal(t, 5, sum.TotalRows)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 3, sum.Errors)

	kinds := make(map[int]string)
	for _, e := range sum.ErrorDetails {
		kinds[e.Row] = e.Kind
	}
	assert.Equal(t, map[int]string{
		2: string(OutcomeConversion),
		3: string(OutcomeValidation),
		4: string(OutcomeConversion),
		5: string(OutcomeDuplicate),
	}, kinds)

	txs, err := st.Queries().ListTransactions(context.Background(), store.TxFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "A1", txs[0].ExternalID)
}

func TestImport_AmountLimits(t *testing.T) {
	svc, st := newTestService(t, 0)
	src := "Datum;Účet;Typ;Částka;ID transakce\n" +
		"15.01.2025;123/0100;Platba;12,345;X1\n" +
		"15.01.2025;123/0100;Platba;1234567890123456789,00;X2\n" +
		"15.01.2025;123/0100;Platba;-12,30;X3\n"

	sum, err := svc.Import(context.Background(), strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, 2, sum.Errors)
	require.Len(t, sum.ErrorDetails, 2)
	for _, e := range sum.ErrorDetails {
		assert.Equal(t, string(OutcomeValidation), e.Kind)
		assert.Contains(t, e.Message, "amount:")
	}

	txs := byExternalID(t, st, sum.BatchID)
	require.Len(t, txs, 1)
	assert.Equal(t, "-12.3", txs["X3"].Amount.String())
}

func TestImport_StoreErrorStaysWithRow(t *testing.T) {
	svc, st, dsn := newTestServiceAt(t, 0)
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TRIGGER refuse_b2 BEFORE INSERT ON transactions
		WHEN NEW.external_id = 'B2'
		BEGIN SELECT RAISE(ABORT, 'disk quota exceeded'); END`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src := "Datum;Účet;Typ;Částka;ID transakce\n" +
		"15.01.2025;123/0100;Platba;-10,00;B1\n" +
		"15.01.2025;123/0100;Platba;-20,00;B2\n" +
		"15.01.2025;123/0100;Platba;-30,00;B3\n"

	sum, err := svc.Import(context.Background(), strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, 1, sum.Errors)
	require.Len(t, sum.ErrorDetails, 1)
	assert.Equal(t, 2, sum.ErrorDetails[0].Row)
	assert.Equal(t, string(OutcomePersistence), sum.ErrorDetails[0].Kind)
	assert.Contains(t, sum.ErrorDetails[0].Message, "disk quota exceeded")

	txs := byExternalID(t, st, sum.BatchID)
	assert.Len(t, txs, 2)
	assert.Contains(t, txs, "B1")
	assert.Contains(t, txs, "B3")

	batch, err := st.Queries().GetBatch(context.Background(), sum.BatchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchCompleted, batch.Status)
}

func TestImport_MaxErrorsCapsDetailsOnly(t *testing.T) {
	svc, _ := newTestService(t, 2)

	sum, err := svc.Import(context.Background(), strings.NewReader(mixedCSV), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Errors)
	assert.Equal(t, 1, sum.Skipped)
	assert.Len(t, sum.ErrorDetails, 2)
}

func TestImport_UnknownFormatFailsBatch(t *testing.T) {
	svc, st := newTestService(t, 0)

	sum, err := svc.Import(context.Background(), strings.NewReader(mixedCSV), Options{Format: "fio"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "fio"`)
	require.NotNil(t, sum)

	batch, err := st.Queries().GetBatch(context.Background(), sum.BatchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchFailed, batch.Status)
	require.Len(t, batch.Errors, 1)
	assert.Contains(t, batch.Errors[0].Message, "unknown format")
	assert.Zero(t, batch.ImportedCount)
}

func TestImport_CancelledContext(t *testing.T) {
	svc, st := newTestService(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, strings.NewReader(mixedCSV), Options{})
	require.ErrorIs(t, err, context.Canceled)

	txs, err := st.Queries().ListTransactions(context.Background(), store.TxFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestImportInvoices(t *testing.T) {
	svc, st := newTestService(t, 0)
	f, err := os.Open(filepath.Join("..", "..", "testdata", "idoklad.csv"))
	require.NoError(t, err)
	defer f.Close()

	sum, err := svc.ImportInvoices(context.Background(), f, Options{Filename: "idoklad.csv"})
	require.NoError(t, err)
	assert.Equal(t, "idoklad", sum.Format)
	assert.Equal(t, 4, sum.TotalRows)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Errors)

	invoices, err := st.Queries().ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "FV-2025-001", invoices[0].Number)
	assert.True(t, invoices[0].Exported)

	batch, err := st.Queries().GetBatch(context.Background(), sum.BatchID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchInvoices, batch.Kind)
	assert.Equal(t, model.BatchCompleted, batch.Status)
}

func TestImportInvoices_RowWarningsCarryBatch(t *testing.T) {
	svc, _ := newTestService(t, 0)
	f, err := os.Open(filepath.Join("..", "..", "testdata", "idoklad.csv"))
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), zerolog.New(&buf))
	sum, err := svc.ImportInvoices(ctx, f, Options{Filename: "idoklad.csv"})
	require.NoError(t, err)

	var warnings int
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, "invoice not imported") {
			continue
		}
		warnings++
		assert.Contains(t, line, `"batch_id":"`+sum.BatchID+`"`)
		assert.Contains(t, line, `"filename":"idoklad.csv"`)
	}
	assert.Equal(t, sum.Skipped+sum.Errors, warnings)
}

func TestLoadRules_UpdatesByName(t *testing.T) {
	svc, st := newTestService(t, 0)
	defs, err := rules.LoadFile(filepath.Join("..", "..", "testdata", "rules.yaml"))
	require.NoError(t, err)

	created, updated, err := svc.LoadRules(context.Background(), defs, "")
	require.NoError(t, err)
	assert.Equal(t, 4, created)
	assert.Zero(t, updated)

	defs[0].Priority = 5
	created, updated, err = svc.LoadRules(context.Background(), defs, "")
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 4, updated)

	all, err := st.Queries().ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	r, err := st.Queries().RuleByName(context.Background(), "Klient Alpha")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Priority)
}
