package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
)

// Table names of the ledger schema.
const (
	drawsTable        = "draws"
	hypothesesTable   = "hypotheses"
	outcomesTable     = "outcomes"
	modesTable        = "modes"
	modeExamplesTable = "mode_examples"
	relationsTable    = "relations"
	eventsTable       = "trigger_events"
)

var ledgerTables = []string{drawsTable, hypothesesTable, outcomesTable, modesTable, modeExamplesTable, relationsTable, eventsTable}

// LedgerStoreImpl implements the LedgerStore interface on a SQL database.
type LedgerStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.LedgerStore = &LedgerStoreImpl{} // Compile-time check

// NewLedgerStore migrates the ledger schema to the latest version and opens
// the store.
func NewLedgerStore(backend schema.DatabaseBackend, connStr string) (*LedgerStoreImpl, error) {
	if backend == schema.NoneBackend {
		return nil, fmt.Errorf("ledger store requires a database backend")
	}
	if err := migrateToLatest(backend, connStr); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr, contract.GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}
	return &LedgerStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

func (s *LedgerStoreImpl) q(query string) string {
	return rebind(s.backend, query)
}

func (s *LedgerStoreImpl) exists(ctx context.Context, table, id string) (bool, error) {
	var n int
	query := s.q(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table))
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, fmt.Errorf("lookup %s %s: %w", table, id, err)
	}
	return n > 0, nil
}

func (s *LedgerStoreImpl) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Draws

// ListDraws returns every stored draw, skipping test rows when excludeTest is set.
func (s *LedgerStoreImpl) ListDraws(ctx context.Context, excludeTest bool) ([]schema.RawDraw, error) {
	query := "SELECT id, fecha, horario, pais, numero, is_test FROM draws"
	if excludeTest {
		query += " WHERE is_test = 0"
	}
	query += " ORDER BY fecha, created_at, id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list draws: %w", err)
	}
	defer func() { _ = rows.Close() }()

	draws := []schema.RawDraw{}
	for rows.Next() {
		var d schema.RawDraw
		var isTest int
		if err := rows.Scan(&d.ID, &d.Date, &d.Slot, &d.Country, &d.Number, &isTest); err != nil {
			return nil, fmt.Errorf("scan draw: %w", err)
		}
		d.IsTest = isTest != 0
		draws = append(draws, d)
	}
	return draws, rows.Err()
}

// SaveDraw inserts a draw unless a duplicate exists for (date, country, slot, number).
// A dry run only reports whether the draw would be a duplicate.
func (s *LedgerStoreImpl) SaveDraw(ctx context.Context, draw schema.RawDraw, opts schema.SaveOptions) (schema.SaveResult, error) {
	var n int
	dupQuery := s.q("SELECT COUNT(*) FROM draws WHERE fecha = ? AND pais = ? AND horario = ? AND numero = ?")
	if err := s.db.QueryRowContext(ctx, dupQuery, draw.Date, draw.Country, draw.Slot, draw.Number).Scan(&n); err != nil {
		return schema.SaveResult{}, fmt.Errorf("check duplicate draw: %w", err)
	}
	duplicate := n > 0
	if opts.DryRun || (duplicate && !opts.Force) {
		return schema.SaveResult{Duplicate: duplicate}, nil
	}

	id := uuid.NewString()
	isTest := draw.IsTest || opts.Source == schema.TestSource
	insert := s.q("INSERT INTO draws (id, fecha, horario, pais, numero, is_test, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, insert, id, draw.Date, draw.Slot, draw.Country, draw.Number, boolToInt(isTest), time.Now().UnixNano()); err != nil {
		return schema.SaveResult{}, fmt.Errorf("insert draw: %w", err)
	}
	return schema.SaveResult{ID: id, Duplicate: duplicate}, nil
}

// DeleteDraw removes one draw.
func (s *LedgerStoreImpl) DeleteDraw(ctx context.Context, id string) error {
	return s.deleteByID(ctx, drawsTable, id)
}

// ClearDraws removes every draw.
func (s *LedgerStoreImpl) ClearDraws(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM draws"); err != nil {
		return fmt.Errorf("clear draws: %w", err)
	}
	return nil
}

// FindDuplicates groups draws sharing the same dedup key, ordered by key.
// Rows whose stored fields cannot be parsed are left out.
func (s *LedgerStoreImpl) FindDuplicates(ctx context.Context) ([]schema.DuplicateGroup, error) {
	draws, err := s.ListDraws(ctx, false)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string][]schema.DrawEvent)
	for _, d := range draws {
		date, err := time.Parse(schema.DateLayout, d.Date)
		if err != nil {
			continue
		}
		number, err := strconv.Atoi(d.Number)
		if err != nil {
			continue
		}
		key := strings.Join([]string{d.Date, d.Country, d.Slot, d.Number}, "|")
		byKey[key] = append(byKey[key], schema.DrawEvent{
			ID:      d.ID,
			Number:  number,
			Date:    date,
			Slot:    schema.Slot(d.Slot),
			Country: d.Country,
			IsTest:  d.IsTest,
		})
	}

	groups := []schema.DuplicateGroup{}
	for key, events := range byKey {
		if len(events) > 1 {
			groups = append(groups, schema.DuplicateGroup{Key: key, Draws: events})
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups, nil
}

// MarkTest flags or unflags the given draws and returns how many exist.
func (s *LedgerStoreImpl) MarkTest(ctx context.Context, ids []string, isTest bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}

	var n int
	count := s.q(fmt.Sprintf("SELECT COUNT(*) FROM draws WHERE id IN (%s)", placeholders(len(ids))))
	if err := s.db.QueryRowContext(ctx, count, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count draws: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	update := s.q(fmt.Sprintf("UPDATE draws SET is_test = ? WHERE id IN (%s)", placeholders(len(ids))))
	if _, err := s.db.ExecContext(ctx, update, append([]any{boolToInt(isTest)}, args...)...); err != nil {
		return 0, fmt.Errorf("mark test draws: %w", err)
	}
	return n, nil
}

// Hypotheses

const hypothesisColumns = "id, numero, simbolo, estado, fecha, turno, razones, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHypothesis(row rowScanner) (schema.Hypothesis, error) {
	var h schema.Hypothesis
	var reasons string
	var created int64
	if err := row.Scan(&h.ID, &h.Number, &h.Symbol, &h.State, &h.Date, &h.Slot, &reasons, &created); err != nil {
		return h, err
	}
	h.Reasons = []string{}
	if reasons != "" {
		if err := json.Unmarshal([]byte(reasons), &h.Reasons); err != nil {
			return h, fmt.Errorf("decode reasons of %s: %w", h.ID, err)
		}
	}
	h.CreatedAt = fromNanos(created)
	return h, nil
}

func encodeReasons(reasons []string) (string, error) {
	if reasons == nil {
		reasons = []string{}
	}
	data, err := json.Marshal(reasons)
	return string(data), err
}

// CreateHypothesis inserts a new hypothesis.
func (s *LedgerStoreImpl) CreateHypothesis(ctx context.Context, h schema.Hypothesis) error {
	reasons, err := encodeReasons(h.Reasons)
	if err != nil {
		return fmt.Errorf("encode reasons: %w", err)
	}
	insert := s.q(fmt.Sprintf("INSERT INTO hypotheses (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", hypothesisColumns))
	if _, err := s.db.ExecContext(ctx, insert, h.ID, h.Number, h.Symbol, h.State, h.Date, h.Slot, reasons, h.CreatedAt.UnixNano()); err != nil {
		return fmt.Errorf("insert hypothesis: %w", err)
	}
	return nil
}

// UpdateHypothesis overwrites the mutable fields of a hypothesis.
func (s *LedgerStoreImpl) UpdateHypothesis(ctx context.Context, h schema.Hypothesis) error {
	ok, err := s.exists(ctx, hypothesesTable, h.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("hypothesis %s: %w", h.ID, ErrNotFound)
	}
	reasons, err := encodeReasons(h.Reasons)
	if err != nil {
		return fmt.Errorf("encode reasons: %w", err)
	}
	update := s.q("UPDATE hypotheses SET numero = ?, simbolo = ?, estado = ?, fecha = ?, turno = ?, razones = ? WHERE id = ?")
	if _, err := s.db.ExecContext(ctx, update, h.Number, h.Symbol, h.State, h.Date, h.Slot, reasons, h.ID); err != nil {
		return fmt.Errorf("update hypothesis: %w", err)
	}
	return nil
}

// GetHypothesis returns one hypothesis, or ErrNotFound.
func (s *LedgerStoreImpl) GetHypothesis(ctx context.Context, id string) (schema.Hypothesis, error) {
	query := s.q(fmt.Sprintf("SELECT %s FROM hypotheses WHERE id = ?", hypothesisColumns))
	h, err := scanHypothesis(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Hypothesis{}, fmt.Errorf("hypothesis %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return schema.Hypothesis{}, fmt.Errorf("get hypothesis: %w", err)
	}
	return h, nil
}

// ListHypotheses returns every hypothesis in creation order.
func (s *LedgerStoreImpl) ListHypotheses(ctx context.Context) ([]schema.Hypothesis, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM hypotheses ORDER BY created_at, id", hypothesisColumns))
	if err != nil {
		return nil, fmt.Errorf("list hypotheses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := []schema.Hypothesis{}
	for rows.Next() {
		h, err := scanHypothesis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hypothesis: %w", err)
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// LogOutcome appends a resolution record.
func (s *LedgerStoreImpl) LogOutcome(ctx context.Context, rec schema.OutcomeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	insert := s.q(`INSERT INTO outcomes (id, hypothesis_id, numero, estado, fecha_resultado, pais_resultado,
		horario_resultado, fecha_hipotesis, turno_hipotesis, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, insert, rec.ID, rec.HypothesisID, rec.Number, rec.State, rec.ResultDate,
		rec.ResultCountry, rec.ResultSlot, rec.HypothesisDate, rec.HypothesisSlot, rec.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns the outcome log in creation order.
func (s *LedgerStoreImpl) ListOutcomes(ctx context.Context) ([]schema.OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, hypothesis_id, numero, estado, fecha_resultado, pais_resultado,
		horario_resultado, fecha_hipotesis, turno_hipotesis, created_at FROM outcomes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := []schema.OutcomeRecord{}
	for rows.Next() {
		var r schema.OutcomeRecord
		var created int64
		if err := rows.Scan(&r.ID, &r.HypothesisID, &r.Number, &r.State, &r.ResultDate, &r.ResultCountry,
			&r.ResultSlot, &r.HypothesisDate, &r.HypothesisSlot, &created); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		r.CreatedAt = fromNanos(created)
		list = append(list, r)
	}
	return list, rows.Err()
}

// Modes

// SaveMode inserts or replaces a mode together with its examples.
func (s *LedgerStoreImpl) SaveMode(ctx context.Context, m schema.GameMode) error {
	params := "{}"
	if len(m.Params) > 0 {
		data, err := json.Marshal(m.Params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		params = string(data)
	}
	var offset sql.NullInt64
	if m.Offset != nil {
		offset = sql.NullInt64{Int64: int64(*m.Offset), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save mode: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := time.Now().UnixNano()
	var existing int64
	err = tx.QueryRowContext(ctx, s.q("SELECT created_at FROM modes WHERE id = ?"), m.ID).Scan(&existing)
	switch {
	case err == nil:
		created = existing
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("lookup mode: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM mode_examples WHERE mode_id = ?"), m.ID); err != nil {
		return fmt.Errorf("clear examples: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM modes WHERE id = ?"), m.ID); err != nil {
		return fmt.Errorf("replace mode: %w", err)
	}
	insert := s.q(`INSERT INTO modes (id, nombre, tipo, descripcion, operacion, parametros, offset_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert, m.ID, m.Name, m.Kind, m.Description, m.Operation, params, offset, created); err != nil {
		return fmt.Errorf("insert mode: %w", err)
	}
	for i, ex := range m.Examples {
		if err := insertExample(ctx, tx, s.backend, m.ID, ex, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExample(ctx context.Context, db execer, backend schema.DatabaseBackend, modeID string, ex schema.ModeExample, order int) error {
	insert := rebind(backend, "INSERT INTO mode_examples (id, mode_id, original, resultado, nota, sort_order) VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := db.ExecContext(ctx, insert, ex.ID, modeID, ex.Original, ex.Result, ex.Note, order); err != nil {
		return fmt.Errorf("insert example: %w", err)
	}
	return nil
}

func scanMode(row rowScanner) (schema.GameMode, error) {
	var m schema.GameMode
	var params string
	var offset sql.NullInt64
	var created int64
	if err := row.Scan(&m.ID, &m.Name, &m.Kind, &m.Description, &m.Operation, &params, &offset, &created); err != nil {
		return m, err
	}
	if params != "" && params != "{}" {
		if err := json.Unmarshal([]byte(params), &m.Params); err != nil {
			return m, fmt.Errorf("decode params of %s: %w", m.ID, err)
		}
	}
	if offset.Valid {
		v := int(offset.Int64)
		m.Offset = &v
	}
	m.Examples = []schema.ModeExample{}
	return m, nil
}

const modeColumns = "id, nombre, tipo, descripcion, operacion, parametros, offset_days, created_at"

// examplesByMode loads examples, optionally restricted to one mode.
func (s *LedgerStoreImpl) examplesByMode(ctx context.Context, modeID string) (map[string][]schema.ModeExample, error) {
	query := "SELECT id, mode_id, original, resultado, nota FROM mode_examples"
	var args []any
	if modeID != "" {
		query += " WHERE mode_id = ?"
		args = append(args, modeID)
	}
	query += " ORDER BY mode_id, sort_order"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list examples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]schema.ModeExample)
	for rows.Next() {
		var ex schema.ModeExample
		var owner string
		if err := rows.Scan(&ex.ID, &owner, &ex.Original, &ex.Result, &ex.Note); err != nil {
			return nil, fmt.Errorf("scan example: %w", err)
		}
		out[owner] = append(out[owner], ex)
	}
	return out, rows.Err()
}

// GetMode returns a mode with its examples, or ErrNotFound.
func (s *LedgerStoreImpl) GetMode(ctx context.Context, id string) (schema.GameMode, error) {
	query := s.q(fmt.Sprintf("SELECT %s FROM modes WHERE id = ?", modeColumns))
	m, err := scanMode(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.GameMode{}, fmt.Errorf("mode %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return schema.GameMode{}, fmt.Errorf("get mode: %w", err)
	}
	examples, err := s.examplesByMode(ctx, id)
	if err != nil {
		return schema.GameMode{}, err
	}
	if ex, ok := examples[id]; ok {
		m.Examples = ex
	}
	return m, nil
}

// ListModes returns every mode in creation order.
func (s *LedgerStoreImpl) ListModes(ctx context.Context) ([]schema.GameMode, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM modes ORDER BY created_at, id", modeColumns))
	if err != nil {
		return nil, fmt.Errorf("list modes: %w", err)
	}
	modes := []schema.GameMode{}
	for rows.Next() {
		m, err := scanMode(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan mode: %w", err)
		}
		modes = append(modes, m)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// SQLite holds a single connection, so examples load after the cursor closes.
	examples, err := s.examplesByMode(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range modes {
		if ex, ok := examples[modes[i].ID]; ok {
			modes[i].Examples = ex
		}
	}
	return modes, nil
}

// DeleteMode removes a mode and its examples.
func (s *LedgerStoreImpl) DeleteMode(ctx context.Context, id string) error {
	ok, err := s.exists(ctx, modesTable, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mode %s: %w", id, ErrNotFound)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete mode: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM mode_examples WHERE mode_id = ?"), id); err != nil {
		return fmt.Errorf("delete examples: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM modes WHERE id = ?"), id); err != nil {
		return fmt.Errorf("delete mode: %w", err)
	}
	return tx.Commit()
}

// AddExample appends an example to an existing mode.
func (s *LedgerStoreImpl) AddExample(ctx context.Context, modeID string, ex schema.ModeExample) error {
	ok, err := s.exists(ctx, modesTable, modeID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mode %s: %w", modeID, ErrNotFound)
	}
	var next int
	query := s.q("SELECT COALESCE(MAX(sort_order) + 1, 0) FROM mode_examples WHERE mode_id = ?")
	if err := s.db.QueryRowContext(ctx, query, modeID).Scan(&next); err != nil {
		return fmt.Errorf("next example order: %w", err)
	}
	return insertExample(ctx, s.db, s.backend, modeID, ex, next)
}

// DeleteExample removes one example of a mode.
func (s *LedgerStoreImpl) DeleteExample(ctx context.Context, modeID, exampleID string) error {
	res, err := s.db.ExecContext(ctx, s.q("DELETE FROM mode_examples WHERE id = ? AND mode_id = ?"), exampleID, modeID)
	if err != nil {
		return fmt.Errorf("delete example: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("example %s: %w", exampleID, ErrNotFound)
	}
	return nil
}

// Relations and events

// SaveRelation inserts or updates a relation.
func (s *LedgerStoreImpl) SaveRelation(ctx context.Context, r schema.Relation) error {
	ok, err := s.exists(ctx, relationsTable, r.ID)
	if err != nil {
		return err
	}
	if ok {
		update := s.q(`UPDATE relations SET origen = ?, destino = ?, tipo = ?, ventana_min = ?, ventana_max = ?,
			notas = ?, activa = ? WHERE id = ?`)
		_, err = s.db.ExecContext(ctx, update, r.Origin, r.Target, r.Type, r.WindowMinDays, r.WindowMaxDays,
			r.Notes, boolToInt(r.IsActive), r.ID)
	} else {
		insert := s.q(`INSERT INTO relations (id, origen, destino, tipo, ventana_min, ventana_max, notas, activa, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err = s.db.ExecContext(ctx, insert, r.ID, r.Origin, r.Target, r.Type, r.WindowMinDays, r.WindowMaxDays,
			r.Notes, boolToInt(r.IsActive), r.CreatedAt.UnixNano())
	}
	if err != nil {
		return fmt.Errorf("save relation: %w", err)
	}
	return nil
}

// ListRelations returns relations in creation order.
func (s *LedgerStoreImpl) ListRelations(ctx context.Context, activeOnly bool) ([]schema.Relation, error) {
	query := "SELECT id, origen, destino, tipo, ventana_min, ventana_max, notas, activa, created_at FROM relations"
	if activeOnly {
		query += " WHERE activa = 1"
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := []schema.Relation{}
	for rows.Next() {
		var r schema.Relation
		var active int
		var created int64
		if err := rows.Scan(&r.ID, &r.Origin, &r.Target, &r.Type, &r.WindowMinDays, &r.WindowMaxDays,
			&r.Notes, &active, &created); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		r.IsActive = active != 0
		r.CreatedAt = fromNanos(created)
		list = append(list, r)
	}
	return list, rows.Err()
}

// DeleteRelation removes a relation and its events.
func (s *LedgerStoreImpl) DeleteRelation(ctx context.Context, id string) error {
	ok, err := s.exists(ctx, relationsTable, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("relation %s: %w", id, ErrNotFound)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete relation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM trigger_events WHERE relation_id = ?"), id); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM relations WHERE id = ?"), id); err != nil {
		return fmt.Errorf("delete relation: %w", err)
	}
	return tx.Commit()
}

func nullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

// SaveEvent inserts or updates a trigger event.
func (s *LedgerStoreImpl) SaveEvent(ctx context.Context, e schema.TriggerEvent) error {
	var lag sql.NullInt64
	if e.Lag != nil {
		lag = sql.NullInt64{Int64: int64(*e.Lag), Valid: true}
	}
	ok, err := s.exists(ctx, eventsTable, e.ID)
	if err != nil {
		return err
	}
	if ok {
		update := s.q(`UPDATE trigger_events SET relation_id = ?, origen = ?, destino = ?, origin_ts = ?, deadline = ?,
			status = ?, lag_days = ?, hit_ts = ?, closed_at = ? WHERE id = ?`)
		_, err = s.db.ExecContext(ctx, update, e.RelationID, e.Origin, e.Target, e.OriginTime.UnixNano(),
			e.Deadline.UnixNano(), e.Status, lag, nullNanos(e.HitTime), nullNanos(e.ClosedAt), e.ID)
	} else {
		insert := s.q(`INSERT INTO trigger_events (id, relation_id, origen, destino, origin_ts, deadline, status,
			lag_days, hit_ts, closed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err = s.db.ExecContext(ctx, insert, e.ID, e.RelationID, e.Origin, e.Target, e.OriginTime.UnixNano(),
			e.Deadline.UnixNano(), e.Status, lag, nullNanos(e.HitTime), nullNanos(e.ClosedAt))
	}
	if err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

// ListEvents returns events with the given status, or all events when status
// is empty, ordered by origin time.
func (s *LedgerStoreImpl) ListEvents(ctx context.Context, status schema.EventStatus) ([]schema.TriggerEvent, error) {
	query := `SELECT id, relation_id, origen, destino, origin_ts, deadline, status, lag_days, hit_ts, closed_at
		FROM trigger_events`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY origin_ts, id"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := []schema.TriggerEvent{}
	for rows.Next() {
		var e schema.TriggerEvent
		var origin, deadline int64
		var lag, hit, closed sql.NullInt64
		if err := rows.Scan(&e.ID, &e.RelationID, &e.Origin, &e.Target, &origin, &deadline, &e.Status,
			&lag, &hit, &closed); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.OriginTime = fromNanos(origin)
		e.Deadline = fromNanos(deadline)
		if lag.Valid {
			v := int(lag.Int64)
			e.Lag = &v
		}
		if hit.Valid {
			t := fromNanos(hit.Int64)
			e.HitTime = &t
		}
		if closed.Valid {
			t := fromNanos(closed.Int64)
			e.ClosedAt = &t
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Status

// GetStatus returns row counts and draw coverage of the ledger.
func (s *LedgerStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.db == nil {
		return status, nil
	}

	for _, table := range ledgerTables {
		var count int64
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalDraws = int(status.TableSizes[drawsTable])
	status.Hypotheses = int(status.TableSizes[hypothesesTable])
	status.Outcomes = int(status.TableSizes[outcomesTable])
	status.Modes = int(status.TableSizes[modesTable])
	status.Relations = int(status.TableSizes[relationsTable])

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM draws WHERE is_test = 1").Scan(&status.TestDraws); err != nil {
		return status, fmt.Errorf("failed to count test draws: %w", err)
	}
	openQuery := s.q("SELECT COUNT(*) FROM trigger_events WHERE status = ?")
	if err := s.db.QueryRowContext(ctx, openQuery, schema.OpenStatus).Scan(&status.OpenEvents); err != nil {
		return status, fmt.Errorf("failed to count open events: %w", err)
	}

	var latest, oldest sql.NullString
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(fecha), MIN(fecha) FROM draws").Scan(&latest, &oldest); err != nil {
		return status, fmt.Errorf("failed to get draw coverage: %w", err)
	}
	status.LatestDraw = latest.String
	status.OldestDraw = oldest.String
	status.SchemaVersion = schemaVersion(s.db)

	return status, nil
}

// Close closes the underlying DB connection.
func (s *LedgerStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
